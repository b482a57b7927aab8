package queries

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// LoadPlanQuery retrieves a saved plan
type LoadPlanQuery struct {
	PlanID string
}

// LoadPlanResponse carries the plan and whether it can be solved as stored
type LoadPlanResponse struct {
	Plan          *planning.PlanSnapshot
	ShapeMismatch bool
}

// LoadPlanHandler handles the LoadPlan query
type LoadPlanHandler struct {
	planRepo planning.PlanSnapshotRepository
}

// NewLoadPlanHandler creates a new LoadPlanHandler
func NewLoadPlanHandler(planRepo planning.PlanSnapshotRepository) *LoadPlanHandler {
	return &LoadPlanHandler{planRepo: planRepo}
}

// Handle executes the LoadPlan query
func (h *LoadPlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*LoadPlanQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoadPlanQuery")
	}

	plan, err := h.planRepo.FindByID(ctx, query.PlanID)
	if err != nil {
		return nil, err
	}

	mismatch := plan.ShapeMismatch()
	if mismatch {
		common.LoggerFromContext(ctx).Log(common.LevelWarn, "Saved plan has mismatched outputs and amounts", map[string]interface{}{
			"plan_id":        plan.ID,
			"outputs":        len(plan.Outputs),
			"output_amounts": len(plan.OutputAmounts),
		})
	}

	return &LoadPlanResponse{Plan: plan, ShapeMismatch: mismatch}, nil
}
