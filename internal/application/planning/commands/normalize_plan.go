package commands

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/shared"
)

// NormalizePlanCommand repairs a saved plan whose outputs and amounts differ in length
type NormalizePlanCommand struct {
	PlanID string
}

// NormalizePlanResponse represents the result of normalizing a plan
type NormalizePlanResponse struct {
	Plan    *planning.PlanSnapshot
	Changed bool
}

// NormalizePlanHandler handles the NormalizePlan command
type NormalizePlanHandler struct {
	planRepo planning.PlanSnapshotRepository
	clock    shared.Clock
}

// NewNormalizePlanHandler creates a new NormalizePlanHandler
func NewNormalizePlanHandler(planRepo planning.PlanSnapshotRepository, clock shared.Clock) *NormalizePlanHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &NormalizePlanHandler{
		planRepo: planRepo,
		clock:    clock,
	}
}

// Handle executes the NormalizePlan command
func (h *NormalizePlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*NormalizePlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *NormalizePlanCommand")
	}

	plan, err := h.planRepo.FindByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}

	changed := plan.Normalize()
	if changed {
		plan.UpdatedAt = h.clock.Now()
		if err := h.planRepo.Save(ctx, plan); err != nil {
			return nil, fmt.Errorf("failed to save normalized plan: %w", err)
		}
		common.LoggerFromContext(ctx).Log(common.LevelInfo, "Plan normalized", map[string]interface{}{
			"plan_id": plan.ID,
			"outputs": len(plan.Outputs),
		})
	}

	return &NormalizePlanResponse{Plan: plan, Changed: changed}, nil
}
