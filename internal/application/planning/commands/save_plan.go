package commands

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/shared"
	"github.com/seertenedos/ErkleFoundryMods-sub000/pkg/utils"
)

// SavePlanCommand stores a planner session
type SavePlanCommand struct {
	ID             string // optional; generated from Name when empty
	Name           string
	Inputs         []string
	Outputs        []string
	OutputAmounts  []float64
	TierSelections map[string]string
}

// SavePlanResponse represents the result of saving a plan
type SavePlanResponse struct {
	Plan *planning.PlanSnapshot
}

// SavePlanHandler handles the SavePlan command
type SavePlanHandler struct {
	planRepo planning.PlanSnapshotRepository
	clock    shared.Clock
}

// NewSavePlanHandler creates a new SavePlanHandler
func NewSavePlanHandler(planRepo planning.PlanSnapshotRepository, clock shared.Clock) *SavePlanHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SavePlanHandler{
		planRepo: planRepo,
		clock:    clock,
	}
}

// Handle executes the SavePlan command
func (h *SavePlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SavePlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SavePlanCommand")
	}

	id := cmd.ID
	if id == "" {
		id = utils.GeneratePlanID(cmd.Name)
	}

	plan := &planning.PlanSnapshot{
		ID:             id,
		Name:           cmd.Name,
		Inputs:         append([]string(nil), cmd.Inputs...),
		Outputs:        append([]string(nil), cmd.Outputs...),
		OutputAmounts:  append([]float64(nil), cmd.OutputAmounts...),
		TierSelections: make(map[string]string, len(cmd.TierSelections)),
		UpdatedAt:      h.clock.Now(),
	}
	for tier, selection := range cmd.TierSelections {
		plan.TierSelections[tier] = selection
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := h.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Plan saved", map[string]interface{}{
		"plan_id": plan.ID,
		"outputs": len(plan.Outputs),
	})

	return &SavePlanResponse{Plan: plan}, nil
}
