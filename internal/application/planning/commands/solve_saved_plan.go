package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// SolveSavedPlanCommand solves a stored plan: its outputs become targets,
// its inputs are ignored and its tier selections set the producer speeds of the report.
type SolveSavedPlanCommand struct {
	PlanID   string
	Disabled []string
}

// SolveSavedPlanHandler handles the SolveSavedPlan command
type SolveSavedPlanHandler struct {
	planRepo planning.PlanSnapshotRepository
	solver   *SolvePlanHandler
}

// NewSolveSavedPlanHandler creates a new SolveSavedPlanHandler
func NewSolveSavedPlanHandler(planRepo planning.PlanSnapshotRepository, engine *services.PlanningEngine) *SolveSavedPlanHandler {
	return &SolveSavedPlanHandler{
		planRepo: planRepo,
		solver:   NewSolvePlanHandler(engine),
	}
}

// Handle executes the SolveSavedPlan command
func (h *SolveSavedPlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SolveSavedPlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SolveSavedPlanCommand")
	}
	logger := common.LoggerFromContext(ctx)

	plan, err := h.planRepo.FindByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}

	targets, err := plan.Targets()
	if err != nil {
		logger.Log(common.LevelWarn, "Saved plan has mismatched outputs; normalize it before solving", map[string]interface{}{
			"plan_id":        plan.ID,
			"outputs":        len(plan.Outputs),
			"output_amounts": len(plan.OutputAmounts),
		})
		return nil, err
	}

	var tier *production.TierParams
	if len(plan.TierSelections) > 0 {
		params, err := TierParamsFromSelections(plan.TierSelections)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", plan.ID, err)
		}
		tier = &params
	}

	response, err := h.solver.solve(ctx, targets, plan.Inputs, cmd.Disabled, tier)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// TierParamsFromSelections parses saved tier selections of the form
// producer name -> speed multiplier
func TierParamsFromSelections(selections map[string]string) (production.TierParams, error) {
	params := production.TierParams{SpeedMultipliers: make(map[string]float64, len(selections))}
	for producer, raw := range selections {
		m, err := strconv.ParseFloat(raw, 64)
		if err != nil || m <= 0 {
			return params, fmt.Errorf("invalid speed multiplier %q for %s", raw, producer)
		}
		params.SpeedMultipliers[producer] = m
	}
	return params, nil
}
