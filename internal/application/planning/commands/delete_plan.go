package commands

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// DeletePlanCommand removes a saved plan
type DeletePlanCommand struct {
	PlanID string
}

// DeletePlanResponse represents the result of deleting a plan
type DeletePlanResponse struct {
	PlanID string
}

// DeletePlanHandler handles the DeletePlan command
type DeletePlanHandler struct {
	planRepo planning.PlanSnapshotRepository
}

// NewDeletePlanHandler creates a new DeletePlanHandler
func NewDeletePlanHandler(planRepo planning.PlanSnapshotRepository) *DeletePlanHandler {
	return &DeletePlanHandler{planRepo: planRepo}
}

// Handle executes the DeletePlan command
func (h *DeletePlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DeletePlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DeletePlanCommand")
	}
	if cmd.PlanID == "" {
		return nil, fmt.Errorf("plan_id is required")
	}

	if err := h.planRepo.Delete(ctx, cmd.PlanID); err != nil {
		return nil, err
	}
	return &DeletePlanResponse{PlanID: cmd.PlanID}, nil
}
