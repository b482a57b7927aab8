package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// ListPlansQuery lists saved plans
type ListPlansQuery struct{}

// PlanSummaryDTO is one row of the plan list
type PlanSummaryDTO struct {
	ID            string
	Name          string
	Outputs       int
	ShapeMismatch bool
	UpdatedAt     time.Time
}

// ListPlansResponse represents the result of the query
type ListPlansResponse struct {
	Plans []PlanSummaryDTO
}

// ListPlansHandler handles the ListPlans query
type ListPlansHandler struct {
	planRepo planning.PlanSnapshotRepository
}

// NewListPlansHandler creates a new ListPlansHandler
func NewListPlansHandler(planRepo planning.PlanSnapshotRepository) *ListPlansHandler {
	return &ListPlansHandler{planRepo: planRepo}
}

// Handle executes the ListPlans query
func (h *ListPlansHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListPlansQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPlansQuery")
	}

	plans, err := h.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	dtos := make([]PlanSummaryDTO, len(plans))
	for i, p := range plans {
		dtos[i] = PlanSummaryDTO{
			ID:            p.ID,
			Name:          p.Name,
			Outputs:       len(p.Outputs),
			ShapeMismatch: p.ShapeMismatch(),
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return &ListPlansResponse{Plans: dtos}, nil
}
