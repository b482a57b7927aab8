package planning

import (
	"context"
	"fmt"
)

// PlanSnapshotRepository defines persistence operations for saved plans
type PlanSnapshotRepository interface {
	// Save creates or replaces a plan and all of its entries
	Save(ctx context.Context, plan *PlanSnapshot) error

	// FindByID retrieves a plan by ID, returning ErrPlanNotFound when missing
	FindByID(ctx context.Context, id string) (*PlanSnapshot, error)

	// List retrieves all plans, most recently updated first
	List(ctx context.Context) ([]*PlanSnapshot, error)

	// Delete removes a plan and its entries
	Delete(ctx context.Context, id string) error
}

// ErrPlanNotFound indicates that no plan with the given ID exists
type ErrPlanNotFound struct {
	PlanID string
}

func (e *ErrPlanNotFound) Error() string {
	return fmt.Sprintf("plan not found: %s", e.PlanID)
}
