package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// MockPlanRepository is a test double for PlanSnapshotRepository
type MockPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*planning.PlanSnapshot // planID -> plan

	// Error injection
	shouldError bool
	errorMsg    string
}

// NewMockPlanRepository creates a new mock plan repository
func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{
		plans: make(map[string]*planning.PlanSnapshot),
	}
}

// AddPlan stores a plan without validation, e.g. one with mismatched outputs
func (r *MockPlanRepository) AddPlan(p *planning.PlanSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID] = clonePlan(p)
}

// Save stores a copy of the plan
func (r *MockPlanRepository) Save(ctx context.Context, p *planning.PlanSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shouldError {
		return fmt.Errorf("%s", r.errorMsg)
	}

	r.plans[p.ID] = clonePlan(p)
	return nil
}

// FindByID finds a plan by ID
func (r *MockPlanRepository) FindByID(ctx context.Context, id string) (*planning.PlanSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.shouldError {
		return nil, fmt.Errorf("%s", r.errorMsg)
	}

	p, ok := r.plans[id]
	if !ok {
		return nil, &planning.ErrPlanNotFound{PlanID: id}
	}
	return clonePlan(p), nil
}

// List returns all plans, most recently updated first
func (r *MockPlanRepository) List(ctx context.Context) ([]*planning.PlanSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.shouldError {
		return nil, fmt.Errorf("%s", r.errorMsg)
	}

	out := make([]*planning.PlanSnapshot, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, clonePlan(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a plan
func (r *MockPlanRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shouldError {
		return fmt.Errorf("%s", r.errorMsg)
	}
	if _, ok := r.plans[id]; !ok {
		return &planning.ErrPlanNotFound{PlanID: id}
	}
	delete(r.plans, id)
	return nil
}

// SetError configures error injection
func (r *MockPlanRepository) SetError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shouldError = true
	r.errorMsg = msg
}

// ClearError clears error injection
func (r *MockPlanRepository) ClearError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shouldError = false
	r.errorMsg = ""
}

func clonePlan(p *planning.PlanSnapshot) *planning.PlanSnapshot {
	c := *p
	c.Inputs = append([]string(nil), p.Inputs...)
	c.Outputs = append([]string(nil), p.Outputs...)
	c.OutputAmounts = append([]float64(nil), p.OutputAmounts...)
	c.TierSelections = make(map[string]string, len(p.TierSelections))
	for k, v := range p.TierSelections {
		c.TierSelections[k] = v
	}
	return &c
}
