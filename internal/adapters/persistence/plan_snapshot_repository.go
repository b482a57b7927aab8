package persistence

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
)

// GormPlanSnapshotRepository implements PlanSnapshotRepository using GORM.
// Each plan is one plan_snapshots row plus its flat key/value entries.
type GormPlanSnapshotRepository struct {
	db *gorm.DB
}

// NewGormPlanSnapshotRepository creates a new GORM plan snapshot repository
func NewGormPlanSnapshotRepository(db *gorm.DB) *GormPlanSnapshotRepository {
	return &GormPlanSnapshotRepository{db: db}
}

// Save upserts the plan and replaces all of its entries
func (r *GormPlanSnapshotRepository) Save(ctx context.Context, plan *planning.PlanSnapshot) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("plan id is required")
	}

	model := PlanSnapshotModel{
		ID:      plan.ID,
		Name:    plan.Name,
		SavedAt: plan.UpdatedAt,
	}
	kv := plan.ToKeyValues()
	entries := make([]PlanSnapshotEntryModel, 0, len(kv))
	for key, value := range kv {
		entries = append(entries, PlanSnapshotEntryModel{PlanID: plan.ID, Key: key, Value: value})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "saved_at"}),
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}

		if err := tx.Where("plan_id = ?", plan.ID).Delete(&PlanSnapshotEntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear plan entries: %w", err)
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("failed to save plan entries: %w", err)
			}
		}
		return nil
	})
}

// FindByID retrieves a plan by ID. The result may have a shape mismatch.
func (r *GormPlanSnapshotRepository) FindByID(ctx context.Context, id string) (*planning.PlanSnapshot, error) {
	db := r.db.WithContext(ctx)

	var model PlanSnapshotModel
	result := db.Where("id = ?", id).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &planning.ErrPlanNotFound{PlanID: id}
		}
		return nil, fmt.Errorf("failed to find plan: %w", result.Error)
	}

	var entries []PlanSnapshotEntryModel
	if err := db.Where("plan_id = ?", id).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load plan entries: %w", err)
	}

	return r.modelToPlan(&model, entries)
}

// List returns every plan, newest first
func (r *GormPlanSnapshotRepository) List(ctx context.Context) ([]*planning.PlanSnapshot, error) {
	db := r.db.WithContext(ctx)

	var models []PlanSnapshotModel
	if err := db.Order("saved_at DESC, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if len(models) == 0 {
		return []*planning.PlanSnapshot{}, nil
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	var entries []PlanSnapshotEntryModel
	if err := db.Where("plan_id IN ?", ids).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load plan entries: %w", err)
	}
	byPlan := make(map[string][]PlanSnapshotEntryModel, len(models))
	for _, e := range entries {
		byPlan[e.PlanID] = append(byPlan[e.PlanID], e)
	}

	plans := make([]*planning.PlanSnapshot, 0, len(models))
	for i := range models {
		p, err := r.modelToPlan(&models[i], byPlan[models[i].ID])
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	// sqlite compares saved_at as text, so order again on the decoded times
	sort.SliceStable(plans, func(i, j int) bool {
		if !plans[i].UpdatedAt.Equal(plans[j].UpdatedAt) {
			return plans[i].UpdatedAt.After(plans[j].UpdatedAt)
		}
		return plans[i].ID < plans[j].ID
	})
	return plans, nil
}

// Delete removes a plan and its entries
func (r *GormPlanSnapshotRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&PlanSnapshotEntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete plan entries: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&PlanSnapshotModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete plan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &planning.ErrPlanNotFound{PlanID: id}
		}
		return nil
	})
}

// modelToPlan converts database rows to the domain snapshot
func (r *GormPlanSnapshotRepository) modelToPlan(model *PlanSnapshotModel, entries []PlanSnapshotEntryModel) (*planning.PlanSnapshot, error) {
	kv := make(map[string]string, len(entries))
	for _, e := range entries {
		kv[e.Key] = e.Value
	}
	if _, ok := kv[planning.KeyName]; !ok {
		kv[planning.KeyName] = model.Name
	}

	plan, err := planning.PlanSnapshotFromKeyValues(model.ID, kv)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	plan.UpdatedAt = model.SavedAt.UTC()
	return plan, nil
}
