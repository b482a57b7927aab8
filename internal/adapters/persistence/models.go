package persistence

import (
	"time"
)

// ResourceModel represents the catalog_resources table
// Primary key is composite: (kind, resource_id)
type ResourceModel struct {
	Kind       string `gorm:"column:kind;primaryKey;size:20;not null"`
	ResourceID string `gorm:"column:resource_id;primaryKey;size:255;not null"`
	Name       string `gorm:"column:name"`
	Position   int    `gorm:"column:position;not null;default:0"`
}

func (ResourceModel) TableName() string {
	return "catalog_resources"
}

// RecipeModel represents the catalog_recipes table
type RecipeModel struct {
	ID          string  `gorm:"column:id;primaryKey;size:255;not null"`
	TimeSeconds float64 `gorm:"column:time_seconds;not null;default:0"`
	Tags        string  `gorm:"column:tags;type:text"` // JSON array as text
	Position    int     `gorm:"column:position;not null;default:0"`
}

func (RecipeModel) TableName() string {
	return "catalog_recipes"
}

// RecipeAmountModel represents the catalog_recipe_amounts table
// Side is "output" or "input"
type RecipeAmountModel struct {
	ID           int          `gorm:"column:id;primaryKey;autoIncrement"`
	RecipeID     string       `gorm:"column:recipe_id;not null;index:idx_recipe_side"`
	Recipe       *RecipeModel `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Side         string       `gorm:"column:side;size:10;not null;index:idx_recipe_side"`
	ResourceKind string       `gorm:"column:resource_kind;size:20;not null"`
	ResourceID   string       `gorm:"column:resource_id;not null"`
	Amount       float64      `gorm:"column:amount;not null"`
	Position     int          `gorm:"column:position;not null;default:0"`
}

func (RecipeAmountModel) TableName() string {
	return "catalog_recipe_amounts"
}

// RecipeProducerModel represents the catalog_recipe_producers table
type RecipeProducerModel struct {
	ID       int          `gorm:"column:id;primaryKey;autoIncrement"`
	RecipeID string       `gorm:"column:recipe_id;not null;index"`
	Recipe   *RecipeModel `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name     string       `gorm:"column:name;not null"`
	Icon     string       `gorm:"column:icon"`
	Speed    float64      `gorm:"column:speed;not null"`
	PowerKW  float64      `gorm:"column:power_kw;not null;default:0"`
	Position int          `gorm:"column:position;not null;default:0"`
}

func (RecipeProducerModel) TableName() string {
	return "catalog_recipe_producers"
}

// PlanSnapshotModel represents the plan_snapshots table
// The plan contents live in plan_snapshot_entries as flat key/value rows
type PlanSnapshotModel struct {
	ID      string    `gorm:"column:id;primaryKey;size:255;not null"`
	Name    string    `gorm:"column:name"`
	SavedAt time.Time `gorm:"column:saved_at;not null;index"`
}

func (PlanSnapshotModel) TableName() string {
	return "plan_snapshots"
}

// PlanSnapshotEntryModel represents the plan_snapshot_entries table
// Primary key is composite: (plan_id, key)
type PlanSnapshotEntryModel struct {
	PlanID string             `gorm:"column:plan_id;primaryKey;size:255;not null"`
	Plan   *PlanSnapshotModel `gorm:"foreignKey:PlanID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Key    string             `gorm:"column:key;primaryKey;size:255;not null"`
	Value  string             `gorm:"column:value;type:text;not null"`
}

func (PlanSnapshotEntryModel) TableName() string {
	return "plan_snapshot_entries"
}

// AllModels lists every table for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&ResourceModel{},
		&RecipeModel{},
		&RecipeAmountModel{},
		&RecipeProducerModel{},
		&PlanSnapshotModel{},
		&PlanSnapshotEntryModel{},
	}
}
