package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

const (
	sideOutput = "output"
	sideInput  = "input"
)

// GormCatalogRepository implements CatalogRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// LoadSnapshot reads every stored resource and recipe in insertion order.
// An empty database yields an empty snapshot.
func (r *GormCatalogRepository) LoadSnapshot(ctx context.Context) (production.Snapshot, error) {
	db := r.db.WithContext(ctx)

	var resourceModels []ResourceModel
	if err := db.Order("position, kind, resource_id").Find(&resourceModels).Error; err != nil {
		return production.Snapshot{}, fmt.Errorf("failed to load resources: %w", err)
	}

	var recipeModels []RecipeModel
	if err := db.Order("position, id").Find(&recipeModels).Error; err != nil {
		return production.Snapshot{}, fmt.Errorf("failed to load recipes: %w", err)
	}

	var amountModels []RecipeAmountModel
	if err := db.Order("recipe_id, side, position").Find(&amountModels).Error; err != nil {
		return production.Snapshot{}, fmt.Errorf("failed to load recipe amounts: %w", err)
	}

	var producerModels []RecipeProducerModel
	if err := db.Order("recipe_id, position").Find(&producerModels).Error; err != nil {
		return production.Snapshot{}, fmt.Errorf("failed to load recipe producers: %w", err)
	}

	resources := make([]production.Resource, 0, len(resourceModels))
	for _, m := range resourceModels {
		kind, err := production.ParseResourceKind(m.Kind)
		if err != nil {
			return production.Snapshot{}, fmt.Errorf("invalid resource %s in database: %w", m.ResourceID, err)
		}
		resources = append(resources, production.NewResource(kind, m.ResourceID, m.Name))
	}

	outputs := make(map[string][]production.ItemAmount)
	inputs := make(map[string][]production.ItemAmount)
	for _, m := range amountModels {
		kind, err := production.ParseResourceKind(m.ResourceKind)
		if err != nil {
			return production.Snapshot{}, fmt.Errorf("invalid amount for recipe %s in database: %w", m.RecipeID, err)
		}
		amount := production.ItemAmount{
			Resource: production.ResourceKey{Kind: kind, ID: m.ResourceID},
			Amount:   m.Amount,
		}
		switch m.Side {
		case sideOutput:
			outputs[m.RecipeID] = append(outputs[m.RecipeID], amount)
		case sideInput:
			inputs[m.RecipeID] = append(inputs[m.RecipeID], amount)
		default:
			return production.Snapshot{}, fmt.Errorf("invalid amount side %q for recipe %s", m.Side, m.RecipeID)
		}
	}

	producers := make(map[string][]production.ProducerKind)
	for _, m := range producerModels {
		producers[m.RecipeID] = append(producers[m.RecipeID], production.ProducerKind{
			Name:    m.Name,
			Icon:    m.Icon,
			Speed:   m.Speed,
			PowerKW: m.PowerKW,
		})
	}

	recipes := make([]*production.Recipe, 0, len(recipeModels))
	for _, m := range recipeModels {
		var tags []string
		if m.Tags != "" {
			if err := json.Unmarshal([]byte(m.Tags), &tags); err != nil {
				return production.Snapshot{}, fmt.Errorf("failed to unmarshal tags for recipe %s: %w", m.ID, err)
			}
		}
		recipes = append(recipes, production.NewRecipe(
			m.ID,
			outputs[m.ID],
			inputs[m.ID],
			m.TimeSeconds,
			tags,
			producers[m.ID],
		))
	}

	return production.Snapshot{Resources: resources, Recipes: recipes}, nil
}

// ReplaceSnapshot swaps the stored catalog for the given snapshot in one transaction
func (r *GormCatalogRepository) ReplaceSnapshot(ctx context.Context, snapshot production.Snapshot) error {
	resourceModels, recipeModels, amountModels, producerModels, err := snapshotToModels(snapshot)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Children first so foreign keys never dangle
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&RecipeAmountModel{},
			&RecipeProducerModel{},
			&RecipeModel{},
			&ResourceModel{},
		} {
			if err := global.Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear catalog: %w", err)
			}
		}

		if len(resourceModels) > 0 {
			if err := tx.CreateInBatches(&resourceModels, 500).Error; err != nil {
				return fmt.Errorf("failed to store resources: %w", err)
			}
		}
		if len(recipeModels) > 0 {
			if err := tx.CreateInBatches(&recipeModels, 500).Error; err != nil {
				return fmt.Errorf("failed to store recipes: %w", err)
			}
		}
		if len(amountModels) > 0 {
			if err := tx.CreateInBatches(&amountModels, 500).Error; err != nil {
				return fmt.Errorf("failed to store recipe amounts: %w", err)
			}
		}
		if len(producerModels) > 0 {
			if err := tx.CreateInBatches(&producerModels, 500).Error; err != nil {
				return fmt.Errorf("failed to store recipe producers: %w", err)
			}
		}
		return nil
	})
}

func snapshotToModels(snapshot production.Snapshot) (
	[]ResourceModel, []RecipeModel, []RecipeAmountModel, []RecipeProducerModel, error,
) {
	resources := make([]ResourceModel, 0, len(snapshot.Resources))
	for i, res := range snapshot.Resources {
		resources = append(resources, ResourceModel{
			Kind:       string(res.Kind()),
			ResourceID: res.ID(),
			Name:       res.Name(),
			Position:   i,
		})
	}

	recipes := make([]RecipeModel, 0, len(snapshot.Recipes))
	var amounts []RecipeAmountModel
	var producers []RecipeProducerModel
	for i, recipe := range snapshot.Recipes {
		tags := "[]"
		if t := recipe.Tags(); len(t) > 0 {
			bytes, err := json.Marshal(t)
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("failed to marshal tags for recipe %s: %w", recipe.ID(), err)
			}
			tags = string(bytes)
		}
		recipes = append(recipes, RecipeModel{
			ID:          recipe.ID(),
			TimeSeconds: recipe.TimeSeconds(),
			Tags:        tags,
			Position:    i,
		})

		for j, a := range recipe.Outputs() {
			amounts = append(amounts, amountModel(recipe.ID(), sideOutput, j, a))
		}
		for j, a := range recipe.Inputs() {
			amounts = append(amounts, amountModel(recipe.ID(), sideInput, j, a))
		}
		for j, p := range recipe.Producers() {
			producers = append(producers, RecipeProducerModel{
				RecipeID: recipe.ID(),
				Name:     p.Name,
				Icon:     p.Icon,
				Speed:    p.Speed,
				PowerKW:  p.PowerKW,
				Position: j,
			})
		}
	}
	return resources, recipes, amounts, producers, nil
}

func amountModel(recipeID, side string, position int, a production.ItemAmount) RecipeAmountModel {
	return RecipeAmountModel{
		RecipeID:     recipeID,
		Side:         side,
		ResourceKind: string(a.Resource.Kind),
		ResourceID:   a.Resource.ID,
		Amount:       a.Amount,
		Position:     position,
	}
}
