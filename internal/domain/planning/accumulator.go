package planning

import (
	"math"
	"sort"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// Accumulator collects the result of planning: recipe execution rates,
// demand that could not be satisfied by simple chains, and surplus production.
type Accumulator struct {
	RecipeRates map[string]float64
	Unresolved  map[production.ResourceKey]float64
	Waste       map[production.ResourceKey]float64
	Required    *Requirement
}

// NewAccumulator creates an empty accumulator with the given requirement tree
func NewAccumulator(required *Requirement) *Accumulator {
	return &Accumulator{
		RecipeRates: make(map[string]float64),
		Unresolved:  make(map[production.ResourceKey]float64),
		Waste:       make(map[production.ResourceKey]float64),
		Required:    required,
	}
}

// AddRecipeRate adds crafts per minute for a recipe
func (a *Accumulator) AddRecipeRate(recipeID string, rate float64) {
	a.RecipeRates[recipeID] += rate
}

// AddUnresolved adds unsatisfied demand for a resource
func (a *Accumulator) AddUnresolved(key production.ResourceKey, amount float64) {
	a.Unresolved[key] += amount
}

// AddWaste adds surplus production of a resource
func (a *Accumulator) AddWaste(key production.ResourceKey, amount float64) {
	a.Waste[key] += amount
}

// Merge adds the maps of other into a. The requirement tree of other is
// attached as a child of a's tree.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for id, rate := range other.RecipeRates {
		a.RecipeRates[id] += rate
	}
	for key, amount := range other.Unresolved {
		a.Unresolved[key] += amount
	}
	for key, amount := range other.Waste {
		a.Waste[key] += amount
	}
	if other.Required == nil {
		return
	}
	if a.Required == nil {
		a.Required = NewRootRequirement()
	}
	a.Required.AddChild(other.Required)
}

// TakeUnresolved removes and returns unresolved entries above epsilon.
// Entries at or below epsilon are discarded.
func (a *Accumulator) TakeUnresolved(epsilon float64) map[production.ResourceKey]float64 {
	taken := make(map[production.ResourceKey]float64)
	for key, amount := range a.Unresolved {
		if amount > epsilon {
			taken[key] = amount
		}
		delete(a.Unresolved, key)
	}
	return taken
}

// HasUnresolved reports whether any unresolved demand exceeds epsilon
func (a *Accumulator) HasUnresolved(epsilon float64) bool {
	for _, amount := range a.Unresolved {
		if amount > epsilon {
			return true
		}
	}
	return false
}

// Prune drops entries whose magnitude is at or below epsilon
func (a *Accumulator) Prune(epsilon float64) {
	for id, rate := range a.RecipeRates {
		if math.Abs(rate) <= epsilon {
			delete(a.RecipeRates, id)
		}
	}
	for key, amount := range a.Unresolved {
		if math.Abs(amount) <= epsilon {
			delete(a.Unresolved, key)
		}
	}
	for key, amount := range a.Waste {
		if math.Abs(amount) <= epsilon {
			delete(a.Waste, key)
		}
	}
}

// RecipeIDs returns the recipe ids with a rate, sorted
func (a *Accumulator) RecipeIDs() []string {
	ids := make([]string, 0, len(a.RecipeRates))
	for id := range a.RecipeRates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the maps. The requirement tree is shared.
func (a *Accumulator) Clone() *Accumulator {
	clone := NewAccumulator(a.Required)
	clone.Merge(&Accumulator{RecipeRates: a.RecipeRates, Unresolved: a.Unresolved, Waste: a.Waste})
	return clone
}
