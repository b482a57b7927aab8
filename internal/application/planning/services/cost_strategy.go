package services

import (
	"math"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// CostStrategy assigns a cost to every enabled recipe and provision row of a
// tableau. Import rows are priced by the solver afterwards.
type CostStrategy interface {
	AssignCosts(t *Tableau)
}

// DefaultPenalties weights inputs that should be avoided when alternatives exist
func DefaultPenalties() map[production.ResourceKey]float64 {
	return map[production.ResourceKey]float64{
		production.ItemKey("biomass"): 100,
	}
}

// WasteBiasedCost prices a row as its total output times its weighted input.
//
// Rows are visited from last to first so provision rows, which feed the
// group's recipes, are priced before the recipes that consume their output.
// An input's weight is its penalty times the cheapest per-unit cost seen so
// far for that resource (at least 1).
type WasteBiasedCost struct {
	Penalties map[production.ResourceKey]float64
}

// NewWasteBiasedCost creates the default cost strategy
func NewWasteBiasedCost(penalties map[production.ResourceKey]float64) *WasteBiasedCost {
	if penalties == nil {
		penalties = DefaultPenalties()
	}
	return &WasteBiasedCost{Penalties: penalties}
}

// AssignCosts prices rows bottom-up: output times the weighted unit cost of
// inputs produced by rows already priced
func (c *WasteBiasedCost) AssignCosts(t *Tableau) {
	unitCost := make(map[production.ResourceKey]float64)

	for i := t.RowCount() - 1; i >= 0; i-- {
		row := t.Row(i)
		if row.Kind == RowImport || t.IsDisabled(i) {
			continue
		}

		totalOut := 0.0
		for _, o := range row.Recipe.Outputs() {
			totalOut += o.Amount
		}

		weightedIn := 0.0
		for _, in := range row.Recipe.Inputs() {
			penalty, ok := c.Penalties[in.Resource]
			if !ok {
				penalty = 1
			}
			weight := penalty * math.Max(1, unitCost[in.Resource])
			weightedIn += math.Abs(in.Amount) * weight
		}

		// the base unit keeps input-free rows from being free in the dual
		cost := 1 + totalOut*weightedIn
		t.SetCost(i, cost)

		for _, o := range row.Recipe.Outputs() {
			if o.Amount <= 0 {
				continue
			}
			perUnit := cost / o.Amount
			if existing, seen := unitCost[o.Resource]; !seen || perUnit < existing {
				unitCost[o.Resource] = perUnit
			}
		}
	}
}

// UniformCost prices every enabled row at 1, minimising the total number of crafts
type UniformCost struct{}

// AssignCosts sets every enabled recipe and provision row's cost to 1
func (UniformCost) AssignCosts(t *Tableau) {
	for i := 0; i < t.RowCount(); i++ {
		if t.Row(i).Kind == RowImport || t.IsDisabled(i) {
			continue
		}
		t.SetCost(i, 1)
	}
}
