package services

import (
	"sort"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// RecipeLine is one scheduled recipe in a report
type RecipeLine struct {
	RecipeID string
	Rate     float64 // crafts per minute
	Producer string
	Machines float64
	PowerKW  float64
}

// ResourceLine is an amount per minute of a resource
type ResourceLine struct {
	Resource production.ResourceKey
	Name     string
	Amount   float64
}

// PlanReport summarises an accumulator for display
type PlanReport struct {
	Recipes       []RecipeLine
	RawInputs     []ResourceLine
	Unresolved    []ResourceLine
	Waste         []ResourceLine
	TotalMachines float64
	TotalPowerKW  float64
}

// PlanReporter converts planning results into machine counts and power draw
type PlanReporter struct {
	catalog *production.RecipeCatalog
	epsilon float64
}

// NewPlanReporter creates a reporter over a catalog
func NewPlanReporter(catalog *production.RecipeCatalog) *PlanReporter {
	return &PlanReporter{catalog: catalog, epsilon: DefaultEpsilon}
}

// Build creates a report at the catalog's tier. Machines use the recipe's
// first producer: rate * time / 60 / speed.
func (r *PlanReporter) Build(acc *planning.Accumulator) *PlanReport {
	return r.BuildWithTier(acc, r.catalog.Tier())
}

// BuildWithTier creates a report with producer speeds taken from tier
// instead of the catalog
func (r *PlanReporter) BuildWithTier(acc *planning.Accumulator, tier production.TierParams) *PlanReport {
	report := &PlanReport{}
	balance := make(map[production.ResourceKey]float64)

	for _, id := range acc.RecipeIDs() {
		rate := acc.RecipeRates[id]
		line := RecipeLine{RecipeID: id, Rate: rate}

		recipe, ok := r.catalog.Recipe(id)
		if ok {
			if producer, has := recipe.PrimaryProducer(); has {
				line.Producer = producer.Name
				if speed := tier.Speed(producer); speed > 0 {
					line.Machines = rate * recipe.TimeSeconds() / 60 / speed
				}
				line.PowerKW = line.Machines * producer.PowerKW
			}
			for _, key := range recipe.TouchedKeys() {
				balance[key] += rate * recipe.NetAmount(key)
			}
		}

		report.TotalMachines += line.Machines
		report.TotalPowerKW += line.PowerKW
		report.Recipes = append(report.Recipes, line)
	}

	for _, key := range production.SortedKeys(balance) {
		if balance[key] < -r.epsilon {
			report.RawInputs = append(report.RawInputs, r.line(key, -balance[key]))
		}
	}
	report.Unresolved = r.lines(acc.Unresolved)
	report.Waste = r.lines(acc.Waste)
	return report
}

func (r *PlanReporter) lines(m map[production.ResourceKey]float64) []ResourceLine {
	out := make([]ResourceLine, 0, len(m))
	for _, key := range production.SortedKeys(m) {
		if m[key] > r.epsilon {
			out = append(out, r.line(key, m[key]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

func (r *PlanReporter) line(key production.ResourceKey, amount float64) ResourceLine {
	name := key.ID
	if res, ok := r.catalog.Resource(key); ok {
		name = res.Name()
	}
	return ResourceLine{Resource: key, Name: name, Amount: amount}
}
