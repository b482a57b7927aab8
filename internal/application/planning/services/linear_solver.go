package services

import (
	"context"
	"math"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

const (
	// DefaultMaxIterations bounds the number of simplex pivots per solve
	DefaultMaxIterations = 500

	// DefaultEpsilon is the tolerance below which rates are treated as zero
	DefaultEpsilon = 1e-9

	importCostFactor = 1e6
)

// SolverOptions configures linear solvers
type SolverOptions struct {
	MaxIterations int
	Epsilon       float64
	Cost          CostStrategy
}

// DefaultSolverOptions returns a 500 pivot cap and waste-biased costs
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations: DefaultMaxIterations,
		Epsilon:       DefaultEpsilon,
		Cost:          NewWasteBiasedCost(nil),
	}
}

func (o SolverOptions) withDefaults() SolverOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Cost == nil {
		o.Cost = NewWasteBiasedCost(nil)
	}
	return o
}

// Provision is an amount of a group ingredient to be produced outside the group
type Provision struct {
	RecipeID string
	Resource production.ResourceKey
	Amount   float64
}

// Solution is the result of one solve
type Solution struct {
	// Rates are crafts per minute of the group's own recipes
	Rates map[string]float64

	// ProvisionRates are crafts per minute of outside recipes feeding the group
	ProvisionRates map[string]float64

	// Provisions break ProvisionRates down by the ingredient supplied
	Provisions []Provision

	// External is the net consumption of resources nothing in the tableau can produce
	External map[production.ResourceKey]float64

	Waste map[production.ResourceKey]float64
	Unmet map[production.ResourceKey]float64

	Iterations int
	Capped     bool
}

func newSolution() *Solution {
	return &Solution{
		Rates:          make(map[string]float64),
		ProvisionRates: make(map[string]float64),
		External:       make(map[production.ResourceKey]float64),
		Waste:          make(map[production.ResourceKey]float64),
		Unmet:          make(map[production.ResourceKey]float64),
	}
}

// LinearSolver finds minimum-cost recipe rates for a complex group.
//
// The tableau is built once per group and copied for each solve. Rows are the
// group's recipes, then outside recipes producing its ingredients, then one
// import row per product and per producible ingredient. Each import row
// carries a prohibitive cost so it is only used when recipes cannot meet demand.
type LinearSolver struct {
	group   *planning.SubGraph
	base    *Tableau
	options SolverOptions
}

// NewLinearSolver builds the base tableau of a group
func NewLinearSolver(group *planning.SubGraph, catalog *production.RecipeCatalog, options SolverOptions) *LinearSolver {
	rows := make([]TableauRow, 0)
	for _, r := range group.Recipes() {
		rows = append(rows, TableauRow{Kind: RowRecipe, Recipe: r})
	}

	provisionRow := make(map[string]int)
	provided := make([]production.ResourceKey, 0)
	for _, ingredient := range group.IngredientKeys() {
		producers := catalog.Producers(ingredient)
		for _, p := range producers {
			if group.Contains(p.ID()) {
				continue
			}
			if i, ok := provisionRow[p.ID()]; ok {
				rows[i].Provides = append(rows[i].Provides, ingredient)
				continue
			}
			provisionRow[p.ID()] = len(rows)
			rows = append(rows, TableauRow{Kind: RowProvision, Recipe: p, Provides: []production.ResourceKey{ingredient}})
		}
		if len(producers) > 0 {
			provided = append(provided, ingredient)
		}
	}

	for _, product := range group.ProductKeys() {
		rows = append(rows, TableauRow{Kind: RowImport, Resource: product})
	}
	for _, ingredient := range provided {
		rows = append(rows, TableauRow{Kind: RowImport, Resource: ingredient})
	}

	seen := make(map[production.ResourceKey]bool)
	columns := make([]production.ResourceKey, 0)
	for _, row := range rows {
		keys := []production.ResourceKey{row.Resource}
		if row.Recipe != nil {
			keys = row.Recipe.TouchedKeys()
		}
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	return &LinearSolver{
		group:   group,
		base:    newTableau(rows, columns),
		options: options.withDefaults(),
	}
}

// Group returns the group this solver plans
func (s *LinearSolver) Group() *planning.SubGraph {
	return s.group
}

// Products returns the resources the solver can be asked for
func (s *LinearSolver) Products() []production.ResourceKey {
	return s.group.ProductKeys()
}

// Tableau returns a copy of the base tableau
func (s *LinearSolver) Tableau() *Tableau {
	return s.base.Clone()
}

// Solve computes recipe rates meeting demand for the group's products.
// Disabled recipe ids are excluded. Reaching the iteration cap is not an
// error: the current solution is returned with Capped set.
func (s *LinearSolver) Solve(
	ctx context.Context,
	demand map[production.ResourceKey]float64,
	disabled map[string]bool,
) (*Solution, error) {
	logger := common.LoggerFromContext(ctx)
	eps := s.options.Epsilon
	solution := newSolution()

	t := s.base.Clone()
	wanted := make(map[production.ResourceKey]float64)
	for _, key := range production.SortedKeys(demand) {
		amount := demand[key]
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			return nil, &production.ErrInvalidAmount{Resource: key, Amount: amount}
		}
		if amount <= eps {
			continue
		}
		if !s.group.Produces(key) || !t.setDemand(key, amount) {
			logger.Log(common.LevelWarn, "Demand routed to a group that does not produce it", map[string]interface{}{
				"subgraph": s.group.ID(),
				"resource": key.String(),
			})
			solution.Unmet[key] += amount
			continue
		}
		wanted[key] = amount
	}

	for i := 0; i < t.RowCount(); i++ {
		if id := t.Row(i).RecipeID(); id != "" && disabled[id] {
			t.disableRow(i)
		}
	}

	s.options.Cost.AssignCosts(t)
	maxCost := 0.0
	for i := 0; i < t.RowCount(); i++ {
		if t.Row(i).Kind != RowImport && !t.IsDisabled(i) && t.Cost(i) > maxCost {
			maxCost = t.Cost(i)
		}
	}
	importCost := (maxCost + 1) * importCostFactor
	for i := 0; i < t.RowCount(); i++ {
		if t.Row(i).Kind == RowImport {
			t.SetCost(i, importCost)
		}
	}

	external := s.externalColumns(t)
	solution.Iterations, solution.Capped = s.run(t, external, logger)
	if solution.Capped {
		logger.Log(common.LevelWarn, "Simplex iteration cap reached, returning partial solution", map[string]interface{}{
			"subgraph":       s.group.ID(),
			"max_iterations": s.options.MaxIterations,
		})
	}

	s.extract(t, wanted, external, solution)
	return solution, nil
}

// externalColumns marks resource columns no enabled row produces.
// Their shadow price stays zero, so recipes may consume them freely.
func (s *LinearSolver) externalColumns(t *Tableau) []bool {
	external := make([]bool, len(t.columns))
	for j := range t.columns {
		external[j] = true
		for i := 0; i < t.RowCount(); i++ {
			if t.cell(i, j) > s.options.Epsilon {
				external[j] = false
				break
			}
		}
	}
	return external
}

// run pivots until no objective entry is negative or the cap is hit
func (s *LinearSolver) run(t *Tableau, external []bool, logger common.Logger) (int, bool) {
	eps := s.options.Epsilon
	blocked := make(map[int]bool)
	objective := len(t.rows)
	rhs := t.RHSColumn()

	for iterations := 0; ; iterations++ {
		if iterations >= s.options.MaxIterations {
			return iterations, true
		}

		col := -1
		best := -eps
		for j := 0; j < t.ObjectiveColumn(); j++ {
			if blocked[j] || (j < len(external) && external[j]) {
				continue
			}
			if v := t.cell(objective, j); v < best {
				best = v
				col = j
			}
		}
		if col < 0 {
			return iterations, false
		}

		row := -1
		bestRatio := math.Inf(1)
		for i := 0; i < t.RowCount(); i++ {
			coef := t.cell(i, col)
			if coef <= eps {
				continue
			}
			if ratio := t.cell(i, rhs) / coef; ratio < bestRatio {
				bestRatio = ratio
				row = i
			}
		}
		if row < 0 {
			logger.Log(common.LevelWarn, "Unbounded simplex column skipped", map[string]interface{}{
				"subgraph": s.group.ID(),
				"column":   col,
			})
			blocked[col] = true
			continue
		}

		t.pivot(row, col)
	}
}

func (s *LinearSolver) extract(t *Tableau, wanted map[production.ResourceKey]float64, external []bool, solution *Solution) {
	eps := s.options.Epsilon
	objective := len(t.rows)
	net := make([]float64, len(t.columns))

	for i := 0; i < t.RowCount(); i++ {
		x := math.Max(0, t.cell(objective, t.SlackColumn(i)))
		if x <= eps {
			continue
		}
		row := t.Row(i)
		switch row.Kind {
		case RowRecipe:
			solution.Rates[row.Recipe.ID()] += x
		case RowProvision:
			solution.ProvisionRates[row.Recipe.ID()] += x
			for _, key := range row.Provides {
				solution.Provisions = append(solution.Provisions, Provision{
					RecipeID: row.Recipe.ID(),
					Resource: key,
					Amount:   x * row.Recipe.NetAmount(key),
				})
			}
		case RowImport:
			if !s.group.Produces(row.Resource) {
				solution.Unmet[row.Resource] += x
			}
			continue
		}
		for j := range t.columns {
			net[j] += x * s.base.cell(i, j)
		}
	}

	for j, key := range t.columns {
		switch {
		case s.group.Produces(key):
			d := wanted[key]
			if net[j] < d-eps {
				solution.Unmet[key] += d - net[j]
			} else if net[j] > d+eps {
				solution.Waste[key] += net[j] - d
			}
		case external[j] && net[j] < -eps:
			solution.External[key] += -net[j]
		}
	}
}
