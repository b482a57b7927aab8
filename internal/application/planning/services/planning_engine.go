package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/metrics"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// PlanRequest is the input of a solve
type PlanRequest struct {
	// Targets are desired output rates per minute
	Targets map[production.ResourceKey]float64

	// Ignore lists resources supplied from outside the plan
	Ignore map[production.ResourceKey]bool

	// Disabled lists recipe ids excluded by progression
	Disabled map[string]bool
}

// PlanningEngine orchestrates accumulation and linear solving for a catalog.
//
// The decomposition, solvers and their ordering are cached per catalog
// version and rebuilt under the engine lock before a solve proceeds.
type PlanningEngine struct {
	mu sync.Mutex

	catalog    *production.RecipeCatalog
	decomposer *GraphDecomposer
	options    SolverOptions

	built         bool
	version       uint64
	decomposition *Decomposition
	accumulator   *DemandAccumulator
	ordering      *SolverOrdering
}

// EngineOption customises a PlanningEngine
type EngineOption func(*PlanningEngine)

// WithSolverOptions overrides the linear solver options
func WithSolverOptions(options SolverOptions) EngineOption {
	return func(e *PlanningEngine) {
		e.options = options.withDefaults()
	}
}

// NewPlanningEngine creates an engine over a catalog
func NewPlanningEngine(catalog *production.RecipeCatalog, opts ...EngineOption) *PlanningEngine {
	e := &PlanningEngine{
		catalog:    catalog,
		decomposer: NewGraphDecomposer(),
		options:    DefaultSolverOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine plans over
func (e *PlanningEngine) Catalog() *production.RecipeCatalog {
	return e.catalog
}

// Decomposition returns the current decomposition, rebuilding it if stale
func (e *PlanningEngine) Decomposition(ctx context.Context) *Decomposition {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureBuilt(ctx)
	return e.decomposition
}

// SolverLevels returns the solvers grouped by dependency depth
func (e *PlanningEngine) SolverLevels(ctx context.Context) []SolverLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureBuilt(ctx)
	return e.ordering.Levels()
}

// SolverDependencies maps each complex SubGraph id to the ids of the complex
// SubGraphs it draws ingredients from, sorted
func (e *PlanningEngine) SolverDependencies(ctx context.Context) map[int][]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureBuilt(ctx)

	deps := make(map[int][]int, e.ordering.Len())
	for _, s := range e.ordering.Ordered() {
		ids := make([]int, 0)
		for _, u := range e.ordering.Upstream(s) {
			ids = append(ids, u.Group().ID())
		}
		sort.Ints(ids)
		deps[s.Group().ID()] = ids
	}
	return deps
}

// ensureBuilt rebuilds cached state when the catalog version changed.
// Must be called with the engine lock held.
func (e *PlanningEngine) ensureBuilt(ctx context.Context) {
	version := e.catalog.Version()
	if e.built && e.version == version {
		return
	}

	logger := common.LoggerFromContext(ctx)
	start := time.Now()

	decomposition := e.decomposer.Decompose(ctx, e.catalog)
	complexGroups := decomposition.ComplexSubGraphs()
	solvers := make([]*LinearSolver, 0, len(complexGroups))
	for _, g := range complexGroups {
		solvers = append(solvers, NewLinearSolver(g, e.catalog, e.options))
	}

	e.decomposition = decomposition
	e.accumulator = NewDemandAccumulator(e.catalog, decomposition)
	e.ordering = OrderSolvers(decomposition, solvers)
	e.version = decomposition.Version
	e.built = true

	if !e.ordering.Acyclic() {
		logger.Log(common.LevelWarn, "Solver dependencies contain a cycle; dispatch order is partial", map[string]interface{}{
			"catalog_version": e.version,
		})
	}

	metrics.RecordDecomposition(len(decomposition.SubGraphs), len(complexGroups), time.Since(start))
	logger.Log(common.LevelInfo, "Recipe graph decomposed", map[string]interface{}{
		"catalog_version":   e.version,
		"subgraphs":         len(decomposition.SubGraphs),
		"complex_subgraphs": len(complexGroups),
	})
}

// Solve computes the recipe rates meeting the requested targets.
// Demand that cannot be met is returned in the accumulator's Unresolved map.
func (e *PlanningEngine) Solve(ctx context.Context, req PlanRequest) (*planning.Accumulator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	result, err := e.solve(ctx, req)
	unresolved := 0
	if result != nil {
		unresolved = len(result.Unresolved)
	}
	metrics.RecordSolve(time.Since(start), len(req.Targets), unresolved, err)
	return result, err
}

func (e *PlanningEngine) solve(ctx context.Context, req PlanRequest) (*planning.Accumulator, error) {
	logger := common.LoggerFromContext(ctx)
	e.ensureBuilt(ctx)

	eps := e.options.Epsilon
	opts := AccumulateOptions{Ignore: req.Ignore, Disabled: req.Disabled}
	master := planning.NewAccumulator(planning.NewRootRequirement())

	for _, target := range production.SortedKeys(req.Targets) {
		amount := req.Targets[target]
		acc, err := e.accumulator.Accumulate(ctx, target, amount, opts)
		if err != nil {
			logger.Log(common.LevelWarn, "Target could not be accumulated", map[string]interface{}{
				"resource": target.String(),
				"amount":   amount,
				"error":    err.Error(),
			})
			master.AddUnresolved(target, amount)
			continue
		}
		master.Merge(acc)
	}

	residual := make(map[production.ResourceKey]float64)
	maxPasses := e.ordering.Len() + 1

	for pass := 0; pass < maxPasses; pass++ {
		pending := master.TakeUnresolved(eps)
		if len(pending) == 0 {
			break
		}

		demand := make(map[*LinearSolver]map[production.ResourceKey]float64)
		for key, amount := range pending {
			solver, ok := e.ordering.SolverFor(key)
			if !ok {
				residual[key] += amount
				continue
			}
			if demand[solver] == nil {
				demand[solver] = make(map[production.ResourceKey]float64)
			}
			demand[solver][key] += amount
		}
		if len(demand) == 0 {
			break
		}

		for _, solver := range e.ordering.Ordered() {
			d, ok := demand[solver]
			if !ok {
				continue
			}
			if err := e.dispatch(ctx, solver, d, req, master, residual); err != nil {
				return nil, err
			}
		}
	}

	for key, amount := range master.TakeUnresolved(eps) {
		residual[key] += amount
	}
	for key, amount := range residual {
		master.AddUnresolved(key, amount)
	}
	master.Prune(eps)

	if master.HasUnresolved(eps) {
		unresolved := make(map[string]interface{}, len(master.Unresolved))
		for key, amount := range master.Unresolved {
			unresolved[key.String()] = amount
		}
		logger.Log(common.LevelWarn, "Plan has unresolved demand", unresolved)
	}
	return master, nil
}

// dispatch runs one solver and folds its solution into the master accumulator.
// Provisioned ingredients and external inputs are re-accumulated so their own
// chains are planned; unmet demand goes to residual and is not dispatched again.
func (e *PlanningEngine) dispatch(
	ctx context.Context,
	solver *LinearSolver,
	demand map[production.ResourceKey]float64,
	req PlanRequest,
	master *planning.Accumulator,
	residual map[production.ResourceKey]float64,
) error {
	logger := common.LoggerFromContext(ctx)
	group := solver.Group()

	solution, err := solver.Solve(ctx, demand, req.Disabled)
	if err != nil {
		return fmt.Errorf("failed to solve subgraph %d: %w", group.ID(), err)
	}
	metrics.RecordSimplex(group.ID(), solution.Iterations, solution.Capped)

	node := planning.NewRootRequirement()
	node.Name = fmt.Sprintf("subgraph %d", group.ID())
	node.Method = planning.RequirementSolved
	for _, key := range production.SortedKeys(demand) {
		child := planning.NewRequirement(key, e.resourceName(key), demand[key], planning.RequirementSolved)
		node.AddChild(child)
	}
	solved := planning.NewAccumulator(node)

	for id, rate := range solution.Rates {
		solved.AddRecipeRate(id, rate)
	}
	for key, amount := range solution.Waste {
		solved.AddWaste(key, amount)
	}
	for key, amount := range solution.Unmet {
		residual[key] += amount
	}

	extraIgnore := make(map[production.ResourceKey]bool)
	for _, key := range group.ProductKeys() {
		extraIgnore[key] = true
	}
	opts := AccumulateOptions{Ignore: req.Ignore, Disabled: req.Disabled, ExtraIgnore: extraIgnore}

	upstream := make(map[production.ResourceKey]float64)
	for _, p := range solution.Provisions {
		upstream[p.Resource] += p.Amount
	}
	for key, amount := range solution.External {
		upstream[key] += amount
	}
	for _, key := range production.SortedKeys(upstream) {
		acc, err := e.accumulator.Accumulate(ctx, key, upstream[key], opts)
		if err != nil {
			logger.Log(common.LevelWarn, "Provisioned ingredient could not be accumulated", map[string]interface{}{
				"subgraph": group.ID(),
				"resource": key.String(),
				"error":    err.Error(),
			})
			residual[key] += upstream[key]
			continue
		}
		solved.Merge(acc)
	}

	logger.Log(common.LevelDebug, "SubGraph solved", map[string]interface{}{
		"subgraph":   group.ID(),
		"recipes":    len(solution.Rates),
		"iterations": solution.Iterations,
		"capped":     solution.Capped,
	})
	master.Merge(solved)
	return nil
}

func (e *PlanningEngine) resourceName(key production.ResourceKey) string {
	if r, ok := e.catalog.Resource(key); ok {
		return r.Name()
	}
	return key.ID
}
