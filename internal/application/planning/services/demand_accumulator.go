package services

import (
	"context"
	"math"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// AccumulateOptions controls which resources and recipes accumulation may use
type AccumulateOptions struct {
	// Ignore lists resources supplied from outside the plan
	Ignore map[production.ResourceKey]bool

	// Disabled lists recipe ids excluded by progression
	Disabled map[string]bool

	// ExtraIgnore is merged into Ignore; used when re-accumulating solver
	// provisions so already scheduled production is not counted twice
	ExtraIgnore map[production.ResourceKey]bool
}

func (o AccumulateOptions) ignores(key production.ResourceKey) bool {
	return o.Ignore[key] || o.ExtraIgnore[key]
}

// DemandAccumulator walks simple producer chains top-down, converting demand
// for a resource into recipe rates. Resources that need the linear solver,
// or that have no usable recipe, are recorded as unresolved.
type DemandAccumulator struct {
	catalog       *production.RecipeCatalog
	decomposition *Decomposition
}

// NewDemandAccumulator creates an accumulator over a catalog and its decomposition
func NewDemandAccumulator(catalog *production.RecipeCatalog, decomposition *Decomposition) *DemandAccumulator {
	return &DemandAccumulator{
		catalog:       catalog,
		decomposition: decomposition,
	}
}

// Accumulate computes the recipe rates needed to produce amount per minute of a resource
func (a *DemandAccumulator) Accumulate(
	ctx context.Context,
	resource production.ResourceKey,
	amount float64,
	opts AccumulateOptions,
) (*planning.Accumulator, error) {
	path := make(map[production.ResourceKey]bool)
	return a.accumulate(ctx, resource, amount, opts, path)
}

func (a *DemandAccumulator) accumulate(
	ctx context.Context,
	resource production.ResourceKey,
	amount float64,
	opts AccumulateOptions,
	path map[production.ResourceKey]bool,
) (*planning.Accumulator, error) {
	logger := common.LoggerFromContext(ctx)

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, &production.ErrInvalidAmount{Resource: resource, Amount: amount}
	}

	name := resource.ID
	if res, ok := a.catalog.Resource(resource); ok {
		name = res.Name()
	} else {
		logger.Log(common.LevelWarn, "Unknown resource demanded", map[string]interface{}{
			"resource": resource.String(),
			"amount":   amount,
		})
		acc := planning.NewAccumulator(planning.NewRequirement(resource, name, amount, planning.RequirementUnresolved))
		acc.AddUnresolved(resource, amount)
		return acc, nil
	}

	if amount == 0 {
		return planning.NewAccumulator(planning.NewRequirement(resource, name, 0, planning.RequirementRaw)), nil
	}

	if opts.ignores(resource) {
		return planning.NewAccumulator(planning.NewRequirement(resource, name, amount, planning.RequirementRaw)), nil
	}

	if path[resource] {
		logger.Log(common.LevelWarn, "Resource reached again along its own chain", map[string]interface{}{
			"resource": resource.String(),
			"amount":   amount,
		})
		return planning.NewAccumulator(planning.NewRequirement(resource, name, amount, planning.RequirementCycle)), nil
	}

	candidates := a.catalog.Producers(resource)
	if len(candidates) != 1 || a.isComplex(ctx, candidates[0]) || opts.Disabled[candidates[0].ID()] {
		acc := planning.NewAccumulator(planning.NewRequirement(resource, name, amount, planning.RequirementUnresolved))
		acc.AddUnresolved(resource, amount)
		return acc, nil
	}

	recipe := candidates[0]
	perCraft := recipe.OutputAmount(resource)
	if perCraft <= 0 {
		return nil, &production.ErrZeroOutput{RecipeID: recipe.ID(), Resource: resource}
	}
	craftRate := amount / perCraft

	node := planning.NewRequirement(resource, name, amount, planning.RequirementCraft)
	node.RecipeID = recipe.ID()
	acc := planning.NewAccumulator(node)
	acc.AddRecipeRate(recipe.ID(), craftRate)

	path[resource] = true
	defer delete(path, resource)

	for _, input := range recipe.Inputs() {
		child, err := a.accumulate(ctx, input.Resource, craftRate*input.Amount, opts, path)
		if err != nil {
			return nil, err
		}
		acc.Merge(child)
	}
	return acc, nil
}

// isComplex looks up the recipe's group; a recipe missing from the
// decomposition is logged and treated as simple
func (a *DemandAccumulator) isComplex(ctx context.Context, recipe *production.Recipe) bool {
	if a.decomposition == nil {
		return false
	}
	group, ok := a.decomposition.SubGraphOf(recipe.ID())
	if !ok {
		common.LoggerFromContext(ctx).Log(common.LevelWarn, "Recipe missing from decomposition", map[string]interface{}{
			"recipe": recipe.ID(),
		})
		return false
	}
	return group.IsComplex()
}
