package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

func targets(pairs ...interface{}) map[production.ResourceKey]float64 {
	return demandOf(pairs...)
}

func TestEngine_SimpleChainNeedsNoSolver(t *testing.T) {
	// Arrange
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(circuitCatalog(t))

	// Act
	result, err := engine.Solve(ctx, services.PlanRequest{
		Targets: targets("circuit", 10.0),
		Ignore:  keySet("iron", "copper"),
	})

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 5.0, result.RecipeRates["circuit"], tolerance)
	assert.InDelta(t, 15.0, result.RecipeRates["gear"], tolerance)
	assert.Empty(t, result.Unresolved)
	assert.Empty(t, result.Waste)
	assert.Equal(t, planning.RequirementRoot, result.Required.Method)
}

func TestEngine_MultiProducerIsSolved(t *testing.T) {
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(gearCatalog(t))

	result, err := engine.Solve(ctx, services.PlanRequest{
		Targets: targets("gear", 12.0),
		Ignore:  keySet("iron", "steel"),
	})

	require.NoError(t, err)
	assert.InDelta(t, 4.0, result.RecipeRates["B"], tolerance)
	assert.GreaterOrEqual(t, 2*result.RecipeRates["A"]+3*result.RecipeRates["B"], 12.0-tolerance)
	assert.Empty(t, result.Unresolved)
}

func TestEngine_ExternalInputsSurfaceAsUnresolved(t *testing.T) {
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(gearCatalog(t))

	result, err := engine.Solve(ctx, services.PlanRequest{Targets: targets("gear", 12.0)})

	require.NoError(t, err)
	assert.InDelta(t, 4.0, result.Unresolved[key("steel")], tolerance)
	assert.NotContains(t, result.Unresolved, key("gear"))
}

func TestEngine_AllProducersDisabled(t *testing.T) {
	// Arrange
	ctx, logger := testContext()
	engine := services.NewPlanningEngine(gearCatalog(t))

	// Act
	result, err := engine.Solve(ctx, services.PlanRequest{
		Targets:  targets("gear", 12.0),
		Disabled: map[string]bool{"A": true, "B": true},
	})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, result.RecipeRates)
	assert.InDelta(t, 12.0, result.Unresolved[key("gear")], tolerance)
	assert.True(t, logger.HasEntry(common.LevelWarn, "unresolved demand"))
}

func TestEngine_ProvisionedIngredientIsPlanned(t *testing.T) {
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(farmCatalog(t))

	result, err := engine.Solve(ctx, services.PlanRequest{Targets: targets("seed", 4.0)})

	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.RecipeRates["grow"], tolerance)
	assert.InDelta(t, 2.0, result.RecipeRates["pump"], tolerance)
	assert.Empty(t, result.Unresolved)
}

func TestEngine_UpstreamSolverRunsOnLaterPass(t *testing.T) {
	// Arrange
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(refineryCatalog(t))

	// Act
	result, err := engine.Solve(ctx, services.PlanRequest{
		Targets: targets("plastic", 4.0),
		Ignore:  keySet("oil"),
	})

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.RecipeRates["plastic"], tolerance)
	assert.InDelta(t, 1.0, result.RecipeRates["crack"], tolerance)
	assert.InDelta(t, 1.0, result.Waste[key("heavy")], tolerance)
	assert.Empty(t, result.Unresolved)
	assert.GreaterOrEqual(t, result.Required.CountByMethod()[planning.RequirementSolved], 2)
}

func TestEngine_UnknownTargetIsUnresolved(t *testing.T) {
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(circuitCatalog(t))

	result, err := engine.Solve(ctx, services.PlanRequest{Targets: targets("unobtainium", 7.0)})

	require.NoError(t, err)
	assert.Equal(t, 7.0, result.Unresolved[key("unobtainium")])
}

func TestEngine_RebuildsAfterCatalogChange(t *testing.T) {
	// Arrange
	ctx, _ := testContext()
	catalog := circuitCatalog(t)
	engine := services.NewPlanningEngine(catalog)
	before := engine.Decomposition(ctx)

	// Act
	err := catalog.Rebuild(helpers.NewCatalogBuilder().
		Recipe("A", map[string]float64{"gear": 2}, map[string]float64{"iron": 1}).
		Recipe("B", map[string]float64{"gear": 3}, map[string]float64{"steel": 1}).
		Snapshot())
	require.NoError(t, err)
	after := engine.Decomposition(ctx)

	// Assert
	assert.NotEqual(t, before.Version, after.Version)
	assert.Equal(t, catalog.Version(), after.Version)
	assert.True(t, after.IsComplex("A"))
	require.Len(t, engine.SolverLevels(ctx), 1)
}

func TestEngine_DecompositionIsCachedPerVersion(t *testing.T) {
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(refineryCatalog(t))

	first := engine.Decomposition(ctx)
	second := engine.Decomposition(ctx)

	assert.Same(t, first, second)
}

func TestEngine_ConcurrentSolvesAgree(t *testing.T) {
	// Arrange
	ctx, _ := testContext()
	engine := services.NewPlanningEngine(refineryCatalog(t))
	req := services.PlanRequest{Targets: targets("plastic", 4.0), Ignore: keySet("oil")}

	// Act
	const workers = 8
	results := make([]*planning.Accumulator, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := engine.Solve(ctx, req)
			if err == nil {
				results[i] = result
			}
		}(i)
	}
	wg.Wait()

	// Assert
	for _, result := range results {
		require.NotNil(t, result)
		assert.InDelta(t, 2.0, result.RecipeRates["plastic"], tolerance)
		assert.InDelta(t, 1.0, result.RecipeRates["crack"], tolerance)
	}
}

func TestEngine_IterationCapStillReturnsPlan(t *testing.T) {
	ctx, logger := testContext()
	catalog := helpers.NewCatalogBuilder().
		Recipe("r1", map[string]float64{"x": 1}, map[string]float64{"ore": 1}).
		Recipe("r2", map[string]float64{"x": 1, "y": 1}, map[string]float64{"ore": 1}).
		Build(t)
	options := services.DefaultSolverOptions()
	options.MaxIterations = 1
	engine := services.NewPlanningEngine(catalog, services.WithSolverOptions(options))

	result, err := engine.Solve(ctx, services.PlanRequest{Targets: targets("x", 5.0, "y", 5.0), Ignore: keySet("ore")})

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, logger.HasEntry(common.LevelWarn, "iteration cap"))
}
