package services_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

func newAccumulator(t *testing.T, catalog *production.RecipeCatalog) *services.DemandAccumulator {
	ctx, _ := testContext()
	return services.NewDemandAccumulator(catalog, services.NewGraphDecomposer().Decompose(ctx, catalog))
}

func TestAccumulate_SimpleChainMatchesManualExpansion(t *testing.T) {
	// Arrange
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	// Act
	result, err := acc.Accumulate(ctx, key("circuit"), 10, services.AccumulateOptions{Ignore: keySet("iron", "copper")})

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 5.0, result.RecipeRates["circuit"], tolerance)
	assert.InDelta(t, 15.0, result.RecipeRates["gear"], tolerance)
	assert.Empty(t, result.Unresolved)
	assert.Equal(t, planning.RequirementCraft, result.Required.Method)
	assert.Equal(t, []production.ResourceKey{key("copper"), key("iron")}, result.Required.RawResources())
}

func TestAccumulate_RawWithoutIgnoreIsUnresolved(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	result, err := acc.Accumulate(ctx, key("circuit"), 10, services.AccumulateOptions{})

	require.NoError(t, err)
	assert.InDelta(t, 30.0, result.Unresolved[key("iron")], tolerance)
	assert.InDelta(t, 5.0, result.Unresolved[key("copper")], tolerance)
}

func TestAccumulate_IgnoredTargetIsLeaf(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	result, err := acc.Accumulate(ctx, key("gear"), 4, services.AccumulateOptions{Ignore: keySet("gear")})

	require.NoError(t, err)
	assert.Empty(t, result.RecipeRates)
	assert.Equal(t, planning.RequirementRaw, result.Required.Method)
}

func TestAccumulate_ExtraIgnoreActsLikeIgnore(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	result, err := acc.Accumulate(ctx, key("circuit"), 2, services.AccumulateOptions{
		Ignore:      keySet("copper"),
		ExtraIgnore: keySet("gear"),
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"circuit": 1}, result.RecipeRates)
	assert.Empty(t, result.Unresolved)
}

func TestAccumulate_MultiProducerForksToSolver(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, gearCatalog(t))

	result, err := acc.Accumulate(ctx, key("gear"), 12, services.AccumulateOptions{})

	require.NoError(t, err)
	assert.Empty(t, result.RecipeRates)
	assert.Equal(t, 12.0, result.Unresolved[key("gear")])
	assert.Equal(t, planning.RequirementUnresolved, result.Required.Method)
}

func TestAccumulate_DisabledSingleProducerIsUnresolved(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	result, err := acc.Accumulate(ctx, key("circuit"), 4, services.AccumulateOptions{Disabled: map[string]bool{"circuit": true}})

	require.NoError(t, err)
	assert.Empty(t, result.RecipeRates)
	assert.Equal(t, 4.0, result.Unresolved[key("circuit")])
}

func TestAccumulate_ZeroAmountIsEmptyLeaf(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	result, err := acc.Accumulate(ctx, key("circuit"), 0, services.AccumulateOptions{})

	require.NoError(t, err)
	assert.Empty(t, result.RecipeRates)
	assert.Empty(t, result.Unresolved)
	assert.True(t, result.Required.IsLeaf())
}

func TestAccumulate_RejectsInvalidAmounts(t *testing.T) {
	ctx, _ := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := acc.Accumulate(ctx, key("circuit"), amount, services.AccumulateOptions{})
		var invalid *production.ErrInvalidAmount
		assert.ErrorAs(t, err, &invalid)
	}
}

func TestAccumulate_UnknownResourceWarnsAndSurfaces(t *testing.T) {
	ctx, logger := testContext()
	acc := newAccumulator(t, circuitCatalog(t))

	result, err := acc.Accumulate(ctx, key("unobtainium"), 3, services.AccumulateOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3.0, result.Unresolved[key("unobtainium")])
	assert.True(t, logger.HasEntry(common.LevelWarn, "Unknown resource"))
}

func TestAccumulate_PathGuardStopsCycles(t *testing.T) {
	// Arrange: without a decomposition the cycle looks like a simple chain
	ctx, logger := testContext()
	catalog := helpers.NewCatalogBuilder().
		Recipe("make_a", map[string]float64{"a": 1}, map[string]float64{"b": 1}).
		Recipe("make_b", map[string]float64{"b": 1}, map[string]float64{"a": 1}).
		Build(t)
	acc := services.NewDemandAccumulator(catalog, nil)

	// Act
	result, err := acc.Accumulate(ctx, key("a"), 1, services.AccumulateOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Required.CountByMethod()[planning.RequirementCycle])
	assert.True(t, logger.HasEntry(common.LevelWarn, "reached again"))
}
