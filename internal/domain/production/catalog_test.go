package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

func TestRecipe_NetAmountWithSelfLoop(t *testing.T) {
	// Arrange
	seed := production.ItemKey("seed")
	recipe := production.NewRecipe("grow",
		[]production.ItemAmount{{Resource: seed, Amount: 3}},
		[]production.ItemAmount{{Resource: seed, Amount: 1}},
		30, nil, nil)

	// Act & Assert
	assert.Equal(t, 3.0, recipe.OutputAmount(seed))
	assert.Equal(t, 1.0, recipe.InputAmount(seed))
	assert.Equal(t, 2.0, recipe.NetAmount(seed))
	assert.True(t, recipe.Produces(seed))
	assert.True(t, recipe.Consumes(seed))
	assert.Equal(t, []production.ResourceKey{seed}, recipe.TouchedKeys())
}

func TestRecipe_AccessorsReturnCopies(t *testing.T) {
	// Arrange
	outputs := []production.ItemAmount{{Resource: production.ItemKey("gear"), Amount: 1}}
	recipe := production.NewRecipe("gear", outputs, nil, 1, []string{"t1"}, nil)

	// Act
	outputs[0].Amount = 99
	got := recipe.Outputs()
	got[0].Amount = 42

	// Assert
	assert.Equal(t, 1.0, recipe.OutputAmount(production.ItemKey("gear")))
	assert.True(t, recipe.HasTag("t1"))
}

func TestResource_EqualityIgnoresName(t *testing.T) {
	a := production.NewResource(production.ResourceKindItem, "iron", "Iron Ore")
	b := production.NewResource(production.ResourceKindItem, "iron", "iron")
	c := production.NewResource(production.ResourceKindElement, "iron", "Molten Iron")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "item:iron", a.Key().String())
}

func TestParseResourceKind(t *testing.T) {
	kind, err := production.ParseResourceKind("")
	require.NoError(t, err)
	assert.Equal(t, production.ResourceKindItem, kind)

	kind, err = production.ParseResourceKind("Element")
	require.NoError(t, err)
	assert.Equal(t, production.ResourceKindElement, kind)

	_, err = production.ParseResourceKind("plasma")
	assert.Error(t, err)
}

func TestRecipeCatalog_IndexesProducersAndConsumers(t *testing.T) {
	// Arrange
	catalog := helpers.NewCatalogBuilder().
		Recipe("gear", map[string]float64{"gear": 1}, map[string]float64{"iron": 2}).
		Recipe("gear_alt", map[string]float64{"gear": 2}, map[string]float64{"steel": 1}).
		Recipe("plate", map[string]float64{"plate": 1}, map[string]float64{"iron": 1}).
		Build(t)

	// Act
	producers := catalog.Producers(production.ItemKey("gear"))
	consumers := catalog.Consumers(production.ItemKey("iron"))

	// Assert
	require.Len(t, producers, 2)
	assert.Equal(t, "gear", producers[0].ID())
	assert.Equal(t, "gear_alt", producers[1].ID())
	require.Len(t, consumers, 2)
	assert.Empty(t, catalog.Producers(production.ItemKey("iron")))
	assert.Len(t, catalog.Recipes(), 3)
	assert.Len(t, catalog.Resources(), 4)
}

func TestRecipeCatalog_RejectsZeroOutput(t *testing.T) {
	// Arrange
	snapshot := helpers.NewCatalogBuilder().
		Recipe("broken", map[string]float64{"gear": 0}, nil).
		Snapshot()

	// Act
	_, err := production.NewRecipeCatalog(snapshot)

	// Assert
	require.Error(t, err)
	var invalid *production.ErrInvalidCatalog
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "non-positive output")
}

func TestRecipeCatalog_RejectsUnknownResourceAndDuplicates(t *testing.T) {
	// Arrange
	gear := production.ItemKey("gear")
	snapshot := production.Snapshot{
		Resources: []production.Resource{production.NewResource(gear.Kind, gear.ID, "Gear")},
		Recipes: []*production.Recipe{
			production.NewRecipe("gear", []production.ItemAmount{{Resource: gear, Amount: 1}},
				[]production.ItemAmount{{Resource: production.ItemKey("ghost"), Amount: 1}}, 1, nil, nil),
			production.NewRecipe("gear", []production.ItemAmount{{Resource: gear, Amount: 1}}, nil, 1, nil, nil),
		},
	}

	// Act
	err := production.ValidateSnapshot(snapshot)

	// Assert
	var invalid *production.ErrInvalidCatalog
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Problems, 2)
}

func TestRecipeCatalog_RebuildBumpsVersion(t *testing.T) {
	// Arrange
	builder := helpers.NewCatalogBuilder().Recipe("gear", map[string]float64{"gear": 1}, map[string]float64{"iron": 1})
	catalog := builder.Build(t)
	before := catalog.Version()

	// Act
	err := catalog.Rebuild(builder.Recipe("plate", map[string]float64{"plate": 1}, nil).Snapshot())

	// Assert
	require.NoError(t, err)
	assert.Greater(t, catalog.Version(), before)
	_, ok := catalog.Recipe("plate")
	assert.True(t, ok)
}

func TestRecipeCatalog_FailedRebuildKeepsContents(t *testing.T) {
	catalog := helpers.NewCatalogBuilder().Recipe("gear", map[string]float64{"gear": 1}, nil).Build(t)
	before := catalog.Version()

	err := catalog.Rebuild(helpers.NewCatalogBuilder().Recipe("bad", map[string]float64{"x": -1}, nil).Snapshot())

	require.Error(t, err)
	assert.Equal(t, before, catalog.Version())
	_, ok := catalog.Recipe("gear")
	assert.True(t, ok)
}

func TestRecipeCatalog_ResolveResource(t *testing.T) {
	catalog := helpers.NewCatalogBuilder().
		Recipe("electrolysis", map[string]float64{"element:hydrogen": 2}, map[string]float64{"element:water": 1}).
		Recipe("gear", map[string]float64{"gear": 1}, nil).
		Build(t)

	key, err := catalog.ResolveResource("hydrogen")
	require.NoError(t, err)
	assert.Equal(t, production.ElementKey("hydrogen"), key)

	key, err = catalog.ResolveResource("item:gear")
	require.NoError(t, err)
	assert.Equal(t, production.ItemKey("gear"), key)

	_, err = catalog.ResolveResource("unobtainium")
	var unknown *production.ErrUnknownResource
	assert.ErrorAs(t, err, &unknown)
}

func TestRecipeCatalog_ApplyTierScalesSpeed(t *testing.T) {
	catalog := helpers.NewCatalogBuilder().Recipe("gear", map[string]float64{"gear": 1}, nil).Build(t)
	before := catalog.Version()

	catalog.ApplyTier(production.TierParams{SpeedMultipliers: map[string]float64{"assembler": 2}})

	assert.Equal(t, 2.0, catalog.EffectiveSpeed(helpers.DefaultTestProducer))
	assert.Greater(t, catalog.Version(), before)

	applied := catalog.Version()
	catalog.ApplyTier(production.TierParams{SpeedMultipliers: map[string]float64{"assembler": 2}})
	assert.Equal(t, applied, catalog.Version())
	assert.Equal(t, 2.0, catalog.Tier().SpeedMultipliers["assembler"])
}

func TestRecipeCatalog_TagIndexes(t *testing.T) {
	smelter := production.ProducerKind{Name: "smelter", Speed: 1, PowerKW: 200}
	iron := production.ItemKey("iron")
	ore := production.ItemKey("ore")
	catalog, err := production.NewRecipeCatalog(production.Snapshot{
		Resources: []production.Resource{
			production.NewResource(iron.Kind, iron.ID, ""),
			production.NewResource(ore.Kind, ore.ID, ""),
		},
		Recipes: []*production.Recipe{
			production.NewRecipe("smelt", []production.ItemAmount{{Resource: iron, Amount: 1}},
				[]production.ItemAmount{{Resource: ore, Amount: 1}}, 2, []string{"smelting"},
				[]production.ProducerKind{smelter}),
		},
	})
	require.NoError(t, err)

	assert.Len(t, catalog.RecipesByTag("smelting"), 1)
	assert.Equal(t, []production.ProducerKind{smelter}, catalog.ProducersByTag("smelting"))
	assert.Empty(t, catalog.RecipesByTag("assembly"))
}

func TestParseResourceKey(t *testing.T) {
	key, err := production.ParseResourceKey("element:water")
	require.NoError(t, err)
	assert.Equal(t, production.ElementKey("water"), key)

	key, err = production.ParseResourceKey("gear")
	require.NoError(t, err)
	assert.Equal(t, production.ItemKey("gear"), key)

	_, err = production.ParseResourceKey("plasma:x")
	assert.Error(t, err)
	_, err = production.ParseResourceKey("item:")
	assert.Error(t, err)
}

func TestTierParams_Speed(t *testing.T) {
	producer := production.ProducerKind{Name: "assembler", Speed: 1.5}

	assert.Equal(t, 1.5, production.TierParams{}.Speed(producer))
	assert.Equal(t, 3.0, production.TierParams{SpeedMultipliers: map[string]float64{"assembler": 2}}.Speed(producer))
	assert.Equal(t, 1.5, production.TierParams{SpeedMultipliers: map[string]float64{"assembler": 0}}.Speed(producer))
	assert.Equal(t, 1.5, production.TierParams{SpeedMultipliers: map[string]float64{"smelter": 2}}.Speed(producer))
}
