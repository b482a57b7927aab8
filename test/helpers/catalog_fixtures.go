package helpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// DefaultTestProducer is attached to every recipe built without an explicit producer
var DefaultTestProducer = production.ProducerKind{Name: "assembler", Icon: "assembler", Speed: 1, PowerKW: 100}

// CatalogBuilder assembles small recipe catalogs for tests.
// Resource references are plain ids (items) or "element:<id>".
type CatalogBuilder struct {
	resources map[production.ResourceKey]production.Resource
	recipes   []*production.Recipe
}

// NewCatalogBuilder creates an empty builder
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{resources: make(map[production.ResourceKey]production.Resource)}
}

// Key parses a test resource reference
func Key(ref string) production.ResourceKey {
	if kind, id, ok := strings.Cut(ref, ":"); ok {
		return production.ResourceKey{Kind: production.ResourceKind(kind), ID: id}
	}
	return production.ItemKey(ref)
}

// Resource registers resources without recipes
func (b *CatalogBuilder) Resource(refs ...string) *CatalogBuilder {
	for _, ref := range refs {
		key := Key(ref)
		if _, ok := b.resources[key]; !ok {
			b.resources[key] = production.NewResource(key.Kind, key.ID, "")
		}
	}
	return b
}

// Recipe adds a recipe with the default producer and a 60 second craft time
func (b *CatalogBuilder) Recipe(id string, outputs, inputs map[string]float64) *CatalogBuilder {
	return b.RecipeWithProducer(id, outputs, inputs, 60, DefaultTestProducer)
}

// RecipeWithProducer adds a recipe with explicit timing and producer
func (b *CatalogBuilder) RecipeWithProducer(id string, outputs, inputs map[string]float64, timeSeconds float64, producer production.ProducerKind) *CatalogBuilder {
	b.recipes = append(b.recipes, production.NewRecipe(
		id,
		b.amounts(outputs),
		b.amounts(inputs),
		timeSeconds,
		nil,
		[]production.ProducerKind{producer},
	))
	return b
}

func (b *CatalogBuilder) amounts(m map[string]float64) []production.ItemAmount {
	refs := make([]string, 0, len(m))
	for ref := range m {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	out := make([]production.ItemAmount, 0, len(refs))
	for _, ref := range refs {
		b.Resource(ref)
		out = append(out, production.ItemAmount{Resource: Key(ref), Amount: m[ref]})
	}
	return out
}

// Snapshot returns the assembled snapshot without validation
func (b *CatalogBuilder) Snapshot() production.Snapshot {
	resources := make([]production.Resource, 0, len(b.resources))
	for _, key := range production.SortedKeys(b.resources) {
		resources = append(resources, b.resources[key])
	}
	return production.Snapshot{Resources: resources, Recipes: append([]*production.Recipe(nil), b.recipes...)}
}

// Build creates the catalog and fails the test on validation errors
func (b *CatalogBuilder) Build(t testing.TB) *production.RecipeCatalog {
	t.Helper()
	catalog, err := production.NewRecipeCatalog(b.Snapshot())
	require.NoError(t, err)
	return catalog
}
