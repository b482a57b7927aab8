package planning

import (
	"sort"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// SubGraph is a group of recipes planned together.
//
// Products are the resources any member outputs; ingredients are the resources
// members consume that no member produces. Amounts are representative: the
// largest per-craft amount among the members.
type SubGraph struct {
	id            int
	recipes       []*production.Recipe
	recipeIDs     map[string]bool
	products      map[production.ResourceKey]float64
	ingredients   map[production.ResourceKey]float64
	selfConsuming bool
}

// NewSubGraph builds a group from a non-empty recipe set. Members are sorted by id.
func NewSubGraph(id int, recipes []*production.Recipe) *SubGraph {
	members := append([]*production.Recipe(nil), recipes...)
	sort.Slice(members, func(i, j int) bool { return members[i].ID() < members[j].ID() })

	g := &SubGraph{
		id:          id,
		recipes:     members,
		recipeIDs:   make(map[string]bool, len(members)),
		products:    make(map[production.ResourceKey]float64),
		ingredients: make(map[production.ResourceKey]float64),
	}

	for _, r := range members {
		g.recipeIDs[r.ID()] = true
		for _, key := range r.OutputKeys() {
			if amount := r.OutputAmount(key); amount > g.products[key] {
				g.products[key] = amount
			}
		}
	}

	for _, r := range members {
		for _, key := range r.InputKeys() {
			if _, own := g.products[key]; own {
				g.selfConsuming = true
				continue
			}
			if amount := r.InputAmount(key); amount > g.ingredients[key] {
				g.ingredients[key] = amount
			}
		}
	}
	return g
}

func (g *SubGraph) ID() int { return g.id }

// Recipes returns the member recipes sorted by id
func (g *SubGraph) Recipes() []*production.Recipe {
	return append([]*production.Recipe(nil), g.recipes...)
}

// RecipeIDs returns the member ids sorted
func (g *SubGraph) RecipeIDs() []string {
	ids := make([]string, 0, len(g.recipes))
	for _, r := range g.recipes {
		ids = append(ids, r.ID())
	}
	return ids
}

// Contains reports whether a recipe is a member
func (g *SubGraph) Contains(recipeID string) bool {
	return g.recipeIDs[recipeID]
}

// Products returns a copy of the product amounts
func (g *SubGraph) Products() map[production.ResourceKey]float64 {
	return copyAmounts(g.products)
}

// Ingredients returns a copy of the ingredient amounts
func (g *SubGraph) Ingredients() map[production.ResourceKey]float64 {
	return copyAmounts(g.ingredients)
}

// ProductKeys returns the products sorted
func (g *SubGraph) ProductKeys() []production.ResourceKey {
	return production.SortedKeys(g.products)
}

// IngredientKeys returns the ingredients sorted
func (g *SubGraph) IngredientKeys() []production.ResourceKey {
	return production.SortedKeys(g.ingredients)
}

// Produces reports whether any member outputs the resource
func (g *SubGraph) Produces(key production.ResourceKey) bool {
	_, ok := g.products[key]
	return ok
}

// IsComplex reports whether the group needs the linear solver: it has more
// than one recipe, more than one product, or a member consumes a group product.
func (g *SubGraph) IsComplex() bool {
	return len(g.recipes) > 1 || len(g.products) > 1 || g.selfConsuming
}

func copyAmounts(m map[production.ResourceKey]float64) map[production.ResourceKey]float64 {
	out := make(map[production.ResourceKey]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
