package services

import (
	"context"
	"sort"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// Decomposition is the partition of a catalog's recipes into SubGraphs.
// It is immutable and valid for the catalog version it was built from.
type Decomposition struct {
	Version     uint64
	SubGraphs   []*planning.SubGraph
	MergeGroups [][]*production.Recipe

	byRecipe  map[string]*planning.SubGraph
	byProduct map[production.ResourceKey]*planning.SubGraph
}

func newDecomposition(version uint64, groups []*planning.SubGraph, mergeGroups [][]*production.Recipe) *Decomposition {
	d := &Decomposition{
		Version:     version,
		SubGraphs:   groups,
		MergeGroups: mergeGroups,
		byRecipe:    make(map[string]*planning.SubGraph),
		byProduct:   make(map[production.ResourceKey]*planning.SubGraph),
	}
	for _, g := range groups {
		for _, id := range g.RecipeIDs() {
			d.byRecipe[id] = g
		}
		for _, key := range g.ProductKeys() {
			d.byProduct[key] = g
		}
	}
	return d
}

// SubGraphOf returns the group a recipe belongs to
func (d *Decomposition) SubGraphOf(recipeID string) (*planning.SubGraph, bool) {
	g, ok := d.byRecipe[recipeID]
	return g, ok
}

// ProducerGroup returns the group producing a resource. All producers of a
// resource share one group.
func (d *Decomposition) ProducerGroup(key production.ResourceKey) (*planning.SubGraph, bool) {
	g, ok := d.byProduct[key]
	return g, ok
}

// IsComplex reports whether a recipe belongs to a complex group
func (d *Decomposition) IsComplex(recipeID string) bool {
	g, ok := d.byRecipe[recipeID]
	return ok && g.IsComplex()
}

// ComplexSubGraphs returns the groups that need the linear solver
func (d *Decomposition) ComplexSubGraphs() []*planning.SubGraph {
	out := make([]*planning.SubGraph, 0)
	for _, g := range d.SubGraphs {
		if g.IsComplex() {
			out = append(out, g)
		}
	}
	return out
}

// GraphDecomposer partitions recipes into SubGraphs: producers of a shared
// resource are merged, cycles are merged, and complex groups that draw on a
// neighbouring complex group through more than one route are merged with it.
type GraphDecomposer struct{}

// NewGraphDecomposer creates a new graph decomposer
func NewGraphDecomposer() *GraphDecomposer {
	return &GraphDecomposer{}
}

// Decompose partitions a catalog
func (d *GraphDecomposer) Decompose(ctx context.Context, catalog *production.RecipeCatalog) *Decomposition {
	version := catalog.Version()
	groups, mergeGroups := d.partition(ctx, catalog.Resources(), catalog.Recipes())
	return newDecomposition(version, groups, mergeGroups)
}

// FindSubGraphs returns the recipes of every complex group together with the
// groups formed by merging producers of shared resources.
func (d *GraphDecomposer) FindSubGraphs(
	ctx context.Context,
	resources []production.Resource,
	recipes []*production.Recipe,
) (complexGroups [][]*production.Recipe, mergeGroups [][]*production.Recipe) {
	groups, mergeGroups := d.partition(ctx, resources, recipes)
	complexGroups = make([][]*production.Recipe, 0)
	for _, g := range groups {
		if g.IsComplex() {
			complexGroups = append(complexGroups, g.Recipes())
		}
	}
	return complexGroups, mergeGroups
}

func (d *GraphDecomposer) partition(
	ctx context.Context,
	resources []production.Resource,
	recipes []*production.Recipe,
) ([]*planning.SubGraph, [][]*production.Recipe) {
	logger := common.LoggerFromContext(ctx)

	byID := make(map[string]*production.Recipe, len(recipes))
	ids := make([]string, 0, len(recipes))
	producers := make(map[production.ResourceKey][]string)
	for _, r := range recipes {
		byID[r.ID()] = r
		ids = append(ids, r.ID())
		for _, key := range r.OutputKeys() {
			producers[key] = append(producers[key], r.ID())
		}
	}
	sort.Strings(ids)

	sets := planning.NewDisjointSet(ids)

	keys := make([]production.ResourceKey, 0, len(resources))
	for _, res := range resources {
		keys = append(keys, res.Key())
	}
	production.SortKeys(keys)
	for _, key := range keys {
		ids := producers[key]
		for i := 1; i < len(ids); i++ {
			sets.Union(ids[0], ids[i])
		}
	}

	mergeGroups := make([][]*production.Recipe, 0)
	for _, members := range sets.Groups() {
		if len(members) > 1 {
			mergeGroups = append(mergeGroups, recipesFor(members, byID))
		}
	}

	for {
		groups := buildSubGraphs(sets, byID)
		changed := mergeCycles(groups, sets, logger)
		if !changed {
			changed = mergeCrossLinks(groups, sets, logger)
		}
		if !changed {
			return groups, mergeGroups
		}
	}
}

func recipesFor(ids []string, byID map[string]*production.Recipe) []*production.Recipe {
	out := make([]*production.Recipe, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}

func buildSubGraphs(sets *planning.DisjointSet, byID map[string]*production.Recipe) []*planning.SubGraph {
	members := sets.Groups()
	groups := make([]*planning.SubGraph, 0, len(members))
	for i, ids := range members {
		groups = append(groups, planning.NewSubGraph(i, recipesFor(ids, byID)))
	}
	return groups
}

// groupGraph indexes SubGraphs by product and builds the consumer -> producer edges
type groupGraph struct {
	groups  []*planning.SubGraph
	owner   map[production.ResourceKey]int
	adj     [][]int
	anchors []string
}

func newGroupGraph(groups []*planning.SubGraph) *groupGraph {
	g := &groupGraph{
		groups:  groups,
		owner:   make(map[production.ResourceKey]int),
		adj:     make([][]int, len(groups)),
		anchors: make([]string, len(groups)),
	}
	for i, sg := range groups {
		g.anchors[i] = sg.RecipeIDs()[0]
		for _, key := range sg.ProductKeys() {
			g.owner[key] = i
		}
	}
	for i, sg := range groups {
		seen := make(map[int]bool)
		for _, key := range sg.IngredientKeys() {
			j, ok := g.owner[key]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			g.adj[i] = append(g.adj[i], j)
		}
	}
	return g
}

func mergeCycles(groups []*planning.SubGraph, sets *planning.DisjointSet, logger common.Logger) bool {
	graph := newGroupGraph(groups)
	changed := false
	for _, component := range StronglyConnectedComponents(graph.adj) {
		if len(component) < 2 {
			continue
		}
		for _, member := range component[1:] {
			if sets.Union(graph.anchors[component[0]], graph.anchors[member]) {
				changed = true
			}
		}
		logger.Log(common.LevelDebug, "Merged cyclic SubGraphs", map[string]interface{}{
			"subgraphs": len(component),
			"anchor":    graph.anchors[component[0]],
		})
	}
	return changed
}

// boundaryPair identifies one route from a complex group into a neighbour:
// the ingredient the walk started from and the resource the neighbour supplies
type boundaryPair struct {
	ingredient production.ResourceKey
	boundary   production.ResourceKey
}

func mergeCrossLinks(groups []*planning.SubGraph, sets *planning.DisjointSet, logger common.Logger) bool {
	graph := newGroupGraph(groups)
	changed := false

	for i, sg := range groups {
		if !sg.IsComplex() {
			continue
		}
		routes := make(map[int]map[boundaryPair]bool)
		for _, ingredient := range sg.IngredientKeys() {
			for neighbour, boundaries := range graph.nearestComplex(ingredient, i) {
				if routes[neighbour] == nil {
					routes[neighbour] = make(map[boundaryPair]bool)
				}
				for _, b := range boundaries {
					routes[neighbour][boundaryPair{ingredient: ingredient, boundary: b}] = true
				}
			}
		}

		neighbours := make([]int, 0, len(routes))
		for n := range routes {
			neighbours = append(neighbours, n)
		}
		sort.Ints(neighbours)
		for _, n := range neighbours {
			if len(routes[n]) < 2 {
				continue
			}
			if sets.Union(graph.anchors[i], graph.anchors[n]) {
				logger.Log(common.LevelDebug, "Merged cross-linked SubGraphs", map[string]interface{}{
					"subgraph": sg.ID(),
					"neighbor": groups[n].ID(),
					"routes":   len(routes[n]),
				})
				changed = true
			}
		}
	}
	return changed
}

// nearestComplex walks upstream from a resource through simple groups and
// returns, per complex group reached, the resources it supplies to the walk
func (g *groupGraph) nearestComplex(start production.ResourceKey, origin int) map[int][]production.ResourceKey {
	reached := make(map[int][]production.ResourceKey)
	visited := make(map[production.ResourceKey]bool)
	queue := []production.ResourceKey{start}

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true

		j, ok := g.owner[key]
		if !ok || j == origin {
			continue
		}
		if g.groups[j].IsComplex() {
			reached[j] = append(reached[j], key)
			continue
		}
		queue = append(queue, g.groups[j].IngredientKeys()...)
	}
	return reached
}
