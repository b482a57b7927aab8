package queries

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// ListSubGraphsQuery describes the current decomposition of the catalog
type ListSubGraphsQuery struct {
	ComplexOnly bool
}

// SubGraphDTO describes one group of recipes
type SubGraphDTO struct {
	ID          int
	RecipeIDs   []string
	Products    []string
	Ingredients []string
	Complex     bool
	Depth       int   // solver depth, -1 for groups without a solver
	DependsOn   []int // complex groups feeding this one, empty for simple groups
}

// ListSubGraphsResponse represents the result of the query
type ListSubGraphsResponse struct {
	CatalogVersion uint64
	SubGraphs      []SubGraphDTO
	MergeGroups    [][]string
}

// ListSubGraphsHandler handles the ListSubGraphs query
type ListSubGraphsHandler struct {
	engine *services.PlanningEngine
}

// NewListSubGraphsHandler creates a new ListSubGraphsHandler
func NewListSubGraphsHandler(engine *services.PlanningEngine) *ListSubGraphsHandler {
	return &ListSubGraphsHandler{engine: engine}
}

// Handle executes the ListSubGraphs query
func (h *ListSubGraphsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListSubGraphsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSubGraphsQuery")
	}

	decomposition := h.engine.Decomposition(ctx)
	depth := make(map[int]int)
	for _, level := range h.engine.SolverLevels(ctx) {
		for _, solver := range level.Solvers {
			depth[solver.Group().ID()] = level.Depth
		}
	}

	dependencies := h.engine.SolverDependencies(ctx)

	response := &ListSubGraphsResponse{
		CatalogVersion: decomposition.Version,
		SubGraphs:      make([]SubGraphDTO, 0, len(decomposition.SubGraphs)),
		MergeGroups:    make([][]string, 0, len(decomposition.MergeGroups)),
	}
	for _, g := range decomposition.SubGraphs {
		if query.ComplexOnly && !g.IsComplex() {
			continue
		}
		d, solved := depth[g.ID()]
		if !solved {
			d = -1
		}
		dependsOn := append(make([]int, 0), dependencies[g.ID()]...)
		response.SubGraphs = append(response.SubGraphs, SubGraphDTO{
			ID:          g.ID(),
			RecipeIDs:   g.RecipeIDs(),
			Products:    keyStrings(g.ProductKeys()),
			Ingredients: keyStrings(g.IngredientKeys()),
			Complex:     g.IsComplex(),
			Depth:       d,
			DependsOn:   dependsOn,
		})
	}
	for _, group := range decomposition.MergeGroups {
		ids := make([]string, len(group))
		for i, r := range group {
			ids[i] = r.ID()
		}
		response.MergeGroups = append(response.MergeGroups, ids)
	}
	return response, nil
}

func keyStrings(keys []production.ResourceKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
