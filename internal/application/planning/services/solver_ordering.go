package services

import (
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// SolverLevel groups solvers with no dependencies on each other
type SolverLevel struct {
	Solvers []*LinearSolver
	Depth   int // 0 = no upstream complex groups, increases downstream
}

// SolverOrdering is the dispatch order of a decomposition's solvers
type SolverOrdering struct {
	ordered   []*LinearSolver
	levels    []SolverLevel
	byProduct map[production.ResourceKey]*LinearSolver
	upstream  map[*LinearSolver][]*LinearSolver
	adj       [][]int
}

// OrderSolvers sorts solvers so that every solver comes after the solvers
// producing its upstream ingredients.
//
// A solver depends on another when one of its ingredients is produced by the
// other's group, directly or through a chain of simple groups.
//
// Example:
//
//	plastic (depth 1)
//	└── via simple chain: gas
//	    └── cracking (depth 0)
//
// Result: [cracking, plastic]
func OrderSolvers(decomposition *Decomposition, solvers []*LinearSolver) *SolverOrdering {
	o := &SolverOrdering{
		byProduct: make(map[production.ResourceKey]*LinearSolver),
		upstream:  make(map[*LinearSolver][]*LinearSolver),
	}

	index := make(map[int]int, len(solvers))
	for i, s := range solvers {
		index[s.Group().ID()] = i
		for _, key := range s.Products() {
			o.byProduct[key] = s
		}
	}

	adj := make([][]int, len(solvers))
	for i, s := range solvers {
		for _, groupID := range upstreamComplexGroups(decomposition, s) {
			if j, ok := index[groupID]; ok && j != i {
				adj[i] = append(adj[i], j)
				o.upstream[s] = append(o.upstream[s], solvers[j])
			}
		}
	}

	o.adj = adj

	roots := make([]int, len(solvers))
	for i := range roots {
		roots[i] = i
	}
	finish := postOrder(adj, roots, make([]bool, len(solvers)))

	depth := make([]int, len(solvers))
	levelMap := make(map[int][]*LinearSolver)
	maxDepth := 0
	for _, i := range finish {
		for _, j := range adj[i] {
			if depth[j]+1 > depth[i] {
				depth[i] = depth[j] + 1
			}
		}
		o.ordered = append(o.ordered, solvers[i])
		levelMap[depth[i]] = append(levelMap[depth[i]], solvers[i])
		if depth[i] > maxDepth {
			maxDepth = depth[i]
		}
	}

	for d := 0; d <= maxDepth; d++ {
		if level, ok := levelMap[d]; ok {
			o.levels = append(o.levels, SolverLevel{Solvers: level, Depth: d})
		}
	}
	return o
}

// upstreamComplexGroups walks from a solver's ingredients through simple
// groups and returns the ids of the complex groups reached
func upstreamComplexGroups(decomposition *Decomposition, s *LinearSolver) []int {
	reached := make([]int, 0)
	seenGroup := make(map[int]bool)
	visited := make(map[production.ResourceKey]bool)
	queue := s.Group().IngredientKeys()

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true

		g, ok := decomposition.ProducerGroup(key)
		if !ok || g.ID() == s.Group().ID() {
			continue
		}
		if g.IsComplex() {
			if !seenGroup[g.ID()] {
				seenGroup[g.ID()] = true
				reached = append(reached, g.ID())
			}
			continue
		}
		queue = append(queue, g.IngredientKeys()...)
	}
	return reached
}

// Ordered returns solvers with producers before dependents
func (o *SolverOrdering) Ordered() []*LinearSolver {
	return append([]*LinearSolver(nil), o.ordered...)
}

// Levels returns solvers grouped by depth, upstream first
func (o *SolverOrdering) Levels() []SolverLevel {
	return append([]SolverLevel(nil), o.levels...)
}

// SolverFor returns the solver whose group produces a resource
func (o *SolverOrdering) SolverFor(key production.ResourceKey) (*LinearSolver, bool) {
	s, ok := o.byProduct[key]
	return s, ok
}

// Upstream returns the solvers a solver depends on
func (o *SolverOrdering) Upstream(s *LinearSolver) []*LinearSolver {
	return append([]*LinearSolver(nil), o.upstream[s]...)
}

// Acyclic reports whether the solver dependencies form a DAG. Cycles are
// merged by decomposition, so false means the dispatch order is only partial.
func (o *SolverOrdering) Acyclic() bool {
	return !HasCycle(o.adj)
}

// Len returns the number of solvers
func (o *SolverOrdering) Len() int {
	return len(o.ordered)
}
