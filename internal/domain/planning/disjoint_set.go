package planning

import "sort"

// DisjointSet is a union-find structure over recipe ids with path compression
// and union by rank. Ties in rank keep the lexicographically smaller root so
// results do not depend on insertion order.
type DisjointSet struct {
	parent map[string]string
	rank   map[string]int
}

// NewDisjointSet creates a set where every id starts in its own group
func NewDisjointSet(ids []string) *DisjointSet {
	ds := &DisjointSet{
		parent: make(map[string]string, len(ids)),
		rank:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		ds.Add(id)
	}
	return ds
}

// Add inserts an id as a singleton group; existing ids are left alone
func (ds *DisjointSet) Add(id string) {
	if _, ok := ds.parent[id]; ok {
		return
	}
	ds.parent[id] = id
	ds.rank[id] = 0
}

// Len returns the number of ids tracked
func (ds *DisjointSet) Len() int {
	return len(ds.parent)
}

// Find returns the representative of an id's group
func (ds *DisjointSet) Find(id string) (string, bool) {
	if _, ok := ds.parent[id]; !ok {
		return "", false
	}

	root := id
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for id != root {
		next := ds.parent[id]
		ds.parent[id] = root
		id = next
	}
	return root, true
}

// Union merges the groups of a and b. Returns true if they were separate.
func (ds *DisjointSet) Union(a, b string) bool {
	ra, okA := ds.Find(a)
	rb, okB := ds.Find(b)
	if !okA || !okB || ra == rb {
		return false
	}

	switch {
	case ds.rank[ra] > ds.rank[rb]:
		ds.parent[rb] = ra
	case ds.rank[ra] < ds.rank[rb]:
		ds.parent[ra] = rb
	default:
		if rb < ra {
			ra, rb = rb, ra
		}
		ds.parent[rb] = ra
		ds.rank[ra]++
	}
	return true
}

// Groups returns every group with members sorted, ordered by first member
func (ds *DisjointSet) Groups() [][]string {
	byRoot := make(map[string][]string)
	for id := range ds.parent {
		root, _ := ds.Find(id)
		byRoot[root] = append(byRoot[root], id)
	}

	groups := make([][]string, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
