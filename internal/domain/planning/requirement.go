package planning

import (
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// RequirementMethod indicates how a demanded resource is satisfied
type RequirementMethod string

const (
	// RequirementRaw means the resource is supplied from outside the plan (ignored or a leaf)
	RequirementRaw RequirementMethod = "RAW"

	// RequirementCraft means a single simple recipe produces the resource
	RequirementCraft RequirementMethod = "CRAFT"

	// RequirementUnresolved means the resource was forked to the linear solver or has no recipe
	RequirementUnresolved RequirementMethod = "UNRESOLVED"

	// RequirementSolved means a linear solver satisfied the resource
	RequirementSolved RequirementMethod = "SOLVED"

	// RequirementCycle means the resource was reached again along its own chain
	RequirementCycle RequirementMethod = "CYCLE"

	// RequirementRoot groups the requirement trees of several targets
	RequirementRoot RequirementMethod = "ROOT"
)

// Requirement is a node in the informational demand tree produced by accumulation.
// Each node carries the rate of its resource and the child requirements of its recipe.
type Requirement struct {
	Resource production.ResourceKey
	Name     string
	Amount   float64
	RecipeID string
	Method   RequirementMethod
	Children []*Requirement
}

// NewRequirement creates a requirement node without children
func NewRequirement(resource production.ResourceKey, name string, amount float64, method RequirementMethod) *Requirement {
	if name == "" {
		name = resource.ID
	}
	return &Requirement{
		Resource: resource,
		Name:     name,
		Amount:   amount,
		Method:   method,
		Children: make([]*Requirement, 0),
	}
}

// NewRootRequirement creates the node the per-target trees hang from
func NewRootRequirement() *Requirement {
	return &Requirement{Name: "plan", Method: RequirementRoot, Children: make([]*Requirement, 0)}
}

// AddChild adds a child requirement
func (n *Requirement) AddChild(child *Requirement) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
}

// IsLeaf returns true if the node has no inputs
func (n *Requirement) IsLeaf() bool {
	return len(n.Children) == 0
}

// TotalDepth returns the maximum depth of the tree from this node
func (n *Requirement) TotalDepth() int {
	if n.IsLeaf() {
		return 1
	}

	maxChildDepth := 0
	for _, child := range n.Children {
		if d := child.TotalDepth(); d > maxChildDepth {
			maxChildDepth = d
		}
	}
	return 1 + maxChildDepth
}

// CountNodes returns the total number of nodes in the tree
func (n *Requirement) CountNodes() int {
	count := 1
	for _, child := range n.Children {
		count += child.CountNodes()
	}
	return count
}

// FlattenToList returns every node in breadth-first order
func (n *Requirement) FlattenToList() []*Requirement {
	result := make([]*Requirement, 0)
	queue := []*Requirement{n}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)
		queue = append(queue, node.Children...)
	}
	return result
}

// RawResources returns the distinct resources supplied from outside the plan, sorted
func (n *Requirement) RawResources() []production.ResourceKey {
	seen := make(map[production.ResourceKey]bool)
	for _, node := range n.FlattenToList() {
		if node.Method == RequirementRaw {
			seen[node.Resource] = true
		}
	}
	return production.SortedKeys(seen)
}

// CountByMethod tallies nodes per method
func (n *Requirement) CountByMethod() map[RequirementMethod]int {
	counts := make(map[RequirementMethod]int)
	for _, node := range n.FlattenToList() {
		counts[node.Method]++
	}
	return counts
}
