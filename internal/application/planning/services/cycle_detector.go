package services

import "sort"

// dfsFrame is an explicit stack entry: the node and the next edge to follow
type dfsFrame struct {
	node int
	next int
}

// postOrder runs an iterative depth-first search from each root in order and
// returns nodes in the order they finish. Nodes already visited are skipped.
func postOrder(adj [][]int, roots []int, visited []bool) []int {
	order := make([]int, 0, len(adj))
	for _, root := range roots {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack := []dfsFrame{{node: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(adj[top.node]) {
				child := adj[top.node][top.next]
				top.next++
				if !visited[child] {
					visited[child] = true
					stack = append(stack, dfsFrame{node: child})
				}
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// StronglyConnectedComponents returns the SCCs of a directed graph over nodes
// 0..len(adj)-1 using Kosaraju's algorithm with explicit stacks, so deep
// graphs cannot exhaust the goroutine stack. Each component is sorted and
// components are ordered by their smallest node.
func StronglyConnectedComponents(adj [][]int) [][]int {
	n := len(adj)
	roots := make([]int, n)
	for i := range roots {
		roots[i] = i
	}

	finish := postOrder(adj, roots, make([]bool, n))

	reverse := make([][]int, n)
	for from, edges := range adj {
		for _, to := range edges {
			reverse[to] = append(reverse[to], from)
		}
	}

	visited := make([]bool, n)
	components := make([][]int, 0)
	for i := len(finish) - 1; i >= 0; i-- {
		node := finish[i]
		if visited[node] {
			continue
		}
		component := postOrder(reverse, []int{node}, visited)
		sort.Ints(component)
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// HasCycle reports whether the graph contains a cycle, including self-loops
func HasCycle(adj [][]int) bool {
	for node, edges := range adj {
		for _, to := range edges {
			if to == node {
				return true
			}
		}
	}
	for _, component := range StronglyConnectedComponents(adj) {
		if len(component) > 1 {
			return true
		}
	}
	return false
}
