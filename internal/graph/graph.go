package graph

import (
	"fmt"
	"slices"
	"strings"
)

// DependencyGraph holds the dependency relationships between bindings.
// Nodes are identified by any comparable value; labels are only used for
// output and ordering. A DependencyGraph is built once and then read, it is
// not safe for concurrent mutation.
type DependencyGraph struct {
	nodes map[any]*Node
	order []any
}

// Node represents one key in the dependency graph.
type Node struct {
	ID    any
	Label string
	Kind  string // binding kind, or "missing"
	Scope string

	Dependencies []any // IDs this node depends on, in declaration order
	Dependents   []any // IDs that depend on this node
	Depth        int   // longest path to a leaf, -1 when a cycle is reachable
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[any]*Node),
	}
}

// AddNode returns the node for id, creating it with label if needed.
func (g *DependencyGraph) AddNode(id any, label string) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}

	n := &Node{ID: id, Label: label}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddDependency records that from depends on to. Both nodes must exist.
func (g *DependencyGraph) AddDependency(from, to any) error {
	f, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("unknown node %v", from)
	}

	t, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("unknown node %v", to)
	}

	if slices.Contains(f.Dependencies, to) {
		return nil
	}

	f.Dependencies = append(f.Dependencies, to)
	t.Dependents = append(t.Dependents, from)
	return nil
}

// Node returns the node for id.
func (g *DependencyGraph) Node(id any) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node ordered by label.
func (g *DependencyGraph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}

	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.Label, b.Label)
	})
	return nodes
}

// Size returns the number of nodes.
func (g *DependencyGraph) Size() int {
	return len(g.nodes)
}

// DetectCycles returns a *CycleError for the first cycle found, walking
// nodes in label order so the result is deterministic.
func (g *DependencyGraph) DetectCycles() error {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[any]int, len(g.nodes))
	var stack []any

	var visit func(id any) []any
	visit = func(id any) []any {
		state[id] = visiting
		stack = append(stack, id)

		for _, dep := range g.nodes[id].Dependencies {
			switch state[dep] {
			case visiting:
				start := slices.Index(stack, dep)
				path := slices.Clone(stack[start:])
				return append(path, dep)
			case unvisited:
				if path := visit(dep); path != nil {
					return path
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = visited
		return nil
	}

	for _, n := range g.Nodes() {
		if state[n.ID] != unvisited {
			continue
		}
		if path := visit(n.ID); path != nil {
			return &CycleError{Path: path}
		}
	}

	return nil
}

// TopologicalSort returns the nodes with every dependency before its
// dependents.
func (g *DependencyGraph) TopologicalSort() ([]*Node, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	result := make([]*Node, 0, len(g.nodes))
	done := make(map[any]bool, len(g.nodes))

	var visit func(n *Node)
	visit = func(n *Node) {
		if done[n.ID] {
			return
		}
		done[n.ID] = true
		for _, dep := range n.Dependencies {
			visit(g.nodes[dep])
		}
		result = append(result, n)
	}

	for _, n := range g.Nodes() {
		visit(n)
	}

	return result, nil
}

// CalculateDepths sets the Depth of every node: leaves are 0, nodes that
// reach a cycle are -1.
func (g *DependencyGraph) CalculateDepths() {
	for _, n := range g.nodes {
		n.Depth = -2
	}

	var depth func(n *Node, path map[any]bool) int
	depth = func(n *Node, path map[any]bool) int {
		if n.Depth != -2 {
			return n.Depth
		}

		if path[n.ID] {
			return -1
		}
		path[n.ID] = true
		defer delete(path, n.ID)

		d := 0
		for _, id := range n.Dependencies {
			dd := depth(g.nodes[id], path)
			if dd < 0 {
				n.Depth = -1
				return -1
			}
			d = max(d, dd+1)
		}

		n.Depth = d
		return d
	}

	for _, n := range g.Nodes() {
		depth(n, make(map[any]bool))
	}
}

// Roots returns the nodes nothing depends on.
func (g *DependencyGraph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.Nodes() {
		if len(n.Dependents) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Leaves returns the nodes without dependencies.
func (g *DependencyGraph) Leaves() []*Node {
	var leaves []*Node
	for _, n := range g.Nodes() {
		if len(n.Dependencies) == 0 {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%d deps)", n.Label, len(n.Dependencies))
}
