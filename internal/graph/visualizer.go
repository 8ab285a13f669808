package graph

import (
	"fmt"
	"io"
	"strings"
)

// Visualizer renders a dependency graph.
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format
func (v *Visualizer) WriteDOT(w io.Writer) error {
	var b strings.Builder

	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	nodes := v.graph.Nodes()
	nodeIDs := make(map[any]string, len(nodes))
	for i, node := range nodes {
		nodeIDs[node.ID] = fmt.Sprintf("n%d", i)
		fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=%q, style=filled];\n",
			nodeIDs[node.ID], v.formatNodeLabel(node), v.nodeColor(node))
	}

	for _, node := range nodes {
		for _, dep := range node.Dependencies {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeIDs[node.ID], nodeIDs[dep])
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes the nodes grouped by depth, leaves first.
func (v *Visualizer) WriteText(w io.Writer) error {
	var b strings.Builder

	b.WriteString("Dependency Graph:\n")
	b.WriteString("=================\n\n")

	v.graph.CalculateDepths()

	groups := make(map[int][]*Node)
	maxDepth := 0
	for _, node := range v.graph.Nodes() {
		groups[node.Depth] = append(groups[node.Depth], node)
		maxDepth = max(maxDepth, node.Depth)
	}

	for depth := 0; depth <= maxDepth; depth++ {
		nodes, ok := groups[depth]
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "Level %d:\n", depth)
		b.WriteString("--------\n")
		for _, node := range nodes {
			v.writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	if nodes, ok := groups[-1]; ok {
		b.WriteString("Nodes in Cycles:\n")
		b.WriteString("----------------\n")
		for _, node := range nodes {
			v.writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	v.writeStatistics(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

// formatNodeLabel returns a quoted-string body; \n is the DOT line break.
func (v *Visualizer) formatNodeLabel(node *Node) string {
	label := strings.ReplaceAll(node.Label, `"`, `\"`)
	if node.Scope != "" {
		return fmt.Sprintf(`%s\n%s, %s`, label, node.Kind, node.Scope)
	}
	return fmt.Sprintf(`%s\n%s`, label, node.Kind)
}

func (v *Visualizer) nodeColor(node *Node) string {
	switch {
	case node.Kind == "missing":
		return "lightpink"
	case node.Kind == "just-in-time":
		return "lightyellow"
	case node.Scope == "Singleton":
		return "lightblue"
	default:
		return "white"
	}
}

func (v *Visualizer) writeNodeDetails(b *strings.Builder, node *Node, indent string) {
	fmt.Fprintf(b, "%s%s\n", indent, node.Label)
	fmt.Fprintf(b, "%s  Kind: %s\n", indent, node.Kind)

	if node.Scope != "" {
		fmt.Fprintf(b, "%s  Scope: %s\n", indent, node.Scope)
	}

	if len(node.Dependencies) > 0 {
		fmt.Fprintf(b, "%s  Dependencies: [%s]\n", indent, v.labels(node.Dependencies))
	}

	if len(node.Dependents) > 0 {
		fmt.Fprintf(b, "%s  Dependents: [%s]\n", indent, v.labels(node.Dependents))
	}
}

func (v *Visualizer) labels(ids []any) string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = v.graph.nodes[id].Label
	}
	return strings.Join(labels, ", ")
}

func (v *Visualizer) writeStatistics(b *strings.Builder) {
	edges := 0
	for _, node := range v.graph.nodes {
		edges += len(node.Dependencies)
	}

	b.WriteString("Statistics:\n")
	b.WriteString("-----------\n")
	fmt.Fprintf(b, "  Total nodes: %d\n", v.graph.Size())
	fmt.Fprintf(b, "  Total edges: %d\n", edges)
	fmt.Fprintf(b, "  Root nodes (no dependents): %d\n", len(v.graph.Roots()))
	fmt.Fprintf(b, "  Leaf nodes (no dependencies): %d\n", len(v.graph.Leaves()))

	if v.graph.DetectCycles() == nil {
		b.WriteString("  Cycles: None (graph is acyclic)\n")
	} else {
		b.WriteString("  Cycles: DETECTED (graph contains circular dependencies)\n")
	}
}
