package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/ripple/pkg/domain"
	store "github.com/aretw0/ripple/pkg/graph"
)

// Overlay styles, one per node display class.
var classDefs = []struct{ class, style string }{
	{domain.ClassVisited, "fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000"},
	{domain.ClassQueued, "fill:#f3e5f5,stroke:#6a1b9a,stroke-dasharray:4 2,color:#000"},
	{domain.ClassNext, "fill:#f3e5f5,stroke:#6a1b9a,stroke-width:3px,color:#000"},
	{domain.ClassCurrent, "fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000"},
	{domain.ClassStart, "stroke:#2e7d32,stroke-width:4px"},
}

const activeEdgeStyle = "stroke:#ff5722,stroke-width:3px"

// GenerateMermaid produces a Mermaid flowchart of an undirected graph.
// Mermaid node IDs are positional (n0, n1, ...) and the node ID is kept as
// the label, so distinct IDs never collapse into one Mermaid node.
// The start node of the overlay is drawn as a circle, every other node as a
// rectangle. When overlay is not nil, node display classes are applied and
// the edges used for discovery are highlighted.
func GenerateMermaid(view store.View, overlay *domain.Frame) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	start := ""
	if overlay != nil {
		start = overlay.Start
	}

	ref := make(map[string]string, len(view.Nodes))
	for i, node := range view.Nodes {
		ref[node.ID] = fmt.Sprintf("n%d", i)
	}

	for _, node := range view.Nodes {
		opener, closer := "[", "]"
		if node.ID == start {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", ref[node.ID], opener, escapeLabel(node.ID), closer)
	}

	for _, e := range view.Edges {
		fmt.Fprintf(&sb, "    %s --- %s\n", ref[e.A], ref[e.B])
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	for _, d := range classDefs {
		fmt.Fprintf(&sb, "    classDef %s %s;\n", d.class, d.style)
	}

	classes := overlay.NodeClasses(view.IDs())
	for _, node := range view.Nodes {
		for _, c := range classes[node.ID] {
			fmt.Fprintf(&sb, "    class %s %s;\n", ref[node.ID], c)
		}
	}

	for i, e := range view.Edges {
		if overlay.IsEdgeActive(e.A, e.B) {
			fmt.Fprintf(&sb, "    linkStyle %d %s;\n", i, activeEdgeStyle)
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
