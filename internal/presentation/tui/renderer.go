package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/ripple/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// style is a glamour standard style name ("dark", "light", "notty"), or
// "auto" to detect the terminal background.
func NewRenderer(style string, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// NodeLister supplies the node order used in frame tables.
type NodeLister interface {
	Nodes() []string
}

// FrameRenderer prints each frame as a markdown report.
type FrameRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	nodes    NodeLister
	markdown func(string) (string, error)
}

// NewFrameRenderer writes frames to out. When markdown is nil the raw
// markdown is written, which suits pipes and logs.
func NewFrameRenderer(out io.Writer, nodes NodeLister, markdown func(string) (string, error)) *FrameRenderer {
	return &FrameRenderer{out: out, nodes: nodes, markdown: markdown}
}

// Render implements ports.Renderer.
func (r *FrameRenderer) Render(f domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := FormatFrame(f, r.nodes.Nodes())
	if r.markdown != nil {
		if styled, err := r.markdown(text); err == nil {
			text = styled
		}
	}
	fmt.Fprint(r.out, text)
}

// FormatFrame builds the markdown report of a frame.
func FormatFrame(f domain.Frame, nodes []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### #%d %s\n\n", f.Seq, f.Kind)

	fields := []string{"**Status:** " + string(f.Status)}
	if f.Start != "" {
		fields = append(fields, "**Start:** "+f.Start)
	}
	if f.Current != "" {
		fields = append(fields, "**Current:** "+f.Current)
	}
	sb.WriteString(strings.Join(fields, " · "))
	sb.WriteString("\n\n")

	classes := f.NodeClasses(nodes)
	if len(classes) > 0 {
		sb.WriteString("| Node | Role |\n|---|---|\n")
		for _, id := range nodes {
			if c, ok := classes[id]; ok {
				fmt.Fprintf(&sb, "| %s | %s |\n", id, strings.Join(c, ", "))
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "- **Frontier:** %s\n", listOrDash(f.Frontier, " → "))
	fmt.Fprintf(&sb, "- **Visited:** %s\n", listOrDash(f.Visited, ", "))

	edges := make([]string, len(f.ActiveEdges))
	for i, e := range f.ActiveEdges {
		edges[i] = e.String()
	}
	fmt.Fprintf(&sb, "- **Active edges:** %s\n\n", listOrDash(edges, ", "))
	return sb.String()
}

func listOrDash(items []string, sep string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, sep)
}
