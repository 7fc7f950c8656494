package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Ripple banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"        _           _", "#22d3ee"},
		{"   _ __(_)_ __ _ __| | ___", "#38bdf8"},
		{"  | '__| | '_ \\ '_ \\ |/ _ \\", "#60a5fa"},
		{"  | |  | | |_) |_) | |  __/", "#818cf8"},
		{"  |_|  |_| .__/ .__/|_|\\___|", "#a78bfa"},
		{"         |_|  |_|", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a traversal status for terminal output.
func Status(s string) termenv.Style {
	p := termenv.ColorProfile()
	switch s {
	case "running":
		return termenv.String(s).Foreground(p.Color("#fbbf24")).Bold()
	case "idle":
		return termenv.String(s).Foreground(p.Color("#34d399"))
	default:
		return termenv.String(s)
	}
}
