package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/ripple/pkg/dsl"
)

// Report describes which fixture nodes a traversal from start would reach.
type Report struct {
	Start       string
	Reachable   []string
	Unreachable []string
	Warnings    []string
}

// Complete reports whether every declared node is reachable from start.
func (r *Report) Complete() bool {
	return len(r.Unreachable) == 0
}

// ValidateFixture checks fx and crawls it breadth-first from start, using
// the fixture's own start label when start is empty.
// Structural problems (dangling references, missing start) are returned as
// an error; disconnected nodes, self-loops and repeated edges are reported
// as warnings since the graph store accepts them.
func ValidateFixture(fx *dsl.Fixture, start string) (*Report, error) {
	if start == "" {
		start = fx.Start
	}

	var errors []string
	if err := fx.Validate(); err != nil {
		errors = append(errors, err.Error())
	}
	if start == "" {
		errors = append(errors, "No start node: set 'start' in the fixture or pass one explicitly")
	}

	labels := fx.Labels()
	adjacency := make(map[string][]string, len(labels))
	for _, l := range labels {
		adjacency[l] = nil
	}

	report := &Report{Start: start}
	seenEdge := make(map[[2]string]bool)
	for _, p := range fx.Pairs() {
		a, b := p[0], p[1]
		if a == b {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Self-loop on '%s' is ignored", a))
			continue
		}
		key := [2]string{a, b}
		if b < a {
			key = [2]string{b, a}
		}
		if seenEdge[key] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Edge '%s' - '%s' is declared more than once", key[0], key[1]))
			continue
		}
		seenEdge[key] = true
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
	}

	if start != "" {
		if _, ok := adjacency[start]; !ok {
			errors = append(errors, fmt.Sprintf("Start node '%s' is not declared", start))
		}
	}

	if len(errors) > 0 {
		return report, fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	// Crawler
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		report.Reachable = append(report.Reachable, current)

		for _, n := range adjacency[current] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	for _, l := range labels {
		if !visited[l] {
			report.Unreachable = append(report.Unreachable, l)
			report.Warnings = append(report.Warnings, fmt.Sprintf("Node '%s' is unreachable from '%s'", l, start))
		}
	}
	return report, nil
}
