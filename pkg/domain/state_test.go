package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/ripple/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewEdgeKey_Canonical(t *testing.T) {
	assert.Equal(t, domain.NewEdgeKey("Node 1", "Node 2"), domain.NewEdgeKey("Node 2", "Node 1"))
	assert.Equal(t, "Node 1-Node 2", domain.NewEdgeKey("Node 2", "Node 1").String())
	assert.True(t, domain.NewEdgeKey("A", "B").Has("B"))
	assert.False(t, domain.NewEdgeKey("A", "B").Has("C"))
}

func TestFrame_Clone(t *testing.T) {
	f := domain.Frame{
		Frontier:    []string{"B"},
		Visited:     []string{"A"},
		ActiveEdges: []domain.EdgeKey{domain.NewEdgeKey("A", "B")},
	}
	c := f.Clone()
	c.Frontier[0] = "X"
	c.Visited = append(c.Visited, "Y")

	assert.Equal(t, []string{"B"}, f.Frontier)
	assert.Equal(t, []string{"A"}, f.Visited)
}

func TestFrame_NodeClasses(t *testing.T) {
	f := domain.Frame{
		Start:    "A",
		Current:  "B",
		Visited:  []string{"A", "B"},
		Frontier: []string{"C", "D"},
	}

	classes := f.NodeClasses([]string{"A", "B", "C", "D", "E"})

	assert.Equal(t, []string{domain.ClassStart, domain.ClassVisited}, classes["A"])
	assert.Equal(t, []string{domain.ClassCurrent, domain.ClassVisited}, classes["B"])
	assert.Equal(t, []string{domain.ClassQueued, domain.ClassNext}, classes["C"])
	assert.Equal(t, []string{domain.ClassQueued}, classes["D"])
	assert.NotContains(t, classes, "E")
}

func TestFrame_NodeClasses_FrontierHeadIsNotCurrent(t *testing.T) {
	f := domain.Frame{Start: "A", Current: "A", Visited: []string{"A"}, Frontier: []string{"B"}}

	classes := f.NodeClasses([]string{"A", "B"})

	assert.Equal(t, "next", domain.ClassNext)
	assert.Contains(t, classes["A"], domain.ClassCurrent)
	assert.NotContains(t, classes["B"], domain.ClassCurrent)
	assert.Contains(t, classes["B"], domain.ClassNext)
}

func TestFrame_IsEdgeActive(t *testing.T) {
	f := domain.Frame{ActiveEdges: []domain.EdgeKey{domain.NewEdgeKey("A", "B")}}
	assert.True(t, f.IsEdgeActive("B", "A"))
	assert.False(t, f.IsEdgeActive("A", "C"))
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnVisit: func(ctx context.Context, e *domain.TraversalEvent) { calls = append(calls, "a:"+e.NodeID) },
	}
	b := domain.LifecycleHooks{
		OnVisit:    func(ctx context.Context, e *domain.TraversalEvent) { calls = append(calls, "b:"+e.NodeID) },
		OnComplete: func(ctx context.Context, e *domain.TraversalEvent) { calls = append(calls, "b:done") },
	}

	merged := domain.MergeHooks(a, b)
	merged.OnVisit(context.Background(), &domain.TraversalEvent{NodeID: "X"})
	merged.OnComplete(context.Background(), &domain.TraversalEvent{})

	assert.Equal(t, []string{"a:X", "b:X", "b:done"}, calls)
	assert.Nil(t, merged.OnReset)
}
