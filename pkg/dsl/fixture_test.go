package dsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diamondYAML = `
name: diamond
start: a
nodes:
  - id: a
    x: 120
    y: 80
    links: [b, c]
  - id: b
    links: [d]
  - id: c
  - id: d
edges:
  - [c, d]
`

func TestParse_YAML(t *testing.T) {
	fx, err := Parse([]byte(diamondYAML))
	require.NoError(t, err)

	assert.Equal(t, "diamond", fx.Name)
	assert.Equal(t, "a", fx.Start)
	assert.Equal(t, []string{"a", "b", "c", "d"}, fx.Labels())
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, fx.Pairs())
}

func TestParse_JSON(t *testing.T) {
	doc := `{
		"name": "pair",
		"nodes": [{"id": "p", "x": 1, "y": 2}, {"id": "q"}],
		"edges": [["p", "q"]]
	}`
	fx, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"p", "q"}}, fx.Pairs())
	assert.Equal(t, 2.0, fx.Nodes[0].Y)
}

func TestParse_Rejects(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown field", "nodes:\n  - id: a\n    colour: red\n", ErrInvalidFixture},
		{"missing id", "nodes:\n  - x: 3\n", ErrInvalidFixture},
		{"duplicate label", "nodes:\n  - id: a\n  - id: a\n", ErrInvalidFixture},
		{"short edge", "nodes:\n  - id: a\nedges:\n  - [a]\n", ErrInvalidFixture},
		{"dangling link", "nodes:\n  - id: a\n    links: [b]\n", ErrUnknownRef},
		{"dangling edge", "nodes:\n  - id: a\nedges:\n  - [a, z]\n", ErrUnknownRef},
		{"dangling start", "start: z\nnodes:\n  - id: a\n", ErrUnknownRef},
		{"bad json", `{"nodes": [`, ErrInvalidFixture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestApply_AllocatesFreshIDs(t *testing.T) {
	fx, err := Parse([]byte(diamondYAML))
	require.NoError(t, err)

	g := graph.New()
	g.AddNode() // "Node 1" already taken

	ids, err := fx.Apply(g)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"a": "Node 2", "b": "Node 3", "c": "Node 4", "d": "Node 5",
	}, ids)

	pos, err := g.Position(ids["a"])
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 120, Y: 80}, pos)

	n, err := g.Neighbors(ids["a"])
	require.NoError(t, err)
	assert.Equal(t, []string{"Node 3", "Node 4"}, n)
	assert.Equal(t, 4, g.Size())
}

func TestApply_InvalidWritesNothing(t *testing.T) {
	fx := &Fixture{Nodes: []NodeSpec{{ID: "a", Links: []string{"ghost"}}}}
	g := graph.New()

	_, err := fx.Apply(g)
	require.ErrorIs(t, err, ErrUnknownRef)
	assert.Zero(t, g.Order())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diamond.yaml")
	require.NoError(t, os.WriteFile(path, []byte(diamondYAML), 0o644))

	fx, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "diamond", fx.Name)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFromView_RoundTrip(t *testing.T) {
	g := graph.New(graph.WithIDFunc(graph.SymbolIDFunc))
	a := g.AddNodeAt(domain.Position{X: 5, Y: 6})
	b := g.AddNode()
	c := g.AddNode()
	_, _ = g.AddEdge(c, a)
	_, _ = g.AddEdge(a, b)

	fx := FromView("export", g.View())
	assert.Equal(t, []string{"C", "B"}, fx.Nodes[0].Links)
	assert.Empty(t, fx.Nodes[2].Links)

	data, err := fx.YAML()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)

	g2 := graph.New(graph.WithIDFunc(graph.SymbolIDFunc))
	_, err = back.Apply(g2)
	require.NoError(t, err)

	assert.Equal(t, g.View().Nodes, g2.View().Nodes)
}

func TestApply_DuplicateDeclarationsAreOneEdge(t *testing.T) {
	fx, err := New("dup").
		Edge("b", "a").
		Build()
	require.Error(t, err, "edges need declared nodes")
	assert.Nil(t, fx)

	b := New("dup")
	b.Node("a").Link("b", "a")
	b.Node("b").Link("a")
	b.Edge("a", "b")
	fx, err = b.Build()
	require.NoError(t, err)

	g := graph.New()
	_, err = fx.Apply(g)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Size(), "duplicates and self-loops are skipped")
}
