package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Diamond(t *testing.T) {
	b := New("diamond")
	b.Node("a").At(120, 80).Link("b", "c").Start()
	b.Node("b").Link("d")
	b.Node("c").Link("d")
	b.Node("d")

	fx, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "diamond", fx.Name)
	assert.Equal(t, "a", fx.Start)
	assert.Equal(t, []string{"a", "b", "c", "d"}, fx.Labels())
	assert.Equal(t, 120.0, fx.Nodes[0].X)
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, fx.Pairs())
}

func TestBuilder_ForwardReferences(t *testing.T) {
	b := New("path")
	b.Node("x").Link("y").Node("y").Link("z").Node("z")
	b.Edge("z", "x")

	fx, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"x", "y"}, {"y", "z"}, {"z", "x"}}, fx.Pairs())
}

func TestBuilder_NodeIsIdempotent(t *testing.T) {
	b := New("")
	first := b.Node("a")
	again := b.Node("a")
	assert.Same(t, first, again)

	fx, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, fx.Nodes, 1)
}

func TestBuilder_UnknownReference(t *testing.T) {
	b := New("broken")
	b.Node("a").Link("ghost")

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrUnknownRef)

	b2 := New("broken-start")
	b2.Node("a")
	b2.StartAt("nowhere")
	_, err = b2.Build()
	assert.ErrorIs(t, err, ErrUnknownRef)
}

func TestBuilder_BuildReturnsCopy(t *testing.T) {
	b := New("copy")
	b.Node("a").Link("b")
	b.Node("b")

	fx, err := b.Build()
	require.NoError(t, err)
	fx.Nodes[0].Links[0] = "mutated"

	again, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, again.Nodes[0].Links)
}
