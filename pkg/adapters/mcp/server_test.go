package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/testutils"
	"github.com/aretw0/ripple/pkg/adapters/memory"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *testutils.ManualClock) {
	t.Helper()
	clk := testutils.NewManualClock()
	n := 0
	mgr := session.NewManager(memory.NewBus(),
		session.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("s%d", n)
		}),
		session.WithWorkspaceOptions(
			ripple.WithClock(clk),
			ripple.WithTiming(2*time.Second, time.Second),
		),
	)
	t.Cleanup(func() { mgr.Close(context.Background()) })
	return NewServer(mgr), clk
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestServer_BuildAndTraverse(t *testing.T) {
	s, clk := newTestServer(t)
	ctx := context.Background()

	created, err := s.handleCreateSession(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "s1", created.SessionID)

	var ids []string
	for i := 0; i < 3; i++ {
		node, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, addNodeArgs{SessionID: "s1", X: float64(i * 10)})
		require.NoError(t, err)
		ids = append(ids, node.NodeID)
	}
	assert.Equal(t, []string{"Node 1", "Node 2", "Node 3"}, ids)

	edge, err := s.handleAddEdge(ctx, mcp.CallToolRequest{}, addEdgeArgs{SessionID: "s1", A: "Node 1", B: "Node 2"})
	require.NoError(t, err)
	assert.True(t, edge.Added)
	edge, err = s.handleAddEdge(ctx, mcp.CallToolRequest{}, addEdgeArgs{SessionID: "s1", A: "Node 2", B: "Node 1"})
	require.NoError(t, err)
	assert.False(t, edge.Added)

	frame, err := s.handleStartTraversal(ctx, mcp.CallToolRequest{}, startArgs{SessionID: "s1", Start: "Node 1"})
	require.NoError(t, err)
	assert.Equal(t, domain.FrameStart, frame.Kind)
	assert.Equal(t, []string{"Node 1"}, frame.Frontier)

	clk.Advance(3 * time.Second)
	frame, err = s.handleGetTraversal(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Node 1"}, frame.Visited)
	assert.Equal(t, []string{"Node 2"}, frame.Frontier)

	frame, err = s.handleResetTraversal(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.FrameReset, frame.Kind)
	assert.Empty(t, frame.Visited)
}

func TestServer_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, addNodeArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleAddEdge(ctx, mcp.CallToolRequest{}, addEdgeArgs{SessionID: "s1"})
	assert.ErrorContains(t, err, "invalid arguments")

	_, err = s.handleCreateSession(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)

	_, err = s.handleStartTraversal(ctx, mcp.CallToolRequest{}, startArgs{SessionID: "s1", Start: "Node 99"})
	assert.ErrorIs(t, err, domain.ErrInvalidStart)

	_, err = s.handleAddEdge(ctx, mcp.CallToolRequest{}, addEdgeArgs{SessionID: "s1", A: "Node 1", B: "Node 2"})
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestServer_StructuredToolResult(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, mcp.NewStructuredToolHandler(s.handleCreateSession), map[string]any{})
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"session_id":"s1"}`, text(t, res))

	res = call(t, mcp.NewStructuredToolHandler(s.handleAddNode), map[string]any{"session_id": "nope"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "nope")
}

func TestServer_LoadFixtureAndGraph(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleCreateSession(ctx, mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)

	loaded, err := s.handleLoadFixture(ctx, mcp.CallToolRequest{}, loadArgs{SessionID: "s1", Fixture: `
name: triangle
start: a
nodes:
  - id: a
    links: [b, c]
  - id: b
    links: [c]
  - id: c
`})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "Node 1", "b": "Node 2", "c": "Node 3"}, loaded.Nodes)

	_, err = s.handleLoadFixture(ctx, mcp.CallToolRequest{}, loadArgs{SessionID: "s1", Fixture: "nodes: [{id: a, links: [zz]}]"})
	assert.Error(t, err)

	res := call(t, s.handleGetGraph, map[string]any{"session_id": "s1"})
	assert.False(t, res.IsError)
	out := text(t, res)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "n0 --- n1")

	res = call(t, s.handleGetGraph, map[string]any{})
	assert.True(t, res.IsError)

	var req mcp.ReadResourceRequest
	req.Params.URI = "ripple://sessions/s1/graph"
	contents, err := s.readGraph(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)

	var view struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &view))
	assert.Len(t, view.Nodes, 3)
	assert.Len(t, view.Edges, 3)

	req.Params.URI = "ripple://sessions/zz/graph"
	_, err = s.readGraph(ctx, req)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
