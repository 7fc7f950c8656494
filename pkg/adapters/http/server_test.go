package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/testutils"
	api "github.com/aretw0/ripple/pkg/adapters/http"
	"github.com/aretw0/ripple/pkg/adapters/memory"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv   *httptest.Server
	clock *testutils.ManualClock
}

func newHarness(t *testing.T, opts ...api.Option) *harness {
	t.Helper()
	clk := testutils.NewManualClock()
	mgr := session.NewManager(memory.NewBus(), session.WithWorkspaceOptions(
		ripple.WithClock(clk),
		ripple.WithTiming(2*time.Second, time.Second),
	))
	srv := httptest.NewServer(api.NewHandler(mgr, opts...))
	t.Cleanup(srv.Close)
	return &harness{srv: srv, clock: clk}
}

func (h *harness) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (h *harness) session(t *testing.T) string {
	t.Helper()
	code, body := h.do(t, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func decodeFrame(t *testing.T, data []byte) domain.Frame {
	t.Helper()
	var f domain.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHealthAndInfo(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	code, body = h.do(t, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"app":"ripple-http"`)
}

func TestSessions(t *testing.T) {
	h := newHarness(t)
	id := h.session(t)

	code, body := h.do(t, http.MethodGet, "/sessions", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"sessions":["`+id+`"]}`, string(body))

	code, _ = h.do(t, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = h.do(t, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodGet, "/sessions/"+id+"/graph", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGraphEditing(t *testing.T) {
	h := newHarness(t)
	base := "/sessions/" + h.session(t)

	code, body := h.do(t, http.MethodPost, base+"/nodes", `{"x":10,"y":20}`)
	require.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"id":"Node 1","position":{"x":10,"y":20}}`, string(body))

	code, _ = h.do(t, http.MethodPost, base+"/nodes", "")
	require.Equal(t, http.StatusCreated, code)

	code, body = h.do(t, http.MethodPost, base+"/edges", `{"a":"Node 2","b":"Node 1"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"added":true,"edge":{"a":"Node 1","b":"Node 2"}}`, string(body))

	code, body = h.do(t, http.MethodPost, base+"/edges", `{"a":"Node 1","b":"Node 2"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"added":false`)

	code, _ = h.do(t, http.MethodPost, base+"/edges", `{"a":"Node 1","b":"Node 9"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodPost, base+"/edges", `{"a":"Node 1"}`)
	assert.Equal(t, http.StatusBadRequest, code, "b is required")

	code, _ = h.do(t, http.MethodPost, base+"/edges", `{"a":"Node 1","b":"Node 2","weight":3}`)
	assert.Equal(t, http.StatusBadRequest, code, "unknown fields are rejected")

	code, body = h.do(t, http.MethodGet, base+"/graph", "")
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Nodes []struct {
			ID        string   `json:"id"`
			Neighbors []string `json:"neighbors"`
		} `json:"nodes"`
		Edges []domain.EdgeKey `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	require.Len(t, view.Nodes, 2)
	assert.Equal(t, []string{"Node 2"}, view.Nodes[0].Neighbors)
	assert.Equal(t, []domain.EdgeKey{{A: "Node 1", B: "Node 2"}}, view.Edges)

	code, _ = h.do(t, http.MethodDelete, base+"/graph", "")
	assert.Equal(t, http.StatusNoContent, code)
	_, body = h.do(t, http.MethodGet, base+"/graph", "")
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(body))
}

func TestPutGraph(t *testing.T) {
	h := newHarness(t)
	base := "/sessions/" + h.session(t)

	fixture := "name: tri\nstart: a\nnodes:\n  - id: a\n    links: [b, c]\n  - id: b\n    links: [c]\n  - id: c\n"
	code, body := h.do(t, http.MethodPut, base+"/graph", fixture)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"ids":{"a":"Node 1","b":"Node 2","c":"Node 3"},"start":"Node 1"}`, string(body))

	code, _ = h.do(t, http.MethodPut, base+"/graph", "nodes:\n  - id: a\n    links: [zz]\n")
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = h.do(t, http.MethodGet, base+"/graph", "")
	assert.Contains(t, string(body), `"Node 3"`, "a rejected fixture keeps the graph")
}

func TestTraversal(t *testing.T) {
	h := newHarness(t)
	base := "/sessions/" + h.session(t)
	h.do(t, http.MethodPut, base+"/graph", `{"nodes":[{"id":"a","links":["b"]},{"id":"b"}]}`)

	code, _ := h.do(t, http.MethodPost, base+"/traversal", `{"start":"Node 99"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = h.do(t, http.MethodPost, base+"/traversal", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := h.do(t, http.MethodPost, base+"/traversal", `{"start":"Node 1"}`)
	require.Equal(t, http.StatusAccepted, code)
	f := decodeFrame(t, body)
	assert.Equal(t, domain.FrameStart, f.Kind)
	assert.Equal(t, []string{"Node 1"}, f.Frontier)

	h.clock.Advance(3 * time.Second)
	_, body = h.do(t, http.MethodGet, base+"/traversal", "")
	f = decodeFrame(t, body)
	assert.Equal(t, domain.FrameExpand, f.Kind)
	assert.Equal(t, []string{"Node 2"}, f.Frontier)

	_, body = h.do(t, http.MethodGet, base+"/mermaid", "")
	assert.Contains(t, string(body), "graph LR")
	assert.Contains(t, string(body), "class n0 visited;")
	assert.Contains(t, string(body), "linkStyle 0 ")

	code, body = h.do(t, http.MethodDelete, base+"/traversal", "")
	assert.Equal(t, http.StatusOK, code)
	f = decodeFrame(t, body)
	assert.Equal(t, domain.FrameReset, f.Kind)
	assert.Equal(t, domain.StatusIdle, f.Status)
}

type sseEvent struct {
	name string
	id   string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.data != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestSubscribeEvents(t *testing.T) {
	h := newHarness(t)
	id := h.session(t)
	base := "/sessions/" + id
	h.do(t, http.MethodPut, base+"/graph", `{"nodes":[{"id":"a","links":["b"]},{"id":"b"}]}`)
	h.do(t, http.MethodPost, base+"/traversal", `{"start":"Node 1"}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.srv.URL+base+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	snap := readEvent(t, reader)
	assert.Equal(t, "start", snap.name)
	assert.Equal(t, domain.FrameStart, decodeFrame(t, []byte(snap.data)).Kind)

	h.clock.Advance(2 * time.Second)
	visit := readEvent(t, reader)
	assert.Equal(t, "visit", visit.name)
	f := decodeFrame(t, []byte(visit.data))
	assert.Equal(t, []string{"Node 1"}, f.Visited)
	assert.Equal(t, "3", visit.id, "reset from the load, start, then visit")

	code, _ := h.do(t, http.MethodGet, "/sessions/ghost/events", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSubscribeWebSocket(t *testing.T) {
	h := newHarness(t)
	base := "/sessions/" + h.session(t)
	h.do(t, http.MethodPut, base+"/graph", `{"nodes":[{"id":"a","links":["b"]},{"id":"b"}]}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(h.srv.URL, "http")+base+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow() //nolint:errcheck

	read := func() domain.Frame {
		typ, data, err := conn.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, websocket.MessageText, typ)
		return decodeFrame(t, data)
	}

	assert.Equal(t, domain.FrameReset, read().Kind, "idle snapshot first")

	code, _ := h.do(t, http.MethodPost, base+"/traversal", `{"start":"Node 2"}`)
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, domain.FrameStart, read().Kind)

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, domain.FrameVisit, read().Kind)
	expand := read()
	assert.Equal(t, domain.FrameExpand, expand.Kind)
	assert.Equal(t, []string{"Node 1"}, expand.Frontier)
}

func TestSubscribeEvents_Heartbeat(t *testing.T) {
	h := newHarness(t, api.WithHeartbeat(20*time.Millisecond))
	base := "/sessions/" + h.session(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.srv.URL+base+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err, "stream ended before a keep-alive comment")
		if line == ": ping\n" {
			break
		}
	}
}

func TestSubscribeWebSocket_CrossOrigin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dial := func(t *testing.T, h *harness, origin string) (*websocket.Conn, *http.Response, error) {
		url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/sessions/" + h.session(t) + "/ws"
		return websocket.Dial(ctx, url, &websocket.DialOptions{
			HTTPHeader: http.Header{"Origin": {origin}},
		})
	}

	t.Run("any origin by default", func(t *testing.T) {
		conn, resp, err := dial(t, newHarness(t), "http://ui.example")
		require.NoError(t, err)
		defer conn.CloseNow() //nolint:errcheck
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.FrameReset, decodeFrame(t, data).Kind)
	})

	t.Run("restricted patterns", func(t *testing.T) {
		h := newHarness(t, api.WithOriginPatterns("ui.example"))

		conn, _, err := dial(t, h, "http://ui.example")
		require.NoError(t, err)
		conn.CloseNow() //nolint:errcheck

		_, resp, err := dial(t, h, "http://evil.example")
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.session(t)

	code, body := h.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, bytes.Contains(body, []byte("ripple_http_requests_total")))
	assert.True(t, bytes.Contains(body, []byte("ripple_sessions_active")))
}
