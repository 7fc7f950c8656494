package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/internal/presentation/graph"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/dsl"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const graphURIPrefix = "ripple://sessions/"

// SessionResponse identifies a session.
type SessionResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"The ID of the session"`
}

// NodeResponse identifies a node created by add_node.
type NodeResponse struct {
	NodeID string `json:"node_id" jsonschema_description:"The ID assigned to the new node"`
}

// EdgeResponse reports whether add_edge created a new edge.
type EdgeResponse struct {
	Added bool `json:"added" jsonschema_description:"False when the edge already existed"`
}

// LoadResponse maps fixture labels to the node IDs they were assigned.
type LoadResponse struct {
	Nodes map[string]string `json:"nodes" jsonschema_description:"Fixture label to node ID"`
}

type sessionArgs struct {
	SessionID string `json:"session_id" validate:"required"`
}

type addNodeArgs struct {
	SessionID string  `json:"session_id" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type addEdgeArgs struct {
	SessionID string `json:"session_id" validate:"required"`
	A         string `json:"a" validate:"required"`
	B         string `json:"b" validate:"required"`
}

type startArgs struct {
	SessionID string `json:"session_id" validate:"required"`
	Start     string `json:"start" validate:"required"`
}

type loadArgs struct {
	SessionID string `json:"session_id" validate:"required"`
	Fixture   string `json:"fixture" validate:"required"`
}

// Server exposes session workspaces as MCP tools.
type Server struct {
	sessions  *session.Manager
	logger    *slog.Logger
	validate  *validator.Validate
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance over mgr.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  mgr,
		logger:    logging.NewNop(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		mcpServer: server.NewMCPServer("ripple-mcp", strings.TrimSpace(ripple.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create an empty graph workspace and return its session ID."),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreateSession))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node to the session graph. IDs are assigned in creation order."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("x", mcp.Description("Horizontal position (optional)")),
		mcp.WithNumber("y", mcp.Description("Vertical position (optional)")),
		mcp.WithOutputSchema[NodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("add_edge",
		mcp.WithDescription("Connect two existing nodes with an undirected edge."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("a", mcp.Required(), mcp.Description("First endpoint node ID")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second endpoint node ID")),
		mcp.WithOutputSchema[EdgeResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddEdge))

	s.mcpServer.AddTool(mcp.NewTool("load_fixture",
		mcp.WithDescription("Replace the session graph with a YAML or JSON fixture document."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("fixture", mcp.Required(), mcp.Description("Fixture document")),
		mcp.WithOutputSchema[LoadResponse](),
	), mcp.NewStructuredToolHandler(s.handleLoadFixture))

	s.mcpServer.AddTool(mcp.NewTool("start_traversal",
		mcp.WithDescription("Start an animated breadth-first traversal, cancelling any run in progress."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start node ID")),
		mcp.WithOutputSchema[domain.Frame](),
	), mcp.NewStructuredToolHandler(s.handleStartTraversal))

	s.mcpServer.AddTool(mcp.NewTool("reset_traversal",
		mcp.WithDescription("Stop the traversal and clear its state. The graph is kept."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[domain.Frame](),
	), mcp.NewStructuredToolHandler(s.handleResetTraversal))

	s.mcpServer.AddTool(mcp.NewTool("get_traversal",
		mcp.WithDescription("Get the most recently rendered traversal frame."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[domain.Frame](),
	), mcp.NewStructuredToolHandler(s.handleGetTraversal))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the session graph as a Mermaid flowchart with the traversal overlay."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleGetGraph)
}

func (s *Server) handleCreateSession(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (SessionResponse, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{SessionID: sess.ID}, nil
}

func (s *Server) handleAddNode(_ context.Context, _ mcp.CallToolRequest, args addNodeArgs) (NodeResponse, error) {
	w, err := s.workspace(args.SessionID, args)
	if err != nil {
		return NodeResponse{}, err
	}
	return NodeResponse{NodeID: w.AddNodeAt(domain.Position{X: args.X, Y: args.Y})}, nil
}

func (s *Server) handleAddEdge(_ context.Context, _ mcp.CallToolRequest, args addEdgeArgs) (EdgeResponse, error) {
	w, err := s.workspace(args.SessionID, args)
	if err != nil {
		return EdgeResponse{}, err
	}
	added, err := w.AddEdge(args.A, args.B)
	if err != nil {
		return EdgeResponse{}, err
	}
	return EdgeResponse{Added: added}, nil
}

func (s *Server) handleLoadFixture(ctx context.Context, _ mcp.CallToolRequest, args loadArgs) (LoadResponse, error) {
	w, err := s.workspace(args.SessionID, args)
	if err != nil {
		return LoadResponse{}, err
	}
	fx, err := dsl.Parse([]byte(args.Fixture))
	if err != nil {
		return LoadResponse{}, err
	}
	ids, err := w.Load(ctx, fx)
	if err != nil {
		return LoadResponse{}, err
	}
	return LoadResponse{Nodes: ids}, nil
}

func (s *Server) handleStartTraversal(ctx context.Context, _ mcp.CallToolRequest, args startArgs) (domain.Frame, error) {
	w, err := s.workspace(args.SessionID, args)
	if err != nil {
		return domain.Frame{}, err
	}
	if err := w.Start(ctx, args.Start); err != nil {
		return domain.Frame{}, err
	}
	return w.Snapshot(), nil
}

func (s *Server) handleResetTraversal(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (domain.Frame, error) {
	w, err := s.workspace(args.SessionID, args)
	if err != nil {
		return domain.Frame{}, err
	}
	w.Reset(ctx)
	return w.Snapshot(), nil
}

func (s *Server) handleGetTraversal(_ context.Context, _ mcp.CallToolRequest, args sessionArgs) (domain.Frame, error) {
	w, err := s.workspace(args.SessionID, args)
	if err != nil {
		return domain.Frame{}, err
	}
	return w.Snapshot(), nil
}

func (s *Server) handleGetGraph(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	w, err := s.workspace(id, sessionArgs{SessionID: id})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	frame := w.Snapshot()
	return mcp.NewToolResultText(graph.GenerateMermaid(w.View(), &frame)), nil
}

// workspace validates args and resolves the session it names.
func (s *Server) workspace(id string, args any) (*ripple.Workspace, error) {
	if err := s.validate.Struct(args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.logger.Warn("MCP tool: session lookup failed", "session_id", id, "err", err)
		return nil, err
	}
	return sess.Workspace, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("ripple://sessions", "Open Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.sessions.List())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: "ripple://sessions", MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(graphURIPrefix+"{id}/graph", "Session Graph",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readGraph)
}

// readGraph serves ripple://sessions/{id}/graph as the graph view JSON.
func (s *Server) readGraph(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimSuffix(strings.TrimPrefix(uri, graphURIPrefix), "/graph")
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(sess.Workspace.View())
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
