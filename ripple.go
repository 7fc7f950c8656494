package ripple

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/internal/runtime"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/dsl"
	"github.com/aretw0/ripple/pkg/graph"
	"github.com/aretw0/ripple/pkg/ports"
)

// Workspace is the high-level entry point for the Ripple library.
// It owns one graph store and one traversal engine reading from it.
type Workspace struct {
	graph  *graph.Graph
	engine *runtime.Engine
	logger *slog.Logger
	Name   string
}

type settings struct {
	graphOpts   []graph.Option
	runtimeOpts []runtime.EngineOption
	hooks       []domain.LifecycleHooks
	renderers   []ports.Renderer
	logger      *slog.Logger
	name        string
}

// Option defines a functional option for configuring the Workspace.
type Option func(*settings)

// WithLifecycleHooks registers observability hooks. It may be given more
// than once; all hook sets are called.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, hooks)
	}
}

// WithRenderer adds a renderer. Every renderer receives every frame.
func WithRenderer(r ports.Renderer) Option {
	return func(s *settings) {
		s.renderers = append(s.renderers, r)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithTiming overrides the step period and the expansion sub-delay.
func WithTiming(period, subDelay time.Duration) Option {
	return func(s *settings) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithTiming(period, subDelay))
	}
}

// WithClock replaces the wall clock driving the animation.
func WithClock(c ports.Clock) Option {
	return func(s *settings) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithClock(c))
	}
}

// WithIDFunc sets the node ID allocator (default "Node n").
func WithIDFunc(fn graph.IDFunc) Option {
	return func(s *settings) {
		s.graphOpts = append(s.graphOpts, graph.WithIDFunc(fn))
	}
}

// WithName labels the workspace in logs.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// New creates an empty workspace.
func New(opts ...Option) (*Workspace, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime).
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.name != "" {
		s.logger = s.logger.With("workspace", s.name)
	}

	g := graph.New(s.graphOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(domain.MergeHooks(s.hooks...)),
		runtime.WithRenderer(runtime.MultiRenderer(s.renderers...)),
		runtime.WithLogger(s.logger),
	}
	runtimeOpts = append(runtimeOpts, s.runtimeOpts...)

	eng, err := runtime.NewEngine(g, runtimeOpts...)
	if err != nil {
		return nil, err
	}

	return &Workspace{graph: g, engine: eng, logger: s.logger, Name: s.name}, nil
}

// AddNode registers a new node and returns its ID.
func (w *Workspace) AddNode() string {
	return w.AddNodeAt(domain.Position{})
}

// AddNodeAt registers a new node placed at pos.
func (w *Workspace) AddNodeAt(pos domain.Position) string {
	id := w.graph.AddNodeAt(pos)
	w.logger.Debug("Node added", "node_id", id)
	return id
}

// AddEdge links a and b. It reports false for self-loops and existing edges.
func (w *Workspace) AddEdge(a, b string) (bool, error) {
	added, err := w.graph.AddEdge(a, b)
	if err != nil {
		return false, err
	}
	if added {
		w.logger.Debug("Edge added", "edge", domain.NewEdgeKey(a, b).String())
	}
	return added, nil
}

// Nodes lists node IDs in creation order, as offered by a start-node selector.
func (w *Workspace) Nodes() []string {
	return w.graph.Nodes()
}

// View returns a copy of the whole graph.
func (w *Workspace) View() graph.View {
	return w.graph.View()
}

// Graph exposes the underlying store for read access.
func (w *Workspace) Graph() *graph.Graph {
	return w.graph
}

// Start begins an animated traversal from start.
func (w *Workspace) Start(ctx context.Context, start string) error {
	return w.engine.Start(ctx, start)
}

// Reset stops any traversal and wipes its state.
func (w *Workspace) Reset(ctx context.Context) {
	w.engine.Reset(ctx)
}

// Clear resets the traversal, then removes every node and edge.
// Node numbering starts over.
func (w *Workspace) Clear(ctx context.Context) {
	w.engine.Reset(ctx)
	w.graph.Clear()
	w.logger.Info("Graph cleared")
}

// Load replaces the graph with the contents of fx and returns the IDs
// allocated for its labels. The fixture is validated before anything is
// cleared.
func (w *Workspace) Load(ctx context.Context, fx *dsl.Fixture) (map[string]string, error) {
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	w.Clear(ctx)
	ids, err := fx.Apply(w.graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	w.logger.Info("Fixture loaded", "fixture", fx.Name, "nodes", w.graph.Order(), "edges", w.graph.Size())
	return ids, nil
}

// Snapshot returns the latest rendered frame.
func (w *Workspace) Snapshot() domain.Frame {
	return w.engine.Snapshot()
}

// Status reports whether a traversal is running.
func (w *Workspace) Status() domain.Status {
	return w.engine.Status()
}

// Close stops pending timers without rendering.
func (w *Workspace) Close() {
	w.engine.Close()
}
