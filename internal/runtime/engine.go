package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/ports"
)

// Engine is the animated breadth-first traversal runner.
//
// A run is driven by two timers: a recurring step timer that dequeues the
// front of the frontier, and a one-shot sub-delay inside each step that
// expands the dequeued node's neighbors. Every run has a generation number;
// callbacks scheduled by an older generation are ignored, so Reset and Start
// can never be overtaken by a stale timer.
type Engine struct {
	graph    ports.GraphReader
	clock    ports.Clock
	renderer ports.Renderer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	period   time.Duration
	subDelay time.Duration

	mu         sync.Mutex
	status     domain.Status
	generation uint64
	seq        uint64
	runCtx     context.Context

	start    string
	current  string
	frontier []string
	queued   map[string]bool
	visited  []string
	seen     map[string]bool
	active   []domain.EdgeKey

	stepTimer ports.Timer
	pending   *expansion
	last      domain.Frame
}

// expansion is the second phase of a step, waiting for its sub-delay.
type expansion struct {
	node  string
	timer ports.Timer
}

// NewEngine creates an idle engine reading from g.
// It returns domain.ErrInvalidTiming if the sub-delay is not positive or
// not strictly shorter than the step period.
func NewEngine(g ports.GraphReader, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		graph:    g,
		clock:    SystemClock(),
		renderer: nopRenderer{},
		logger:   logging.NewNop(),
		period:   DefaultStepPeriod,
		subDelay: DefaultSubDelay,
		status:   domain.StatusIdle,
		runCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.subDelay <= 0 || e.subDelay >= e.period {
		return nil, fmt.Errorf("%w (period=%s, sub-delay=%s)", domain.ErrInvalidTiming, e.period, e.subDelay)
	}
	e.clearLocked()
	e.last = e.frameLocked(domain.FrameReset)
	return e, nil
}

// Start begins a new run from start, cancelling any run in flight.
// It returns domain.ErrInvalidStart, leaving all state untouched, when start
// is not a registered node.
func (e *Engine) Start(ctx context.Context, start string) error {
	if start == "" || !e.graph.HasNode(start) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStart, start)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.clearLocked()

	e.runCtx = context.WithoutCancel(ctx)
	e.status = domain.StatusRunning
	e.start = start
	e.frontier = append(e.frontier, start)
	e.queued[start] = true

	e.logger.Info("Traversal started", "start", start, "generation", e.generation)
	e.emitLocked(domain.FrameStart)
	e.fire(e.hooks.OnStart, domain.EventStart, "", "")

	e.scheduleStepLocked(e.generation)
	return nil
}

// Reset cancels any pending step or expansion and wipes the traversal state.
// It is safe to call at any time, including when already idle.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasRunning := e.status == domain.StatusRunning
	e.cancelLocked()
	e.clearLocked()
	e.runCtx = context.WithoutCancel(ctx)

	if wasRunning {
		e.logger.Info("Traversal reset", "generation", e.generation)
	}
	e.emitLocked(domain.FrameReset)
	e.fire(e.hooks.OnReset, domain.EventReset, "", "")
}

// Close cancels pending timers without rendering. The engine stays usable.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.status = domain.StatusIdle
}

// Status reports whether a run is in progress.
func (e *Engine) Status() domain.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Snapshot returns a copy of the most recently rendered frame.
func (e *Engine) Snapshot() domain.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.Clone()
}

// step is the step timer callback.
func (e *Engine) step(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || e.status != domain.StatusRunning {
		return
	}
	e.stepTimer = nil

	// The expansion always lands before the next step; if the timers raced,
	// finish it now.
	if e.pending != nil {
		e.pending.timer.Stop()
		e.expandLocked(e.pending.node)
	}

	if len(e.frontier) == 0 {
		e.status = domain.StatusIdle
		e.current = ""
		e.logger.Info("Traversal complete", "start", e.start, "visited", len(e.visited), "generation", gen)
		e.emitLocked(domain.FrameComplete)
		e.fire(e.hooks.OnComplete, domain.EventComplete, "", "")
		return
	}

	e.scheduleStepLocked(gen)

	current := e.frontier[0]
	e.frontier = e.frontier[1:]
	delete(e.queued, current)
	e.seen[current] = true
	e.visited = append(e.visited, current)
	e.current = current

	e.logger.Debug("Node visited", "node_id", current, "frontier", len(e.frontier))
	e.emitLocked(domain.FrameVisit)
	e.fire(e.hooks.OnVisit, domain.EventVisit, current, "")

	p := &expansion{node: current}
	p.timer = e.clock.AfterFunc(e.subDelay, func() { e.expand(gen, p) })
	e.pending = p
}

// expand is the sub-delay callback.
func (e *Engine) expand(gen uint64, p *expansion) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || e.pending != p {
		return
	}
	e.expandLocked(p.node)
}

// expandLocked enqueues every neighbor of current that is neither visited
// nor already queued, in the store's insertion order.
func (e *Engine) expandLocked(current string) {
	e.pending = nil

	neighbors, err := e.graph.Neighbors(current)
	if err != nil {
		// The graph may have been cleared under a running traversal.
		e.logger.Warn("Neighbor lookup failed", "node_id", current, "err", err)
		neighbors = nil
	}

	for _, n := range neighbors {
		if e.seen[n] || e.queued[n] {
			continue
		}
		e.frontier = append(e.frontier, n)
		e.queued[n] = true
		e.active = append(e.active, domain.NewEdgeKey(current, n))
		e.fire(e.hooks.OnEnqueue, domain.EventEnqueue, n, current)
	}

	e.emitLocked(domain.FrameExpand)
}

func (e *Engine) scheduleStepLocked(gen uint64) {
	e.stepTimer = e.clock.AfterFunc(e.period, func() { e.step(gen) })
}

// cancelLocked stops both timers and invalidates their callbacks.
func (e *Engine) cancelLocked() {
	e.generation++
	if e.stepTimer != nil {
		e.stepTimer.Stop()
		e.stepTimer = nil
	}
	if e.pending != nil {
		e.pending.timer.Stop()
		e.pending = nil
	}
}

func (e *Engine) clearLocked() {
	e.status = domain.StatusIdle
	e.start = ""
	e.current = ""
	e.frontier = []string{}
	e.queued = make(map[string]bool)
	e.visited = []string{}
	e.seen = make(map[string]bool)
	e.active = []domain.EdgeKey{}
}

func (e *Engine) frameLocked(kind domain.FrameKind) domain.Frame {
	f := domain.Frame{
		Seq:         e.seq,
		Generation:  e.generation,
		Kind:        kind,
		Status:      e.status,
		Start:       e.start,
		Current:     e.current,
		Frontier:    e.frontier,
		Visited:     e.visited,
		ActiveEdges: e.active,
	}
	return f.Clone()
}

func (e *Engine) emitLocked(kind domain.FrameKind) {
	e.seq++
	f := e.frameLocked(kind)
	e.last = f
	e.renderer.Render(f.Clone())
}

func (e *Engine) fire(hook func(context.Context, *domain.TraversalEvent), typ domain.EventType, node, from string) {
	if hook == nil {
		return
	}
	hook(e.runCtx, &domain.TraversalEvent{
		Timestamp:  e.clock.Now(),
		Type:       typ,
		Generation: e.generation,
		Start:      e.start,
		NodeID:     node,
		From:       from,
		Visited:    len(e.visited),
	})
}
