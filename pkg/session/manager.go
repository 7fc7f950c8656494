package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/internal/metrics"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/ports"
	"github.com/google/uuid"
)

// Session is one workspace and its identity.
type Session struct {
	ID        string
	CreatedAt time.Time
	Workspace *ripple.Workspace
}

// Manager creates, finds and closes sessions.
type Manager struct {
	bus ports.FrameBus

	mu       sync.RWMutex
	sessions map[string]*Session

	wsOpts         []ripple.Option
	remote         bool
	publishTimeout time.Duration
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithWorkspaceOptions applies opts to every workspace the manager creates.
func WithWorkspaceOptions(opts ...ripple.Option) Option {
	return func(m *Manager) {
		m.wsOpts = append(m.wsOpts, opts...)
	}
}

// WithIDGenerator replaces the UUID session ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithRemoteSessions allows subscribing to sessions owned by another
// replica. Use it only with a bus shared between replicas.
func WithRemoteSessions(enabled bool) Option {
	return func(m *Manager) {
		m.remote = enabled
	}
}

// WithPublishTimeout bounds each frame publish. Frames are published while
// the engine lock is held, so a stalled bus must not block traversal.
func WithPublishTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.publishTimeout = d
		}
	}
}

// NewManager creates an empty manager publishing frames to bus.
func NewManager(bus ports.FrameBus, opts ...Option) *Manager {
	m := &Manager{
		bus:            bus,
		sessions:       make(map[string]*Session),
		publishTimeout: 2 * time.Second,
		newID:          uuid.NewString,
		now:            time.Now,
		logger:         logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new session with an empty workspace.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := m.newID()
	logger := m.logger.With("session_id", id)

	opts := append([]ripple.Option{}, m.wsOpts...)
	opts = append(opts,
		ripple.WithName(id),
		ripple.WithLogger(m.logger),
		ripple.WithRenderer(&publisher{bus: m.bus, sessionID: id, timeout: m.publishTimeout, logger: logger}),
	)
	ws, err := ripple.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	s := &Session{ID: id, CreatedAt: m.now(), Workspace: ws}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	logger.Info("Session created")
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// List returns session IDs, oldest first.
func (m *Manager) List() []string {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Delete resets the session's traversal, so subscribers see a final reset
// frame, and forgets the session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	s.Workspace.Reset(ctx)
	s.Workspace.Close()
	metrics.ActiveSessions.Dec()
	m.logger.Info("Session closed", "session_id", id)
	return nil
}

// Close deletes every session.
func (m *Manager) Close(ctx context.Context) {
	for _, id := range m.List() {
		_ = m.Delete(ctx, id)
	}
}

// Subscribe streams the encoded frames of a session. For a local session
// the first payload is the current snapshot; later payloads are frames
// rendered after it, without gaps or repeats.
func (m *Manager) Subscribe(ctx context.Context, id string) (<-chan []byte, ports.CancelFunc, error) {
	s, err := m.Get(id)
	if err != nil && !m.remote {
		return nil, nil, err
	}

	// Subscribe before taking the snapshot so that no frame falls between.
	in, cancel, err := m.bus.Subscribe(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if s == nil {
		return in, cancel, nil
	}

	snap := s.Workspace.Snapshot()
	first, err := json.Marshal(snap)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	out := make(chan []byte, cap(in)+1)
	out <- first

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}

	go func() {
		defer close(out)
		for payload := range in {
			var head struct {
				Seq uint64 `json:"seq"`
			}
			if err := json.Unmarshal(payload, &head); err == nil && head.Seq <= snap.Seq {
				continue
			}
			select {
			case out <- payload:
			case <-done:
				return
			}
		}
	}()
	return out, stop, nil
}

// DecodeFrame decodes a payload produced by the manager.
func DecodeFrame(payload []byte) (domain.Frame, error) {
	var f domain.Frame
	err := json.Unmarshal(payload, &f)
	return f, err
}

// publisher is the renderer attached to every session workspace.
type publisher struct {
	bus       ports.FrameBus
	sessionID string
	timeout   time.Duration
	logger    *slog.Logger
}

func (p *publisher) Render(f domain.Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		p.logger.Error("Failed to encode frame", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.bus.Publish(ctx, p.sessionID, payload); err != nil {
		p.logger.Warn("Failed to publish frame", "seq", f.Seq, "err", err)
	}
}
