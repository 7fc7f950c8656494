package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/pkg/ports"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 64

// Bus fans out published payloads to the subscribers of each session.
// A subscriber whose buffer is full misses the payload.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{} // SessionID -> Set of Channels
	bufferSize  int
	logger      *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithBufferSize sets the per-subscriber channel capacity.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets the logger used to report dropped payloads.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string]map[chan []byte]struct{}),
		bufferSize:  DefaultBufferSize,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ ports.FrameBus = (*Bus)(nil)

// Subscribe implements ports.FrameBus.
func (b *Bus) Subscribe(_ context.Context, sessionID string) (<-chan []byte, ports.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, b.bufferSize)
	if _, ok := b.subscribers[sessionID]; !ok {
		b.subscribers[sessionID] = make(map[chan []byte]struct{})
	}
	b.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.subscribers[sessionID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(b.subscribers, sessionID)
			}
		}
	}, nil
}

// Publish implements ports.FrameBus.
func (b *Bus) Publish(_ context.Context, sessionID string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[sessionID] {
		select {
		case ch <- payload:
		default:
			// Drop message if channel is full (slow client)
			b.logger.Warn("Subscriber buffer full, dropping frame", "session_id", sessionID)
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions for sessionID.
func (b *Bus) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID])
}
