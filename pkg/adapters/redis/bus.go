package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the pub/sub channels.
const DefaultPrefix = "ripple:frames:"

// Bus implements ports.FrameBus using Redis PUBLISH/SUBSCRIBE.
type Bus struct {
	client     *backend.Client
	prefix     string
	bufferSize int
	logger     *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithPrefix sets the channel prefix.
func WithPrefix(prefix string) Option {
	return func(b *Bus) {
		b.prefix = prefix
	}
}

// WithBufferSize sets the per-subscriber channel capacity.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates a bus with its own client.
func New(address, password string, db int, opts ...Option) *Bus {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a bus from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Bus {
	b := &Bus{
		client:     client,
		prefix:     DefaultPrefix,
		bufferSize: 64,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ ports.FrameBus = (*Bus)(nil)

func (b *Bus) channel(sessionID string) string {
	return b.prefix + sessionID
}

// Ping checks connectivity.
func (b *Bus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (b *Bus) Close() error {
	return b.client.Close()
}

// Publish implements ports.FrameBus.
func (b *Bus) Publish(ctx context.Context, sessionID string, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Subscribe implements ports.FrameBus. The subscription is confirmed by the
// server before Subscribe returns.
func (b *Bus) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, ports.CancelFunc, error) {
	pubsub := b.client.Subscribe(ctx, b.channel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	out := make(chan []byte, b.bufferSize)
	msgs := pubsub.Channel()

	go func() {
		defer close(out)
		for msg := range msgs {
			select {
			case out <- []byte(msg.Payload):
			default:
				b.logger.Warn("Subscriber buffer full, dropping frame", "session_id", sessionID)
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.logger.Debug("Closing subscription failed", "session_id", sessionID, "err", err)
			}
		})
	}, nil
}
