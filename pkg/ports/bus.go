package ports

import "context"

// CancelFunc releases a subscription and closes its channel.
type CancelFunc func()

// FrameBus carries encoded render frames from the engine of a session to
// every client watching that session.
type FrameBus interface {
	// Publish delivers payload to the current subscribers of sessionID.
	// Slow subscribers may miss messages; publishing never blocks on them.
	Publish(ctx context.Context, sessionID string, payload []byte) error

	// Subscribe registers a new subscriber for sessionID. When it returns,
	// the subscription is active: any later Publish reaches the channel.
	Subscribe(ctx context.Context, sessionID string) (<-chan []byte, CancelFunc, error)
}
