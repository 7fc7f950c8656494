package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStart    EventType = "traversal_start"
	EventVisit    EventType = "node_visit"
	EventEnqueue  EventType = "node_enqueue"
	EventComplete EventType = "traversal_complete"
	EventReset    EventType = "traversal_reset"
)

// TraversalEvent describes a single engine transition.
type TraversalEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	Generation uint64    `json:"generation"`
	Start      string    `json:"start,omitempty"`

	// NodeID is the node visited or enqueued (empty for start/complete/reset).
	NodeID string `json:"node_id,omitempty"`

	// From is the node whose expansion discovered NodeID (enqueue only).
	From string `json:"from,omitempty"`

	// Visited is the size of the visited set after the transition.
	Visited int `json:"visited"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously and must not call back into the engine.
type LifecycleHooks struct {
	OnStart    func(context.Context, *TraversalEvent)
	OnVisit    func(context.Context, *TraversalEvent)
	OnEnqueue  func(context.Context, *TraversalEvent)
	OnComplete func(context.Context, *TraversalEvent)
	OnReset    func(context.Context, *TraversalEvent)
}

// MergeHooks combines hook sets; each callback of the result calls the
// corresponding callbacks of all sets in order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	pick := func(get func(LifecycleHooks) func(context.Context, *TraversalEvent)) func(context.Context, *TraversalEvent) {
		var fns []func(context.Context, *TraversalEvent)
		for _, s := range sets {
			if fn := get(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *TraversalEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}
	return LifecycleHooks{
		OnStart:    pick(func(h LifecycleHooks) func(context.Context, *TraversalEvent) { return h.OnStart }),
		OnVisit:    pick(func(h LifecycleHooks) func(context.Context, *TraversalEvent) { return h.OnVisit }),
		OnEnqueue:  pick(func(h LifecycleHooks) func(context.Context, *TraversalEvent) { return h.OnEnqueue }),
		OnComplete: pick(func(h LifecycleHooks) func(context.Context, *TraversalEvent) { return h.OnComplete }),
		OnReset:    pick(func(h LifecycleHooks) func(context.Context, *TraversalEvent) { return h.OnReset }),
	}
}
