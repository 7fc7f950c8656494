package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/ports"
)

// Default animation timing.
const (
	DefaultStepPeriod = 2000 * time.Millisecond
	DefaultSubDelay   = 1000 * time.Millisecond
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRenderer sets the render hook invoked after every state change.
func WithRenderer(r ports.Renderer) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithClock replaces the wall clock (tests use a manual clock).
func WithClock(c ports.Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithTiming sets the step period and the sub-delay between marking a node
// visited and expanding its neighbors. subDelay must be shorter than period.
func WithTiming(period, subDelay time.Duration) EngineOption {
	return func(e *Engine) {
		e.period = period
		e.subDelay = subDelay
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
