package ports

import "github.com/aretw0/ripple/pkg/domain"

// Renderer receives a snapshot after every traversal state change.
// It is invoked synchronously, in mutation order, and must not call back
// into the engine that produced the frame.
type Renderer interface {
	Render(frame domain.Frame)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(frame domain.Frame)

// Render calls f(frame).
func (f RenderFunc) Render(frame domain.Frame) {
	f(frame)
}
