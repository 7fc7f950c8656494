package testutils

import (
	"sync"

	"github.com/aretw0/ripple/pkg/domain"
)

// FrameRecorder is a ports.Renderer that keeps every frame it receives.
type FrameRecorder struct {
	mu     sync.Mutex
	frames []domain.Frame
}

// Render records a copy of f.
func (r *FrameRecorder) Render(f domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f.Clone())
}

// Frames returns the recorded frames in arrival order.
func (r *FrameRecorder) Frames() []domain.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Frame(nil), r.frames...)
}

// Last returns the most recent frame, or the zero Frame if none arrived.
func (r *FrameRecorder) Last() domain.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return domain.Frame{}
	}
	return r.frames[len(r.frames)-1]
}

// Reset forgets recorded frames.
func (r *FrameRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}
