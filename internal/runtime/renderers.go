package runtime

import (
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/ports"
)

type nopRenderer struct{}

func (nopRenderer) Render(domain.Frame) {}

// MultiRenderer fans each frame out to several renderers, in order.
// Each renderer receives its own copy of the frame.
func MultiRenderer(renderers ...ports.Renderer) ports.Renderer {
	list := make([]ports.Renderer, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			list = append(list, r)
		}
	}
	return ports.RenderFunc(func(f domain.Frame) {
		for _, r := range list {
			r.Render(f.Clone())
		}
	})
}
