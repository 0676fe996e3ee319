package hal

import (
	"sync"

	"xrbridge/device"
)

// Surface is the host presentation layer. Sessions attach the canvases they
// render into; the window shows the front one.
type Surface struct {
	mu      sync.Mutex
	targets []device.RenderTarget
}

var _ device.Presenter = (*Surface)(nil)

func NewSurface() *Surface {
	return &Surface{}
}

// Attach puts t on the surface. Attaching twice is a no-op.
func (s *Surface) Attach(t device.RenderTarget) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.targets {
		if have == t {
			return
		}
	}
	s.targets = append(s.targets, t)
}

// Detach removes t from the surface.
func (s *Surface) Detach(t device.RenderTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, have := range s.targets {
		if have == t {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			return
		}
	}
}

// Attached returns the number of attached render targets.
func (s *Surface) Attached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

// Front returns the first attached canvas, or nil.
func (s *Surface) Front() *Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.targets {
		if c, ok := t.(*Canvas); ok {
			return c
		}
	}
	return nil
}
