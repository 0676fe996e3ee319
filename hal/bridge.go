package hal

import (
	"context"
	"sync"

	"xrbridge/pose"
	"xrbridge/tracking"
)

// Lens describes the simulated camera projection.
type Lens struct {
	FOVY   float32 // radians
	Near   float32
	Far    float32
	Width  int
	Height int
}

func (l Lens) withDefaults() Lens {
	if l.FOVY <= 0 {
		l.FOVY = 1.0
	}
	if l.Near <= 0 {
		l.Near = 0.1
	}
	if l.Far <= l.Near {
		l.Far = 1000
	}
	return l
}

func (l Lens) projection() pose.Mat4 {
	aspect := float32(1)
	if l.Width > 0 && l.Height > 0 {
		aspect = float32(l.Width) / float32(l.Height)
	}
	return pose.Perspective(l.FOVY, aspect, l.Near, l.Far)
}

type subscriber struct {
	id int
	h  tracking.Handler
}

// bridgeCore is the readiness, tracking state, subscriber list and frame
// pump shared by the host bridges.
type bridgeCore struct {
	pump *FramePump

	mu       sync.Mutex
	subs     []subscriber
	nextSub  int
	ready    chan struct{}
	readyErr error
	isReady  bool
	tracking bool
	opts     tracking.Options
	lens     Lens
}

func newBridgeCore(pump *FramePump, lens Lens) bridgeCore {
	if pump == nil {
		pump = NewFramePump()
	}
	return bridgeCore{
		pump:  pump,
		ready: make(chan struct{}),
		lens:  lens.withDefaults(),
	}
}

func (c *bridgeCore) markReady(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isReady {
		return
	}
	c.isReady = true
	c.readyErr = err
	close(c.ready)
}

func (c *bridgeCore) AwaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyErr
}

func (c *bridgeCore) StartTracking(ctx context.Context, opts tracking.Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isReady {
		return ErrNotReady
	}
	if c.readyErr != nil {
		return c.readyErr
	}
	c.tracking = true
	c.opts = opts
	return nil
}

func (c *bridgeCore) StopTracking() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tracking {
		return ErrNotTracking
	}
	c.tracking = false
	return nil
}

// Tracking reports whether tracking is running and with which options.
func (c *bridgeCore) Tracking() (tracking.Options, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts, c.tracking
}

func (c *bridgeCore) Subscribe(h tracking.Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscriber{id: id, h: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// emit delivers ev to every subscriber in subscription order, outside the lock.
func (c *bridgeCore) emit(ev tracking.Event) {
	c.mu.Lock()
	subs := append([]subscriber(nil), c.subs...)
	c.mu.Unlock()
	for _, s := range subs {
		s.h(ev)
	}
}

// SetViewportSize updates the aspect ratio of the emitted projection.
func (c *bridgeCore) SetViewportSize(width, height int) {
	c.mu.Lock()
	c.lens.Width = width
	c.lens.Height = height
	c.mu.Unlock()
}

func (c *bridgeCore) projection() pose.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lens.projection()
}

func (c *bridgeCore) RequestAnimationFrame(cb tracking.FrameCallback) tracking.FrameHandle {
	return c.pump.Request(cb)
}

func (c *bridgeCore) CancelAnimationFrame(h tracking.FrameHandle) {
	c.pump.Cancel(h)
}

// Pump returns the frame pump behind RequestAnimationFrame.
func (c *bridgeCore) Pump() *FramePump { return c.pump }
