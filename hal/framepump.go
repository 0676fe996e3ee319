package hal

import (
	"sync"
	"time"

	"xrbridge/tracking"
)

type frameEntry struct {
	h  tracking.FrameHandle
	cb tracking.FrameCallback
}

// FramePump runs animation-frame callbacks once per host step.
//
// Callbacks requested while a step is running are deferred to the next step.
// Cancelling a handle that has not run yet, including one later in the
// current step, prevents it from running.
type FramePump struct {
	mu      sync.Mutex
	last    tracking.FrameHandle
	pending []frameEntry
	running []frameEntry
}

func NewFramePump() *FramePump {
	return &FramePump{}
}

// Request schedules cb for the next step. A nil callback gets handle zero.
func (p *FramePump) Request(cb tracking.FrameCallback) tracking.FrameHandle {
	if cb == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last++
	if p.last == 0 {
		p.last++
	}
	p.pending = append(p.pending, frameEntry{h: p.last, cb: cb})
	return p.last
}

func (p *FramePump) Cancel(h tracking.FrameHandle) {
	if h == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.pending {
		if p.pending[i].h == h {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			return
		}
	}
	for i := range p.running {
		if p.running[i].h == h {
			p.running[i].cb = nil
			return
		}
	}
}

// Pending returns how many callbacks wait for the next step.
func (p *FramePump) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Step runs every callback requested before it started and returns how many
// ran.
func (p *FramePump) Step(now time.Time) int {
	p.mu.Lock()
	p.running = p.pending
	p.pending = nil
	n := len(p.running)
	p.mu.Unlock()

	ran := 0
	for i := 0; i < n; i++ {
		p.mu.Lock()
		cb := p.running[i].cb
		p.mu.Unlock()
		if cb == nil {
			continue
		}
		cb(now)
		ran++
	}

	p.mu.Lock()
	p.running = nil
	p.mu.Unlock()
	return ran
}
