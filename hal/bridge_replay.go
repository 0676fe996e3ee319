package hal

import (
	"errors"
	"sync"
	"time"

	"xrbridge/internal/trace"
	"xrbridge/tracking"
)

var errEmptyTrace = errors.New("replay: empty trace")

// ReplayBridge is a tracking.Bridge that plays back a recorded trace, one
// frame per step, looping at the end.
type ReplayBridge struct {
	bridgeCore
	tr *trace.Trace

	posMu sync.Mutex
	pos   int
}

var _ tracking.Bridge = (*ReplayBridge)(nil)

// NewReplayBridge creates a bridge over tr. An empty trace makes the bridge
// fail readiness.
func NewReplayBridge(pump *FramePump, lens Lens, tr *trace.Trace) *ReplayBridge {
	return &ReplayBridge{bridgeCore: newBridgeCore(pump, lens), tr: tr}
}

// Step pushes the next recorded pose while tracking.
func (b *ReplayBridge) Step(time.Time) {
	if b.tr == nil || len(b.tr.Frames) == 0 {
		b.markReady(errEmptyTrace)
		return
	}
	b.markReady(nil)

	if _, on := b.Tracking(); !on {
		return
	}

	b.posMu.Lock()
	f := b.tr.Frames[b.pos]
	b.pos = (b.pos + 1) % len(b.tr.Frames)
	b.posMu.Unlock()

	b.emit(tracking.Event{
		Kind:            tracking.EventUpdate,
		CameraTransform: f.Model(),
		Projection:      b.projection(),
	})
}
