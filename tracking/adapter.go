package tracking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Adapter subscribes to a Bridge and forwards its pose updates to a Sink.
//
// It also exposes the bridge's lifecycle and frame scheduling operations so
// the device only ever talks to the adapter.
type Adapter struct {
	bridge Bridge
	sink   Sink
	log    *slog.Logger

	mu          sync.Mutex
	unsubscribe func()

	updates atomic.Uint64
	errs    atomic.Uint64
}

// NewAdapter subscribes to b and routes its events into sink.
func NewAdapter(b Bridge, sink Sink, log *slog.Logger) (*Adapter, error) {
	if b == nil {
		return nil, ErrNoBridge
	}
	if sink == nil {
		return nil, ErrNoSink
	}
	if log == nil {
		log = slog.Default()
	}
	a := &Adapter{bridge: b, sink: sink, log: log}
	a.unsubscribe = b.Subscribe(a.handle)
	return a, nil
}

func (a *Adapter) handle(ev Event) {
	switch ev.Kind {
	case EventUpdate:
		a.updates.Add(1)
		a.sink.SetBaseViewMatrix(ev.CameraTransform)
		a.sink.SetProjectionMatrix(ev.Projection)
	case EventError:
		a.errs.Add(1)
		a.log.Error("tracking bridge error", "err", ev.Err)
	default:
		a.log.Warn("tracking bridge sent unknown event", "kind", ev.Kind)
	}
}

// AwaitReady waits for the bridge to finish initializing.
func (a *Adapter) AwaitReady(ctx context.Context) error {
	return a.bridge.AwaitReady(ctx)
}

// Start arms native tracking with opts.
func (a *Adapter) Start(ctx context.Context, opts Options) error {
	a.log.Debug("tracking start",
		"world_sensing", opts.WorldSensing,
		"video_frames", opts.VideoFrames,
		"align_eus", opts.AlignEUS)
	return a.bridge.StartTracking(ctx, opts)
}

// Stop halts native tracking.
func (a *Adapter) Stop() error {
	return a.bridge.StopTracking()
}

func (a *Adapter) RequestAnimationFrame(cb FrameCallback) FrameHandle {
	return a.bridge.RequestAnimationFrame(cb)
}

func (a *Adapter) CancelAnimationFrame(h FrameHandle) {
	a.bridge.CancelAnimationFrame(h)
}

// Updates returns the number of pose updates forwarded so far.
func (a *Adapter) Updates() uint64 { return a.updates.Load() }

// Errors returns the number of bridge errors absorbed so far.
func (a *Adapter) Errors() uint64 { return a.errs.Load() }

// Close unsubscribes from the bridge. It is safe to call more than once.
func (a *Adapter) Close() {
	a.mu.Lock()
	unsub := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
