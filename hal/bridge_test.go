package hal

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"xrbridge/internal/trace"
	"xrbridge/pose"
	"xrbridge/tracking"
)

func collect(b tracking.Bridge) *[]tracking.Event {
	var evs []tracking.Event
	b.Subscribe(func(ev tracking.Event) { evs = append(evs, ev) })
	return &evs
}

func TestSimBridgeReadyAfterInitSteps(t *testing.T) {
	b := NewSimBridge(nil, SimConfig{InitSteps: 2})
	if err := b.StartTracking(context.Background(), tracking.Options{}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("start before ready: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.AwaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("await before steps: %v", err)
	}

	b.Step(time.Unix(0, 0))
	b.Step(time.Unix(0, 0))
	if err := b.AwaitReady(context.Background()); err != nil {
		t.Fatalf("await: %v", err)
	}
	if err := b.StartTracking(context.Background(), tracking.Options{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := b.StopTracking(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := b.StopTracking(); !errors.Is(err, ErrNotTracking) {
		t.Fatalf("second stop: %v", err)
	}
}

func TestSimBridgeReadyError(t *testing.T) {
	boom := errors.New("no camera")
	b := NewSimBridge(nil, SimConfig{ReadyErr: boom})
	b.Step(time.Now())
	if err := b.AwaitReady(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("await: %v", err)
	}
	if err := b.StartTracking(context.Background(), tracking.Options{}); !errors.Is(err, boom) {
		t.Fatalf("start: %v", err)
	}
}

func TestSimBridgeEmitsOnlyWhileTracking(t *testing.T) {
	b := NewSimBridge(nil, SimConfig{Radius: 2, EyeHeight: 1.5, Period: 4 * time.Second})
	evs := collect(b)

	t0 := time.Unix(100, 0)
	b.Step(t0)
	if len(*evs) != 0 {
		t.Fatalf("emitted %d events while idle", len(*evs))
	}

	if err := b.StartTracking(context.Background(), tracking.Options{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	b.Step(t0)
	b.Step(t0.Add(time.Second))
	if len(*evs) != 2 {
		t.Fatalf("events = %d, want 2", len(*evs))
	}

	first := (*evs)[0]
	if first.Kind != tracking.EventUpdate {
		t.Fatalf("kind = %v", first.Kind)
	}
	if p := pose.TranslationOf(first.CameraTransform); !near(p.X, 0) || !near(p.Y, 1.5) || !near(p.Z, 2) {
		t.Fatalf("start position = %+v", p)
	}
	// A quarter period later the camera sits on +X.
	if p := pose.TranslationOf((*evs)[1].CameraTransform); !near(p.X, 2) || !near(p.Z, 0) {
		t.Fatalf("quarter position = %+v", p)
	}
	if first.Projection[11] != -1 {
		t.Fatalf("projection is not perspective: %v", first.Projection)
	}

	_ = b.StopTracking()
	b.Step(t0.Add(2 * time.Second))
	if len(*evs) != 2 {
		t.Fatalf("emitted after stop")
	}
}

func TestSimBridgeVideoFramesReportsOnce(t *testing.T) {
	b := NewSimBridge(nil, SimConfig{})
	evs := collect(b)
	b.Step(time.Now())
	_ = b.StartTracking(context.Background(), tracking.Options{VideoFrames: true})
	b.Step(time.Now())
	b.Step(time.Now())

	errs := 0
	for _, ev := range *evs {
		if ev.Kind == tracking.EventError {
			errs++
		}
	}
	if errs != 1 {
		t.Fatalf("error events = %d, want 1", errs)
	}
}

func TestSimBridgeAlignEUSDropsHeading(t *testing.T) {
	b := NewSimBridge(nil, SimConfig{Heading: math.Pi / 2})
	evs := collect(b)
	now := time.Unix(5, 0)
	b.Step(now)

	_ = b.StartTracking(context.Background(), tracking.Options{})
	b.Step(now)
	_ = b.StopTracking()
	_ = b.StartTracking(context.Background(), tracking.Options{AlignEUS: true})
	b.Step(now)

	rotated := pose.TranslationOf((*evs)[0].CameraTransform)
	aligned := pose.TranslationOf((*evs)[1].CameraTransform)
	if !near(aligned.Z, 2) || !near(aligned.X, 0) {
		t.Fatalf("aligned position = %+v", aligned)
	}
	if !near(rotated.X, 2) || !near(rotated.Z, 0) {
		t.Fatalf("heading position = %+v", rotated)
	}
}

func TestSimBridgeUnsubscribe(t *testing.T) {
	b := NewSimBridge(nil, SimConfig{})
	n := 0
	stop := b.Subscribe(func(tracking.Event) { n++ })
	b.Step(time.Now())
	_ = b.StartTracking(context.Background(), tracking.Options{})
	b.Step(time.Now())
	stop()
	stop()
	b.Step(time.Now())
	if n != 1 {
		t.Fatalf("handler calls = %d, want 1", n)
	}
}

func TestBridgeViewportSizeChangesAspect(t *testing.T) {
	b := NewSimBridge(nil, SimConfig{Lens: Lens{Width: 100, Height: 100}})
	square := b.projection()
	b.SetViewportSize(200, 100)
	wide := b.projection()
	if !near(wide[0]*2, square[0]) {
		t.Fatalf("x scale = %v, want %v", wide[0], square[0]/2)
	}
}

func TestBridgeAnimationFramesUseSharedPump(t *testing.T) {
	pump := NewFramePump()
	b := NewSimBridge(pump, SimConfig{})
	ran := false
	h := b.RequestAnimationFrame(func(time.Time) { ran = true })
	if h == 0 || pump.Pending() != 1 {
		t.Fatalf("frame not queued on the shared pump")
	}
	pump.Step(time.Now())
	if !ran {
		t.Fatalf("frame callback did not run")
	}
	if b.Pump() != pump {
		t.Fatalf("Pump() returned a different pump")
	}
}

func TestReplayBridgeLoops(t *testing.T) {
	tr := &trace.Trace{Frames: []trace.Frame{
		{Position: pose.V3(1, 0, 0), Orientation: pose.IdentityQuat()},
		{Position: pose.V3(2, 0, 0), Orientation: pose.IdentityQuat()},
	}}
	b := NewReplayBridge(nil, Lens{}, tr)
	evs := collect(b)
	b.Step(time.Now())
	if err := b.AwaitReady(context.Background()); err != nil {
		t.Fatalf("await: %v", err)
	}
	_ = b.StartTracking(context.Background(), tracking.Options{})
	for i := 0; i < 3; i++ {
		b.Step(time.Now())
	}
	want := []float32{1, 2, 1}
	for i, w := range want {
		if got := pose.TranslationOf((*evs)[i].CameraTransform).X; got != w {
			t.Fatalf("frame %d x = %v, want %v", i, got, w)
		}
	}
}

func TestReplayBridgeEmptyTrace(t *testing.T) {
	b := NewReplayBridge(nil, Lens{}, &trace.Trace{})
	b.Step(time.Now())
	if err := b.AwaitReady(context.Background()); err == nil {
		t.Fatalf("empty trace became ready")
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}
