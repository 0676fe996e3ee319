package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"xrbridge/device"
	"xrbridge/internal/config"
	"xrbridge/internal/trace"
	"xrbridge/pose"
)

func testConfig() config.Config {
	return config.Config{
		Hz:          60,
		Width:       96,
		Height:      64,
		Mode:        string(device.ModeImmersiveAR),
		OrbitRadius: 2,
		OrbitPeriod: 4 * time.Second,
		DepthNear:   0.1,
		DepthFar:    1000,
		LogLevel:    "info",
	}
}

// stepUntil ticks the host until cond holds.
func stepUntil(t *testing.T, a *App, cond func() bool) {
	t.Helper()
	now := time.Unix(1000, 0)
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition not reached")
		now = now.Add(16 * time.Millisecond)
		require.NoError(t, a.Step(now))
		time.Sleep(time.Millisecond)
	}
}

func startRun(t *testing.T, a *App) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return")
			return nil
		}
	}
}

func TestRunRendersTrackedScene(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	stop := startRun(t, a)

	stepUntil(t, a, func() bool { return a.Frames() >= 3 })

	id, ok := a.Device().ActiveSession()
	require.True(t, ok)
	require.Equal(t, device.SessionID(101), id)
	require.Same(t, a.Canvas(), a.Surface().Front())

	cube := 0
	w, h := a.Canvas().Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := a.Canvas().PixelRGB(x, y)
			if r > 150 && g > 150 && b < 100 {
				cube++
			}
		}
	}
	require.Positive(t, cube, "cube not drawn")

	require.NoError(t, stop())
	_, ok = a.Device().ActiveSession()
	require.False(t, ok)
	require.Zero(t, a.Surface().Attached())

	s, ok := a.Device().Session(id)
	require.True(t, ok)
	require.True(t, s.Ended)
}

func TestRunReplaysTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.xrtr")
	f, err := os.Create(path)
	require.NoError(t, err)
	want := pose.V3(0.5, 0.25, 3)
	require.NoError(t, trace.Encode(f, &trace.Trace{Frames: []trace.Frame{
		{Position: want, Orientation: pose.IdentityQuat()},
	}}))
	require.NoError(t, f.Close())

	cfg := testConfig()
	cfg.TracePath = path
	a, err := New(cfg, nil)
	require.NoError(t, err)
	stop := startRun(t, a)

	stepUntil(t, a, func() bool { return a.Frames() >= 1 })
	require.Equal(t, want, pose.TranslationOf(a.Device().BasePoseMatrix()))
	require.NoError(t, stop())
}

func TestNewRejectsMissingTrace(t *testing.T) {
	cfg := testConfig()
	cfg.TracePath = filepath.Join(t.TempDir(), "missing.xrtr")
	_, err := New(cfg, nil)
	require.ErrorContains(t, err, "open trace")
}

func TestRunRejectsUnsupportedMode(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = string(device.ModeImmersiveVR)
	a, err := New(cfg, nil)
	require.NoError(t, err)
	err = a.Run(context.Background())
	require.ErrorIs(t, err, device.ErrUnsupportedMode)
	require.Zero(t, a.Device().Sessions())
}

func TestResizeFollowsWindow(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)

	a.Resize(40, 20)
	w, h := a.Canvas().Size()
	require.Equal(t, 40, w)
	require.Equal(t, 20, h)

	a.Resize(0, 10)
	w, _ = a.Canvas().Size()
	require.Equal(t, 40, w)
}

func TestProjectDropsPointsBehindEye(t *testing.T) {
	proj := pose.Perspective(1, 1, 0.1, 100)
	_, ok := project(proj, pose.V3(0, 0, 1))
	require.False(t, ok)

	p, ok := project(proj, pose.V3(0, 0, -2))
	require.True(t, ok)
	require.InDelta(t, 0, p.X, 1e-6)
	require.InDelta(t, 0, p.Y, 1e-6)

	x, y := ndcToViewport(p, device.Viewport{Width: 11, Height: 11})
	require.Equal(t, 5, x)
	require.Equal(t, 5, y)
}

func TestPanickingFrameStopsLoop(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	a.draw = func(device.SessionID, pose.Mat4) { panic("boom") }
	stop := startRun(t, a)

	stepUntil(t, a, func() bool { return a.panics.Load() == 1 })
	require.Zero(t, a.pump.Pending(), "loop rescheduled after panic")
	require.Zero(t, a.Frames())

	white := 0
	w, h := a.Canvas().Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r, _, _ := a.Canvas().PixelRGB(x, y); r == 255 {
				white++
			}
		}
	}
	require.Positive(t, white, "panic screen not painted")
	require.NoError(t, stop())
}

func TestWrapLines(t *testing.T) {
	got := wrapLines([]string{"abcdef", "gh"}, 4, 10)
	require.Equal(t, []string{"abcd", "ef", "gh"}, got)
	require.Len(t, wrapLines([]string{"abcdef", "gh"}, 2, 2), 2)
}
