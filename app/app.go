// Package app is the demo XR application: it owns the host pieces (canvas,
// surface, frame pump, tracking bridge), the AR device on top of them, and a
// session loop that renders a tracked wireframe scene.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"xrbridge/device"
	"xrbridge/hal"
	"xrbridge/internal/config"
	"xrbridge/internal/trace"
	"xrbridge/pose"
	"xrbridge/tracking"
)

// bridge is a tracking bridge the host steps.
type bridge interface {
	tracking.Bridge
	Step(now time.Time)
	SetViewportSize(width, height int)
}

// App implements hal.Host.
type App struct {
	cfg config.Config
	log *slog.Logger

	canvas  *hal.Canvas
	surface *hal.Surface
	pump    *hal.FramePump
	bridge  bridge
	dev     *device.ARDevice

	draw    func(device.SessionID, pose.Mat4)
	frames  atomic.Uint64
	panics  atomic.Uint64
	running atomic.Bool

	mu      sync.Mutex
	handle  tracking.FrameHandle
	session device.SessionID
	local   pose.Mat4
}

var _ hal.Host = (*App)(nil)

// New builds the host and device. A trace path selects the replay bridge.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		cfg:     cfg,
		log:     log,
		canvas:  hal.NewCanvas(cfg.Width, cfg.Height),
		surface: hal.NewSurface(),
		pump:    hal.NewFramePump(),
	}
	a.draw = a.render

	lens := hal.Lens{
		FOVY:   1.0,
		Near:   cfg.DepthNear,
		Far:    cfg.DepthFar,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	if cfg.TracePath != "" {
		tr, err := loadTrace(cfg.TracePath)
		if err != nil {
			return nil, err
		}
		log.Info("replaying trace", "path", cfg.TracePath, "frames", len(tr.Frames), "duration", tr.Duration())
		a.bridge = hal.NewReplayBridge(a.pump, lens, tr)
	} else {
		a.bridge = hal.NewSimBridge(a.pump, hal.SimConfig{
			Lens:    lens,
			Radius:  cfg.OrbitRadius,
			Period:  cfg.OrbitPeriod,
			Heading: cfg.Heading,
		})
	}

	a.dev = device.New(a.bridge,
		device.WithLogger(log.With("component", "device")),
		device.WithPresenter(a.surface),
	)
	a.dev.SetDepthNear(cfg.DepthNear)
	a.dev.SetDepthFar(cfg.DepthFar)
	return a, nil
}

func loadTrace(path string) (*trace.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	tr, err := trace.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode trace %s: %w", path, err)
	}
	return tr, nil
}

// Device returns the AR device the app drives.
func (a *App) Device() *device.ARDevice { return a.dev }

// Canvas returns the render target bound to the session.
func (a *App) Canvas() *hal.Canvas { return a.canvas }

// Frames returns how many frames have been rendered.
func (a *App) Frames() uint64 { return a.frames.Load() }

// Step advances the bridge, then runs the animation frames it scheduled.
func (a *App) Step(now time.Time) error {
	a.bridge.Step(now)
	a.pump.Step(now)
	return nil
}

func (a *App) Surface() *hal.Surface { return a.surface }

func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.canvas.Resize(width, height)
	a.bridge.SetViewportSize(width, height)
	a.dev.OnWindowResize()
}

// Run requests a session, waits for the local reference space and renders
// on every animation frame until ctx is done. The session is ended on return.
func (a *App) Run(ctx context.Context) error {
	id, err := a.dev.RequestSession(ctx, device.SessionMode(a.cfg.Mode), device.SessionInit{
		OptionalFeatures: a.cfg.Features,
	})
	if err != nil {
		return fmt.Errorf("request session: %w", err)
	}
	defer a.dev.EndSession(id)

	if err := a.dev.BindRenderTarget(id, a.canvas); err != nil {
		return err
	}

	local, err := a.dev.RequestFrameOfReferenceTransform(device.ReferenceSpaceLocal, device.ReferenceSpaceOptions{}).Wait(ctx)
	if err != nil {
		return fmt.Errorf("local reference space: %w", err)
	}
	a.log.Info("reference space ready", "space", device.ReferenceSpaceLocal, "session", id)

	a.mu.Lock()
	a.session = id
	a.local = local
	a.mu.Unlock()

	a.running.Store(true)
	a.schedule()
	<-ctx.Done()
	a.running.Store(false)

	a.mu.Lock()
	h := a.handle
	a.handle = 0
	a.mu.Unlock()
	a.dev.CancelAnimationFrame(h)

	a.log.Info("session loop stopped", "session", id, "frames", a.Frames())
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

func (a *App) schedule() {
	h := a.dev.RequestAnimationFrame(a.onFrame)
	a.mu.Lock()
	a.handle = h
	a.mu.Unlock()
}

func (a *App) onFrame(now time.Time) {
	if !a.running.Load() {
		return
	}
	a.mu.Lock()
	id, local := a.session, a.local
	a.mu.Unlock()

	a.drawFrame(id, local)
	if a.running.Load() {
		a.schedule()
	}
}

func (a *App) drawFrame(id device.SessionID, local pose.Mat4) {
	defer a.recoverFrame(id)
	a.dev.OnFrameStart(id)
	a.draw(id, local)
	a.dev.OnFrameEnd(id)
	a.frames.Add(1)
}
