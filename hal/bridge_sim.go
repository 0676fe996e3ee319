package hal

import (
	"errors"
	"math"
	"sync"
	"time"

	"xrbridge/pose"
	"xrbridge/tracking"
)

var errNoVideoFrames = errors.New("sim: computer vision frames are not available")

// SimConfig controls the synthetic tracking source.
type SimConfig struct {
	Lens Lens

	// InitSteps is how many steps pass before the bridge reports ready.
	InitSteps int
	// ReadyErr, when set, is reported by AwaitReady instead of success.
	ReadyErr error

	// The camera orbits the origin at Radius and EyeHeight once per Period.
	Radius    float32
	EyeHeight float32
	Period    time.Duration

	// Heading is the yaw between the tracker's world and east-up-south.
	// AlignEUS removes it.
	Heading float32
}

func (c SimConfig) withDefaults() SimConfig {
	if c.InitSteps <= 0 {
		c.InitSteps = 1
	}
	if c.Radius == 0 {
		c.Radius = 2
	}
	if c.Period <= 0 {
		c.Period = 12 * time.Second
	}
	return c
}

// SimBridge is a tracking.Bridge that synthesizes an orbiting camera.
type SimBridge struct {
	bridgeCore
	cfg SimConfig

	stepMu     sync.Mutex
	steps      int
	start      time.Time
	videoNoted bool
}

var _ tracking.Bridge = (*SimBridge)(nil)

// NewSimBridge creates a synthetic bridge. A nil pump gets a private one.
func NewSimBridge(pump *FramePump, cfg SimConfig) *SimBridge {
	cfg = cfg.withDefaults()
	return &SimBridge{
		bridgeCore: newBridgeCore(pump, cfg.Lens),
		cfg:        cfg,
	}
}

// Step advances the simulation to now and pushes one pose update while
// tracking. It does not run the frame pump.
func (b *SimBridge) Step(now time.Time) {
	b.stepMu.Lock()
	b.steps++
	steps := b.steps
	b.stepMu.Unlock()

	if steps >= b.cfg.InitSteps {
		b.markReady(b.cfg.ReadyErr)
	}

	opts, on := b.Tracking()
	if !on {
		b.stepMu.Lock()
		b.start = time.Time{}
		b.videoNoted = false
		b.stepMu.Unlock()
		return
	}

	b.stepMu.Lock()
	if b.start.IsZero() {
		b.start = now
	}
	elapsed := now.Sub(b.start)
	noteVideo := opts.VideoFrames && !b.videoNoted
	if noteVideo {
		b.videoNoted = true
	}
	b.stepMu.Unlock()

	if noteVideo {
		b.emit(tracking.Event{Kind: tracking.EventError, Err: errNoVideoFrames})
	}
	b.emit(tracking.Event{
		Kind:            tracking.EventUpdate,
		CameraTransform: b.cameraAt(elapsed, opts),
		Projection:      b.projection(),
	})
}

// cameraAt returns the camera model matrix after elapsed time on the orbit.
// The camera always faces the origin.
func (b *SimBridge) cameraAt(elapsed time.Duration, opts tracking.Options) pose.Mat4 {
	angle := float32(2 * math.Pi * float64(elapsed%b.cfg.Period) / float64(b.cfg.Period))
	orbit := pose.Compose(
		pose.V3(
			b.cfg.Radius*float32(math.Sin(float64(angle))),
			b.cfg.EyeHeight,
			b.cfg.Radius*float32(math.Cos(float64(angle))),
		),
		pose.QuatFromAxisAngle(pose.V3(0, 1, 0), angle),
	)
	if opts.AlignEUS || b.cfg.Heading == 0 {
		return orbit
	}
	heading := pose.Compose(pose.Vec3{}, pose.QuatFromAxisAngle(pose.V3(0, 1, 0), b.cfg.Heading))
	return pose.Mul(heading, orbit)
}
