package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"xrbridge/pose"
	"xrbridge/tracking"
)

const (
	defaultDepthNear = 0.1
	defaultDepthFar  = 1000

	// Stage floor sits this far below eye level.
	stageFloorOffset = -1.3

	firstSessionAfter = 100
)

// tracker is the part of the tracking adapter the device drives.
type tracker interface {
	AwaitReady(ctx context.Context) error
	Start(ctx context.Context, opts tracking.Options) error
	Stop() error
	RequestAnimationFrame(cb tracking.FrameCallback) tracking.FrameHandle
	CancelAnimationFrame(h tracking.FrameHandle)
	Close()
}

// Option configures an ARDevice.
type Option func(*ARDevice)

// WithLogger sets the device logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *ARDevice) {
		if log != nil {
			d.log = log
		}
	}
}

// WithIDGenerator replaces the default session id counter.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *ARDevice) {
		if g != nil {
			d.ids = g
		}
	}
}

// WithPresenter sets the surface bound render targets are attached to.
func WithPresenter(p Presenter) Option {
	return func(d *ARDevice) { d.presenter = p }
}

// ARDevice is an immersive-AR Device fed by a native tracking bridge.
type ARDevice struct {
	log       *slog.Logger
	ids       IDGenerator
	presenter Presenter
	tracker   tracker

	mu       sync.Mutex
	sessions map[SessionID]*Session
	active   *Session
	starting bool

	headModelMatrix  pose.Mat4 // model and view are the same matrix
	projectionMatrix pose.Mat4
	eyeLevelMatrix   pose.Mat4
	stageMatrix      pose.Mat4

	baseFrameReceived bool
	draining          bool
	waiting           []func()

	depthNear float32
	depthFar  float32

	poseLog rate.Sometimes
}

var (
	_ Device        = (*ARDevice)(nil)
	_ tracking.Sink = (*ARDevice)(nil)
)

// New creates a device on top of bridge.
//
// A nil or failing bridge does not fail construction: the device is created
// without a tracking adapter and every session request reports
// ErrAdapterUnavailable.
func New(bridge tracking.Bridge, opts ...Option) *ARDevice {
	d := &ARDevice{
		log:            slog.Default(),
		ids:            NewCounter(firstSessionAfter),
		sessions:       make(map[SessionID]*Session),
		eyeLevelMatrix: pose.Identity(),
		stageMatrix:    pose.Identity(),
		depthNear:      defaultDepthNear,
		depthFar:       defaultDepthFar,
		poseLog:        rate.Sometimes{Interval: time.Second},
	}
	d.stageMatrix[13] = stageFloorOffset
	for _, opt := range opts {
		opt(d)
	}

	a, err := tracking.NewAdapter(bridge, d, d.log)
	if err != nil {
		d.log.Error("error initializing the tracking adapter", "err", err)
		return d
	}
	d.tracker = a
	return d
}

// Close detaches the device from its tracking bridge.
func (d *ARDevice) Close() {
	if d.tracker != nil {
		d.tracker.Close()
	}
}

// Tracking adapter sink.

// SetProjectionMatrix stores the latest projection from the tracker.
func (d *ARDevice) SetProjectionMatrix(m pose.Mat4) {
	d.mu.Lock()
	d.projectionMatrix = m
	d.mu.Unlock()
}

// SetBaseViewMatrix stores the latest head pose from the tracker. The first
// call releases every reference-space request queued before it, in order.
func (d *ARDevice) SetBaseViewMatrix(m pose.Mat4) {
	d.mu.Lock()
	d.headModelMatrix = m
	first := !d.baseFrameReceived
	if first {
		d.baseFrameReceived = true
		d.draining = true
	}
	d.mu.Unlock()

	if d.log.Enabled(context.Background(), slog.LevelDebug) {
		d.poseLog.Do(d.logPose)
	}
	if first {
		d.drain()
	}
}

// drain runs queued callbacks in FIFO order without holding the lock.
// Callbacks queued while draining join the same drain.
func (d *ARDevice) drain() {
	for {
		d.mu.Lock()
		q := d.waiting
		d.waiting = nil
		if len(q) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		for _, fn := range q {
			d.runQueued(fn)
		}
	}
}

func (d *ARDevice) runQueued(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("finalization of reference frame request failed", "panic", r)
		}
	}()
	fn()
}

func (d *ARDevice) logPose() {
	m := d.BasePoseMatrix()
	d.log.Debug("pose",
		"translation", pose.TranslationOf(m).Array(),
		"rotation", pose.RotationOf(m).Array())
}

// WhenBaseFrameReady runs fn once the tracker has delivered its first pose:
// immediately if it already has, otherwise queued behind earlier requests.
func (d *ARDevice) WhenBaseFrameReady(fn func()) {
	d.mu.Lock()
	if d.baseFrameReceived && !d.draining {
		d.mu.Unlock()
		fn()
		return
	}
	d.waiting = append(d.waiting, fn)
	d.mu.Unlock()
}

// Sessions.

func (d *ARDevice) IsSessionSupported(mode SessionMode) bool {
	return mode == ModeImmersiveAR
}

// RequestSession starts native tracking and creates the active session.
//
// It blocks until the bridge is ready and has acknowledged the tracking
// request. The device sets no timeout; ctx is the only way to give up.
func (d *ARDevice) RequestSession(ctx context.Context, mode SessionMode, init SessionInit) (SessionID, error) {
	if !d.IsSessionSupported(mode) {
		d.log.Error("invalid session mode", "mode", mode)
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	d.mu.Lock()
	t := d.tracker
	if t == nil {
		d.mu.Unlock()
		d.log.Error("session requested without a tracking adapter")
		return 0, ErrAdapterUnavailable
	}
	if d.active != nil || d.starting {
		d.mu.Unlock()
		d.log.Error("tried to start a second active session")
		return 0, ErrSessionAlreadyActive
	}
	d.starting = true
	d.mu.Unlock()

	opts := trackingOptions(init)
	err := t.AwaitReady(ctx)
	if err != nil {
		d.log.Error("tracking failed to initialize", "err", err)
	} else if err = t.Start(ctx, opts); err != nil {
		d.log.Error("session request failed", "err", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.starting = false
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSessionStartFailed, err)
	}

	s := &Session{ID: d.ids.Next()}
	d.sessions[s.ID] = s
	d.active = s
	d.log.Info("session started", "session", s.ID)
	return s.ID, nil
}

func trackingOptions(init SessionInit) tracking.Options {
	var opts tracking.Options
	for _, list := range [][]string{init.RequiredFeatures, init.OptionalFeatures} {
		for _, f := range list {
			switch f {
			case FeatureWorldSensing:
				opts.WorldSensing = true
			case FeatureComputerVision:
				opts.VideoFrames = true
			case FeatureAlignEUS:
				opts.AlignEUS = true
			}
		}
	}
	return opts
}

// EndSession ends a session. Unknown or already ended sessions are ignored.
//
// Reference-space requests still waiting for the first pose are left pending.
func (d *ARDevice) EndSession(id SessionID) {
	d.mu.Lock()
	s, ok := d.sessions[id]
	if !ok || s.Ended {
		d.mu.Unlock()
		return
	}
	s.Ended = true
	wasActive := d.active == s
	if wasActive {
		d.active = nil
	}
	target := s.RenderTarget
	s.RenderTarget = nil
	t := d.tracker
	d.mu.Unlock()

	if wasActive && t != nil {
		if err := t.Stop(); err != nil {
			d.log.Error("stop tracking", "session", id, "err", err)
		}
	}
	if target != nil && d.presenter != nil {
		d.presenter.Detach(target)
	}
	d.log.Info("session ended", "session", id)
}

// BindRenderTarget binds target to a live session and attaches it to the
// presenter. A previously bound target is detached.
func (d *ARDevice) BindRenderTarget(id SessionID, target RenderTarget) error {
	d.mu.Lock()
	s, ok := d.sessions[id]
	if !ok || s.Ended {
		d.mu.Unlock()
		return fmt.Errorf("bind render target: %w: %d", ErrUnknownSession, id)
	}
	prev := s.RenderTarget
	s.RenderTarget = target
	d.mu.Unlock()

	if d.presenter == nil || prev == target {
		return nil
	}
	if prev != nil {
		d.presenter.Detach(prev)
	}
	if target != nil {
		d.presenter.Attach(target)
	}
	return nil
}

// Session returns a copy of the session with the given id.
func (d *ARDevice) Session(id SessionID) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// ActiveSession returns the id of the active session, if any.
func (d *ARDevice) ActiveSession() (SessionID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return 0, false
	}
	return d.active.ID, true
}

// Sessions returns how many sessions the device has retained, ended ones
// included.
func (d *ARDevice) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Reference spaces.

// RequestFrameOfReferenceTransform returns the transform of a reference space.
//
// Viewer and local spaces resolve after the first tracked pose. Floor-relative
// and unbounded spaces are rejected: the native origin can drift and reset
// events are not implemented.
func (d *ARDevice) RequestFrameOfReferenceTransform(typ ReferenceSpaceType, _ ReferenceSpaceOptions) *FrameRequest {
	req := newFrameRequest(typ)
	switch typ {
	case ReferenceSpaceViewer:
		d.WhenBaseFrameReady(func() { req.resolve(d.BasePoseMatrix()) })
	case ReferenceSpaceLocal:
		d.WhenBaseFrameReady(func() { req.resolve(d.EyeLevelMatrix()) })
	case ReferenceSpaceLocalFloor, ReferenceSpaceBoundedFloor, ReferenceSpaceUnbounded:
		req.reject(fmt.Errorf("%w: %s", ErrUnsupportedReferenceSpace, typ))
	default:
		req.reject(fmt.Errorf("%w: %q", ErrUnknownReferenceSpaceType, typ))
	}
	return req
}

// Frame state.

// Viewport writes a single viewport covering the whole render target.
func (d *ARDevice) Viewport(_ SessionID, _ Eye, target RenderTarget, out *Viewport) bool {
	if out == nil {
		return true
	}
	var w, h int
	if target != nil {
		w, h = target.Size()
	}
	*out = Viewport{X: 0, Y: 0, Width: w, Height: h}
	return true
}

func (d *ARDevice) ProjectionMatrix(Eye) pose.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.projectionMatrix
}

// BasePoseMatrix returns the head model matrix.
func (d *ARDevice) BasePoseMatrix() pose.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.headModelMatrix
}

// BaseViewMatrix returns the head model matrix; the device uses one matrix
// for both.
func (d *ARDevice) BaseViewMatrix(Eye) pose.Mat4 {
	return d.BasePoseMatrix()
}

func (d *ARDevice) EyeLevelMatrix() pose.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eyeLevelMatrix
}

func (d *ARDevice) StageMatrix() pose.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stageMatrix
}

func (d *ARDevice) InputSources() []InputSource { return nil }

func (d *ARDevice) InputPose(InputSource, ReferenceSpaceType) (pose.Mat4, bool) {
	return pose.Mat4{}, false
}

func (d *ARDevice) StageBounds() *StageBounds { return nil }

func (d *ARDevice) DepthNear() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.depthNear
}

func (d *ARDevice) SetDepthNear(v float32) {
	d.mu.Lock()
	d.depthNear = v
	d.mu.Unlock()
}

func (d *ARDevice) DepthFar() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.depthFar
}

func (d *ARDevice) SetDepthFar(v float32) {
	d.mu.Lock()
	d.depthFar = v
	d.mu.Unlock()
}

// Frame scheduling.

// RequestAnimationFrame schedules cb on the bridge's frame pump. It returns
// zero when there is no tracking adapter.
func (d *ARDevice) RequestAnimationFrame(cb tracking.FrameCallback) tracking.FrameHandle {
	if d.tracker == nil {
		return 0
	}
	return d.tracker.RequestAnimationFrame(cb)
}

func (d *ARDevice) CancelAnimationFrame(h tracking.FrameHandle) {
	if d.tracker == nil {
		return
	}
	d.tracker.CancelAnimationFrame(h)
}

func (d *ARDevice) OnFrameStart(SessionID) {}

func (d *ARDevice) OnFrameEnd(SessionID) {}

// OnWindowResize is reserved for per-session surface resizing. Render targets
// currently report their own size through Viewport, so there is nothing to do.
func (d *ARDevice) OnWindowResize() {}
