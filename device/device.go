// Package device implements an immersive-AR XR device on top of a native
// tracking bridge.
//
// The device owns the session table, the head pose and projection matrices
// pushed by the tracking adapter, and the queue of reference-space requests
// that arrive before the first pose. It allows at most one active session.
package device

import (
	"context"
	"errors"

	"xrbridge/pose"
	"xrbridge/tracking"
)

var (
	ErrUnsupportedMode           = errors.New("unsupported session mode")
	ErrAdapterUnavailable        = errors.New("tracking adapter unavailable")
	ErrSessionAlreadyActive      = errors.New("session already active")
	ErrSessionStartFailed        = errors.New("session start failed")
	ErrUnsupportedReferenceSpace = errors.New("reference space not supported")
	ErrUnknownReferenceSpaceType = errors.New("unknown reference space type")
	ErrUnknownSession            = errors.New("unknown or ended session")
	ErrRequestPending            = errors.New("reference space request pending")
)

// SessionMode is the XR session mode requested by the application.
type SessionMode string

const (
	ModeInline      SessionMode = "inline"
	ModeImmersiveVR SessionMode = "immersive-vr"
	ModeImmersiveAR SessionMode = "immersive-ar"
)

// Feature strings understood by RequestSession. Anything else is ignored.
const (
	FeatureWorldSensing   = "worldSensing"
	FeatureComputerVision = "computerVision"
	FeatureAlignEUS       = "alignEUS"
)

// SessionInit carries the feature lists of a session request.
type SessionInit struct {
	RequiredFeatures []string
	OptionalFeatures []string
}

// ReferenceSpaceType names a coordinate system the application can request.
type ReferenceSpaceType string

const (
	ReferenceSpaceViewer       ReferenceSpaceType = "viewer"
	ReferenceSpaceLocal        ReferenceSpaceType = "local"
	ReferenceSpaceLocalFloor   ReferenceSpaceType = "local-floor"
	ReferenceSpaceBoundedFloor ReferenceSpaceType = "bounded-floor"
	ReferenceSpaceUnbounded    ReferenceSpaceType = "unbounded"
)

// ReferenceSpaceOptions is accepted for contract compatibility; no option is
// currently interpreted.
type ReferenceSpaceOptions struct{}

// Eye selects a view. The AR device renders a single monocular view.
type Eye string

const (
	EyeNone  Eye = "none"
	EyeLeft  Eye = "left"
	EyeRight Eye = "right"
)

// Viewport is a pixel rectangle inside a render target.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// RenderTarget is a presentation surface a session renders into, such as a
// canvas bound to a rendering context. Implementations must be comparable;
// pointer types are.
type RenderTarget interface {
	Size() (width, height int)
}

// Presenter shows bound render targets to the user.
type Presenter interface {
	Attach(t RenderTarget)
	Detach(t RenderTarget)
}

// InputSource is a tracked controller. The AR device exposes none.
type InputSource struct {
	Handedness string
}

// StageBounds describes a bounded play area. The AR device has none.
type StageBounds struct {
	Points []pose.Vec3
}

// Device is the session-based XR device contract consumed by the rendering
// application.
type Device interface {
	IsSessionSupported(mode SessionMode) bool
	RequestSession(ctx context.Context, mode SessionMode, init SessionInit) (SessionID, error)
	EndSession(id SessionID)
	BindRenderTarget(id SessionID, target RenderTarget) error

	RequestFrameOfReferenceTransform(typ ReferenceSpaceType, opts ReferenceSpaceOptions) *FrameRequest

	Viewport(id SessionID, eye Eye, target RenderTarget, out *Viewport) bool
	ProjectionMatrix(eye Eye) pose.Mat4
	BasePoseMatrix() pose.Mat4
	BaseViewMatrix(eye Eye) pose.Mat4
	InputSources() []InputSource
	InputPose(src InputSource, space ReferenceSpaceType) (pose.Mat4, bool)
	StageBounds() *StageBounds

	DepthNear() float32
	DepthFar() float32

	RequestAnimationFrame(cb tracking.FrameCallback) tracking.FrameHandle
	CancelAnimationFrame(h tracking.FrameHandle)

	OnFrameStart(id SessionID)
	OnFrameEnd(id SessionID)
	OnWindowResize()
}
