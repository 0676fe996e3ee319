// Package tracking routes native tracking updates to the XR device.
//
// The native side is described by the Bridge contract. An Adapter subscribes
// to a bridge and forwards every pose update to a Sink as two matrix copies.
// Bridge errors are device-level: the adapter logs them and never turns them
// into session failures.
package tracking

import (
	"context"
	"errors"
	"time"

	"xrbridge/pose"
)

var (
	ErrNoBridge = errors.New("tracking: no bridge")
	ErrNoSink   = errors.New("tracking: no sink")
)

// Options selects the native tracking capabilities for a session.
type Options struct {
	WorldSensing bool
	VideoFrames  bool
	AlignEUS     bool
}

// EventKind identifies a bridge message.
type EventKind uint8

const (
	EventUpdate EventKind = iota + 1
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one message pushed by the bridge.
//
// For EventUpdate, CameraTransform and Projection are set. For EventError,
// Err is set.
type Event struct {
	Kind            EventKind
	CameraTransform pose.Mat4
	Projection      pose.Mat4
	Err             error
}

// Handler receives bridge events.
type Handler func(Event)

// FrameCallback is invoked once per host frame with the frame timestamp.
type FrameCallback func(now time.Time)

// FrameHandle identifies a scheduled frame callback. Zero is never issued.
type FrameHandle uint32

// Bridge is the native tracking source.
type Bridge interface {
	// AwaitReady blocks until the native side has finished initializing.
	AwaitReady(ctx context.Context) error
	// StartTracking begins pose delivery with the given capabilities and
	// returns once the native side acknowledged the request.
	StartTracking(ctx context.Context, opts Options) error
	StopTracking() error
	// Subscribe registers h and returns a function that removes it.
	Subscribe(h Handler) (cancel func())

	RequestAnimationFrame(cb FrameCallback) FrameHandle
	CancelAnimationFrame(h FrameHandle)
}

// Sink receives normalized matrix updates.
type Sink interface {
	SetBaseViewMatrix(m pose.Mat4)
	SetProjectionMatrix(m pose.Mat4)
}
