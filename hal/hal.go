// Package hal is the desktop host for the XR device.
//
// It stands in for the native side of an AR runtime: tracking bridges that
// push camera poses, a frame pump behind requestAnimationFrame, and a
// presentation surface that shows the canvases sessions render into. Runners
// drive a Host either in a window or headless.
package hal

import (
	"errors"
	"time"
)

var (
	ErrNotReady     = errors.New("bridge not ready")
	ErrNotTracking  = errors.New("bridge not tracking")
	ErrNotAvailable = errors.New("not available on this host")
)

// Host is the application side of a runner loop.
type Host interface {
	// Step advances the host by one frame.
	Step(now time.Time) error
	// Surface returns what the window presents.
	Surface() *Surface
	// Resize is called when the presentation area changes size.
	Resize(width, height int)
}
