package device

import (
	"context"
	"sync"

	"xrbridge/pose"
)

// FrameRequest is the pending result of RequestFrameOfReferenceTransform.
//
// It resolves exactly once, either with a matrix snapshot or with an error.
// There is no cancellation: a request waiting for the first pose stays
// pending until that pose arrives.
type FrameRequest struct {
	Type ReferenceSpaceType

	once sync.Once
	done chan struct{}
	m    pose.Mat4
	err  error
}

func newFrameRequest(typ ReferenceSpaceType) *FrameRequest {
	return &FrameRequest{Type: typ, done: make(chan struct{})}
}

func (r *FrameRequest) resolve(m pose.Mat4) {
	r.once.Do(func() {
		r.m = m
		close(r.done)
	})
}

func (r *FrameRequest) reject(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Done is closed once the request is resolved or rejected.
func (r *FrameRequest) Done() <-chan struct{} { return r.done }

// Result returns the outcome without blocking. It reports
// ErrRequestPending while the request is unresolved.
func (r *FrameRequest) Result() (pose.Mat4, error) {
	select {
	case <-r.done:
		return r.m, r.err
	default:
		return pose.Mat4{}, ErrRequestPending
	}
}

// Wait blocks until the request completes or ctx is done.
func (r *FrameRequest) Wait(ctx context.Context) (pose.Mat4, error) {
	select {
	case <-r.done:
		return r.m, r.err
	case <-ctx.Done():
		return pose.Mat4{}, ctx.Err()
	}
}
