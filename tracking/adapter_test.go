package tracking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"xrbridge/pose"
)

type fakeBridge struct {
	handler      Handler
	unsubscribed int
	started      []Options
	stopped      int
	readyErr     error
	nextHandle   FrameHandle
	cancelled    []FrameHandle
}

func (b *fakeBridge) AwaitReady(context.Context) error { return b.readyErr }

func (b *fakeBridge) StartTracking(_ context.Context, opts Options) error {
	b.started = append(b.started, opts)
	return nil
}

func (b *fakeBridge) StopTracking() error {
	b.stopped++
	return nil
}

func (b *fakeBridge) Subscribe(h Handler) func() {
	b.handler = h
	return func() {
		b.unsubscribed++
		b.handler = nil
	}
}

func (b *fakeBridge) RequestAnimationFrame(FrameCallback) FrameHandle {
	b.nextHandle++
	return b.nextHandle
}

func (b *fakeBridge) CancelAnimationFrame(h FrameHandle) {
	b.cancelled = append(b.cancelled, h)
}

type recordingSink struct {
	calls []string
	view  pose.Mat4
	proj  pose.Mat4
}

func (s *recordingSink) SetBaseViewMatrix(m pose.Mat4) {
	s.calls = append(s.calls, "view")
	s.view = m
}

func (s *recordingSink) SetProjectionMatrix(m pose.Mat4) {
	s.calls = append(s.calls, "projection")
	s.proj = m
}

func TestNewAdapterRequiresCollaborators(t *testing.T) {
	_, err := NewAdapter(nil, &recordingSink{}, nil)
	require.ErrorIs(t, err, ErrNoBridge)

	_, err = NewAdapter(&fakeBridge{}, nil, nil)
	require.ErrorIs(t, err, ErrNoSink)
}

func TestAdapterForwardsUpdates(t *testing.T) {
	b := &fakeBridge{}
	sink := &recordingSink{}
	a, err := NewAdapter(b, sink, nil)
	require.NoError(t, err)
	require.NotNil(t, b.handler)

	camera := pose.Compose(pose.V3(1, 2, 3), pose.IdentityQuat())
	proj := pose.Perspective(1, 1.5, 0.1, 1000)
	b.handler(Event{Kind: EventUpdate, CameraTransform: camera, Projection: proj})

	require.Equal(t, []string{"view", "projection"}, sink.calls)
	require.Equal(t, camera, sink.view)
	require.Equal(t, proj, sink.proj)
	require.EqualValues(t, 1, a.Updates())
}

func TestAdapterLogsErrorsWithoutForwarding(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	b := &fakeBridge{}
	sink := &recordingSink{}
	a, err := NewAdapter(b, sink, log)
	require.NoError(t, err)

	b.handler(Event{Kind: EventError, Err: errors.New("camera lost")})

	require.Empty(t, sink.calls)
	require.EqualValues(t, 1, a.Errors())
	require.Contains(t, buf.String(), "camera lost")
}

func TestAdapterDelegatesLifecycle(t *testing.T) {
	b := &fakeBridge{readyErr: errors.New("not yet")}
	a, err := NewAdapter(b, &recordingSink{}, nil)
	require.NoError(t, err)

	require.EqualError(t, a.AwaitReady(context.Background()), "not yet")

	opts := Options{WorldSensing: true, AlignEUS: true}
	require.NoError(t, a.Start(context.Background(), opts))
	require.Equal(t, []Options{opts}, b.started)

	require.NoError(t, a.Stop())
	require.Equal(t, 1, b.stopped)

	h := a.RequestAnimationFrame(nil)
	require.NotZero(t, h)
	a.CancelAnimationFrame(h)
	require.Equal(t, []FrameHandle{h}, b.cancelled)
}

func TestAdapterCloseIsIdempotent(t *testing.T) {
	b := &fakeBridge{}
	a, err := NewAdapter(b, &recordingSink{}, nil)
	require.NoError(t, err)

	a.Close()
	a.Close()
	require.Equal(t, 1, b.unsubscribed)
	require.Nil(t, b.handler)
}
