// Package trace reads and writes recorded camera pose traces.
//
// Layout (little-endian):
//   - [4]byte: magic "XRTR"
//   - u16: version (1)
//   - u32: frame count
//   - per frame: u32 time (ms), 3*f32 position, 4*f32 orientation [x,y,z,w]
package trace

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"xrbridge/pose"
)

const (
	Version = 1

	headerBytes = 4 + 2 + 4
	frameBytes  = 4 + 3*4 + 4*4

	// maxFrames bounds allocation when decoding untrusted input.
	maxFrames = 1 << 22
)

var magic = [4]byte{'X', 'R', 'T', 'R'}

var (
	ErrBadMagic   = errors.New("trace: bad magic")
	ErrBadVersion = errors.New("trace: unsupported version")
	ErrTooLarge   = errors.New("trace: too many frames")
)

// Frame is one recorded camera pose.
type Frame struct {
	At          time.Duration
	Position    pose.Vec3
	Orientation pose.Quat
}

// Model returns the frame's camera model matrix.
func (f Frame) Model() pose.Mat4 {
	return pose.Compose(f.Position, f.Orientation)
}

// Trace is an ordered list of frames.
type Trace struct {
	Frames []Frame
}

// Duration returns the timestamp of the last frame.
func (t *Trace) Duration() time.Duration {
	if t == nil || len(t.Frames) == 0 {
		return 0
	}
	return t.Frames[len(t.Frames)-1].At
}

// Encode writes t to w.
func Encode(w io.Writer, t *Trace) error {
	if len(t.Frames) > maxFrames {
		return ErrTooLarge
	}
	bw := bufio.NewWriter(w)

	var hdr [headerBytes]byte
	copy(hdr[0:4], magic[:])
	binary.LittleEndian.PutUint16(hdr[4:6], Version)
	binary.LittleEndian.PutUint32(hdr[6:10], uint32(len(t.Frames)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("trace: write header: %w", err)
	}

	var buf [frameBytes]byte
	for i, f := range t.Frames {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(f.At/time.Millisecond))
		putF32s(buf[4:], f.Position.X, f.Position.Y, f.Position.Z,
			f.Orientation.X, f.Orientation.Y, f.Orientation.Z, f.Orientation.W)
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("trace: write frame %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// Decode reads a trace from r.
func Decode(r io.Reader) (*Trace, error) {
	br := bufio.NewReader(r)

	var hdr [headerBytes]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("trace: read header: %w", err)
	}
	if [4]byte(hdr[0:4]) != magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	n := binary.LittleEndian.Uint32(hdr[6:10])
	if n > maxFrames {
		return nil, fmt.Errorf("%w: %d", ErrTooLarge, n)
	}

	t := &Trace{Frames: make([]Frame, 0, n)}
	var buf [frameBytes]byte
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("trace: read frame %d of %d: %w", i, n, err)
		}
		v := getF32s(buf[4:], 7)
		t.Frames = append(t.Frames, Frame{
			At:          time.Duration(binary.LittleEndian.Uint32(buf[0:4])) * time.Millisecond,
			Position:    pose.V3(v[0], v[1], v[2]),
			Orientation: pose.Quat{X: v[3], Y: v[4], Z: v[5], W: v[6]},
		})
	}
	return t, nil
}

func putF32s(dst []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func getF32s(src []byte, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}
