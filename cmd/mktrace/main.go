// Command mktrace writes and inspects camera pose traces for the replay
// bridge.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"xrbridge/internal/trace"
	"xrbridge/pose"
)

func main() {
	var (
		mode    = flag.String("mode", "orbit", "orbit|walk|dump.")
		inPath  = flag.String("in", "", "Trace to dump (dump mode).")
		outPath = flag.String("out", "", "Output trace (orbit/walk modes).")
		frames  = flag.Int("frames", 240, "Number of frames to generate.")
		hz      = flag.Int("hz", 60, "Frame rate of the generated trace.")
		radius  = flag.Float64("radius", 2, "Orbit radius or walk length in meters.")
		height  = flag.Float64("height", 0, "Eye height relative to the local origin.")
	)
	flag.Parse()

	switch strings.ToLower(*mode) {
	case "orbit", "walk":
		if *outPath == "" {
			fatalf("usage: mktrace -mode orbit|walk -out out.xrtr [-frames 240] [-hz 60] [-radius 2] [-height 0]")
		}
		if *frames <= 0 || *hz <= 0 {
			fatalf("frames and hz must be positive")
		}
		gen := orbitTrace
		if strings.EqualFold(*mode, "walk") {
			gen = walkTrace
		}
		tr := gen(*frames, *hz, float32(*radius), float32(*height))
		if err := writeTrace(*outPath, tr); err != nil {
			fatalf("write: %v", err)
		}
	case "dump":
		if *inPath == "" {
			fatalf("usage: mktrace -mode dump -in in.xrtr")
		}
		if err := dumpTrace(*inPath, os.Stdout); err != nil {
			fatalf("dump: %v", err)
		}
	default:
		fatalf("unknown mode: %s", *mode)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func frameTime(i, hz int) time.Duration {
	return time.Duration(i) * time.Second / time.Duration(hz)
}

// orbitTrace circles the origin once over the trace, facing inward.
func orbitTrace(frames, hz int, radius, height float32) *trace.Trace {
	tr := &trace.Trace{Frames: make([]trace.Frame, frames)}
	for i := range tr.Frames {
		a := 2 * math.Pi * float64(i) / float64(frames)
		tr.Frames[i] = trace.Frame{
			At:          frameTime(i, hz),
			Position:    pose.V3(radius*float32(math.Sin(a)), height, radius*float32(math.Cos(a))),
			Orientation: pose.QuatFromAxisAngle(pose.V3(0, 1, 0), float32(a)),
		}
	}
	return tr
}

// walkTrace moves toward the origin along +Z and back, facing -Z.
func walkTrace(frames, hz int, length, height float32) *trace.Trace {
	tr := &trace.Trace{Frames: make([]trace.Frame, frames)}
	for i := range tr.Frames {
		t := float32(i) / float32(frames)
		d := 2 * t
		if d > 1 {
			d = 2 - d
		}
		tr.Frames[i] = trace.Frame{
			At:          frameTime(i, hz),
			Position:    pose.V3(0, height, length*(1-d)+0.5),
			Orientation: pose.IdentityQuat(),
		}
	}
	return tr
}

func writeTrace(path string, tr *trace.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := trace.Encode(w, tr); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func dumpTrace(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tr, err := trace.Decode(bufio.NewReader(f))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "frames=%d duration=%s\n", len(tr.Frames), tr.Duration())
	for i, fr := range tr.Frames {
		p, q := fr.Position, fr.Orientation
		_, _ = fmt.Fprintf(out, "%5d %8s pos=(%.3f %.3f %.3f) quat=(%.3f %.3f %.3f %.3f)\n",
			i, fr.At, p.X, p.Y, p.Z, q.X, q.Y, q.Z, q.W)
	}
	return nil
}
