package main

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOrbitTraceStaysOnCircle(t *testing.T) {
	tr := orbitTrace(8, 4, 2, 0.5)
	if len(tr.Frames) != 8 {
		t.Fatalf("frames = %d", len(tr.Frames))
	}
	if got := tr.Duration(); got != 1750*time.Millisecond {
		t.Fatalf("duration = %s", got)
	}
	for i, f := range tr.Frames {
		r := math.Hypot(float64(f.Position.X), float64(f.Position.Z))
		if math.Abs(r-2) > 1e-5 || f.Position.Y != 0.5 {
			t.Fatalf("frame %d off orbit: %+v", i, f.Position)
		}
	}
}

func TestWalkTraceReturnsToStart(t *testing.T) {
	tr := walkTrace(10, 10, 3, 0)
	first, mid := tr.Frames[0].Position, tr.Frames[5].Position
	if first.Z != 3.5 {
		t.Fatalf("start z = %v", first.Z)
	}
	if math.Abs(float64(mid.Z-0.5)) > 1e-5 {
		t.Fatalf("midpoint z = %v", mid.Z)
	}
}

func TestWriteThenDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.xrtr")
	if err := writeTrace(path, orbitTrace(3, 60, 1, 0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	if err := dumpTrace(path, &out); err != nil {
		t.Fatalf("dump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "frames=3") {
		t.Fatalf("dump output:\n%s", out.String())
	}
}
