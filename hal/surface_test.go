package hal

import (
	"image/color"
	"testing"
)

func TestSurfaceAttachDetach(t *testing.T) {
	s := NewSurface()
	if s.Front() != nil {
		t.Fatalf("empty surface has a front canvas")
	}
	c := NewCanvas(4, 4)
	s.Attach(c)
	s.Attach(c)
	s.Attach(nil)
	if s.Attached() != 1 {
		t.Fatalf("attached = %d, want 1", s.Attached())
	}
	if s.Front() != c {
		t.Fatalf("front is not the attached canvas")
	}
	s.Detach(c)
	if s.Attached() != 0 || s.Front() != nil {
		t.Fatalf("canvas still attached after detach")
	}
}

func TestCanvasPixelsAndSnapshot(t *testing.T) {
	c := NewCanvas(3, 2)
	c.ClearRGB(0, 0, 0)
	c.SetPixel(1, 1, 255, 255, 255)
	c.SetPixel(-1, 0, 255, 0, 0)
	c.SetPixel(3, 0, 255, 0, 0)

	if r, g, b := c.PixelRGB(1, 1); r != 255 || g != 255 || b != 255 {
		t.Fatalf("pixel = %d,%d,%d", r, g, b)
	}
	if r, _, _ := c.PixelRGB(0, 0); r != 0 {
		t.Fatalf("out-of-bounds write leaked into (0,0)")
	}

	dst := make([]byte, 3*2*4)
	w, h := c.SnapshotRGBA(dst)
	if w != 3 || h != 2 {
		t.Fatalf("snapshot size = %dx%d", w, h)
	}
	off := (1*3 + 1) * 4
	if dst[off] != 255 || dst[off+3] != 255 {
		t.Fatalf("snapshot pixel = %v", dst[off:off+4])
	}
	if dst[3] != 255 {
		t.Fatalf("snapshot alpha not opaque")
	}
}

func TestCanvasResizeClears(t *testing.T) {
	c := NewCanvas(2, 2)
	c.SetPixel(0, 0, 255, 255, 255)
	c.Resize(4, 3)
	if w, h := c.Size(); w != 4 || h != 3 {
		t.Fatalf("size = %dx%d", w, h)
	}
	if r, _, _ := c.PixelRGB(0, 0); r != 0 {
		t.Fatalf("resize kept old contents")
	}
	c.Resize(-1, 5)
	if w, _ := c.Size(); w != 0 {
		t.Fatalf("negative width not clamped")
	}
}

func TestDrawStatusMarksPixels(t *testing.T) {
	c := NewCanvas(64, 16)
	DrawStatus(c, 0, 0, []string{"XR"}, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	lit := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 64; x++ {
			if r, _, _ := c.PixelRGB(x, y); r != 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("status text drew nothing")
	}
	DrawStatus(nil, 0, 0, []string{"x"}, color.RGBA{})
}
