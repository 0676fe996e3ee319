package app

import (
	"fmt"
	"image/color"

	"xrbridge/device"
	"xrbridge/hal"
	"xrbridge/pose"
)

type rgb struct{ r, g, b uint8 }

var (
	background = rgb{8, 8, 16}
	gridColor  = rgb{40, 160, 80}
	cubeColor  = rgb{240, 200, 40}
	textColor  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

const (
	gridHalf = 5
	cubeHalf = 0.25

	// Segments with an endpoint this close to the eye plane are dropped.
	minClipW = 0.01
	// Lines that project this far outside NDC are not rasterized.
	maxNDC = 8
)

type segment struct{ a, b pose.Vec3 }

var gridSegments = func() []segment {
	var s []segment
	for i := -gridHalf; i <= gridHalf; i++ {
		f := float32(i)
		s = append(s,
			segment{pose.V3(f, 0, -gridHalf), pose.V3(f, 0, gridHalf)},
			segment{pose.V3(-gridHalf, 0, f), pose.V3(gridHalf, 0, f)},
		)
	}
	return s
}()

var cubeSegments = func() []segment {
	h := float32(cubeHalf)
	v := [8]pose.Vec3{
		pose.V3(-h, -h, -h), pose.V3(h, -h, -h), pose.V3(h, h, -h), pose.V3(-h, h, -h),
		pose.V3(-h, -h, h), pose.V3(h, -h, h), pose.V3(h, h, h), pose.V3(-h, h, h),
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	s := make([]segment, 0, len(edges))
	for _, e := range edges {
		s = append(s, segment{v[e[0]], v[e[1]]})
	}
	return s
}()

// render draws the floor grid on the stage and a cube at the local origin.
func (a *App) render(id device.SessionID, local pose.Mat4) {
	var vp device.Viewport
	a.dev.Viewport(id, device.EyeNone, a.canvas, &vp)

	viewProj := pose.Mul(a.dev.ProjectionMatrix(device.EyeNone), pose.EyeView(a.dev.BasePoseMatrix()))

	a.canvas.ClearRGB(background.r, background.g, background.b)
	a.drawSegments(vp, pose.Mul(viewProj, pose.Mul(local, a.dev.StageMatrix())), gridSegments, gridColor)
	a.drawSegments(vp, pose.Mul(viewProj, local), cubeSegments, cubeColor)

	p := pose.TranslationOf(a.dev.BasePoseMatrix())
	hal.DrawStatus(a.canvas, 4, 0, []string{
		fmt.Sprintf("session %d  frame %d", id, a.frames.Load()),
		fmt.Sprintf("head %.2f %.2f %.2f", p.X, p.Y, p.Z),
	}, textColor)
}

func (a *App) drawSegments(vp device.Viewport, mvp pose.Mat4, segs []segment, c rgb) {
	for _, s := range segs {
		p0, ok0 := project(mvp, s.a)
		p1, ok1 := project(mvp, s.b)
		if !ok0 || !ok1 {
			continue
		}
		x0, y0 := ndcToViewport(p0, vp)
		x1, y1 := ndcToViewport(p1, vp)
		drawLine(a.canvas, x0, y0, x1, y1, c)
	}
}

type ndcPoint struct{ X, Y float32 }

// project takes a model-space point to normalized device coordinates.
func project(mvp pose.Mat4, v pose.Vec3) (ndcPoint, bool) {
	p := pose.MulV4(mvp, pose.Vec4{X: v.X, Y: v.Y, Z: v.Z, W: 1})
	if p.W < minClipW {
		return ndcPoint{}, false
	}
	n := ndcPoint{X: p.X / p.W, Y: p.Y / p.W}
	if n.X < -maxNDC || n.X > maxNDC || n.Y < -maxNDC || n.Y > maxNDC {
		return ndcPoint{}, false
	}
	return n, true
}

func ndcToViewport(p ndcPoint, vp device.Viewport) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(vp.Width-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(vp.Height-1)
	return vp.X + int(sx+0.5), vp.Y + int(sy+0.5)
}

// drawLine is Bresenham; the canvas drops off-screen pixels.
func drawLine(c *hal.Canvas, x0, y0, x1, y1 int, col rgb) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.SetPixel(x0, y0, col.r, col.g, col.b)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
