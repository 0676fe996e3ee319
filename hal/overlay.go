package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const statusLineHeight = 10

// canvasDisplayer lets tinyfont draw straight into a Canvas.
type canvasDisplayer struct {
	c *Canvas
}

var _ drivers.Displayer = (*canvasDisplayer)(nil)

func (d *canvasDisplayer) Size() (x, y int16) {
	w, h := d.c.Size()
	return int16(w), int16(h)
}

func (d *canvasDisplayer) SetPixel(x, y int16, c color.RGBA) {
	if c.A == 0 {
		return
	}
	d.c.SetPixel(int(x), int(y), c.R, c.G, c.B)
}

func (d *canvasDisplayer) Display() error { return nil }

// DrawStatus writes lines of text onto c starting at (x, y), top-left.
func DrawStatus(c *Canvas, x, y int, lines []string, col color.RGBA) {
	if c == nil {
		return
	}
	d := &canvasDisplayer{c: c}
	for i, s := range lines {
		tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, int16(x), int16(y+(i+1)*statusLineHeight), s, col)
	}
}

// StatusGrid reports how many status columns and rows fit on c.
func StatusGrid(c *Canvas) (cols, rows int) {
	w, h := c.Size()
	_, cw := tinyfont.LineWidth(&proggy.TinySZ8pt7b, "0")
	if cw == 0 {
		cw = 6
	}
	return w / int(cw), h / statusLineHeight
}
