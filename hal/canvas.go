package hal

import "sync"

// Canvas is an RGB565 pixel buffer sessions render into.
//
// It satisfies device.RenderTarget.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Size reports the canvas dimensions in pixels.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Resize reallocates the canvas. The contents are cleared.
func (c *Canvas) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if width == c.width && height == c.height && c.buf != nil {
		return
	}
	c.width = width
	c.height = height
	c.stride = width * 2
	c.buf = make([]byte, c.stride*height)
}

func (c *Canvas) ClearRGB(r, g, b uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i+1 < len(c.buf); i += 2 {
		c.buf[i] = lo
		c.buf[i+1] = hi
	}
}

// SetPixel writes one pixel; out-of-bounds writes are dropped.
func (c *Canvas) SetPixel(x, y int, r, g, b uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	p := rgb565(r, g, b)
	off := y*c.stride + x*2
	c.buf[off] = byte(p)
	c.buf[off+1] = byte(p >> 8)
}

// PixelRGB reads one pixel back. Out-of-bounds reads return black.
func (c *Canvas) PixelRGB(x, y int) (r, g, b uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0, 0, 0
	}
	off := y*c.stride + x*2
	return rgb888From565(uint16(c.buf[off]) | uint16(c.buf[off+1])<<8)
}

// SnapshotRGBA writes the canvas as RGBA8888 into dst and returns the
// dimensions it used. dst must hold width*height*4 bytes.
func (c *Canvas) SnapshotRGBA(dst []byte) (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	expandRGB565(dst, c.buf)
	return c.width, c.height
}
