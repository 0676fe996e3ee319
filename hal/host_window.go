//go:build cgo

package hal

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"xrbridge/internal/buildinfo"
)

var errWindowClosed = errors.New("window closed")

// RunWindow opens a desktop window that shows the host surface and steps the
// host once per tick. It blocks until the window closes or ctx is done.
func RunWindow(ctx context.Context, host Host, cfg WindowConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	g := &hostGame{ctx: ctx, host: host}
	ebiten.SetWindowTitle("XR bridge (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Hz)
	err := ebiten.RunGame(g)
	if errors.Is(err, errWindowClosed) {
		return ctx.Err()
	}
	return err
}

type hostGame struct {
	ctx  context.Context
	host Host

	width, height int
	pix           []byte
	img           *ebiten.Image
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return errWindowClosed
	}
	return g.host.Step(time.Now())
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	c := g.host.Surface().Front()
	if c == nil {
		return
	}
	w, h := c.Size()
	if w == 0 || h == 0 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.pix = make([]byte, w*h*4)
	}
	if sw, sh := c.SnapshotRGBA(g.pix); sw != w || sh != h {
		return
	}
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.host.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
