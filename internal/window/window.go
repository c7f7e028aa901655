//go:build cgo

// Package window hosts a player in a desktop window.
package window

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/player"
)

// Run opens a resizable window showing p and blocks until it closes.
func Run(cfg *config.Config, p *player.Player) error {
	g := &game{cfg: cfg, p: p, opacity: cfg.Opacity()}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

type game struct {
	cfg     *config.Config
	p       *player.Player
	opacity float64

	w, h int
	surf *ebiten.Image
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	step := g.cfg.ScrollStep
	page := float64(g.h)
	if _, dy := ebiten.Wheel(); dy != 0 {
		// wheel up is positive; scrolling up moves toward the top
		g.p.Scroll(-dy * step)
	}
	switch {
	case repeat(ebiten.KeyArrowDown):
		g.p.Scroll(step)
	case repeat(ebiten.KeyArrowUp):
		g.p.Scroll(-step)
	case repeat(ebiten.KeyPageDown), repeat(ebiten.KeySpace):
		g.p.Scroll(page)
	case repeat(ebiten.KeyPageUp):
		g.p.Scroll(-page)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.p.ScrollTo(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		g.p.ScrollTo(1)
	}
	return nil
}

// repeat is true on the first press and then every few ticks while held.
func repeat(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 20 && d%4 == 0)
}

func (g *game) Draw(screen *ebiten.Image) {
	g.p.Tick()

	img, changed := g.p.Surface()
	size := img.Rect.Size()
	if g.surf == nil || g.surf.Bounds().Size() != size {
		if g.surf != nil {
			g.surf.Deallocate()
		}
		g.surf = ebiten.NewImage(size.X, size.Y)
		changed = true
	}
	if changed {
		g.surf.WritePixels(img.Pix)
	}

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	if g.p.Ready() {
		op.ColorScale.ScaleAlpha(float32(g.opacity))
	}
	screen.DrawImage(g.surf, op)
}

// Layout keeps the canvas at the window's size, so resizing the window
// resizes the canvas instead of stretching it.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.p.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
