package renderer

import (
	"image"
	"image/draw"

	"github.com/ivlev/scrollseq/internal/system"
	xdraw "golang.org/x/image/draw"
)

// Canvas is the software drawing surface. Its pixel buffer always matches
// the viewport size exactly.
type Canvas struct {
	img    *image.RGBA
	scaler xdraw.Scaler
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{scaler: xdraw.ApproxBiLinear}
	c.Resize(w, h)
	return c
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image exposes the pixel buffer. It is replaced on every resize.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Resize reallocates the pixel buffer at w×h. The new buffer is cleared.
func (c *Canvas) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if c.img != nil {
		if c.img.Rect.Dx() == w && c.img.Rect.Dy() == h {
			return
		}
		system.PutImage(c.img)
	}
	c.img = system.GetImage(w, h)
	c.Clear()
}

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Rect, image.Transparent, image.Point{}, draw.Src)
}

// DrawContain clears the canvas and draws src contain-fitted into it.
func (c *Canvas) DrawContain(src image.Image) Placement {
	b := src.Bounds()
	p := ContainFit(float64(b.Dx()), float64(b.Dy()), float64(c.Width()), float64(c.Height()))
	c.Clear()
	c.scaler.Scale(c.img, p.Rect(), src, b, xdraw.Over, nil)
	return p
}
