package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	overlayBackground = color.RGBA{0, 0, 0, 255}
	overlayText       = color.RGBA{255, 255, 255, 255}
	overlayDim        = color.RGBA{128, 128, 128, 255}
)

// DrawLoading paints the loading screen: a black canvas with the label
// centered and the number of settled frames below it.
func DrawLoading(c *Canvas, label string, settled, total int) {
	dst := c.Image()
	draw.Draw(dst, dst.Rect, image.NewUniform(overlayBackground), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	midY := c.Height() / 2

	drawCentered(dst, face, strings.ToUpper(label), midY, overlayText)
	if total > 0 {
		drawCentered(dst, face, fmt.Sprintf("%d / %d", settled, total), midY+2*lineH, overlayDim)
	}
}

func drawCentered(dst draw.Image, face font.Face, text string, baseline int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(text)
	x := (fixed.I(dst.Bounds().Dx()) - width) / 2
	d.Dot = fixed.Point26_6{X: x, Y: fixed.I(baseline)}
	d.DrawString(text)
}
