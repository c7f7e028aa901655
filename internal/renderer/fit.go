package renderer

import (
	"image"
	"math"
)

// Placement is where a frame lands on the canvas.
type Placement struct {
	X, Y float64 // offset of the top-left corner
	W, H float64 // drawn size
}

// Rect rounds the placement to whole pixels.
func (p Placement) Rect() image.Rectangle {
	x0 := int(math.Round(p.X))
	y0 := int(math.Round(p.Y))
	x1 := int(math.Round(p.X + p.W))
	y1 := int(math.Round(p.Y + p.H))
	return image.Rect(x0, y0, x1, y1)
}

// ContainFit scales an imgW×imgH image to fit entirely inside a
// canvasW×canvasH canvas without distortion, centered on the free axis.
func ContainFit(imgW, imgH, canvasW, canvasH float64) Placement {
	if imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Placement{}
	}

	imgAspect := imgW / imgH
	canvasAspect := canvasW / canvasH

	if imgAspect > canvasAspect {
		// relatively wider: fit width
		h := canvasW / imgAspect
		return Placement{X: 0, Y: (canvasH - h) / 2, W: canvasW, H: h}
	}
	w := canvasH * imgAspect
	return Placement{X: (canvasW - w) / 2, Y: 0, W: w, H: canvasH}
}
