// Package scroll models a virtual document that scrolls over a fixed viewport
// and maps the scroll position to a frame index.
package scroll

import "math"

// FrameIndex maps progress in [0,1] linearly onto [0, count-1], rounding to
// the nearest frame. Progress outside [0,1] (or NaN) is clamped first.
func FrameIndex(progress float64, count int) int {
	if count <= 1 {
		return 0
	}
	progress = Clamp(progress)
	i := int(math.Round(progress * float64(count-1)))
	if i < 0 {
		return 0
	}
	if i > count-1 {
		return count - 1
	}
	return i
}

func Clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Document is a page Pages viewports tall. Offset is the scroll position of
// the viewport's top edge in pixels.
type Document struct {
	Pages    float64
	viewport float64
	offset   float64
}

func NewDocument(pages float64, viewportHeight int) *Document {
	if pages < 1 {
		pages = 1
	}
	return &Document{Pages: pages, viewport: float64(viewportHeight)}
}

func (d *Document) Height() float64 { return d.Pages * d.viewport }

// Range is the scrollable distance: document height minus one viewport.
func (d *Document) Range() float64 {
	return math.Max(0, d.Height()-d.viewport)
}

func (d *Document) Offset() float64 { return d.offset }

// Progress is Offset relative to Range. A document that cannot scroll reports 0.
func (d *Document) Progress() float64 {
	r := d.Range()
	if r == 0 {
		return 0
	}
	return Clamp(d.offset / r)
}

// ScrollBy moves the offset by dy pixels, clamped to [0, Range]. It reports
// whether the offset changed.
func (d *Document) ScrollBy(dy float64) bool {
	return d.ScrollTo(d.offset + dy)
}

func (d *Document) ScrollTo(offset float64) bool {
	offset = math.Min(math.Max(offset, 0), d.Range())
	if offset == d.offset {
		return false
	}
	d.offset = offset
	return true
}

// SetProgress scrolls to the given fraction of Range.
func (d *Document) SetProgress(p float64) bool {
	return d.ScrollTo(Clamp(p) * d.Range())
}

// SetViewport changes the viewport height and keeps the current progress.
// Heights below 1 are ignored.
func (d *Document) SetViewport(height int) {
	if height < 1 {
		return
	}
	p := d.Progress()
	d.viewport = float64(height)
	d.offset = p * d.Range()
}
