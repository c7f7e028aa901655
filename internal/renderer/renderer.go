package renderer

import "image"

// Frames is the read side of a loaded frame set.
type Frames interface {
	Len() int
	At(i int) (image.Image, bool)
}

// Renderer paints frames into a Canvas. All methods must be called from the
// host's event loop.
type Renderer struct {
	frames  Frames
	canvas  *Canvas
	sched   Scheduler
	current int
	dirty   bool
}

func New(frames Frames, canvas *Canvas) *Renderer {
	return &Renderer{frames: frames, canvas: canvas}
}

func (r *Renderer) Canvas() *Canvas { return r.canvas }

// Current is the most recently selected frame index.
func (r *Renderer) Current() int { return r.current }

// Paint draws frame i. It does nothing and returns false when there is no
// canvas, no frames, or no image in slot i; the previous pixels stay.
func (r *Renderer) Paint(i int) bool {
	if r.canvas == nil || r.frames == nil {
		return false
	}
	img, ok := r.frames.At(i)
	if !ok {
		return false
	}
	r.canvas.DrawContain(img)
	r.dirty = true
	return true
}

// Request selects frame i and schedules a paint for the next Flush.
func (r *Renderer) Request(i int) {
	r.current = i
	r.sched.Request(i)
}

// Select makes i the current frame without scheduling a paint.
func (r *Renderer) Select(i int) {
	r.current = i
}

// Flush paints the latest requested frame. Call once per display refresh.
func (r *Renderer) Flush() bool {
	return r.sched.Flush(func(i int) { r.Paint(i) })
}

// Resize matches the canvas to a w×h viewport and repaints the selected frame.
func (r *Renderer) Resize(w, h int) {
	if r.canvas == nil {
		r.canvas = NewCanvas(w, h)
	} else {
		r.canvas.Resize(w, h)
	}
	r.dirty = true
	r.Paint(r.current)
}

// TakeDirty reports whether the canvas changed since the last call.
func (r *Renderer) TakeDirty() bool {
	d := r.dirty
	r.dirty = false
	return d
}
