// Package player ties a frame loader, a scrolling document and a renderer
// together and drives them from a host event loop (a window or a ticker).
package player

import (
	"context"
	"fmt"
	"image"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/frames"
	"github.com/ivlev/scrollseq/internal/renderer"
	"github.com/ivlev/scrollseq/internal/scroll"
	"github.com/ivlev/scrollseq/internal/system"
)

// Loader is the part of frames.Loader the player depends on.
type Loader interface {
	Start(ctx context.Context)
	Ready() <-chan struct{}
	FrameSet() *frames.FrameSet
	Settled() int
	Count() int
}

type Player struct {
	cfg    *config.Config
	loader Loader
	doc    *scroll.Document
	canvas *renderer.Canvas
	r      *renderer.Renderer

	ready   bool
	dirty   bool
	settled int
}

func New(cfg *config.Config, loader Loader) *Player {
	return &Player{
		cfg:     cfg,
		loader:  loader,
		doc:     scroll.NewDocument(cfg.ScrollPages, cfg.Height),
		canvas:  renderer.NewCanvas(cfg.Width, cfg.Height),
		settled: -1,
	}
}

// Start begins loading frames in the background.
func (p *Player) Start(ctx context.Context) {
	p.loader.Start(ctx)
}

func (p *Player) Ready() bool { return p.ready }

func (p *Player) Document() *scroll.Document { return p.doc }

// Index is the frame selected by the current scroll position.
func (p *Player) Index() int {
	return scroll.FrameIndex(p.doc.Progress(), p.loader.Count())
}

// Scroll moves the document by dy pixels. Once frames are loaded the new
// index is scheduled for the next refresh.
func (p *Player) Scroll(dy float64) {
	if !p.doc.ScrollBy(dy) {
		return
	}
	p.requestFrame()
}

// ScrollTo jumps to a progress value in [0,1].
func (p *Player) ScrollTo(progress float64) {
	if !p.doc.SetProgress(progress) {
		return
	}
	p.requestFrame()
}

func (p *Player) requestFrame() {
	if p.ready {
		p.r.Request(p.Index())
	}
}

// Resize tracks a new viewport size. Before the frames are ready only the
// loading screen follows it. Empty sizes (a minimised window) are ignored.
func (p *Player) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	p.doc.SetViewport(h)
	if !p.ready {
		p.canvas.Resize(w, h)
		p.settled = -1
		return
	}
	p.r.Resize(w, h)
}

// Tick is one display refresh: it completes the load transition when the
// barrier has passed, then paints at most one pending frame.
func (p *Player) Tick() {
	if !p.ready {
		select {
		case <-p.loader.Ready():
			p.onReady()
		default:
			p.drawLoading()
			return
		}
	}
	p.r.Flush()
}

func (p *Player) onReady() {
	set := p.loader.FrameSet()
	p.r = renderer.New(set, p.canvas)
	p.ready = true

	if missing := set.Missing(); len(missing) > 0 {
		fmt.Printf("[*] Frames ready: %d/%d (missing %v)\n", set.Len()-len(missing), set.Len(), missing)
	} else {
		fmt.Printf("[*] Frames ready: %d\n", set.Len())
	}
	if _, err := system.CheckMemory(set.DecodedBytes()); err != nil {
		fmt.Printf("[!] %v\n", err)
	}

	p.canvas.Clear()
	p.r.Paint(0)
	// one explicit sizing pass at the selected index, as a resize would do
	p.r.Select(p.Index())
	p.r.Resize(p.canvas.Width(), p.canvas.Height())
}

func (p *Player) drawLoading() {
	settled := p.loader.Settled()
	if settled == p.settled {
		return
	}
	p.settled = settled
	renderer.DrawLoading(p.canvas, p.cfg.LoadingText, settled, p.loader.Count())
	p.dirty = true
}

// Surface returns the current canvas pixels and whether they changed since
// the previous call.
func (p *Player) Surface() (*image.RGBA, bool) {
	changed := p.dirty
	p.dirty = false
	if p.r != nil {
		if p.r.TakeDirty() {
			changed = true
		}
		return p.r.Canvas().Image(), changed
	}
	return p.canvas.Image(), changed
}
