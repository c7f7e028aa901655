package player

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	Hz    int     // refreshes per second
	Step  float64 // pixels scrolled per refresh once frames are ready
	Ticks uint64  // stop after N refreshes (0 = until the end of the document)
}

// FrameSink receives every refreshed canvas.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
}

// RunHeadless drives p from a ticker instead of a window: it waits for the
// frames, then scrolls Step pixels per refresh until the document ends.
// With Step 0 and no tick limit it stops once the first frame is shown.
func RunHeadless(ctx context.Context, p *Player, cfg HeadlessConfig, sink FrameSink) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	p.Start(ctx)

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		wasReady := p.Ready()
		if wasReady && cfg.Step != 0 {
			p.Scroll(cfg.Step)
		}
		p.Tick()

		if img, changed := p.Surface(); changed && sink != nil {
			if err := sink.WriteFrame(img); err != nil {
				return err
			}
		}

		tick++
		if cfg.Ticks > 0 && tick >= cfg.Ticks {
			return nil
		}
		if cfg.Ticks == 0 && done(p, wasReady, cfg.Step) {
			return nil
		}
	}
}

// done reports whether an unbounded run is over. Without a step nothing moves
// after the first frame, so the run ends as soon as the frames are shown.
func done(p *Player, wasReady bool, step float64) bool {
	if step == 0 {
		return p.Ready()
	}
	return wasReady && atEnd(p, step)
}

func atEnd(p *Player, step float64) bool {
	doc := p.Document()
	if step >= 0 {
		return doc.Offset() >= doc.Range()
	}
	return doc.Offset() <= 0
}

// PNGSink writes each frame as Dir/frame_00000.png, frame_00001.png, ...
type PNGSink struct {
	Dir string
	n   int
}

func (s *PNGSink) WriteFrame(img *image.RGBA) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("frame_%05d.png", s.n))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	s.n++
	return f.Close()
}

// Written is the number of frames stored so far.
func (s *PNGSink) Written() int { return s.n }
