// Package frames loads a numbered image sequence concurrently into an
// ordered frame set.
package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"sync/atomic"

	"github.com/ivlev/scrollseq/internal/source"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// FrameSet is the ordered, immutable result of a load. Slot i holds asset i+1;
// failed slots are nil.
type FrameSet struct {
	images []image.Image
}

func (s *FrameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.images)
}

// At returns the image in slot i. ok is false for holes and out-of-range indexes.
func (s *FrameSet) At(i int) (img image.Image, ok bool) {
	if s == nil || i < 0 || i >= len(s.images) {
		return nil, false
	}
	img = s.images[i]
	return img, img != nil
}

// Missing lists the zero-based slots that failed to load.
func (s *FrameSet) Missing() []int {
	if s == nil {
		return nil
	}
	var missing []int
	for i, img := range s.images {
		if img == nil {
			missing = append(missing, i)
		}
	}
	return missing
}

// DecodedBytes estimates the memory held by the set as RGBA pixels.
func (s *FrameSet) DecodedBytes() uint64 {
	if s == nil {
		return 0
	}
	var total uint64
	for _, img := range s.images {
		if img == nil {
			continue
		}
		b := img.Bounds()
		total += uint64(b.Dx()) * uint64(b.Dy()) * 4
	}
	return total
}

// Loader fetches {path}{1..N}.{ext} concurrently and settles once every
// request has either succeeded or failed.
type Loader struct {
	path    string
	ext     string
	count   int
	fetcher source.Fetcher

	started atomic.Bool
	settled atomic.Int32
	ready   chan struct{}
	set     *FrameSet
}

func NewLoader(path, ext string, count int, fetcher source.Fetcher) (*Loader, error) {
	if count < 1 {
		return nil, fmt.Errorf("frame count must be positive, got %d", count)
	}
	if path == "" || ext == "" {
		return nil, errors.New("images path and extension are required")
	}
	if fetcher == nil {
		fetcher = source.NewFetcher(path)
	}
	return &Loader{
		path:    path,
		ext:     ext,
		count:   count,
		fetcher: fetcher,
		ready:   make(chan struct{}),
	}, nil
}

func (l *Loader) Count() int { return l.count }

// Settled reports how many requests have finished so far.
func (l *Loader) Settled() int { return int(l.settled.Load()) }

// Ready is closed once all requests have settled.
func (l *Loader) Ready() <-chan struct{} { return l.ready }

// Start issues all requests and returns immediately. Calling it again is a no-op.
func (l *Loader) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go l.run(ctx)
}

// Load starts the loader and waits for the barrier.
func (l *Loader) Load(ctx context.Context) (*FrameSet, error) {
	l.Start(ctx)
	return l.Wait(ctx)
}

// Wait blocks until all requests have settled or ctx is done.
func (l *Loader) Wait(ctx context.Context) (*FrameSet, error) {
	select {
	case <-l.ready:
		return l.set, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FrameSet returns the loaded set, or nil while requests are in flight.
func (l *Loader) FrameSet() *FrameSet {
	select {
	case <-l.ready:
		return l.set
	default:
		return nil
	}
}

func (l *Loader) run(ctx context.Context) {
	images := make([]image.Image, l.count)

	var g errgroup.Group
	for i := 0; i < l.count; i++ {
		g.Go(func() error {
			defer l.settled.Add(1)
			ref := source.AssetRef(l.path, i+1, l.ext)
			img, err := l.fetch(ctx, ref)
			if err != nil {
				log.Printf("[!] Failed to load image: %s: %v", ref, err)
				return nil
			}
			images[i] = img
			return nil
		})
	}
	g.Wait()

	l.set = &FrameSet{images: images}
	close(l.ready)
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	rc, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
