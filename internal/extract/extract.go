// Package extract turns the pages of a source into numbered frame assets
// ({n}.{ext}, n from 1) that a scroll sequence can load.
package extract

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/ivlev/scrollseq/internal/source"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	OutputDir string
	Extension string // jpg or png
	MaxWidth  int    // 0 keeps the rendered width
	DPI       int
	Quality   int // JPEG quality
	Workers   int
}

// FrameExt normalizes a frame extension: no leading dot, lower case, jpeg as jpg.
func FrameExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || ext == "jpeg" {
		return "jpg"
	}
	return ext
}

func (o *Options) applyDefaults() {
	o.Extension = FrameExt(o.Extension)
	if o.DPI <= 0 {
		o.DPI = 150
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 85
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
}

// Run renders every page of src and writes it to OutputDir. It returns the
// number of frames written. Any page failure aborts the run.
func Run(ctx context.Context, src source.PageSource, opts Options) (int, error) {
	opts.applyDefaults()
	if opts.Extension != "jpg" && opts.Extension != "png" {
		return 0, fmt.Errorf("unsupported frame extension %q", opts.Extension)
	}

	pageCount := src.PageCount()
	if pageCount == 0 {
		return 0, fmt.Errorf("source has no pages")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	var done atomic.Int32
	for i := 0; i < pageCount; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.RenderPage(i, opts.DPI)
			if err != nil {
				return fmt.Errorf("render page %d: %w", i+1, err)
			}
			img = Downscale(img, opts.MaxWidth)

			path := filepath.Join(opts.OutputDir, source.AssetRef("", i+1, opts.Extension))
			if err := writeFrame(path, img, opts); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("[>] Ready: %d/%d\n", done.Add(1), pageCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(done.Load()), err
	}
	return pageCount, nil
}

// Downscale shrinks img to maxWidth keeping its aspect ratio. Narrower
// images and maxWidth <= 0 return img unchanged.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := int(float64(b.Dy()) * float64(maxWidth) / float64(b.Dx()))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}

func writeFrame(path string, img image.Image, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch opts.Extension {
	case "png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: opts.Quality})
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
