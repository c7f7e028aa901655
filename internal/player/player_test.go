package player

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/frames"
	"github.com/ivlev/scrollseq/internal/source"
)

var palette = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
}

type fetchFunc func(ctx context.Context, ref string) (io.ReadCloser, error)

func (f fetchFunc) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	return f(ctx, ref)
}

func encodeSolid(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestPlayer builds a player over len(palette) 16x9 frames. Frames listed
// in holes fail to load. Loading completes when gate is closed.
func newTestPlayer(t *testing.T, gate <-chan struct{}, holes ...int) (*Player, *frames.Loader) {
	t.Helper()
	data := map[string][]byte{}
	for i, c := range palette {
		data[source.AssetRef("seq/", i+1, "png")] = encodeSolid(t, 16, 9, c)
	}
	for _, h := range holes {
		delete(data, source.AssetRef("seq/", h+1, "png"))
	}

	fetcher := fetchFunc(func(ctx context.Context, ref string) (io.ReadCloser, error) {
		<-gate
		b, ok := data[ref]
		if !ok {
			return nil, errors.New("not found")
		}
		return io.NopCloser(bytes.NewReader(b)), nil
	})

	cfg := &config.Config{FrameCount: len(palette), ImagesPath: "seq/", ImageExtension: "png", Width: 160, Height: 90, ScrollPages: 2}
	cfg.ApplyDefaults()

	loader, err := frames.NewLoader(cfg.ImagesPath, cfg.ImageExtension, cfg.FrameCount, fetcher)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, loader), loader
}

func opened() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func waitReady(t *testing.T, p *Player, l *frames.Loader) {
	t.Helper()
	select {
	case <-l.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("frames never settled")
	}
	p.Tick()
	if !p.Ready() {
		t.Fatal("player not ready after barrier")
	}
}

func center(t *testing.T, p *Player) color.RGBA {
	t.Helper()
	img, _ := p.Surface()
	b := img.Bounds()
	return img.RGBAAt(b.Dx()/2, b.Dy()/2)
}

func TestLoadingOverlay(t *testing.T) {
	gate := make(chan struct{})
	p, l := newTestPlayer(t, gate)
	p.Start(context.Background())

	p.Scroll(45)
	p.Tick()
	if p.Ready() {
		t.Fatal("ready before frames settled")
	}
	img, changed := p.Surface()
	if !changed {
		t.Error("Expected loading overlay to mark the surface changed")
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Expected black overlay, got %v", got)
	}

	p.Tick()
	if _, changed := p.Surface(); changed {
		t.Error("Overlay must not redraw without progress")
	}

	close(gate)
	waitReady(t, p, l)
	// scrolled to the middle during loading: frame 2 is shown after ready
	if got := center(t, p); got != palette[2] {
		t.Errorf("Expected frame 2 after ready, got %v", got)
	}
}

func TestFirstFrameOnReady(t *testing.T) {
	p, l := newTestPlayer(t, opened())
	p.Start(context.Background())
	waitReady(t, p, l)

	img, changed := p.Surface()
	if !changed {
		t.Error("Expected surface changed after ready")
	}
	if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 90 {
		t.Errorf("Unexpected canvas size %v", img.Bounds())
	}
	if got := center(t, p); got != palette[0] {
		t.Errorf("Expected frame 0, got %v", got)
	}
}

func TestScrollSelectsFrame(t *testing.T) {
	p, l := newTestPlayer(t, opened())
	p.Start(context.Background())
	waitReady(t, p, l)

	// range is 90px: 45px = progress 0.5 = frame 2
	p.Scroll(45)
	if p.Index() != 2 {
		t.Fatalf("Expected index 2, got %d", p.Index())
	}
	p.Tick()
	if got := center(t, p); got != palette[2] {
		t.Errorf("Expected frame 2, got %v", got)
	}

	// several scrolls before a refresh paint only the last one
	p.Scroll(10)
	p.Scroll(10)
	p.Scroll(1000)
	p.Tick()
	if got := center(t, p); got != palette[4] {
		t.Errorf("Expected last frame, got %v", got)
	}

	p.ScrollTo(0)
	p.Tick()
	if got := center(t, p); got != palette[0] {
		t.Errorf("Expected frame 0, got %v", got)
	}
}

func TestScrollOverHoleKeepsPrevious(t *testing.T) {
	p, l := newTestPlayer(t, opened(), 3)
	p.Start(context.Background())
	waitReady(t, p, l)

	p.ScrollTo(0.5)
	p.Tick()
	p.ScrollTo(0.75) // frame 3 is a hole
	p.Tick()
	if got := center(t, p); got != palette[2] {
		t.Errorf("Expected frame 2 to stay on screen, got %v", got)
	}
}

func TestResizeAfterReady(t *testing.T) {
	p, l := newTestPlayer(t, opened())
	p.Start(context.Background())
	waitReady(t, p, l)

	p.ScrollTo(0.25)
	p.Tick()
	p.Resize(320, 240)

	img, changed := p.Surface()
	if !changed {
		t.Error("Expected resize to change the surface")
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Fatalf("Canvas not resized: %v", img.Bounds())
	}
	if got := center(t, p); got != palette[1] {
		t.Errorf("Expected frame 1 repainted, got %v", got)
	}
	// 16x9 into 320x240 is 320x180, letterboxed from y=30
	if got := img.RGBAAt(160, 20); got.A != 0 {
		t.Errorf("Expected letterbox above the frame, got %v", got)
	}
	if p.Index() != 1 {
		t.Errorf("Resize changed the selected frame to %d", p.Index())
	}
}

func TestMinimiseKeepsScrollPosition(t *testing.T) {
	p, l := newTestPlayer(t, opened())
	p.Start(context.Background())
	waitReady(t, p, l)

	p.ScrollTo(0.75)
	p.Tick()
	before := p.Index()

	p.Resize(0, 0)
	p.Resize(160, 90)
	p.Tick()

	if p.Index() != before {
		t.Errorf("Expected index %d after restore, got %d", before, p.Index())
	}
	if got := center(t, p); got != palette[before] {
		t.Errorf("Expected frame %d on screen, got %v", before, got)
	}

	// the next scroll continues from the restored position
	p.Scroll(1000)
	p.Tick()
	if got := center(t, p); got != palette[len(palette)-1] {
		t.Errorf("Expected last frame, got %v", got)
	}
}

func TestResizeWhileLoading(t *testing.T) {
	gate := make(chan struct{})
	p, l := newTestPlayer(t, gate)
	p.Start(context.Background())
	p.Tick()

	p.Resize(200, 100)
	p.Tick()
	img, _ := p.Surface()
	if img.Bounds().Dx() != 200 {
		t.Errorf("Expected overlay resized, got %v", img.Bounds())
	}

	close(gate)
	waitReady(t, p, l)
	img, _ = p.Surface()
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("Expected first frame at the resized size, got %v", img.Bounds())
	}
}

type memSink struct {
	frames []*image.RGBA
}

func (s *memSink) WriteFrame(img *image.RGBA) error {
	cp := image.NewRGBA(img.Rect)
	copy(cp.Pix, img.Pix)
	s.frames = append(s.frames, cp)
	return nil
}

func TestRunHeadless(t *testing.T) {
	p, _ := newTestPlayer(t, opened())
	sink := &memSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RunHeadless(ctx, p, HeadlessConfig{Hz: 500, Step: 9}, sink); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}

	if p.Document().Progress() != 1 {
		t.Errorf("Expected sweep to reach the end, progress %f", p.Document().Progress())
	}
	if len(sink.frames) < len(palette) {
		t.Fatalf("Expected at least %d frames, got %d", len(palette), len(sink.frames))
	}
	last := sink.frames[len(sink.frames)-1]
	if got := last.RGBAAt(80, 45); got != palette[len(palette)-1] {
		t.Errorf("Expected last frame at the end of the sweep, got %v", got)
	}
}

func TestRunHeadlessWithoutStep(t *testing.T) {
	p, _ := newTestPlayer(t, opened())
	sink := &memSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RunHeadless(ctx, p, HeadlessConfig{Hz: 500}, sink); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}
	if !p.Ready() {
		t.Fatal("Expected frames shown before returning")
	}
	if len(sink.frames) == 0 {
		t.Fatal("Expected the first frame written")
	}
	last := sink.frames[len(sink.frames)-1]
	if got := last.RGBAAt(80, 45); got != palette[0] {
		t.Errorf("Expected frame 0, got %v", got)
	}
}

func TestRunHeadlessTicks(t *testing.T) {
	gate := make(chan struct{})
	p, _ := newTestPlayer(t, gate)
	defer close(gate)

	if err := RunHeadless(context.Background(), p, HeadlessConfig{Hz: 1000, Ticks: 3}, nil); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}
	if p.Ready() {
		t.Error("Expected loader still blocked")
	}
}

func TestRunHeadlessCancel(t *testing.T) {
	gate := make(chan struct{})
	p, _ := newTestPlayer(t, gate)
	defer close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := RunHeadless(ctx, p, HeadlessConfig{Hz: 100}, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestPNGSink(t *testing.T) {
	sink := &PNGSink{Dir: t.TempDir()}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 2; i++ {
		if err := sink.WriteFrame(img); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}
	if sink.Written() != 2 {
		t.Errorf("Expected 2 frames written, got %d", sink.Written())
	}
}
