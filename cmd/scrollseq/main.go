package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ivlev/scrollseq/internal/assets"
	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/frames"
	"github.com/ivlev/scrollseq/internal/player"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/system"
	"github.com/ivlev/scrollseq/internal/video"
	"github.com/ivlev/scrollseq/internal/window"
)

func main() {
	configPtr := flag.String("config", "", "YAML config file")
	framesPtr := flag.Int("frames", 0, "Number of frames (frame_count)")
	pathPtr := flag.String("path", "", "Frame prefix: directory or http(s) URL, frames are {path}{n}.{ext}")
	extPtr := flag.String("ext", config.DefaultImageExtension, "Frame file extension")
	classPtr := flag.String("class", "", "Style classes; opacity-NN sets the canvas opacity")
	titlePtr := flag.String("title", config.DefaultTitle, "Window title")
	widthPtr := flag.Int("width", config.DefaultWidth, "Initial width")
	heightPtr := flag.Int("height", config.DefaultHeight, "Initial height")
	pagesPtr := flag.Float64("pages", config.DefaultScrollPages, "Document height in viewports")
	stepPtr := flag.Float64("step", config.DefaultScrollStep, "Pixels per wheel notch")

	headlessPtr := flag.Bool("headless", false, "Run without a window, sweeping from top to bottom")
	hzPtr := flag.Int("hz", 60, "Refresh rate in headless mode")
	ticksPtr := flag.Uint64("ticks", 0, "Stop after N refreshes in headless mode (0 = end of document)")
	snapshotsPtr := flag.String("snapshots", "", "Headless: write every refreshed frame as PNG into this directory")
	recordPtr := flag.String("record", "", "Headless: record the sweep to a video file with ffmpeg")
	fpsPtr := flag.Int("fps", 30, "Frame rate of the recorded video")

	servePtr := flag.String("serve", "", "Serve a frame directory on this address instead of viewing (e.g. :8080)")
	assetsPtr := flag.String("assets", ".", "Directory served by -serve")
	qrPtr := flag.Bool("qr", false, "Print a QR code of the served URL")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *servePtr != "" {
		srv := assets.NewServer(*assetsPtr, *extPtr)
		err := srv.Run(ctx, *servePtr, func(baseURL string) {
			assets.Announce(baseURL, *assetsPtr, *qrPtr)
		})
		if err != nil {
			log.Fatalf("[-] Asset server error: %v", err)
		}
		return
	}

	cfg := &config.Config{}
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}

	// explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			cfg.FrameCount = *framesPtr
		case "path":
			cfg.ImagesPath = *pathPtr
		case "ext":
			cfg.ImageExtension = *extPtr
		case "class":
			cfg.ClassName = *classPtr
		case "title":
			cfg.Title = *titlePtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "pages":
			cfg.ScrollPages = *pagesPtr
		case "step":
			cfg.ScrollStep = *stepPtr
		}
	})
	cfg.ApplyDefaults()

	if !source.IsURL(cfg.ImagesPath) {
		system.InitResourceLimits(uint64(cfg.FrameCount) + 64)
	}

	loader, err := frames.NewLoader(cfg.ImagesPath, cfg.ImageExtension, cfg.FrameCount, nil)
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	fmt.Printf("[*] Sequence: %s{1..%d}.%s\n", cfg.ImagesPath, cfg.FrameCount, cfg.ImageExtension)
	p := player.New(cfg, loader)

	if !*headlessPtr {
		p.Start(ctx)
		if err := window.Run(cfg, p); err != nil {
			log.Fatalf("[-] Window error: %v", err)
		}
		return
	}

	var sink player.FrameSink
	var rec *video.FFmpegRecorder
	switch {
	case *recordPtr != "":
		rec = video.NewFFmpegRecorder(ctx, *recordPtr, *fpsPtr)
		rec.Encoder = video.BestH264Encoder(ctx)
		sink = rec
	case *snapshotsPtr != "":
		sink = &player.PNGSink{Dir: *snapshotsPtr}
	}

	err = player.RunHeadless(ctx, p, player.HeadlessConfig{Hz: *hzPtr, Step: cfg.ScrollStep, Ticks: *ticksPtr}, sink)
	if rec != nil {
		if cerr := rec.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[-] Headless run error: %v", err)
	}

	if rec != nil {
		fmt.Printf("[+++] Recorded %d frames: %s\n", rec.Frames(), *recordPtr)
	}
	if s, ok := sink.(*player.PNGSink); ok {
		fmt.Printf("[+++] Wrote %d snapshots to %s\n", s.Written(), s.Dir)
	}
}
