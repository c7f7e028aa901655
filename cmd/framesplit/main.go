package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/extract"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/system"
)

func main() {
	inputPtr := flag.String("input", "", "PDF file or directory of images")
	outputPtr := flag.String("output", "frames", "Directory for the numbered frames")
	extPtr := flag.String("ext", "jpg", "Frame format: jpg or png")
	widthPtr := flag.Int("max-width", 1920, "Maximum frame width (0 = keep)")
	dpiPtr := flag.Int("dpi", 150, "DPI for PDF pages")
	qualityPtr := flag.Int("quality", 85, "JPEG quality")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Workers")
	configPtr := flag.String("write-config", "", "Also write a scrollseq config for the frames to this file")

	flag.Parse()

	if *inputPtr == "" {
		log.Fatalf("[-] Error: -input is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	system.InitResourceLimits(2048)

	src, err := source.Open(*inputPtr)
	if err != nil {
		log.Fatalf("[-] Source init error: %v", err)
	}
	defer src.Close()

	fmt.Printf("[*] Source: %s | Pages: %d\n", *inputPtr, src.PageCount())
	start := time.Now()

	n, err := extract.Run(ctx, src, extract.Options{
		OutputDir: *outputPtr,
		Extension: *extPtr,
		MaxWidth:  *widthPtr,
		DPI:       *dpiPtr,
		Quality:   *qualityPtr,
		Workers:   *workersPtr,
	})
	if err != nil {
		log.Fatalf("[-] Extract error after %d frames: %v", n, err)
	}

	if *configPtr != "" {
		cfg := &config.Config{
			FrameCount:     n,
			ImagesPath:     *outputPtr + string(os.PathSeparator),
			ImageExtension: extract.FrameExt(*extPtr),
		}
		cfg.ApplyDefaults()
		if err := config.Write(cfg, *configPtr); err != nil {
			log.Fatalf("[-] Config write error: %v", err)
		}
		fmt.Printf("[*] Config written: %s\n", *configPtr)
	}

	fmt.Printf("[+++] %d frames in %s (%.2fs)\n", n, *outputPtr, time.Since(start).Seconds())
}
