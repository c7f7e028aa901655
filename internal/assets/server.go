// Package assets serves a frame directory over HTTP so a viewer can load a
// sequence from a URL prefix.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/skip2/go-qrcode"
)

const FramesPrefix = "/frames/"

// Manifest describes the sequence found in the served directory.
type Manifest struct {
	FrameCount     int    `json:"frameCount"`
	ImagesPath     string `json:"imagesPath"`
	ImageExtension string `json:"imageExtension"`
}

type Server struct {
	dir    string
	ext    string
	router *chi.Mux
}

func NewServer(dir, ext string) *Server {
	s := &Server{dir: dir, ext: strings.TrimPrefix(ext, ".")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/manifest", s.handleManifest)
	r.Handle(FramesPrefix+"*", http.StripPrefix(FramesPrefix, http.FileServer(http.Dir(dir))))

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	n, err := CountFrames(s.dir, s.ext)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Manifest{
		FrameCount:     n,
		ImagesPath:     FramesPrefix,
		ImageExtension: s.ext,
	})
}

// CountFrames returns the length of the unbroken run 1.ext, 2.ext, ... in dir.
func CountFrames(dir, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	present := make(map[int]bool)
	suffix := "." + ext
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), suffix)
		if e.IsDir() || !ok {
			continue
		}
		if n, err := strconv.Atoi(name); err == nil && n > 0 {
			present[n] = true
		}
	}
	n := 0
	for present[n+1] {
		n++
	}
	return n, nil
}

// Run listens on addr until ctx is cancelled. ready, when non-nil, receives
// the base URL of the frames once the listener is up.
func (s *Server) Run(ctx context.Context, addr string, ready func(baseURL string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	if ready != nil {
		ready(BaseURL(ln.Addr()))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// BaseURL is the frames URL prefix for a listener address. Unspecified hosts
// are replaced by the first non-loopback IPv4 address, so the URL works from
// other devices.
func BaseURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + FramesPrefix
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = outboundIP()
	}
	return "http://" + net.JoinHostPort(host, port) + FramesPrefix
}

func outboundIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return "localhost"
}

// QR renders url as a QR code made of terminal block characters.
func QR(url string) (string, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

// Announce prints where the frames are served and, with qr set, a QR code.
func Announce(baseURL, dir string, qr bool) {
	fmt.Printf("[*] Serving %s at %s\n", filepath.Clean(dir), baseURL)
	if !qr {
		return
	}
	code, err := QR(baseURL)
	if err != nil {
		log.Printf("[!] QR code: %v", err)
		return
	}
	fmt.Print(code)
}
