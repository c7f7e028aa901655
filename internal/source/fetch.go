package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// AssetRef returns the address of frame n (1-based): {prefix}{n}.{ext}.
func AssetRef(prefix string, n int, ext string) string {
	return prefix + strconv.Itoa(n) + "." + ext
}

// Fetcher opens one frame asset by reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

// NewFetcher returns an HTTP fetcher for http(s) prefixes and a file
// fetcher for everything else.
func NewFetcher(prefix string) Fetcher {
	if IsURL(prefix) {
		return &HTTPFetcher{Client: http.DefaultClient}
	}
	return FileFetcher{}
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(ref)
}

type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
