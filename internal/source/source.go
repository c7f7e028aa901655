package source

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// PageSource yields the pages that the asset pipeline turns into frames.
type PageSource interface {
	PageCount() int
	PageSize(index int) (width, height int, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a PageSource for path: a PDF file or a directory of images.
func Open(path string) (PageSource, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewPDFSource(path)
	}
	return NewImageDirSource(path)
}

// PDFSource renders PDF pages with MuPDF.
type PDFSource struct {
	mu   sync.Mutex
	doc  *fitz.Document
	path string
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFSource{doc: doc, path: path}, nil
}

func (s *PDFSource) PageCount() int {
	return s.doc.NumPage()
}

func (s *PDFSource) PageSize(index int) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rect, err := s.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return rect.Dx(), rect.Dy(), nil
}

// RenderPage opens its own document handle so pages can render in parallel.
func (s *PDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	doc, err := fitz.New(s.path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(index, float64(dpi))
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
