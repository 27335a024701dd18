// Package mupdf renders PDF, XPS, EPUB and CBZ documents with MuPDF through
// github.com/gen2brain/go-fitz.
package mupdf

import (
	"errors"
	"image"
	"math"
	"time"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/gogpu/projektor"
)

// Name is the registry name of this backend.
const Name = "MuPDF"

// pointsPerInch is the resolution of MuPDF's page coordinate space.
const pointsPerInch = 72

// maxPagePixels bounds the pixmap of one rendered page.
const maxPagePixels = 1 << 26

var (
	errInvalidZoom = errors.New("mupdf: zoom must be positive")
	errTooLarge    = errors.New("mupdf: page exceeds the pixel limit")
)

// Decoder is the part of *fitz.Document the backend uses.
type Decoder interface {
	NumPage() int
	Bound(page int) (image.Rectangle, error)
	ImageDPI(page int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Option configures a Backend.
type Option func(*Backend)

// WithOpener replaces the function that opens a Decoder for a path.
// The default is fitz.New.
func WithOpener(open func(path string) (Decoder, error)) Option {
	return func(b *Backend) {
		if open != nil {
			b.open = open
		}
	}
}

// Backend opens documents with MuPDF.
type Backend struct {
	open func(path string) (Decoder, error)
}

// New creates a MuPDF backend.
func New(opts ...Option) *Backend {
	b := &Backend{open: openFitz}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func openFitz(path string) (Decoder, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Name returns "MuPDF".
func (b *Backend) Name() string { return Name }

// Open opens the document at path. MuPDF creates its context and document
// together; if either fails nothing is left open.
func (b *Backend) Open(path string) (projektor.Document, error) {
	dec, err := b.open(path)
	if err != nil {
		return nil, &projektor.OpenError{Backend: Name, Path: path, Err: err}
	}

	doc := &Document{
		dec: dec,
		desc: projektor.Description{
			Title:    projektor.TitleFromPath(path),
			NumPages: dec.NumPage(),
		},
	}
	projektor.Logger().Info("mupdf: document opened", "path", path, "pages", doc.desc.NumPages)
	return doc, nil
}

// Document is a document opened by MuPDF.
type Document struct {
	dec  Decoder
	desc projektor.Description
}

// Description returns the last computed description.
func (d *Document) Description() projektor.Description { return d.desc }

// Render rasterizes page at zoom*72 dpi into an RGBA32 surface. MuPDF rounds
// the transformed page bounds outwards to whole pixels.
func (d *Document) Render(page int, zoom float64) (*projektor.Surface, error) {
	if d.dec == nil {
		return nil, d.renderError(page, zoom, projektor.ErrClosed)
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return nil, d.renderError(page, zoom, errInvalidZoom)
	}

	idx := page - 1
	if idx < 0 || idx >= d.desc.NumPages {
		return nil, d.renderError(page, zoom, fitz.ErrPageMissing)
	}

	start := time.Now()
	bound, err := d.dec.Bound(idx)
	if err != nil {
		return nil, d.renderError(page, zoom, err)
	}

	if a := float64(bound.Dx()) * zoom * float64(bound.Dy()) * zoom; a > maxPagePixels {
		return nil, d.renderError(page, zoom, errTooLarge)
	}

	img, err := d.dec.ImageDPI(idx, pointsPerInch*zoom)
	if err != nil {
		return nil, d.renderError(page, zoom, err)
	}

	s, err := projektor.SurfaceFromRGBA(img, projektor.FormatRGBA32)
	if err != nil {
		return nil, d.renderError(page, zoom, err)
	}

	d.desc.Width = bound.Dx()
	d.desc.Height = bound.Dy()

	projektor.Logger().Debug("mupdf: page rendered",
		"page", page, "zoom", zoom,
		"width", s.Width(), "height", s.Height(),
		"elapsed", time.Since(start))
	return s, nil
}

// Close closes the MuPDF document and then its context.
func (d *Document) Close() error {
	if d.dec == nil {
		return projektor.ErrClosed
	}
	err := d.dec.Close()
	d.dec = nil
	return err
}

func (d *Document) renderError(page int, zoom float64, err error) error {
	return &projektor.RenderError{Backend: Name, Page: page, Zoom: zoom, Err: err}
}
