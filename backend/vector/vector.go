// Package vector renders PDF documents in pure Go.
//
// Pages are parsed with github.com/ledongthuc/pdf, their content streams are
// interpreted into paths and rasterized with golang.org/x/image/vector
// through internal/raster. The renderer covers paths, strokes, clipping,
// DeviceGray/RGB/CMYK colour, 8-bit image XObjects, form XObjects and text
// drawn with a substitute face. Embedded fonts, shadings and patterns are
// not rendered.
package vector

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/gogpu/projektor"
)

// Name is the registry name of this backend.
const Name = "Vector"

var (
	errInvalidZoom = errors.New("vector: zoom must be positive")
	errNoPage      = errors.New("vector: page object missing")
	errTooLarge    = errors.New("vector: page exceeds the pixel limit")
)

// Option configures a Backend.
type Option func(*Backend)

// WithBackground sets the paper colour painted before the page content.
// The default is opaque white.
func WithBackground(c color.Color) Option {
	return func(b *Backend) {
		if c != nil {
			b.background = c
		}
	}
}

// Backend opens PDF documents.
type Backend struct {
	background color.Color
}

// New creates a vector backend.
func New(opts ...Option) *Backend {
	b := &Backend{background: color.White}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "Vector".
func (b *Backend) Name() string { return Name }

// Open parses the cross-reference table and page tree of the PDF at path.
func (b *Backend) Open(path string) (doc projektor.Document, err error) {
	var f *os.File
	defer func() {
		if r := recover(); r != nil {
			if f != nil {
				_ = f.Close()
			}
			doc = nil
			err = &projektor.OpenError{Backend: Name, Path: path, Err: fmt.Errorf("vector: malformed document: %v", r)}
		}
	}()

	f, rd, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		return nil, &projektor.OpenError{Backend: Name, Path: path, Err: err}
	}

	d := &Document{
		file:       f,
		reader:     rd,
		background: b.background,
		desc: projektor.Description{
			Title:    projektor.TitleFromPath(path),
			NumPages: rd.NumPage(),
		},
	}
	projektor.Logger().Info("vector: document opened", "path", path, "pages", d.desc.NumPages)
	return d, nil
}

// Document is an open PDF document.
type Document struct {
	file       *os.File
	reader     *pdf.Reader
	background color.Color
	desc       projektor.Description
}

// Description returns the last computed description.
func (d *Document) Description() projektor.Description { return d.desc }

// Render interprets the page content at zoom*72 dpi into a BGRA32 surface.
// The surface is round(box*zoom) pixels per axis, where box is the crop box
// (or media box) after page rotation.
func (d *Document) Render(page int, zoom float64) (s *projektor.Surface, err error) {
	if d.reader == nil {
		return nil, d.renderError(page, zoom, projektor.ErrClosed)
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return nil, d.renderError(page, zoom, errInvalidZoom)
	}
	if page < 1 || page > d.desc.NumPages {
		return nil, d.renderError(page, zoom, fmt.Errorf("vector: page %d out of range [1, %d]", page, d.desc.NumPages))
	}

	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = d.renderError(page, zoom, fmt.Errorf("vector: malformed page: %v", r))
		}
	}()

	start := time.Now()
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, d.renderError(page, zoom, errNoPage)
	}

	geom := pageGeometry(p.V)
	if a := geom.area(zoom); a > maxPagePixels || math.IsNaN(a) {
		return nil, d.renderError(page, zoom, errTooLarge)
	}
	size := geom.size(zoom)
	if size.X < 1 || size.Y < 1 {
		return nil, d.renderError(page, zoom, fmt.Errorf("vector: page scales to %dx%d pixels", size.X, size.Y))
	}

	canvas := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(d.background), image.Point{}, draw.Src)

	r := newRenderer(canvas, geom.device(zoom))
	defer r.close()
	r.run(p.V.Key("Contents"), inherited(p.V, "Resources"))

	s, err = projektor.SurfaceFromRGBA(canvas, projektor.FormatBGRA32)
	if err != nil {
		return nil, d.renderError(page, zoom, err)
	}

	unit := geom.size(1)
	d.desc.Width = unit.X
	d.desc.Height = unit.Y

	projektor.Logger().Debug("vector: page rendered",
		"page", page, "zoom", zoom,
		"width", size.X, "height", size.Y,
		"ops", r.ops,
		"elapsed", time.Since(start))
	return s, nil
}

// Close closes the underlying file.
func (d *Document) Close() error {
	if d.reader == nil {
		return projektor.ErrClosed
	}
	err := d.file.Close()
	d.file = nil
	d.reader = nil
	return err
}

func (d *Document) renderError(page int, zoom float64, err error) error {
	return &projektor.RenderError{Backend: Name, Page: page, Zoom: zoom, Err: err}
}
