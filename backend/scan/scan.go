// Package scan renders scanned documents: page images stored as a single
// image file, a directory of images, or a ZIP/CBZ archive of images.
//
// Scans are resolution-aware like DjVu: a page image of W pixels at the
// configured scan resolution is displayed W*100/dpi pixels wide at zoom 1.
package scan

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF pages
	_ "image/jpeg" // register JPEG pages
	_ "image/png"  // register PNG pages
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/bmp" // register BMP pages
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF pages
	_ "golang.org/x/image/webp" // register WebP pages

	"github.com/gogpu/projektor"
)

// Name is the registry name of this backend.
const Name = "Scan"

// DefaultDPI is the scan resolution assumed when none is configured. At
// 100 dpi one image pixel is one screen pixel at zoom 1.
const DefaultDPI = 100

// maxPagePixels bounds both the decoded page image and the rendered surface.
const maxPagePixels = 1 << 26

var (
	errInvalidZoom  = errors.New("scan: zoom must be positive")
	errPageTooSmall = errors.New("scan: page scales to less than one pixel")
	errTooLarge     = errors.New("scan: page exceeds the pixel limit")
)

// imageExts lists the file extensions treated as pages.
var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// archiveExts lists the file extensions opened as ZIP archives.
var archiveExts = []string{".zip", ".cbz"}

func hasExt(name string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
}

// Option configures a Backend.
type Option func(*Backend)

// WithDPI sets the scan resolution. Non-positive values are ignored.
func WithDPI(dpi float64) Option {
	return func(b *Backend) {
		if dpi > 0 {
			b.dpi = dpi
		}
	}
}

// WithScaler sets the resampling kernel. The default is
// golang.org/x/image/draw.BiLinear.
func WithScaler(s xdraw.Scaler) Option {
	return func(b *Backend) {
		if s != nil {
			b.scaler = s
		}
	}
}

// Backend opens scanned documents.
type Backend struct {
	dpi    float64
	scaler xdraw.Scaler
}

// New creates a scan backend.
func New(opts ...Option) *Backend {
	b := &Backend{dpi: DefaultDPI, scaler: xdraw.BiLinear}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "Scan".
func (b *Backend) Name() string { return Name }

// Open opens a single image, a directory of images or a ZIP/CBZ archive.
// Directory and archive entries are pages in lexical order; other entries
// are skipped. A single file that is not a decodable image fails to open.
func (b *Backend) Open(path string) (projektor.Document, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, &projektor.OpenError{Backend: Name, Path: path, Err: err}
	}

	doc := &Document{
		src:    src,
		dpi:    b.dpi,
		scaler: b.scaler,
		desc: projektor.Description{
			Title:    projektor.TitleFromPath(strings.TrimRight(path, "/")),
			NumPages: src.numPages(),
		},
	}
	projektor.Logger().Info("scan: document opened", "path", path, "pages", doc.desc.NumPages)
	return doc, nil
}

// Document is an open scanned document.
type Document struct {
	src    source
	dpi    float64
	scaler xdraw.Scaler
	desc   projektor.Description
}

// Description returns the last computed description.
func (d *Document) Description() projektor.Description { return d.desc }

// Render decodes the page image and resamples it to
// trunc(size*100*zoom/dpi) pixels per axis. The result is RGB24, with
// transparent areas composited over white.
func (d *Document) Render(page int, zoom float64) (*projektor.Surface, error) {
	if d.src == nil {
		return nil, d.renderError(page, zoom, projektor.ErrClosed)
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return nil, d.renderError(page, zoom, errInvalidZoom)
	}
	idx := page - 1
	if idx < 0 || idx >= d.desc.NumPages {
		return nil, d.renderError(page, zoom, fmt.Errorf("scan: page %d out of range [1, %d]", page, d.desc.NumPages))
	}

	start := time.Now()
	img, err := d.decode(idx)
	if err != nil {
		return nil, d.renderError(page, zoom, err)
	}

	b := img.Bounds()
	if a := area(b.Dx(), b.Dy(), zoom*100/d.dpi); a > maxPagePixels || math.IsNaN(a) {
		return nil, d.renderError(page, zoom, errTooLarge)
	}
	w, h := scaled(b.Dx(), zoom, d.dpi), scaled(b.Dy(), zoom, d.dpi)
	if w < 1 || h < 1 {
		return nil, d.renderError(page, zoom, errPageTooSmall)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	d.scaler.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	s, err := projektor.SurfaceFromRGBA(dst, projektor.FormatRGB24)
	if err != nil {
		return nil, d.renderError(page, zoom, err)
	}

	d.desc.Width = scaled(b.Dx(), 1, d.dpi)
	d.desc.Height = scaled(b.Dy(), 1, d.dpi)

	projektor.Logger().Debug("scan: page rendered",
		"page", page, "zoom", zoom,
		"width", w, "height", h,
		"elapsed", time.Since(start))
	return s, nil
}

// decode reads one page image. The header is checked against
// maxPagePixels before any pixel memory is allocated. The entry is closed
// before returning.
func (d *Document) decode(idx int) (image.Image, error) {
	rc, err := d.src.open(idx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(rc, &head))
	if err != nil {
		return nil, fmt.Errorf("scan: decode %s: %w", d.src.name(idx), err)
	}
	if area(cfg.Width, cfg.Height, 1) > maxPagePixels {
		return nil, fmt.Errorf("scan: %s is %dx%d: %w", d.src.name(idx), cfg.Width, cfg.Height, errTooLarge)
	}

	img, _, err := image.Decode(io.MultiReader(&head, rc))
	if err != nil {
		return nil, fmt.Errorf("scan: decode %s: %w", d.src.name(idx), err)
	}
	return img, nil
}

// Close releases the archive handle, if any.
func (d *Document) Close() error {
	if d.src == nil {
		return projektor.ErrClosed
	}
	err := d.src.close()
	d.src = nil
	return err
}

func (d *Document) renderError(page int, zoom float64, err error) error {
	return &projektor.RenderError{Backend: Name, Page: page, Zoom: zoom, Err: err}
}

// scaled returns trunc(n*100*zoom/dpi), computed in float32 like the DjVu
// page geometry it mirrors.
func scaled(n int, zoom, dpi float64) int {
	return int(float32(n*100) * float32(zoom) / float32(dpi))
}

// area returns the pixel count of a w x h image scaled by k per axis.
func area(w, h int, k float64) float64 {
	return float64(w) * k * float64(h) * k
}

// source enumerates and opens page images.
type source interface {
	numPages() int
	name(i int) string
	open(i int) (io.ReadCloser, error)
	close() error
}

func openSource(path string) (source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	switch {
	case fi.IsDir():
		return openDir(path)
	case hasExt(path, archiveExts):
		return openZip(path)
	default:
		return openFile(path)
	}
}

// fileSource holds page images stored as separate files.
type fileSource struct {
	paths []string
}

func openDir(dir string) (*fileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	src := &fileSource{}
	for _, e := range entries {
		if e.Type().IsRegular() && hasExt(e.Name(), imageExts) {
			src.paths = append(src.paths, filepath.Join(dir, e.Name()))
		}
	}
	// os.ReadDir returns entries sorted by name.
	return src, nil
}

func openFile(path string) (*fileSource, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return nil, fmt.Errorf("scan: not a page image: %w", err)
	}
	return &fileSource{paths: []string{path}}, nil
}

func (s *fileSource) numPages() int     { return len(s.paths) }
func (s *fileSource) name(i int) string { return filepath.Base(s.paths[i]) }
func (s *fileSource) close() error      { return nil }

func (s *fileSource) open(i int) (io.ReadCloser, error) {
	return os.Open(s.paths[i])
}

// zipSource holds page images inside a ZIP archive.
type zipSource struct {
	rc    *zip.ReadCloser
	files []*zip.File
}

func openZip(path string) (*zipSource, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	src := &zipSource{rc: rc}
	for _, f := range rc.File {
		if !f.FileInfo().IsDir() && hasExt(f.Name, imageExts) {
			src.files = append(src.files, f)
		}
	}
	slices.SortFunc(src.files, func(a, b *zip.File) int {
		return strings.Compare(a.Name, b.Name)
	})
	return src, nil
}

func (s *zipSource) numPages() int                     { return len(s.files) }
func (s *zipSource) name(i int) string                 { return s.files[i].Name }
func (s *zipSource) open(i int) (io.ReadCloser, error) { return s.files[i].Open() }
func (s *zipSource) close() error                      { return s.rc.Close() }
