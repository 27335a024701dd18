package scan

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/projektor"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, path string, pages map[string]image.Image, order []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if pages[name] == nil {
			if _, err := w.Write([]byte("not an image")); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := png.Encode(w, pages[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

var (
	red   = color.RGBA{0xff, 0, 0, 0xff}
	blue  = color.RGBA{0, 0, 0xff, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func scanDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "book")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "p02.png"), solid(20, 10, blue))
	writePNG(t, filepath.Join(dir, "p01.png"), solid(40, 60, red))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func open(t *testing.T, b *Backend, path string) *Document {
	t.Helper()
	doc, err := b.Open(path)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}
	t.Cleanup(func() { _ = doc.Close() })
	return doc.(*Document)
}

func TestBackend_Name(t *testing.T) {
	if got := New().Name(); got != "Scan" {
		t.Errorf("Name() = %q, want %q", got, "Scan")
	}
}

func TestBackend_OpenDirectory(t *testing.T) {
	dir := scanDir(t)
	doc := open(t, New(), dir+"/")

	d := doc.Description()
	if d.NumPages != 2 {
		t.Errorf("NumPages = %d, want 2", d.NumPages)
	}
	if d.Title != "book" {
		t.Errorf("Title = %q, want %q", d.Title, "book")
	}

	// Pages follow lexical order, not creation order.
	s, err := doc.Render(1, 1)
	if err != nil {
		t.Fatalf("Render(1) error = %v", err)
	}
	if s.Width() != 40 || s.Height() != 60 {
		t.Errorf("Render(1) size = %dx%d, want 40x60", s.Width(), s.Height())
	}
	if got := s.RGBAAt(20, 30); got != red {
		t.Errorf("Render(1) center = %v, want %v", got, red)
	}
}

func TestBackend_OpenEmptyDirectory(t *testing.T) {
	doc := open(t, New(), t.TempDir())
	if n := doc.Description().NumPages; n != 0 {
		t.Errorf("NumPages = %d, want 0", n)
	}
	if _, err := doc.Render(1, 1); !errors.Is(err, projektor.ErrRenderFailed) {
		t.Errorf("Render(1) on empty document error = %v, want ErrRenderFailed", err)
	}
}

func TestBackend_OpenSingleImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.png")
	writePNG(t, path, solid(30, 50, red))

	doc := open(t, New(), path)
	d := doc.Description()
	if d.NumPages != 1 || d.Title != "receipt.png" {
		t.Errorf("Description() = %+v, want 1 page titled receipt.png", d)
	}
}

func TestBackend_OpenZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comic.cbz")
	writeZip(t, path, map[string]image.Image{
		"02.png": solid(10, 10, blue),
		"01.png": solid(16, 8, red),
	}, []string{"02.png", "readme.txt", "01.png"})

	doc := open(t, New(), path)
	if n := doc.Description().NumPages; n != 2 {
		t.Fatalf("NumPages = %d, want 2", n)
	}
	s, err := doc.Render(1, 1)
	if err != nil {
		t.Fatalf("Render(1) error = %v", err)
	}
	if s.Width() != 16 || s.Height() != 8 {
		t.Errorf("Render(1) size = %dx%d, want 16x8", s.Width(), s.Height())
	}
	s, err = doc.Render(2, 1)
	if err != nil {
		t.Fatalf("Render(2) error = %v", err)
	}
	if got := s.RGBAAt(5, 5); got != blue {
		t.Errorf("Render(2) center = %v, want %v", got, blue)
	}
}

func TestBackend_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("definitely not a png"), 0o600); err != nil {
		t.Fatal(err)
	}
	badZip := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(badZip, []byte("PK?"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.png")},
		{"not an image", bogus},
		{"corrupt archive", badZip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New().Open(tt.path)
			if doc != nil {
				t.Error("Open() returned a document on failure")
			}
			if !errors.Is(err, projektor.ErrOpenFailed) {
				t.Errorf("Open() error = %v, want ErrOpenFailed", err)
			}
			var oe *projektor.OpenError
			if !errors.As(err, &oe) || oe.Backend != Name || oe.Path != tt.path {
				t.Errorf("Open() error = %#v, want OpenError for %q", err, tt.path)
			}
		})
	}
}

func TestDocument_RenderSize(t *testing.T) {
	dir := scanDir(t)

	tests := []struct {
		name  string
		dpi   float64
		zoom  float64
		wantW int
		wantH int
	}{
		{"native", 0, 1, 40, 60},
		{"zoom out", 0, 0.5, 20, 30},
		{"zoom in", 0, 2.5, 100, 150},
		{"quarter truncates", 0, 0.25, 10, 15},
		{"high resolution scan", 200, 1, 20, 30},
		{"low resolution scan", 50, 1.25, 100, 150},
		{"fractional", 300, 1, 13, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := open(t, New(WithDPI(tt.dpi)), dir)
			s, err := doc.Render(1, tt.zoom)
			if err != nil {
				t.Fatalf("Render(1, %v) error = %v", tt.zoom, err)
			}
			if s.Width() != tt.wantW || s.Height() != tt.wantH {
				t.Errorf("Render(1, %v) size = %dx%d, want %dx%d",
					tt.zoom, s.Width(), s.Height(), tt.wantW, tt.wantH)
			}
			if s.Format() != projektor.FormatRGB24 {
				t.Errorf("Format() = %v, want RGB24", s.Format())
			}
		})
	}
}

func TestDocument_RenderUpdatesDescription(t *testing.T) {
	doc := open(t, New(WithDPI(200)), scanDir(t))
	if _, err := doc.Render(2, 1); err != nil {
		t.Fatalf("Render(2) error = %v", err)
	}
	d := doc.Description()
	if d.Width != 10 || d.Height != 5 {
		t.Errorf("Description() size = %dx%d, want 10x5", d.Width, d.Height)
	}
}

func TestDocument_RenderTransparentOverWhite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clear.png")
	writePNG(t, path, image.NewRGBA(image.Rect(0, 0, 8, 8)))

	doc := open(t, New(), path)
	s, err := doc.Render(1, 1)
	if err != nil {
		t.Fatalf("Render(1) error = %v", err)
	}
	if got := s.RGBAAt(4, 4); got != white {
		t.Errorf("transparent pixel = %v, want %v", got, white)
	}
}

func TestDocument_RenderDeterministic(t *testing.T) {
	doc := open(t, New(), scanDir(t))
	a, err := doc.Render(1, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	b, err := doc.Render(1, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) || a.Digest() != b.Digest() {
		t.Error("repeated renders of the same page and zoom differ")
	}
}

func TestDocument_RenderErrors(t *testing.T) {
	dir := scanDir(t)
	if err := os.WriteFile(filepath.Join(dir, "p03.png"), []byte("truncated"), 0o600); err != nil {
		t.Fatal(err)
	}
	doc := open(t, New(), dir)

	tests := []struct {
		name string
		page int
		zoom float64
	}{
		{"page zero", 0, 1},
		{"past end", 4, 1},
		{"zero zoom", 1, 0},
		{"corrupt page", 3, 1},
		{"too small", 2, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := doc.Render(tt.page, tt.zoom)
			if s != nil {
				t.Error("Render() returned a surface on failure")
			}
			if !errors.Is(err, projektor.ErrRenderFailed) {
				t.Errorf("Render(%d, %v) error = %v, want ErrRenderFailed", tt.page, tt.zoom, err)
			}
		})
	}

	// A failed page leaves the document usable.
	if _, err := doc.Render(1, 1); err != nil {
		t.Errorf("Render(1) after failures error = %v", err)
	}
}

// writeHugePNG writes a 1x1 PNG whose header claims w x h pixels.
func writeHugePNG(t *testing.T, path string, w, h uint32) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(1, 1, red)); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// Signature (8), IHDR length (4) and type (4), then width and height.
	binary.BigEndian.PutUint32(b[16:], w)
	binary.BigEndian.PutUint32(b[20:], h)
	binary.BigEndian.PutUint32(b[29:], crc32.ChecksumIEEE(b[12:29]))
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDocument_RenderTooLarge(t *testing.T) {
	dir := scanDir(t)
	writeHugePNG(t, filepath.Join(dir, "p03.png"), 100000, 100000)
	doc := open(t, New(), dir)

	tests := []struct {
		name string
		page int
		zoom float64
	}{
		{"huge image header", 3, 1},
		{"huge zoom", 1, 1e6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := doc.Render(tt.page, tt.zoom)
			if s != nil {
				t.Error("Render() returned a surface for an oversized page")
			}
			if !errors.Is(err, projektor.ErrRenderFailed) {
				t.Errorf("Render(%d, %v) error = %v, want ErrRenderFailed", tt.page, tt.zoom, err)
			}
			if !errors.Is(err, errTooLarge) {
				t.Errorf("Render(%d, %v) error = %v, want errTooLarge", tt.page, tt.zoom, err)
			}
		})
	}

	if _, err := doc.Render(1, 1); err != nil {
		t.Errorf("Render(1) after oversized pages error = %v", err)
	}
}

func TestDocument_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.zip")
	writeZip(t, path, map[string]image.Image{"a.png": solid(4, 4, red)}, []string{"a.png"})

	doc, err := New().Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := doc.Close(); !errors.Is(err, projektor.ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if _, err := doc.Render(1, 1); !errors.Is(err, projektor.ErrClosed) {
		t.Errorf("Render() after Close error = %v, want ErrClosed", err)
	}
}
