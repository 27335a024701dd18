package projektor

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSurface_Stride(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		format Format
		stride int
	}{
		{"rgb24 padded", 5, FormatRGB24, 16},
		{"rgb24 aligned", 4, FormatRGB24, 12},
		{"rgba32", 5, FormatRGBA32, 20},
		{"bgra32", 1, FormatBGRA32, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSurface(tt.width, 3, tt.format)
			if err != nil {
				t.Fatalf("NewSurface() error = %v", err)
			}
			if s.Stride() != tt.stride {
				t.Errorf("Stride() = %d, want %d", s.Stride(), tt.stride)
			}
			if len(s.Pix()) != s.Stride()*s.Height() {
				t.Errorf("len(Pix()) = %d, want %d", len(s.Pix()), s.Stride()*s.Height())
			}
			if len(s.Row(2)) != tt.format.RowBytes(tt.width) {
				t.Errorf("len(Row(2)) = %d, want %d", len(s.Row(2)), tt.format.RowBytes(tt.width))
			}
		})
	}
}

func TestNewSurface_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		format  Format
		stride  int
		wantErr error
	}{
		{"zero width", 0, 10, FormatRGB24, 0, ErrInvalidDimensions},
		{"negative height", 10, -1, FormatRGB24, 30, ErrInvalidDimensions},
		{"bad format", 10, 10, Format(99), 40, ErrInvalidFormat},
		{"short stride", 10, 10, FormatRGBA32, 39, ErrInvalidStride},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSurfaceWithStride(tt.w, tt.h, tt.format, tt.stride)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSurfaceWithStride() error = %v, want %v", err, tt.wantErr)
			}
			if s != nil {
				t.Error("NewSurfaceWithStride() returned a surface together with an error")
			}
		})
	}
}

func TestSurface_CopyRows(t *testing.T) {
	s, err := NewSurfaceWithStride(2, 2, FormatRGB24, 8)
	if err != nil {
		t.Fatal(err)
	}

	// Tight source rows of 6 bytes.
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if err := s.CopyRows(src, 6); err != nil {
		t.Fatalf("CopyRows() error = %v", err)
	}

	want := []byte{1, 2, 3, 4, 5, 6, 0, 0, 7, 8, 9, 10, 11, 12, 0, 0}
	for i, b := range s.Pix() {
		if b != want[i] {
			t.Fatalf("Pix()[%d] = %d, want %d", i, b, want[i])
		}
	}

	if err := s.CopyRows(src, 5); !errors.Is(err, ErrInvalidStride) {
		t.Errorf("CopyRows(stride 5) error = %v, want %v", err, ErrInvalidStride)
	}
	if err := s.CopyRows(src[:11], 6); !errors.Is(err, ErrDataTooSmall) {
		t.Errorf("CopyRows(short) error = %v, want %v", err, ErrDataTooSmall)
	}
}

func TestSurface_EqualIgnoresPadding(t *testing.T) {
	a, _ := NewSurfaceWithStride(1, 2, FormatRGB24, 4)
	b, _ := NewSurfaceWithStride(1, 2, FormatRGB24, 8)

	copy(a.Row(0), []byte{10, 20, 30})
	copy(b.Row(0), []byte{10, 20, 30})
	a.Pix()[3] = 0xee // padding

	if !a.Equal(b) {
		t.Error("Equal() = false for surfaces differing only in stride padding")
	}
	if a.Digest() != b.Digest() {
		t.Error("Digest() differs for surfaces differing only in stride padding")
	}

	b.Row(1)[0] = 1
	if a.Equal(b) {
		t.Error("Equal() = true for surfaces with different pixels")
	}
	if a.Digest() == b.Digest() {
		t.Error("Digest() equal for surfaces with different pixels")
	}
}

func TestSurface_EqualNil(t *testing.T) {
	var a, b *Surface
	if !a.Equal(b) {
		t.Error("nil.Equal(nil) = false, want true")
	}
	s, _ := NewSurface(1, 1, FormatRGB24)
	if s.Equal(nil) {
		t.Error("Equal(nil) = true, want false")
	}
}

func TestSurface_RGBAAt(t *testing.T) {
	s, _ := NewSurface(2, 1, FormatBGRA32)
	copy(s.Row(0), []byte{0x30, 0x20, 0x10, 0xff, 0, 0, 0x80, 0x80})

	if got, want := s.RGBAAt(0, 0), (color.RGBA{0x10, 0x20, 0x30, 0xff}); got != want {
		t.Errorf("RGBAAt(0,0) = %v, want %v", got, want)
	}
	if got, want := s.RGBAAt(1, 0), (color.RGBA{0x80, 0, 0, 0x80}); got != want {
		t.Errorf("RGBAAt(1,0) = %v, want %v", got, want)
	}
	if got := s.RGBAAt(2, 0); got != (color.RGBA{}) {
		t.Errorf("RGBAAt(2,0) = %v, want transparent", got)
	}

	rgb, _ := NewSurface(1, 1, FormatRGB24)
	copy(rgb.Row(0), []byte{1, 2, 3})
	if got, want := rgb.RGBAAt(0, 0), (color.RGBA{1, 2, 3, 0xff}); got != want {
		t.Errorf("RGB24 RGBAAt(0,0) = %v, want %v", got, want)
	}
}

func TestSurfaceFromRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{0xff, 0, 0, 0xff})
	img.SetRGBA(1, 0, color.RGBA{0, 0x40, 0, 0x80})
	img.SetRGBA(2, 1, color.RGBA{0, 0, 0xff, 0xff})

	for _, f := range []Format{FormatRGB24, FormatRGBA32, FormatBGRA32} {
		t.Run(f.String(), func(t *testing.T) {
			s, err := SurfaceFromRGBA(img, f)
			if err != nil {
				t.Fatalf("SurfaceFromRGBA() error = %v", err)
			}
			if s.Width() != 3 || s.Height() != 2 || s.Format() != f {
				t.Fatalf("surface = %dx%d %v, want 3x2 %v", s.Width(), s.Height(), s.Format(), f)
			}
			if got := s.RGBAAt(0, 0); got != (color.RGBA{0xff, 0, 0, 0xff}) {
				t.Errorf("RGBAAt(0,0) = %v", got)
			}
			if got := s.RGBAAt(2, 1); got != (color.RGBA{0, 0, 0xff, 0xff}) {
				t.Errorf("RGBAAt(2,1) = %v", got)
			}

			want := color.RGBA{0, 0x40, 0, 0x80}
			if !f.HasAlpha() {
				// Composited over white.
				want = color.RGBA{0x7f, 0xbf, 0x7f, 0xff}
			}
			if got := s.RGBAAt(1, 0); got != want {
				t.Errorf("RGBAAt(1,0) = %v, want %v", got, want)
			}
		})
	}
}

func TestSurfaceFromRGBA_SubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{9, 8, 7, 0xff})
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)

	s, err := SurfaceFromRGBA(sub, FormatRGBA32)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.RGBAAt(0, 0); got != (color.RGBA{9, 8, 7, 0xff}) {
		t.Errorf("RGBAAt(0,0) = %v, want {9 8 7 255}", got)
	}
}

func TestSurface_SavePNG(t *testing.T) {
	s, _ := NewSurface(4, 3, FormatRGB24)
	for y := 0; y < 3; y++ {
		row := s.Row(y)
		for i := range row {
			row[i] = byte(40 * y)
		}
	}

	path := filepath.Join(t.TempDir(), "page.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds() != s.Bounds() {
		t.Errorf("Bounds() = %v, want %v", img.Bounds(), s.Bounds())
	}
	r, _, _, _ := img.At(1, 2).RGBA()
	if r>>8 != 80 {
		t.Errorf("decoded red at (1,2) = %d, want 80", r>>8)
	}
}

func TestSurface_ToImage(t *testing.T) {
	s, _ := NewSurface(2, 2, FormatBGRA32)
	copy(s.Row(1), []byte{1, 2, 3, 4, 5, 6, 7, 8})
	img := s.ToImage()
	if got := img.RGBAAt(1, 1); got != (color.RGBA{7, 6, 5, 8}) {
		t.Errorf("ToImage().RGBAAt(1,1) = %v, want {7 6 5 8}", got)
	}
}
