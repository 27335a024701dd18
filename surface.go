package projektor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Surface errors.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("projektor: invalid surface dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("projektor: invalid pixel format")

	// ErrInvalidStride is returned when stride is less than the tight row size.
	ErrInvalidStride = errors.New("projektor: stride too small for width")

	// ErrDataTooSmall is returned when a source buffer is smaller than required.
	ErrDataTooSmall = errors.New("projektor: data buffer too small")
)

// strideAlign is the row alignment used by NewSurface.
const strideAlign = 4

// Surface is a rectangular pixel buffer with an explicit row stride.
//
// A Surface is either fully valid or not constructed at all: the constructors
// validate dimensions, format and stride, and the buffer length is always
// exactly Stride()*Height(). Bytes between the end of a row's pixels and the
// next row (stride padding) are not part of the image.
//
// Surfaces handed out by a Document are not modified afterwards, so they may
// be shared with a presentation layer without copying.
type Surface struct {
	width  int
	height int
	stride int
	format Format
	pix    []byte
}

// NewSurface creates a zeroed surface whose stride is the tight row size
// rounded up to a multiple of 4 bytes.
func NewSurface(width, height int, format Format) (*Surface, error) {
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	stride := (format.RowBytes(width) + strideAlign - 1) &^ (strideAlign - 1)
	return NewSurfaceWithStride(width, height, format, stride)
}

// NewSurfaceWithStride creates a zeroed surface with a custom stride.
// Stride must be at least format.RowBytes(width).
func NewSurfaceWithStride(width, height int, format Format, stride int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if stride < format.RowBytes(width) {
		return nil, ErrInvalidStride
	}
	return &Surface{
		width:  width,
		height: height,
		stride: stride,
		format: format,
		pix:    make([]byte, stride*height),
	}, nil
}

// Width returns the width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the height in pixels.
func (s *Surface) Height() int { return s.height }

// Stride returns the distance in bytes between the starts of adjacent rows.
func (s *Surface) Stride() int { return s.stride }

// Format returns the pixel format.
func (s *Surface) Format() Format { return s.format }

// Pix returns the whole pixel buffer, including stride padding.
func (s *Surface) Pix() []byte { return s.pix }

// Size returns the surface dimensions as a point.
func (s *Surface) Size() image.Point { return image.Pt(s.width, s.height) }

// Row returns the visible bytes of row y, without stride padding.
func (s *Surface) Row(y int) []byte {
	off := y * s.stride
	return s.pix[off : off+s.format.RowBytes(s.width)]
}

// CopyRows copies tightly or loosely packed rows from src into the surface,
// one row at a time. srcStride is the distance between source rows and must
// be at least the tight row size.
func (s *Surface) CopyRows(src []byte, srcStride int) error {
	rowBytes := s.format.RowBytes(s.width)
	if srcStride < rowBytes {
		return ErrInvalidStride
	}
	if len(src) < srcStride*(s.height-1)+rowBytes {
		return ErrDataTooSmall
	}
	for y := 0; y < s.height; y++ {
		copy(s.pix[y*s.stride:y*s.stride+rowBytes], src[y*srcStride:y*srcStride+rowBytes])
	}
	return nil
}

// Equal reports whether both surfaces have the same size, format and visible
// pixels. Stride padding is ignored.
func (s *Surface) Equal(o *Surface) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.width != o.width || s.height != o.height || s.format != o.format {
		return false
	}
	for y := 0; y < s.height; y++ {
		if !bytes.Equal(s.Row(y), o.Row(y)) {
			return false
		}
	}
	return true
}

// Digest returns a BLAKE2b-256 digest of the surface size, format and
// visible pixels. Two surfaces that are Equal have the same digest.
func (s *Surface) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	var hdr [9]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(s.width))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(s.height))
	hdr[8] = byte(s.format)
	h.Write(hdr[:])
	for y := 0; y < s.height; y++ {
		h.Write(s.Row(y))
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// RGBAAt returns the premultiplied color of a single pixel.
// Out-of-bounds coordinates return transparent black.
func (s *Surface) RGBAAt(x, y int) color.RGBA {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return color.RGBA{}
	}
	info := s.format.Info()
	i := y*s.stride + x*info.BytesPerPixel
	c := color.RGBA{
		R: s.pix[i+info.R],
		G: s.pix[i+info.G],
		B: s.pix[i+info.B],
		A: 0xff,
	}
	if info.A >= 0 {
		c.A = s.pix[i+info.A]
	}
	return c
}

// At implements the image.Image interface.
func (s *Surface) At(x, y int) color.Color {
	return s.RGBAAt(x, y)
}

// Bounds implements the image.Image interface.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// ColorModel implements the image.Image interface.
func (s *Surface) ColorModel() color.Model {
	return color.RGBAModel
}

// ToImage converts the surface to an image.RGBA.
func (s *Surface) ToImage() *image.RGBA {
	img := image.NewRGBA(s.Bounds())
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetRGBA(x, y, s.RGBAAt(x, y))
		}
	}
	return img
}

// SavePNG saves the surface to a PNG file.
func (s *Surface) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SurfaceFromRGBA converts a premultiplied image.RGBA into a new surface of
// the given format, row by row. Converting to FormatRGB24 composites the
// pixels over white.
func SurfaceFromRGBA(img *image.RGBA, format Format) (*Surface, error) {
	b := img.Bounds()
	s, err := NewSurface(b.Dx(), b.Dy(), format)
	if err != nil {
		return nil, err
	}
	if format == FormatRGBA32 {
		off := img.PixOffset(b.Min.X, b.Min.Y)
		if err := s.CopyRows(img.Pix[off:], img.Stride); err != nil {
			return nil, err
		}
		return s, nil
	}

	info := format.Info()
	bpp := info.BytesPerPixel
	for y := 0; y < s.height; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := s.Row(y)
		for x := 0; x < s.width; x++ {
			r, g, bl, a := src[4*x], src[4*x+1], src[4*x+2], src[4*x+3]
			d := dst[x*bpp : x*bpp+bpp]
			if info.A < 0 {
				// Premultiplied over white: c + (1-a).
				d[info.R] = r + (0xff - a)
				d[info.G] = g + (0xff - a)
				d[info.B] = bl + (0xff - a)
				continue
			}
			d[info.R], d[info.G], d[info.B], d[info.A] = r, g, bl, a
		}
	}
	return s, nil
}
