package projektor

// Format represents the pixel storage format of a Surface.
type Format uint8

const (
	// FormatRGB24 is 24-bit RGB, stored R, G, B (3 bytes per pixel, no alpha).
	FormatRGB24 Format = iota

	// FormatRGBA32 is 32-bit RGB with premultiplied alpha, stored R, G, B, A.
	// This is the byte order of image.RGBA.
	FormatRGBA32

	// FormatBGRA32 is 32-bit RGB with premultiplied alpha, stored B, G, R, A.
	// This is the in-memory order of a little-endian ARGB32 word.
	FormatBGRA32

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// HasAlpha indicates if the format has an alpha channel.
	HasAlpha bool

	// R, G, B, A are the byte offsets of each channel within a pixel.
	// A is -1 for formats without alpha.
	R, G, B, A int
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatRGB24:  {BytesPerPixel: 3, HasAlpha: false, R: 0, G: 1, B: 2, A: -1},
	FormatRGBA32: {BytesPerPixel: 4, HasAlpha: true, R: 0, G: 1, B: 2, A: 3},
	FormatBGRA32: {BytesPerPixel: 4, HasAlpha: true, R: 2, G: 1, B: 0, A: 3},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// HasAlpha returns true if this format has an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Info().HasAlpha
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a tight row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatRGB24:
		return "RGB24"
	case FormatRGBA32:
		return "RGBA32"
	case FormatBGRA32:
		return "BGRA32"
	default:
		return "Unknown"
	}
}
