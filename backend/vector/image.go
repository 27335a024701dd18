package vector

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ledongthuc/pdf"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/projektor"
	"github.com/gogpu/projektor/internal/raster"
)

const (
	// maxImagePixels bounds the sample count of a single image XObject.
	maxImagePixels = 1 << 26

	// maxPagePixels bounds the canvas of one rendered page.
	maxPagePixels = 1 << 26
)

// placeholder is painted where an image cannot be decoded.
var placeholder = color.RGBA{0xc0, 0xc0, 0xc0, 0xff}

var errUnsupportedImage = errors.New("vector: unsupported image")

// drawImage draws an image XObject into the unit square of user space.
func (r *renderer) drawImage(x pdf.Value) {
	img, err := r.decodeImage(x)
	if err != nil {
		projektor.Logger().Debug("vector: image replaced by placeholder", "err", err)
		var unit raster.Path
		m := r.gs.ctm
		unit.Polygon(
			m.Apply(raster.Pt(0, 0)),
			m.Apply(raster.Pt(1, 0)),
			m.Apply(raster.Pt(1, 1)),
			m.Apply(raster.Pt(0, 1)),
		)
		raster.Fill(r.dst, &unit, image.NewUniform(placeholder), r.gs.clip)
		return
	}

	// Image space has its origin at the top-left sample; the unit square
	// has it at the bottom-left.
	b := img.Bounds()
	m := raster.Matrix{1 / float64(b.Dx()), 0, 0, -1 / float64(b.Dy()), 0, 1}.Mul(r.gs.ctm)
	s2d := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}

	var opts *xdraw.Options
	if r.gs.clip != nil {
		opts = &xdraw.Options{DstMask: r.gs.clip}
	}
	xdraw.BiLinear.Transform(r.dst, s2d, img, b, draw.Over, opts)
}

// decodeImage reads an 8-bit DeviceGray, DeviceRGB or DeviceCMYK image, or
// a 1-bit stencil mask painted in the fill colour. Stream filters other
// than those the parser decodes are reported as errors.
func (r *renderer) decodeImage(x pdf.Value) (img *image.RGBA, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("vector: image stream: %v", p)
		}
	}()

	w, h := int(x.Key("Width").Int64()), int(x.Key("Height").Int64())
	if w <= 0 || h <= 0 || w*h > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d samples", errUnsupportedImage, w, h)
	}

	rc := x.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	if x.Key("ImageMask").Bool() {
		return r.stencil(data, w, h, x.Key("Decode"))
	}

	if bpc := x.Key("BitsPerComponent").Int64(); bpc != 8 {
		return nil, fmt.Errorf("%w: %d bits per component", errUnsupportedImage, bpc)
	}
	n, err := colorComponents(x.Key("ColorSpace"))
	if err != nil {
		return nil, err
	}
	if len(data) < w*h*n {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d samples", errUnsupportedImage, len(data), w, h, n)
	}

	img = image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range w * h {
		p := data[i*n : i*n+n]
		var c color.RGBA
		switch n {
		case 1:
			c = color.RGBA{p[0], p[0], p[0], 0xff}
		case 3:
			c = color.RGBA{p[0], p[1], p[2], 0xff}
		case 4:
			c = cmyk(float64(p[0])/0xff, float64(p[1])/0xff, float64(p[2])/0xff, float64(p[3])/0xff)
		}
		img.SetRGBA(i%w, i/w, c)
	}
	return img, nil
}

// stencil builds a mask image: samples of 0 paint the fill colour unless
// the Decode array is [1 0].
func (r *renderer) stencil(data []byte, w, h int, decode pdf.Value) (*image.RGBA, error) {
	stride := (w + 7) / 8
	if len(data) < stride*h {
		return nil, fmt.Errorf("%w: short stencil mask", errUnsupportedImage)
	}
	paint := byte(0)
	if decode.Len() == 2 && decode.Index(0).Float64() == 1 {
		paint = 1
	}
	fill := withAlpha(r.gs.fill, r.gs.fillAlpha)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		row := data[y*stride:]
		for x := range w {
			if (row[x/8]>>(7-uint(x%8)))&1 == paint {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img, nil
}

// colorComponents returns the number of components of an image colour
// space.
func colorComponents(cs pdf.Value) (int, error) {
	name := cs.Name()
	if cs.Kind() == pdf.Array && cs.Len() > 0 {
		name = cs.Index(0).Name()
		if name == "ICCBased" {
			if n := int(cs.Index(1).Key("N").Int64()); n == 1 || n == 3 || n == 4 {
				return n, nil
			}
		}
	}
	switch name {
	case "DeviceGray", "CalGray", "G":
		return 1, nil
	case "DeviceRGB", "CalRGB", "RGB":
		return 3, nil
	case "DeviceCMYK", "CMYK":
		return 4, nil
	}
	return 0, fmt.Errorf("%w: colour space %q", errUnsupportedImage, name)
}
