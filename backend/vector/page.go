package vector

import (
	"image"
	"math"

	"github.com/ledongthuc/pdf"

	"github.com/gogpu/projektor/internal/raster"
)

// letter is the page box assumed when a page has none.
var letter = box{0, 0, 612, 792}

// maxTreeDepth bounds the walk up the page tree for inherited attributes.
const maxTreeDepth = 32

type box struct {
	x0, y0, x1, y1 float64
}

func (b box) width() float64  { return b.x1 - b.x0 }
func (b box) height() float64 { return b.y1 - b.y0 }

// geometry is the visible area of a page and its display rotation.
type geometry struct {
	box    box
	rotate int
}

// inherited looks key up on the page and then on its ancestors.
func inherited(v pdf.Value, key string) pdf.Value {
	for range maxTreeDepth {
		if v.IsNull() {
			break
		}
		if x := v.Key(key); !x.IsNull() {
			return x
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

func readBox(v pdf.Value) (box, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return box{}, false
	}
	b := box{
		math.Min(v.Index(0).Float64(), v.Index(2).Float64()),
		math.Min(v.Index(1).Float64(), v.Index(3).Float64()),
		math.Max(v.Index(0).Float64(), v.Index(2).Float64()),
		math.Max(v.Index(1).Float64(), v.Index(3).Float64()),
	}
	if b.width() <= 0 || b.height() <= 0 {
		return box{}, false
	}
	return b, true
}

func pageGeometry(page pdf.Value) geometry {
	g := geometry{box: letter}
	if b, ok := readBox(inherited(page, "CropBox")); ok {
		g.box = b
	} else if b, ok := readBox(inherited(page, "MediaBox")); ok {
		g.box = b
	}

	rot := int(inherited(page, "Rotate").Int64()) % 360
	if rot < 0 {
		rot += 360
	}
	g.rotate = rot / 90 * 90
	return g
}

// size returns the pixel size of the page at zoom.
func (g geometry) size(zoom float64) image.Point {
	w := int(g.box.width()*zoom + 0.5)
	h := int(g.box.height()*zoom + 0.5)
	if g.rotate == 90 || g.rotate == 270 {
		w, h = h, w
	}
	return image.Pt(w, h)
}

// area returns the pixel count of the page at zoom, in float64 so that
// degenerate boxes cannot overflow.
func (g geometry) area(zoom float64) float64 {
	return g.box.width() * zoom * g.box.height() * zoom
}

// device returns the initial CTM: PDF user space (Y up, origin at the
// box's lower-left) to pixels (Y down), followed by the page rotation.
func (g geometry) device(zoom float64) raster.Matrix {
	m := raster.Translate(-g.box.x0, -g.box.y1).Mul(raster.Scale(zoom, -zoom))
	w := g.box.width() * zoom
	h := g.box.height() * zoom
	switch g.rotate {
	case 90:
		m = m.Mul(raster.Matrix{0, 1, -1, 0, h, 0})
	case 180:
		m = m.Mul(raster.Matrix{-1, 0, 0, -1, w, h})
	case 270:
		m = m.Mul(raster.Matrix{0, -1, 1, 0, 0, w})
	}
	return m
}
