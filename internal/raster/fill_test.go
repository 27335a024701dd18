package raster

import (
	"image"
	"image/color"
	"testing"
)

func rect(p *Path, x0, y0, x1, y1 float64) {
	p.Polygon(Pt(x0, y0), Pt(x1, y0), Pt(x1, y1), Pt(x0, y1))
}

func TestCoverage_Rect(t *testing.T) {
	var p Path
	rect(&p, 2, 2, 6, 6)
	m := Coverage(image.Pt(8, 8), &p)

	if got := m.AlphaAt(3, 3).A; got != 0xff {
		t.Errorf("inside coverage = %d, want 255", got)
	}
	if got := m.AlphaAt(1, 1).A; got != 0 {
		t.Errorf("outside coverage = %d, want 0", got)
	}
	if got := m.AlphaAt(6, 3).A; got != 0 {
		t.Errorf("coverage right of edge = %d, want 0", got)
	}
}

func TestCoverage_HalfPixel(t *testing.T) {
	var p Path
	rect(&p, 0, 0, 2.5, 4)
	m := Coverage(image.Pt(4, 4), &p)

	if got := m.AlphaAt(2, 1).A; got < 120 || got > 135 {
		t.Errorf("half covered pixel = %d, want about 128", got)
	}
}

func TestCoverage_OutOfBounds(t *testing.T) {
	var p Path
	rect(&p, -1e7, -1e7, 1e7, 1e7)
	m := Coverage(image.Pt(5, 5), &p)
	for y := range 5 {
		for x := range 5 {
			if got := m.AlphaAt(x, y).A; got != 0xff {
				t.Fatalf("coverage at (%d,%d) = %d, want 255", x, y, got)
			}
		}
	}

	var q Path
	rect(&q, 50, 50, 60, 60)
	m = Coverage(image.Pt(5, 5), &q)
	for _, a := range m.Pix {
		if a != 0 {
			t.Fatal("polygon outside the mask produced coverage")
		}
	}
}

func TestCoverage_Hole(t *testing.T) {
	var p Path
	rect(&p, 0, 0, 10, 10)
	// Inner square in reverse orientation.
	p.Polygon(Pt(3, 3), Pt(3, 7), Pt(7, 7), Pt(7, 3))
	m := Coverage(image.Pt(10, 10), &p)

	if got := m.AlphaAt(5, 5).A; got != 0 {
		t.Errorf("hole coverage = %d, want 0", got)
	}
	if got := m.AlphaAt(1, 5).A; got != 0xff {
		t.Errorf("ring coverage = %d, want 255", got)
	}
}

func TestFill_WithClip(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var p Path
	rect(&p, 0, 0, 10, 10)

	var c Path
	rect(&c, 0, 0, 5, 10)
	clip := Coverage(image.Pt(10, 10), &c)

	Fill(dst, &p, image.NewUniform(color.RGBA{0xff, 0, 0, 0xff}), clip)

	if got := dst.RGBAAt(2, 5); got != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("inside clip = %v, want red", got)
	}
	if got := dst.RGBAAt(7, 5); got != (color.RGBA{}) {
		t.Errorf("outside clip = %v, want untouched", got)
	}
}

func TestIntersect(t *testing.T) {
	a := image.NewAlpha(image.Rect(0, 0, 2, 1))
	b := image.NewAlpha(image.Rect(0, 0, 2, 1))
	a.Pix = []uint8{255, 128}
	b.Pix = []uint8{128, 0}
	Intersect(a, b)
	if a.Pix[0] != 128 || a.Pix[1] != 0 {
		t.Errorf("Intersect() = %v, want [128 0]", a.Pix)
	}
}

func TestClipPolygon(t *testing.T) {
	tri := []Point{{-5, 0}, {5, 0}, {5, 10}}
	got := clipPolygon(tri, [4]float64{0, 0, 10, 10})
	for _, p := range got {
		if p.X < 0 || p.X > 10 || p.Y < 0 || p.Y > 10 {
			t.Errorf("clipped point %v outside rectangle", p)
		}
	}
	if len(got) < 3 {
		t.Fatalf("clipped triangle has %d points", len(got))
	}
	if signedArea(got)*signedArea(tri) <= 0 {
		t.Error("clipping changed orientation")
	}
}
