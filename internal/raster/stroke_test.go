package raster

import (
	"image"
	"testing"
)

func strokeCoverage(s Stroke, build func(*Path), size int) *image.Alpha {
	var p Path
	build(&p)
	return Coverage(image.Pt(size, size), s.Expand(&p))
}

func TestStroke_HorizontalLine(t *testing.T) {
	s := DefaultStroke()
	s.Width = 4
	m := strokeCoverage(s, func(p *Path) {
		p.MoveTo(Pt(2, 10))
		p.LineTo(Pt(18, 10))
	}, 20)

	if got := m.AlphaAt(10, 9).A; got != 0xff {
		t.Errorf("coverage on the line = %d, want 255", got)
	}
	if got := m.AlphaAt(10, 13).A; got != 0 {
		t.Errorf("coverage beyond half width = %d, want 0", got)
	}
	// Butt cap ends exactly at the endpoint.
	if got := m.AlphaAt(0, 10).A; got != 0 {
		t.Errorf("coverage before butt cap = %d, want 0", got)
	}
}

func TestStroke_Caps(t *testing.T) {
	line := func(p *Path) {
		p.MoveTo(Pt(5, 10))
		p.LineTo(Pt(15, 10))
	}

	tests := []struct {
		cap  LineCap
		want uint8 // coverage at (3, 10), 2px before the start
	}{
		{LineCapButt, 0},
		{LineCapSquare, 0xff},
		{LineCapRound, 0xff},
	}

	for _, tt := range tests {
		s := DefaultStroke()
		s.Width = 8
		s.Cap = tt.cap
		m := strokeCoverage(s, line, 20)
		if got := m.AlphaAt(3, 10).A; got != tt.want {
			t.Errorf("cap %d: coverage at (3,10) = %d, want %d", tt.cap, got, tt.want)
		}
	}
}

func TestStroke_OverlapsDoNotCancel(t *testing.T) {
	// A polyline that doubles back over itself.
	s := DefaultStroke()
	s.Width = 4
	s.Join = LineJoinRound
	m := strokeCoverage(s, func(p *Path) {
		p.MoveTo(Pt(2, 10))
		p.LineTo(Pt(18, 10))
		p.LineTo(Pt(2, 10.5))
	}, 20)

	if got := m.AlphaAt(10, 10).A; got != 0xff {
		t.Errorf("coverage where segments overlap = %d, want 255", got)
	}
}

func TestStroke_ClosedSquare(t *testing.T) {
	s := DefaultStroke()
	s.Width = 2
	m := strokeCoverage(s, func(p *Path) {
		rect(p, 4, 4, 16, 16)
	}, 20)

	// Miter join fills the outer corner.
	if got := m.AlphaAt(3, 3).A; got != 0xff {
		t.Errorf("corner coverage = %d, want 255", got)
	}
	if got := m.AlphaAt(10, 10).A; got != 0 {
		t.Errorf("interior coverage = %d, want 0", got)
	}
	if got := m.AlphaAt(10, 4).A; got == 0 {
		t.Error("edge not covered")
	}
}

func TestStroke_ZeroLength(t *testing.T) {
	dot := func(p *Path) {
		p.MoveTo(Pt(10, 10))
		p.LineTo(Pt(10, 10))
	}
	s := DefaultStroke()
	s.Width = 6

	if m := strokeCoverage(s, dot, 20); m.AlphaAt(10, 10).A != 0 {
		t.Error("butt cap on zero-length subpath drew a mark")
	}
	s.Cap = LineCapRound
	if m := strokeCoverage(s, dot, 20); m.AlphaAt(10, 10).A == 0 {
		t.Error("round cap on zero-length subpath drew nothing")
	}
}

func TestStroke_HairlineWidth(t *testing.T) {
	s := DefaultStroke()
	s.Width = 0
	m := strokeCoverage(s, func(p *Path) {
		p.MoveTo(Pt(0, 5.5))
		p.LineTo(Pt(10, 5.5))
	}, 10)
	if got := m.AlphaAt(5, 5).A; got != 0xff {
		t.Errorf("zero width stroke coverage = %d, want a 1px line", got)
	}
}

func TestSignedAreaOrientation(t *testing.T) {
	var p Path
	segment(&p, Pt(0, 0), Pt(10, 0), 1)
	segment(&p, Pt(10, 0), Pt(0, 0), 1)
	disc(&p, Pt(0, 0), 3)
	for i, sp := range p.Subpaths() {
		if a := signedArea(sp.Points); a >= 0 {
			t.Errorf("subpath %d signed area = %v, want negative", i, a)
		}
	}
}
