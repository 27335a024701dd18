package raster

import "math"

// LineCap specifies the shape of line endpoints. The values match the PDF
// line cap style operand.
type LineCap int

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
)

// LineJoin specifies the shape of line joins. The values match the PDF line
// join style operand.
type LineJoin int

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota
	// LineJoinRound specifies a rounded join.
	LineJoinRound
	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
)

// MinWidth is the thinnest stroke drawn, in device pixels. A PDF line width
// of 0 means the thinnest line the device can render.
const MinWidth = 1.0

// Stroke defines the style for stroke expansion. Width is in device pixels.
type Stroke struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// DefaultStroke returns the PDF initial stroke state.
func DefaultStroke() Stroke {
	return Stroke{
		Width:      1.0,
		Cap:        LineCapButt,
		Join:       LineJoinMiter,
		MiterLimit: 10.0,
	}
}

// Expand converts a stroked path to a fill path.
func (s Stroke) Expand(p *Path) *Path {
	out := &Path{}
	hw := math.Max(s.Width, MinWidth) / 2

	for _, sp := range p.Subpaths() {
		pts := dedupe(sp.Points)
		if len(pts) == 1 {
			s.dot(out, pts[0], hw)
			continue
		}
		closed := sp.Closed && len(pts) > 2
		if closed && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		n := len(pts)

		for i := 0; i+1 < n; i++ {
			a, b := pts[i], pts[i+1]
			if !closed && s.Cap == LineCapSquare {
				d := b.Sub(a).Normalize().Mul(hw)
				if i == 0 {
					a = a.Sub(d)
				}
				if i == n-2 {
					b = b.Add(d)
				}
			}
			segment(out, a, b, hw)
		}

		for i := 1; i+1 < n; i++ {
			s.join(out, pts[i-1], pts[i], pts[i+1], hw)
		}
		if closed {
			s.join(out, pts[n-2], pts[0], pts[1], hw)
		} else if s.Cap == LineCapRound {
			disc(out, pts[0], hw)
			disc(out, pts[n-1], hw)
		}
	}
	return out
}

// dot draws a zero-length subpath: round and square caps produce a mark,
// butt caps nothing.
func (s Stroke) dot(out *Path, c Point, hw float64) {
	switch s.Cap {
	case LineCapRound:
		disc(out, c, hw)
	case LineCapSquare:
		polygon(out, []Point{
			{c.X - hw, c.Y - hw}, {c.X + hw, c.Y - hw},
			{c.X + hw, c.Y + hw}, {c.X - hw, c.Y + hw},
		})
	}
}

// join fills the gap on the outer side of the corner at b.
func (s Stroke) join(out *Path, a, b, c Point, hw float64) {
	d0 := b.Sub(a).Normalize()
	d1 := c.Sub(b).Normalize()
	cross := d0.Cross(d1)
	dot := d0.Dot(d1)
	if math.Abs(cross) < 1e-9 && dot > 0 {
		return
	}

	if s.Join == LineJoinRound {
		disc(out, b, hw)
		return
	}

	// The outer side is opposite to the direction of the turn.
	sign := 1.0
	if cross > 0 {
		sign = -1
	}
	o0 := d0.Perp().Mul(hw * sign)
	o1 := d1.Perp().Mul(hw * sign)

	if s.Join == LineJoinMiter {
		cosHalf := math.Sqrt(math.Max(0, (1+dot)/2))
		if cosHalf > 1e-9 && 1/cosHalf <= s.MiterLimit {
			m := b.Add(o0.Add(o1).Normalize().Mul(hw / cosHalf))
			polygon(out, []Point{b, b.Add(o0), m, b.Add(o1)})
			return
		}
	}
	polygon(out, []Point{b, b.Add(o0), b.Add(o1)})
}

// segment adds the rectangle covering one flattened segment.
func segment(out *Path, a, b Point, hw float64) {
	n := b.Sub(a).Normalize().Perp().Mul(hw)
	polygon(out, []Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
}

// disc adds a polygonal circle of radius r around c.
func disc(out *Path, c Point, r float64) {
	steps := 8
	if r > Tolerance {
		steps = int(math.Ceil(math.Pi / math.Acos(1-Tolerance/r)))
		steps = min(max(steps, 8), 256)
	}
	pts := make([]Point, steps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts[i] = Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	polygon(out, pts)
}

// polygon adds pts as a closed subpath with negative signed area, so that
// all stroke pieces share one orientation.
func polygon(out *Path, pts []Point) {
	if signedArea(pts) > 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	out.Polygon(pts...)
}

// signedArea returns twice the signed area of the polygon (shoelace formula).
func signedArea(pts []Point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].Cross(pts[j])
	}
	return a
}

// dedupe returns pts without consecutive duplicates.
func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Distance(p) < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	return out
}
