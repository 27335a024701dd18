package raster

import "math"

// Tolerance is the maximum distance in device pixels between a curve and
// its flattened polygon.
const Tolerance = 0.1

// maxDepth bounds curve subdivision for degenerate or huge curves.
const maxDepth = 16

// Subpath is one flattened subpath.
type Subpath struct {
	Points []Point
	Closed bool
}

// Path is a device-space path whose curves are flattened as they are added.
// The zero value is an empty path.
type Path struct {
	subpaths []Subpath
	cur      *Subpath
	start    Point
	current  Point
	hasPoint bool
}

// MoveTo starts a new subpath at p.
func (p *Path) MoveTo(pt Point) {
	p.subpaths = append(p.subpaths, Subpath{Points: []Point{pt}})
	p.cur = &p.subpaths[len(p.subpaths)-1]
	p.start = pt
	p.current = pt
	p.hasPoint = true
}

// LineTo adds a straight segment. Without a current point it acts as MoveTo.
func (p *Path) LineTo(pt Point) {
	if !p.ensureSubpath(pt) {
		return
	}
	p.cur.Points = append(p.cur.Points, pt)
	p.current = pt
}

// QuadTo adds a quadratic Bezier curve.
func (p *Path) QuadTo(c, pt Point) {
	if !p.ensureSubpath(c) {
		p.current = c
	}
	flattenQuadRec(p.current, c, pt, Tolerance, 0, &p.cur.Points)
	p.current = pt
}

// CubeTo adds a cubic Bezier curve.
func (p *Path) CubeTo(c1, c2, pt Point) {
	if !p.ensureSubpath(c1) {
		p.current = c1
	}
	flattenCubicRec(p.current, c1, c2, pt, Tolerance, 0, &p.cur.Points)
	p.current = pt
}

// Close closes the current subpath. The current point returns to the start
// of the subpath; the next segment starts a new subpath there.
func (p *Path) Close() {
	if p.cur == nil {
		return
	}
	p.cur.Closed = true
	p.cur = nil
	p.current = p.start
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() (Point, bool) {
	return p.current, p.hasPoint
}

// Subpaths returns the flattened subpaths.
func (p *Path) Subpaths() []Subpath {
	return p.subpaths
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	for _, sp := range p.subpaths {
		if len(sp.Points) > 1 {
			return false
		}
	}
	return true
}

// Reset clears the path.
func (p *Path) Reset() {
	*p = Path{subpaths: p.subpaths[:0]}
}

// Polygon adds pts as a closed subpath.
func (p *Path) Polygon(pts ...Point) {
	if len(pts) == 0 {
		return
	}
	p.MoveTo(pts[0])
	for _, pt := range pts[1:] {
		p.LineTo(pt)
	}
	p.Close()
}

// ensureSubpath makes sure there is an open subpath to append to. It
// reports false if there was no current point, in which case a subpath was
// started at pt.
func (p *Path) ensureSubpath(pt Point) bool {
	if !p.hasPoint {
		p.MoveTo(pt)
		return false
	}
	if p.cur == nil {
		// After Close: continue from the closed subpath's start.
		p.MoveTo(p.current)
	}
	return true
}

// flattenQuadRec recursively subdivides a quadratic Bezier curve.
func flattenQuadRec(p0, p1, p2 Point, tolerance float64, depth int, points *[]Point) {
	// Calculate the distance from the control point to the line p0-p2
	dist := distanceToLine(p1, p0, p2)

	if dist < tolerance || depth >= maxDepth || math.IsNaN(dist) {
		// Curve is flat enough, add the endpoint
		*points = append(*points, p2)
		return
	}

	// Subdivide the curve
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)

	flattenQuadRec(p0, q0, q2, tolerance, depth+1, points)
	flattenQuadRec(q2, q1, p2, tolerance, depth+1, points)
}

// flattenCubicRec recursively subdivides a cubic Bezier curve.
func flattenCubicRec(p0, p1, p2, p3 Point, tolerance float64, depth int, points *[]Point) {
	// Calculate the distance from control points to the line p0-p3
	d1 := distanceToLine(p1, p0, p3)
	d2 := distanceToLine(p2, p0, p3)
	dist := math.Max(d1, d2)

	if dist < tolerance || depth >= maxDepth || math.IsNaN(dist) {
		// Curve is flat enough, add the endpoint
		*points = append(*points, p3)
		return
	}

	// Subdivide the curve using de Casteljau's algorithm
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)

	flattenCubicRec(p0, q0, r0, s, tolerance, depth+1, points)
	flattenCubicRec(s, r1, q2, p3, tolerance, depth+1, points)
}

// distanceToLine calculates the perpendicular distance from point p to line segment (a, b).
func distanceToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLen := ab.Length()

	if abLen < 1e-10 {
		// Line segment is a point
		return p.Distance(a)
	}

	// Project p onto the line
	ap := p.Sub(a)
	t := ap.Dot(ab) / (abLen * abLen)

	if t < 0 {
		return p.Distance(a)
	}
	if t > 1 {
		return p.Distance(b)
	}

	closest := a.Add(ab.Mul(t))
	return p.Distance(closest)
}
