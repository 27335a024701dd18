package raster

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Coverage rasterizes the interior of p into an alpha mask of the given
// size. Mask pixel (0, 0) corresponds to device pixel (0, 0). Every subpath
// is closed implicitly.
//
// Winding follows x/image/vector: overlapping polygons of equal orientation
// merge, those of opposite orientation cancel. This serves both the nonzero
// and the even-odd rule for the usual case of holes drawn in reverse.
func Coverage(size image.Point, p *Path) *image.Alpha {
	mask := image.NewAlpha(image.Rectangle{Max: size})
	if size.X <= 0 || size.Y <= 0 {
		return mask
	}

	z := vector.NewRasterizer(size.X, size.Y)
	z.DrawOp = draw.Src

	// Clip slightly outside the mask so edges on the border keep their
	// partial coverage.
	clip := [4]float64{-1, -1, float64(size.X) + 1, float64(size.Y) + 1}
	drawn := false
	for _, sp := range p.Subpaths() {
		pts := clipPolygon(sp.Points, clip)
		if len(pts) < 3 {
			continue
		}
		z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
		for _, pt := range pts[1:] {
			z.LineTo(float32(pt.X), float32(pt.Y))
		}
		z.ClosePath()
		drawn = true
	}
	if drawn {
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	}
	return mask
}

// Fill paints the interior of p onto dst with src, composited with the
// Over operator. If clip is non-nil, coverage is multiplied by it; clip must
// be the size of dst's bounds.
func Fill(dst draw.Image, p *Path, src image.Image, clip *image.Alpha) {
	b := dst.Bounds()
	mask := Coverage(b.Size(), p)
	if clip != nil {
		Intersect(mask, clip)
	}
	draw.DrawMask(dst, b, src, b.Min, mask, image.Point{}, draw.Over)
}

// Intersect multiplies the coverage of a by b in place. Pixels outside b
// become transparent.
func Intersect(a, b *image.Alpha) {
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := a.PixOffset(x, y)
			if a.Pix[i] == 0 {
				continue
			}
			var cb uint32
			if (image.Point{X: x, Y: y}).In(b.Bounds()) {
				cb = uint32(b.Pix[b.PixOffset(x, y)])
			}
			a.Pix[i] = uint8((uint32(a.Pix[i])*cb + 127) / 255)
		}
	}
}

// clipPolygon clips a closed polygon to the rectangle [x0,y0,x1,y1] with the
// Sutherland-Hodgman algorithm. Orientation is preserved.
func clipPolygon(pts []Point, r [4]float64) []Point {
	inside := [4]func(Point) bool{
		func(p Point) bool { return p.X >= r[0] },
		func(p Point) bool { return p.Y >= r[1] },
		func(p Point) bool { return p.X <= r[2] },
		func(p Point) bool { return p.Y <= r[3] },
	}
	intersect := [4]func(a, b Point) Point{
		func(a, b Point) Point { return a.Lerp(b, (r[0]-a.X)/(b.X-a.X)) },
		func(a, b Point) Point { return a.Lerp(b, (r[1]-a.Y)/(b.Y-a.Y)) },
		func(a, b Point) Point { return a.Lerp(b, (r[2]-a.X)/(b.X-a.X)) },
		func(a, b Point) Point { return a.Lerp(b, (r[3]-a.Y)/(b.Y-a.Y)) },
	}

	out := pts
	for edge := range 4 {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([]Point, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch curIn, prevIn := inside[edge](cur), inside[edge](prev); {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn:
				out = append(out, intersect[edge](prev, cur), cur)
			case prevIn:
				out = append(out, intersect[edge](prev, cur))
			}
			prev = cur
		}
	}
	return out
}
