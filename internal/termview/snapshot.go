package termview

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// StatusHeight is the height of the status bar below the page view.
const StatusHeight = 23

// Window colours.
var (
	PageViewBackground = color.RGBA{0x00, 0x00, 0x23, 0xff}
	StatusBackground   = color.NRGBA{0x00, 0x23, 0x42, 0xd0}
	StatusText         = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	progressOn         = color.RGBA{0x5a, 0x9a, 0xd0, 0xff}
	progressOff        = color.RGBA{0x1a, 0x3a, 0x5a, 0xff}
)

// Status bar layout, in pixels from the left edge.
const (
	pageLabelWidth  = 140
	zoomLabelX      = 180
	zoomLabelWidth  = 80
	titleLabelX     = 300
	titleMargin     = 440
	progressWidth   = 230
	entryBoxWidth   = 54
	entryBoxHeight  = 27
	textBaselineOff = 16
)

// Snapshot composes the window: the visible part of the page centred in the
// page view, and the status bar below it.
func (p *Presenter) Snapshot() *image.RGBA {
	w, h := p.viewport.X, p.viewport.Y+StatusHeight
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	view := image.Rect(0, 0, p.viewport.X, p.viewport.Y)
	draw.Draw(img, view, image.NewUniform(PageViewBackground), image.Point{}, draw.Src)

	if p.surface != nil {
		dst := p.placement.Intersect(view)
		sp := p.offset.Add(dst.Min.Sub(p.placement.Min))
		draw.Draw(img, dst, p.surface, sp, draw.Src)
	}

	bar := image.Rect(0, p.viewport.Y, w, h)
	draw.Draw(img, bar, image.Black, image.Point{}, draw.Src)
	draw.Draw(img, bar, image.NewUniform(StatusBackground), image.Point{}, draw.Over)

	if p.showProgress {
		r := image.Rect(max(w-progressWidth, 0), bar.Min.Y, w, bar.Max.Y)
		draw.Draw(img, r, image.NewUniform(progressOff), image.Point{}, draw.Src)
		on := r
		on.Max.X = r.Min.X + int(float64(r.Dx())*p.progress+0.5)
		draw.Draw(img, on, image.NewUniform(progressOn), image.Point{}, draw.Src)
	}

	baseline := p.viewport.Y + textBaselineOff
	drawLabel(img, image.Rect(0, bar.Min.Y, pageLabelWidth, bar.Max.Y), p.pageLabel(), baseline, alignRight)
	drawLabel(img, image.Rect(zoomLabelX, bar.Min.Y, zoomLabelX+zoomLabelWidth, bar.Max.Y),
		strconv.Itoa(p.zoom)+"%", baseline, alignRight)
	drawLabel(img, image.Rect(titleLabelX, bar.Min.Y, w-titleMargin+titleLabelX, bar.Max.Y), p.title, baseline, alignCenter)

	if p.entering {
		box := image.Rect(0, 0, entryBoxWidth, entryBoxHeight).Add(image.Pt((w-entryBoxWidth)/2, (h-entryBoxHeight)/2))
		draw.Draw(img, box, image.White, image.Point{}, draw.Src)
		drawText(img, box, p.entry, box.Min.Y+19, alignCenter, image.Black)
	}
	return img
}

// WritePNG encodes the snapshot as PNG.
func (p *Presenter) WritePNG(w io.Writer) error {
	return png.Encode(w, p.Snapshot())
}

type alignment int

const (
	alignRight alignment = iota
	alignCenter
)

func drawLabel(dst *image.RGBA, r image.Rectangle, s string, baseline int, align alignment) {
	drawText(dst, r, s, baseline, align, image.NewUniform(StatusText))
}

// drawText draws s clipped to r.
func drawText(dst *image.RGBA, r image.Rectangle, s string, baseline int, align alignment, src image.Image) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() || s == "" {
		return
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Ceil()
	x := r.Max.X - width
	if align == alignCenter {
		x = r.Min.X + (r.Dx()-width)/2
	}
	d := font.Drawer{
		Dst:  dst.SubImage(r).(*image.RGBA),
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
