package vector

import (
	"image"
	"image/color"

	"github.com/ledongthuc/pdf"

	"github.com/gogpu/projektor"
	"github.com/gogpu/projektor/internal/raster"
)

// maxFormDepth bounds nested form XObjects.
const maxFormDepth = 8

// gstate is the part of the PDF graphics state the renderer tracks.
type gstate struct {
	ctm         raster.Matrix
	fill        color.RGBA
	stroke      color.RGBA
	fillAlpha   float64
	strokeAlpha float64
	line        raster.Stroke // Width in user space units
	clip        *image.Alpha  // nil means the whole page
	text        textState
}

func initialState(device raster.Matrix) gstate {
	return gstate{
		ctm:         device,
		fill:        color.RGBA{A: 0xff},
		stroke:      color.RGBA{A: 0xff},
		fillAlpha:   1,
		strokeAlpha: 1,
		line:        raster.DefaultStroke(),
		text:        textState{scale: 1},
	}
}

// renderer interprets content streams onto an RGBA canvas.
type renderer struct {
	dst   *image.RGBA
	gs    gstate
	saved []gstate
	res   pdf.Value
	depth int

	path raster.Path
	// clipPending is set by W and W* and consumed by the next painting
	// operator.
	clipPending bool

	tm, tlm raster.Matrix
	faces   *faceCache

	ops int
}

func newRenderer(dst *image.RGBA, device raster.Matrix) *renderer {
	return &renderer{
		dst:   dst,
		gs:    initialState(device),
		faces: newFaceCache(),
		tm:    raster.Identity,
		tlm:   raster.Identity,
	}
}

func (r *renderer) close() { r.faces.close() }

// run interprets a page's Contents, which is a stream or an array of
// streams sharing one graphics state.
func (r *renderer) run(contents, res pdf.Value) {
	r.res = res
	switch contents.Kind() {
	case pdf.Stream:
		pdf.Interpret(contents, r.do)
	case pdf.Array:
		for i := range contents.Len() {
			if s := contents.Index(i); s.Kind() == pdf.Stream {
				pdf.Interpret(s, r.do)
			}
		}
	}
}

// operands drains the interpreter stack, returning operands in the order
// they appear in the stream.
func operands(stk *pdf.Stack) []pdf.Value {
	args := make([]pdf.Value, stk.Len())
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}
	return args
}

// num returns operand i as a number, or 0 if it is missing.
func num(args []pdf.Value, i int) float64 {
	if i < 0 || i >= len(args) {
		return 0
	}
	return args[i].Float64()
}

func point(args []pdf.Value, i int) raster.Point {
	return raster.Pt(num(args, i), num(args, i+1))
}

func matrix(args []pdf.Value) raster.Matrix {
	return raster.Matrix{num(args, 0), num(args, 1), num(args, 2), num(args, 3), num(args, 4), num(args, 5)}
}

func (r *renderer) do(stk *pdf.Stack, op string) {
	args := operands(stk)
	r.ops++

	switch op {
	// Graphics state.
	case "q":
		r.saved = append(r.saved, r.gs)
	case "Q":
		if n := len(r.saved); n > 0 {
			r.gs = r.saved[n-1]
			r.saved = r.saved[:n-1]
		}
	case "cm":
		r.gs.ctm = matrix(args).Mul(r.gs.ctm)
	case "w":
		r.gs.line.Width = num(args, 0)
	case "J":
		r.gs.line.Cap = raster.LineCap(num(args, 0))
	case "j":
		r.gs.line.Join = raster.LineJoin(num(args, 0))
	case "M":
		r.gs.line.MiterLimit = num(args, 0)
	case "gs":
		if len(args) == 1 {
			r.extGState(r.res.Key("ExtGState").Key(args[0].Name()))
		}

	// Colour.
	case "g":
		r.gs.fill = gray(num(args, 0))
	case "G":
		r.gs.stroke = gray(num(args, 0))
	case "rg":
		r.gs.fill = rgb(num(args, 0), num(args, 1), num(args, 2))
	case "RG":
		r.gs.stroke = rgb(num(args, 0), num(args, 1), num(args, 2))
	case "k":
		r.gs.fill = cmyk(num(args, 0), num(args, 1), num(args, 2), num(args, 3))
	case "K":
		r.gs.stroke = cmyk(num(args, 0), num(args, 1), num(args, 2), num(args, 3))
	case "cs":
		r.gs.fill = color.RGBA{A: 0xff}
	case "CS":
		r.gs.stroke = color.RGBA{A: 0xff}
	case "sc", "scn":
		if c, ok := components(args); ok {
			r.gs.fill = c
		}
	case "SC", "SCN":
		if c, ok := components(args); ok {
			r.gs.stroke = c
		}

	// Path construction. Points are transformed to device space as they
	// are added; the CTM cannot change inside a path object.
	case "m":
		r.path.MoveTo(r.gs.ctm.Apply(point(args, 0)))
	case "l":
		r.path.LineTo(r.gs.ctm.Apply(point(args, 0)))
	case "c":
		r.path.CubeTo(r.gs.ctm.Apply(point(args, 0)), r.gs.ctm.Apply(point(args, 2)), r.gs.ctm.Apply(point(args, 4)))
	case "v":
		if cur, ok := r.path.CurrentPoint(); ok {
			r.path.CubeTo(cur, r.gs.ctm.Apply(point(args, 0)), r.gs.ctm.Apply(point(args, 2)))
		}
	case "y":
		end := r.gs.ctm.Apply(point(args, 2))
		r.path.CubeTo(r.gs.ctm.Apply(point(args, 0)), end, end)
	case "h":
		r.path.Close()
	case "re":
		x, y, w, h := num(args, 0), num(args, 1), num(args, 2), num(args, 3)
		m := r.gs.ctm
		r.path.Polygon(
			m.Apply(raster.Pt(x, y)),
			m.Apply(raster.Pt(x+w, y)),
			m.Apply(raster.Pt(x+w, y+h)),
			m.Apply(raster.Pt(x, y+h)),
		)

	// Clipping.
	case "W", "W*":
		r.clipPending = true

	// Painting.
	case "f", "F", "f*":
		r.paint(true, false)
	case "S":
		r.paint(false, true)
	case "s":
		r.path.Close()
		r.paint(false, true)
	case "B", "B*":
		r.paint(true, true)
	case "b", "b*":
		r.path.Close()
		r.paint(true, true)
	case "n":
		r.paint(false, false)

	// XObjects.
	case "Do":
		if len(args) == 1 {
			r.xobject(args[0].Name())
		}

	default:
		r.text(op, args)
	}
}

// paint fills and/or strokes the current path, applies a pending clip and
// starts a new path.
func (r *renderer) paint(fill, stroke bool) {
	if fill {
		raster.Fill(r.dst, &r.path, image.NewUniform(withAlpha(r.gs.fill, r.gs.fillAlpha)), r.gs.clip)
	}
	if stroke {
		st := r.gs.line
		st.Width *= r.gs.ctm.ScaleFactor()
		raster.Fill(r.dst, st.Expand(&r.path), image.NewUniform(withAlpha(r.gs.stroke, r.gs.strokeAlpha)), r.gs.clip)
	}
	if r.clipPending {
		mask := raster.Coverage(r.dst.Bounds().Size(), &r.path)
		if r.gs.clip != nil {
			raster.Intersect(mask, r.gs.clip)
		}
		r.gs.clip = mask
		r.clipPending = false
	}
	r.path.Reset()
}

// extGState applies the line and alpha entries of a graphics state
// parameter dictionary.
func (r *renderer) extGState(v pdf.Value) {
	if v.Kind() != pdf.Dict {
		return
	}
	if x := v.Key("LW"); !x.IsNull() {
		r.gs.line.Width = x.Float64()
	}
	if x := v.Key("LC"); !x.IsNull() {
		r.gs.line.Cap = raster.LineCap(x.Int64())
	}
	if x := v.Key("LJ"); !x.IsNull() {
		r.gs.line.Join = raster.LineJoin(x.Int64())
	}
	if x := v.Key("ML"); !x.IsNull() {
		r.gs.line.MiterLimit = x.Float64()
	}
	if x := v.Key("ca"); !x.IsNull() {
		r.gs.fillAlpha = clamp01(x.Float64())
	}
	if x := v.Key("CA"); !x.IsNull() {
		r.gs.strokeAlpha = clamp01(x.Float64())
	}
}

// xobject draws the named image or form XObject.
func (r *renderer) xobject(name string) {
	x := r.res.Key("XObject").Key(name)
	if x.Kind() != pdf.Stream {
		return
	}
	switch x.Key("Subtype").Name() {
	case "Image":
		r.drawImage(x)
	case "Form":
		r.form(x)
	}
}

// form runs a form XObject's content with its own matrix and resources.
func (r *renderer) form(x pdf.Value) {
	if r.depth >= maxFormDepth {
		projektor.Logger().Debug("vector: form nesting too deep", "depth", r.depth)
		return
	}
	saved, savedRes, savedPath := r.gs, r.res, r.path
	depth := len(r.saved)
	r.depth++
	defer func() {
		r.depth--
		r.gs, r.res, r.path = saved, savedRes, savedPath
		r.saved = r.saved[:depth]
	}()

	if m := x.Key("Matrix"); m.Len() == 6 {
		r.gs.ctm = raster.Matrix{
			m.Index(0).Float64(), m.Index(1).Float64(), m.Index(2).Float64(),
			m.Index(3).Float64(), m.Index(4).Float64(), m.Index(5).Float64(),
		}.Mul(r.gs.ctm)
	}
	if res := x.Key("Resources"); res.Kind() == pdf.Dict {
		r.res = res
	}
	r.path = raster.Path{}
	pdf.Interpret(x, r.do)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func channel(v float64) uint8 {
	return uint8(clamp01(v)*0xff + 0.5)
}

func gray(v float64) color.RGBA {
	c := channel(v)
	return color.RGBA{c, c, c, 0xff}
}

func rgb(r, g, b float64) color.RGBA {
	return color.RGBA{channel(r), channel(g), channel(b), 0xff}
}

func cmyk(c, m, y, k float64) color.RGBA {
	return rgb((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// components interprets sc/scn operands by count. A trailing pattern name
// is ignored; patterns paint as black.
func components(args []pdf.Value) (color.RGBA, bool) {
	var v []float64
	for _, a := range args {
		if k := a.Kind(); k == pdf.Integer || k == pdf.Real {
			v = append(v, a.Float64())
		}
	}
	switch len(v) {
	case 0:
		return color.RGBA{A: 0xff}, len(args) > 0
	case 1:
		return gray(v[0]), true
	case 3:
		return rgb(v[0], v[1], v[2]), true
	case 4:
		return cmyk(v[0], v[1], v[2], v[3]), true
	}
	return color.RGBA{}, false
}

// withAlpha scales a premultiplied opaque colour by a constant alpha.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	if a >= 1 {
		return c
	}
	s := func(v uint8) uint8 { return uint8(float64(v)*a + 0.5) }
	return color.RGBA{s(c.R), s(c.G), s(c.B), s(c.A)}
}
