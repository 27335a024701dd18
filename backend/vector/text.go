package vector

import (
	"image"
	"math"
	"sync"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/projektor"
	"github.com/gogpu/projektor/internal/raster"
)

// Text render modes that paint nothing.
const (
	textInvisible = 3
	textClipOnly  = 7
)

// textState holds the text parameters of the graphics state.
type textState struct {
	font     pdf.Value
	size     float64 // Tfs
	charSp   float64 // Tc
	wordSp   float64 // Tw
	scale    float64 // Th
	leading  float64 // TL
	rise     float64 // Ts
	mode     int     // Tr
	encoding pdf.TextEncoding
}

// substitute is the face every PDF font is drawn with.
var substitute = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// faceCache holds substitute faces by pixel size for one render.
type faceCache struct {
	faces map[int]font.Face
	buf   sfnt.Buffer
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[int]font.Face)}
}

// face returns the substitute face at px pixels per em, quantized to
// quarter pixels.
func (c *faceCache) face(px float64) font.Face {
	key := int(px*4 + 0.5)
	if f, ok := c.faces[key]; ok {
		return f
	}
	otf, err := substitute()
	if err != nil {
		return nil
	}
	f, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(key) / 4,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		projektor.Logger().Debug("vector: face creation failed", "size", px, "err", err)
		return nil
	}
	c.faces[key] = f
	return f
}

// advance returns the substitute advance of r in thousandths of an em.
func (c *faceCache) advance(r rune) float64 {
	otf, err := substitute()
	if err != nil {
		return 500
	}
	idx, err := otf.GlyphIndex(&c.buf, r)
	if err != nil || idx == 0 {
		return 500
	}
	adv, err := otf.GlyphAdvance(&c.buf, idx, fixed.I(1000), font.HintingNone)
	if err != nil {
		return 500
	}
	return float64(adv) / 64
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
	clear(c.faces)
}

// text handles text object, text state and text showing operators.
// Unknown operators fall through silently.
func (r *renderer) text(op string, args []pdf.Value) {
	ts := &r.gs.text
	switch op {
	case "BT":
		r.tm, r.tlm = raster.Identity, raster.Identity
	case "ET":
	case "Tf":
		if len(args) == 2 {
			ts.font = r.res.Key("Font").Key(args[0].Name())
			ts.size = args[1].Float64()
			ts.encoding = nil
			if ts.font.Kind() == pdf.Dict {
				ts.encoding = pdf.Font{V: ts.font}.Encoder()
			}
		}
	case "Tc":
		ts.charSp = num(args, 0)
	case "Tw":
		ts.wordSp = num(args, 0)
	case "Tz":
		ts.scale = num(args, 0) / 100
	case "TL":
		ts.leading = num(args, 0)
	case "Ts":
		ts.rise = num(args, 0)
	case "Tr":
		ts.mode = int(num(args, 0))
	case "Td":
		r.nextLine(num(args, 0), num(args, 1))
	case "TD":
		ts.leading = -num(args, 1)
		r.nextLine(num(args, 0), num(args, 1))
	case "Tm":
		r.tm = matrix(args)
		r.tlm = r.tm
	case "T*":
		r.nextLine(0, -ts.leading)
	case "Tj":
		if len(args) == 1 {
			r.show(args[0].RawString())
		}
	case "'":
		r.nextLine(0, -ts.leading)
		if len(args) == 1 {
			r.show(args[0].RawString())
		}
	case "\"":
		if len(args) == 3 {
			ts.wordSp = args[0].Float64()
			ts.charSp = args[1].Float64()
			r.nextLine(0, -ts.leading)
			r.show(args[2].RawString())
		}
	case "TJ":
		if len(args) != 1 || args[0].Kind() != pdf.Array {
			return
		}
		a := args[0]
		for i := range a.Len() {
			e := a.Index(i)
			if e.Kind() == pdf.String {
				r.show(e.RawString())
				continue
			}
			tx := -e.Float64() / 1000 * ts.size * ts.scale
			r.tm = raster.Translate(tx, 0).Mul(r.tm)
		}
	}
}

func (r *renderer) nextLine(tx, ty float64) {
	r.tlm = raster.Translate(tx, ty).Mul(r.tlm)
	r.tm = r.tlm
}

// show draws a string of character codes. Type0 fonts use two-byte codes,
// simple fonts one byte per code.
func (r *renderer) show(s string) {
	ts := &r.gs.text
	width := 1
	if ts.font.Key("Subtype").Name() == "Type0" {
		width = 2
	}

	src := image.NewUniform(withAlpha(r.gs.fill, r.gs.fillAlpha))
	visible := ts.mode != textInvisible && ts.mode != textClipOnly

	for i := 0; i+width <= len(s); i += width {
		code := s[i : i+width]
		text := r.decode(code)

		trm := raster.Matrix{ts.size * ts.scale, 0, 0, ts.size, 0, ts.rise}.Mul(r.tm).Mul(r.gs.ctm)
		if px := trm.ScaleFactor(); visible && px >= 1 {
			origin := trm.Apply(raster.Point{})
			r.drawGlyphs(text, px, origin, src)
		}

		w0 := r.codeWidth(code, text)
		tx := w0 / 1000 * ts.size
		tx += ts.charSp
		if width == 1 && code[0] == ' ' {
			tx += ts.wordSp
		}
		r.tm = raster.Translate(tx*ts.scale, 0).Mul(r.tm)
	}
}

func (r *renderer) decode(code string) string {
	if r.gs.text.encoding == nil {
		return code
	}
	return r.gs.text.encoding.Decode(code)
}

func (r *renderer) drawGlyphs(text string, px float64, origin raster.Point, src image.Image) {
	face := r.faces.face(px)
	if face == nil {
		return
	}
	d := font.Drawer{
		Dst:  r.dst,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(origin.X * 64)), Y: fixed.Int26_6(math.Round(origin.Y * 64))},
	}
	for _, ch := range text {
		if unicode.IsSpace(ch) || !unicode.IsPrint(ch) {
			continue
		}
		d.DrawString(string(ch))
	}
}

// codeWidth returns the glyph width of a code in thousandths of text space
// units: the font's Widths entry when present, the substitute advance
// otherwise.
func (r *renderer) codeWidth(code, text string) float64 {
	f := r.gs.text.font
	if len(code) == 1 {
		widths := f.Key("Widths")
		idx := int(code[0]) - int(f.Key("FirstChar").Int64())
		if idx >= 0 && idx < widths.Len() {
			if w := widths.Index(idx).Float64(); w > 0 {
				return w
			}
		}
	}
	var w float64
	for _, ch := range text {
		w += r.faces.advance(ch)
	}
	if w == 0 {
		w = r.faces.advance(' ')
	}
	return w
}
