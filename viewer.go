package projektor

import (
	"errors"
	"image"
	"math"
	"time"
)

// Zoom bounds. Every mutating call saturates into [MinZoom, MaxZoom].
const (
	MinZoom  = 0.25
	MaxZoom  = 2.5
	ZoomStep = 0.25
)

// State is the coarse state of a Viewer.
type State int

const (
	// StateNoDocument means nothing is open, or opening failed.
	StateNoDocument State = iota

	// StateReady means a document is open and the last render succeeded.
	StateReady

	// StateError means the last render failed. The last good surface is
	// still displayed; the next successful render returns to StateReady.
	StateError
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateNoDocument:
		return "NoDocument"
	case StateReady:
		return "Ready"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Viewer is the navigation state machine of a document viewer.
//
// It owns one Document, renders pages synchronously on every change of page
// or zoom, keeps scroll offsets clamped to the displayed surface and reports
// everything to a Presenter. Re-rendering happens strictly on value change.
//
// A Viewer is not safe for concurrent use.
type Viewer struct {
	presenter Presenter
	viewport  image.Point

	doc  Document
	desc Description

	page     int
	zoom     float64
	prevZoom float64
	failed   bool

	surface   *Surface
	placement image.Rectangle
	offset    image.Point
	maxOffset image.Point
}

// NewViewer creates a Viewer with no document.
func NewViewer(opts ...ViewerOption) *Viewer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Viewer{
		presenter: o.presenter,
		viewport:  o.viewport,
		zoom:      o.zoom,
		prevZoom:  o.zoom,
	}
}

// Open opens path through o. It does not render; call GotoPage(1) to show
// the first page.
//
// On failure the title caption becomes CaptionOpenFailed, the Viewer stays
// in StateNoDocument and the returned error matches ErrOpenFailed.
func (v *Viewer) Open(o Opener, path string) error {
	if v.doc != nil {
		return ErrAlreadyOpen
	}
	doc, err := o.Open(path)
	if err != nil {
		v.presenter.SetTitle(CaptionOpenFailed)
		Logger().Warn("open failed", "path", path, "err", err)
		if !errors.Is(err, ErrOpenFailed) {
			err = &OpenError{Path: path, Err: err}
		}
		return err
	}

	v.doc = doc
	v.desc = doc.Description()
	v.page = 0
	v.failed = false
	v.prevZoom = v.zoom

	v.presenter.SetTitle(v.desc.Title)
	v.presenter.SetZoom(zoomPercent(v.zoom))

	Logger().Info("document opened", "path", path, "title", v.desc.Title, "pages", v.desc.NumPages)
	return nil
}

// Close closes the document. The Viewer returns to StateNoDocument.
func (v *Viewer) Close() error {
	if v.doc == nil {
		return ErrNoDocument
	}
	err := v.doc.Close()
	if err != nil {
		Logger().Warn("document close failed", "title", v.desc.Title, "err", err)
	}
	v.doc = nil
	v.desc = Description{}
	v.page = 0
	v.failed = false
	v.surface = nil
	v.placement = image.Rectangle{}
	v.offset = image.Point{}
	v.maxOffset = image.Point{}
	Logger().Info("document closed")
	return err
}

// GotoPage shows page n, clamped into [1, NumPages].
//
// Nothing is rendered if the clamped page is already displayed. A failed
// render sets the error flag and keeps the current page and surface.
func (v *Viewer) GotoPage(n int) error {
	if v.doc == nil {
		return ErrNoDocument
	}
	if n < 1 {
		n = 1
	}
	if n > v.desc.NumPages {
		n = v.desc.NumPages
	}
	if n == v.page {
		return nil
	}

	s, err := v.render(n, v.zoom)
	if err != nil {
		return err
	}
	v.setSurface(s)

	v.presenter.SetProgress(progress(n, v.desc.NumPages))
	v.presenter.SetPage(n, v.desc.NumPages)

	v.page = n
	return nil
}

// SetZoom re-renders the current page at z, clamped into [MinZoom, MaxZoom].
//
// Nothing is rendered if the clamped zoom equals the current one. A failed
// render sets the error flag and keeps the current zoom and surface. Before
// any page is displayed the zoom is only stored.
func (v *Viewer) SetZoom(z float64) error {
	if v.doc == nil {
		return ErrNoDocument
	}
	z = clampZoom(z)
	if z == v.zoom {
		return nil
	}

	if v.page > 0 {
		s, err := v.render(v.page, z)
		if err != nil {
			return err
		}
		v.setSurface(s)
	}

	v.presenter.SetZoom(zoomPercent(z))

	v.zoom = z
	return nil
}

// SetOptimalZoom toggles between the zoom that fits the current page into
// the viewport and the zoom that was active before.
//
// The fit zoom is min(viewportW/intrinsicW, viewportH/intrinsicH), where the
// intrinsic size is the displayed surface divided by the current zoom,
// clamped into [MinZoom, MaxZoom]. Fit and current zoom are compared by their
// 25% quantum; if they share one, the previous zoom is restored instead.
func (v *Viewer) SetOptimalZoom() error {
	if v.doc == nil {
		return ErrNoDocument
	}
	if v.surface == nil {
		return nil
	}

	zoom := float32(v.zoom)
	zw := float32(v.viewport.X) / (float32(v.surface.Width()) / zoom)
	zh := float32(v.viewport.Y) / (float32(v.surface.Height()) / zoom)
	fit := float32(clampZoom(float64(min(zw, zh))))

	if zoomQuantum(fit) != zoomQuantum(zoom) {
		v.prevZoom = v.zoom
		return v.SetZoom(float64(fit))
	}
	return v.SetZoom(v.prevZoom)
}

// Scroll moves the scroll offset by (dx, dy), clamped per axis into
// [0, MaxOffset]. The presenter is only told when the offset changed, which
// is also what Scroll reports.
func (v *Viewer) Scroll(dx, dy int) bool {
	off := v.offset.Add(image.Pt(dx, dy))
	off.X = max(0, min(off.X, v.maxOffset.X))
	off.Y = max(0, min(off.Y, v.maxOffset.Y))

	if off == v.offset {
		return false
	}
	v.offset = off
	v.presenter.SetOffset(off)
	return true
}

// State returns the coarse viewer state.
func (v *Viewer) State() State {
	switch {
	case v.doc == nil:
		return StateNoDocument
	case v.failed:
		return StateError
	default:
		return StateReady
	}
}

// Page returns the displayed page, 0 before the first successful render.
func (v *Viewer) Page() int { return v.page }

// Zoom returns the current zoom factor.
func (v *Viewer) Zoom() float64 { return v.zoom }

// PreviousZoom returns the zoom SetOptimalZoom toggles back to.
func (v *Viewer) PreviousZoom() float64 { return v.prevZoom }

// Failed reports whether the most recent render failed.
func (v *Viewer) Failed() bool { return v.failed }

// Description returns the description of the open document.
func (v *Viewer) Description() Description { return v.desc }

// Surface returns the displayed surface, or nil.
func (v *Viewer) Surface() *Surface { return v.surface }

// Viewport returns the page view size.
func (v *Viewer) Viewport() image.Point { return v.viewport }

// Placement returns the part of the page view covered by the surface.
func (v *Viewer) Placement() image.Rectangle { return v.placement }

// Offset returns the scroll offset.
func (v *Viewer) Offset() image.Point { return v.offset }

// MaxOffset returns the largest scroll offset for the displayed surface.
func (v *Viewer) MaxOffset() image.Point { return v.maxOffset }

// render asks the document for one page and maintains the error flag and the
// title caption.
func (v *Viewer) render(page int, zoom float64) (*Surface, error) {
	start := time.Now()
	s, err := v.doc.Render(page, zoom)
	if err == nil && s == nil {
		err = errNoSurface
	}
	if err != nil {
		v.failed = true
		v.presenter.SetTitle(CaptionRenderFailed)
		Logger().Warn("render failed", "page", page, "zoom", zoom, "err", err)
		if !errors.Is(err, ErrRenderFailed) {
			err = &RenderError{Page: page, Zoom: zoom, Err: err}
		}
		return nil, err
	}

	v.desc = v.doc.Description()
	if v.failed {
		v.presenter.SetTitle(v.desc.Title)
		v.failed = false
	}

	Logger().Debug("page rendered",
		"page", page, "zoom", zoom,
		"width", s.Width(), "height", s.Height(),
		"elapsed", time.Since(start))
	return s, nil
}

// setSurface replaces the displayed surface. Axes on which the surface is
// smaller than the viewport are centred and cannot scroll.
func (v *Viewer) setSurface(s *Surface) {
	v.surface = s

	w, h := s.Width(), s.Height()
	if w > v.viewport.X {
		v.placement.Min.X, v.placement.Max.X = 0, v.viewport.X
		v.maxOffset.X = w - v.viewport.X
	} else {
		v.placement.Min.X = (v.viewport.X - w) / 2
		v.placement.Max.X = v.placement.Min.X + w
		v.maxOffset.X = 0
	}
	if h > v.viewport.Y {
		v.placement.Min.Y, v.placement.Max.Y = 0, v.viewport.Y
		v.maxOffset.Y = h - v.viewport.Y
	} else {
		v.placement.Min.Y = (v.viewport.Y - h) / 2
		v.placement.Max.Y = v.placement.Min.Y + h
		v.maxOffset.Y = 0
	}

	v.offset.X = min(v.offset.X, v.maxOffset.X)
	v.offset.Y = min(v.offset.Y, v.maxOffset.Y)

	v.presenter.SetImage(s, v.placement, v.offset)
}

var errNoSurface = errors.New("document returned no surface")

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return max(MinZoom, min(z, MaxZoom))
}

// zoomQuantum returns the 25% bucket of z, rounded half up.
func zoomQuantum(z float32) int {
	return int(100*z/25 + 0.5)
}

// zoomPercent returns the zoom indicator value, truncated.
func zoomPercent(z float64) int {
	return int(100 * float32(z))
}

// progress returns the position of page within total pages in [0, 1].
func progress(page, total int) float64 {
	if total <= 1 {
		return 0
	}
	return float64(page-1) / float64(total-1)
}
