package projektor

import "image"

// Captions shown in place of the document title.
const (
	CaptionOpenFailed   = "Cannot open file"
	CaptionRenderFailed = "Cannot render page"
)

// Presenter displays what the Viewer decides to show.
//
// The Viewer calls a Presenter synchronously from its own goroutine. A
// surface passed to SetImage is never modified afterwards, so a Presenter
// may keep the reference until the next SetImage call.
type Presenter interface {
	// SetImage replaces the displayed page. placement is the rectangle of
	// the page view covered by the image (centred on axes where the image is
	// smaller than the viewport); offset is the scroll position within the
	// image.
	SetImage(s *Surface, placement image.Rectangle, offset image.Point)

	// SetOffset moves the visible part of the current image.
	SetOffset(offset image.Point)

	// SetTitle shows the document title or an error caption.
	SetTitle(title string)

	// SetPage shows the page indicator, "page/total".
	SetPage(page, total int)

	// SetZoom shows the zoom indicator in percent.
	SetZoom(percent int)

	// SetProgress shows the position within the document in [0, 1].
	SetProgress(fraction float64)
}

// NopPresenter discards everything. It is the Viewer's default Presenter.
type NopPresenter struct{}

func (NopPresenter) SetImage(*Surface, image.Rectangle, image.Point) {}
func (NopPresenter) SetOffset(image.Point)                           {}
func (NopPresenter) SetTitle(string)                                 {}
func (NopPresenter) SetPage(int, int)                                {}
func (NopPresenter) SetZoom(int)                                     {}
func (NopPresenter) SetProgress(float64)                             {}
