package projektor

import "image"

// Default viewer configuration: an 800x600 window less its 23 pixel status
// bar, at 100% zoom.
const (
	DefaultViewportWidth  = 800
	DefaultViewportHeight = 577
	DefaultZoom           = 1.0
)

// ViewerOption configures a Viewer during creation.
//
// Example:
//
//	v := projektor.NewViewer(
//	    projektor.WithViewport(1024, 745),
//	    projektor.WithZoom(1.5),
//	)
type ViewerOption func(*viewerOptions)

// viewerOptions holds optional configuration for Viewer creation.
type viewerOptions struct {
	viewport  image.Point
	zoom      float64
	presenter Presenter
}

// defaultOptions returns the default viewer options.
func defaultOptions() viewerOptions {
	return viewerOptions{
		viewport:  image.Pt(DefaultViewportWidth, DefaultViewportHeight),
		zoom:      DefaultZoom,
		presenter: NopPresenter{},
	}
}

// WithViewport sets the size of the page view in pixels.
// Non-positive sizes are ignored.
func WithViewport(width, height int) ViewerOption {
	return func(o *viewerOptions) {
		if width > 0 && height > 0 {
			o.viewport = image.Pt(width, height)
		}
	}
}

// WithZoom sets the initial zoom factor. It is clamped like SetZoom.
func WithZoom(zoom float64) ViewerOption {
	return func(o *viewerOptions) {
		o.zoom = clampZoom(zoom)
	}
}

// WithPresenter sets the presentation layer that receives surfaces and
// status updates. A nil Presenter keeps the default NopPresenter.
func WithPresenter(p Presenter) ViewerOption {
	return func(o *viewerOptions) {
		if p != nil {
			o.presenter = p
		}
	}
}
