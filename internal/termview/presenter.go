package termview

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/gogpu/projektor"
)

// EnvNoProgress disables the progress indicator when set to any value.
const EnvNoProgress = "PROJEKTOR_NO_PROGRESS"

// progressCells is the width of the text progress bar.
const progressCells = 10

// Option configures a Presenter.
type Option func(*Presenter)

// WithOutput sets where Flush writes the status line. Nil disables output.
func WithOutput(w io.Writer) Option {
	return func(p *Presenter) { p.out = w }
}

// WithInteractive makes Flush redraw the status line in place instead of
// printing one line per change.
func WithInteractive(on bool) Option {
	return func(p *Presenter) { p.interactive = on }
}

// WithProgress overrides whether the progress indicator is shown.
func WithProgress(on bool) Option {
	return func(p *Presenter) { p.showProgress = on }
}

// Presenter keeps the state of the window and prints it as a status line.
// It implements projektor.Presenter.
type Presenter struct {
	out          io.Writer
	interactive  bool
	showProgress bool

	viewport  image.Point
	surface   *projektor.Surface
	placement image.Rectangle
	offset    image.Point

	title    string
	page     int
	total    int
	zoom     int
	progress float64

	entry    string
	entering bool

	last string
}

var _ projektor.Presenter = (*Presenter)(nil)

// New creates a presenter for a page view of the given size. The progress
// indicator is on unless PROJEKTOR_NO_PROGRESS is set.
func New(viewport image.Point, opts ...Option) *Presenter {
	_, noProgress := os.LookupEnv(EnvNoProgress)
	p := &Presenter{
		viewport:     viewport,
		showProgress: !noProgress,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetImage implements projektor.Presenter.
func (p *Presenter) SetImage(s *projektor.Surface, placement image.Rectangle, offset image.Point) {
	p.surface = s
	p.placement = placement
	p.offset = offset
}

// SetOffset implements projektor.Presenter.
func (p *Presenter) SetOffset(offset image.Point) { p.offset = offset }

// SetTitle implements projektor.Presenter.
func (p *Presenter) SetTitle(title string) { p.title = title }

// SetPage implements projektor.Presenter.
func (p *Presenter) SetPage(page, total int) { p.page, p.total = page, total }

// SetZoom implements projektor.Presenter.
func (p *Presenter) SetZoom(percent int) { p.zoom = percent }

// SetProgress implements projektor.Presenter. Values are clamped to [0, 1].
func (p *Presenter) SetProgress(fraction float64) {
	p.progress = min(max(fraction, 0), 1)
}

// SetEntry shows or hides the page number entry box.
func (p *Presenter) SetEntry(text string, active bool) {
	p.entry, p.entering = text, active
}

// Offset returns the scroll position last set.
func (p *Presenter) Offset() image.Point { return p.offset }

// StatusLine formats the status bar: page, zoom, title, progress and the
// page number entry when active.
func (p *Presenter) StatusLine() string {
	var b strings.Builder
	b.WriteString(p.pageLabel())
	fmt.Fprintf(&b, "  %d%%  %s", p.zoom, p.title)
	if p.showProgress {
		filled := int(p.progress*progressCells + 0.5)
		fmt.Fprintf(&b, "  [%s%s]", strings.Repeat("#", filled), strings.Repeat("-", progressCells-filled))
	}
	if p.entering {
		fmt.Fprintf(&b, "  Go to page: %s_", p.entry)
	}
	return b.String()
}

func (p *Presenter) pageLabel() string {
	if p.page == 0 {
		return "-/" + fmt.Sprint(p.total)
	}
	return fmt.Sprintf("%d/%d", p.page, p.total)
}

// Flush writes the status line if it changed since the last Flush.
func (p *Presenter) Flush() error {
	line := p.StatusLine()
	if line == p.last {
		return nil
	}
	p.last = line
	if p.out == nil {
		return nil
	}
	var err error
	if p.interactive {
		_, err = fmt.Fprintf(p.out, "\r%s\x1b[K", line)
	} else {
		_, err = fmt.Fprintln(p.out, line)
	}
	return err
}
