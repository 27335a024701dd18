package termview

import (
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"golang.org/x/term"

	"github.com/gogpu/projektor"
)

// Session drives a Viewer from key presses.
//
// A digit opens the page number entry; further digits extend it, Backspace
// edits it, Enter jumps to the page and Escape cancels it. While the entry
// is open, Left and Right are ignored and other characters are swallowed.
// Escape or q outside the entry, and Ctrl-C at any time, end the session.
type Session struct {
	viewer *projektor.Viewer
	status *Presenter

	entry    []byte
	entering bool
	done     bool

	escDelay time.Duration
}

// NewSession creates a session. status may be nil.
func NewSession(v *projektor.Viewer, status *Presenter) *Session {
	return &Session{viewer: v, status: status}
}

// Done reports whether the user asked to quit.
func (s *Session) Done() bool { return s.done }

// HandleKey processes one key. Errors come from the viewer; a failed render
// is also shown in the status bar and does not end the session.
func (s *Session) HandleKey(k Key) error {
	cmd, ok := s.command(k)
	s.syncEntry()
	if !ok {
		return nil
	}
	return s.viewer.Apply(cmd)
}

// command translates a key, updating the entry state.
func (s *Session) command(k Key) (projektor.Command, bool) {
	switch k.Code {
	case KeyUp:
		return projektor.Command{Kind: projektor.CmdScrollUp}, true
	case KeyDown:
		return projektor.Command{Kind: projektor.CmdScrollDown}, true
	case KeyLeft, KeyRight:
		if s.entering {
			return projektor.Command{}, false
		}
		if k.Code == KeyLeft {
			return projektor.Command{Kind: projektor.CmdScrollLeft}, true
		}
		return projektor.Command{Kind: projektor.CmdScrollRight}, true
	case KeyPageUp:
		return projektor.Command{Kind: projektor.CmdPrevPage}, true
	case KeyPageDown:
		return projektor.Command{Kind: projektor.CmdNextPage}, true
	case KeyHome:
		return projektor.Command{Kind: projektor.CmdFirstPage}, true
	case KeyEnd:
		return projektor.Command{Kind: projektor.CmdLastPage}, true
	case KeyEnter:
		if !s.entering {
			return projektor.Command{}, false
		}
		page := atoi(string(s.entry))
		s.closeEntry()
		return projektor.Goto(page), true
	case KeyEscape:
		if s.entering {
			s.closeEntry()
		} else {
			s.done = true
		}
		return projektor.Command{}, false
	case KeyInterrupt:
		s.done = true
		return projektor.Command{}, false
	case KeyBackspace, KeyDelete:
		if s.entering && len(s.entry) > 0 {
			s.entry = s.entry[:len(s.entry)-1]
		}
		return projektor.Command{}, false
	}

	r := k.Rune
	switch {
	case r >= '0' && r <= '9':
		s.entering = true
		s.entry = append(s.entry, byte(r))
		return projektor.Command{}, false
	case s.entering:
		return projektor.Command{}, false
	case r == '+' || r == '=':
		return projektor.Command{Kind: projektor.CmdZoomIn}, true
	case r == '-':
		return projektor.Command{Kind: projektor.CmdZoomOut}, true
	case r == ' ':
		return projektor.Command{Kind: projektor.CmdOptimalZoom}, true
	case r == 'q' || r == 'Q':
		s.done = true
	}
	return projektor.Command{}, false
}

func (s *Session) closeEntry() {
	s.entry = s.entry[:0]
	s.entering = false
}

func (s *Session) syncEntry() {
	if s.status != nil {
		s.status.SetEntry(string(s.entry), s.entering)
	}
}

// atoi parses the entry like C atoi on a digit string: empty text is 0 and
// values too large for int saturate.
func atoi(text string) int {
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// EscapeDelay is how long Run waits for the rest of an escape sequence
// before treating a lone ESC as the Escape key.
const EscapeDelay = 50 * time.Millisecond

// chunk is one Read result.
type chunk struct {
	data []byte
	err  error
}

// readChunks forwards reads from r until a read fails or quit is closed.
func readChunks(r io.Reader, out chan<- chunk, quit <-chan struct{}) {
	for {
		buf := make([]byte, 64)
		n, err := r.Read(buf)
		select {
		case out <- chunk{buf[:n], err}:
		case <-quit:
			return
		}
		if err != nil {
			return
		}
	}
}

// Run reads key presses from r until the user quits or r is exhausted.
// A sequence split between reads is joined; a trailing ESC that is not
// continued within EscapeDelay is the Escape key. The status line is flushed
// after every read.
func (s *Session) Run(r io.Reader) error {
	reads := make(chan chunk)
	quit := make(chan struct{})
	defer close(quit)
	go readChunks(r, reads, quit)

	var dec keyDecoder
	for !s.done {
		var timer *time.Timer
		var timeout <-chan time.Time
		if dec.waiting() {
			timer = time.NewTimer(s.escapeDelay())
			timeout = timer.C
		}

		var keys []Key
		var err error
		select {
		case c := <-reads:
			keys = dec.feed(c.data)
			if c.err != nil {
				keys = append(keys, dec.flush()...)
				err = c.err
			}
		case <-timeout:
			keys = dec.flush()
		}
		if timer != nil {
			timer.Stop()
		}

		s.handleKeys(keys)
		if s.status != nil {
			if ferr := s.status.Flush(); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) handleKeys(keys []Key) {
	for _, k := range keys {
		if err := s.HandleKey(k); err != nil {
			projektor.Logger().Debug("termview: command failed", "key", k, "err", err)
		}
		if s.done {
			return
		}
	}
}

func (s *Session) escapeDelay() time.Duration {
	if s.escDelay > 0 {
		return s.escDelay
	}
	return EscapeDelay
}

// RawMode puts f into raw mode if it is a terminal. The returned function
// restores the previous mode; it is a no-op when f is not a terminal.
func RawMode(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
