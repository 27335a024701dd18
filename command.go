package projektor

import "fmt"

// CommandKind identifies a navigation command.
type CommandKind uint8

// Navigation commands, as produced by a key map.
const (
	CmdNone CommandKind = iota
	CmdScrollUp
	CmdScrollDown
	CmdScrollLeft
	CmdScrollRight
	CmdPrevPage
	CmdNextPage
	CmdFirstPage
	CmdLastPage
	CmdZoomIn
	CmdZoomOut
	CmdOptimalZoom
	CmdGotoPage
)

var commandNames = [...]string{
	CmdNone:        "None",
	CmdScrollUp:    "ScrollUp",
	CmdScrollDown:  "ScrollDown",
	CmdScrollLeft:  "ScrollLeft",
	CmdScrollRight: "ScrollRight",
	CmdPrevPage:    "PrevPage",
	CmdNextPage:    "NextPage",
	CmdFirstPage:   "FirstPage",
	CmdLastPage:    "LastPage",
	CmdZoomIn:      "ZoomIn",
	CmdZoomOut:     "ZoomOut",
	CmdOptimalZoom: "OptimalZoom",
	CmdGotoPage:    "GotoPage",
}

// String returns a string representation of the command kind.
func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", k)
}

// Command is one translated input event. Page is only used by CmdGotoPage.
type Command struct {
	Kind CommandKind
	Page int
}

// Goto returns a CmdGotoPage command.
func Goto(page int) Command {
	return Command{Kind: CmdGotoPage, Page: page}
}

// String returns a string representation of the command.
func (c Command) String() string {
	if c.Kind == CmdGotoPage {
		return fmt.Sprintf("GotoPage(%d)", c.Page)
	}
	return c.Kind.String()
}

// scrollDivisor is the fraction of the viewport one scroll step moves.
const scrollDivisor = 5

// Apply executes one command. Scroll commands move by a fifth of the
// viewport, zoom commands by ZoomStep.
func (v *Viewer) Apply(c Command) error {
	switch c.Kind {
	case CmdNone:
		return nil
	case CmdScrollUp:
		v.Scroll(0, -v.viewport.Y/scrollDivisor)
	case CmdScrollDown:
		v.Scroll(0, v.viewport.Y/scrollDivisor)
	case CmdScrollLeft:
		v.Scroll(-v.viewport.X/scrollDivisor, 0)
	case CmdScrollRight:
		v.Scroll(v.viewport.X/scrollDivisor, 0)
	case CmdPrevPage:
		return v.GotoPage(v.page - 1)
	case CmdNextPage:
		return v.GotoPage(v.page + 1)
	case CmdFirstPage:
		return v.GotoPage(1)
	case CmdLastPage:
		return v.GotoPage(v.desc.NumPages)
	case CmdZoomIn:
		return v.SetZoom(v.zoom + ZoomStep)
	case CmdZoomOut:
		return v.SetZoom(v.zoom - ZoomStep)
	case CmdOptimalZoom:
		return v.SetOptimalZoom()
	case CmdGotoPage:
		return v.GotoPage(c.Page)
	default:
		return fmt.Errorf("projektor: unknown command %v", c.Kind)
	}
	return nil
}
