package projektor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxTitleLength bounds Description.Title in bytes. Titles are cut to one
// byte less, on a rune boundary.
const MaxTitleLength = 255

// Description is what a Document reports about itself.
//
// Width and Height are the intrinsic (zoom 1) extent of the last rendered
// page, not a fixed property of the document: pages may differ in size, and
// backends refresh these fields on every successful render. Both are zero
// until something has been measured.
type Description struct {
	Title    string
	NumPages int
	Width    int
	Height   int
}

// TitleFromPath returns the default document title for path: the segment
// after the last '/', or the whole path if there is none. The result is NFC
// normalized and cut to fewer than MaxTitleLength bytes on a rune boundary.
func TitleFromPath(path string) string {
	title := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		title = path[i+1:]
	}
	return clampTitle(norm.NFC.String(title))
}

func clampTitle(s string) string {
	if len(s) < MaxTitleLength {
		return s
	}
	n := MaxTitleLength - 1
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
