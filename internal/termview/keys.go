package termview

import (
	"fmt"
	"unicode/utf8"
)

// KeyCode identifies a decoded key.
type KeyCode uint8

// Key codes. KeyRune carries a printable character in Key.Rune.
const (
	KeyRune KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyInterrupt
)

var keyNames = [...]string{
	KeyRune:      "Rune",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyEnter:     "Enter",
	KeyEscape:    "Escape",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyInterrupt: "Interrupt",
}

// String returns the key code name.
func (c KeyCode) String() string {
	if int(c) < len(keyNames) {
		return keyNames[c]
	}
	return fmt.Sprintf("KeyCode(%d)", c)
}

// Key is one decoded key press.
type Key struct {
	Code KeyCode
	Rune rune
}

// R returns a KeyRune key.
func R(r rune) Key { return Key{Code: KeyRune, Rune: r} }

func (k Key) String() string {
	if k.Code == KeyRune {
		return fmt.Sprintf("%q", k.Rune)
	}
	return k.Code.String()
}

// csiKeys maps the final byte of parameterless CSI and SS3 sequences.
var csiKeys = map[byte]KeyCode{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

// tildeKeys maps the parameter of "ESC [ n ~" sequences.
var tildeKeys = map[string]KeyCode{
	"1": KeyHome,
	"7": KeyHome,
	"4": KeyEnd,
	"8": KeyEnd,
	"5": KeyPageUp,
	"6": KeyPageDown,
	"3": KeyDelete,
}

// ParseKeys decodes a complete buffer of raw-mode terminal input: an ESC at
// the end of b is the Escape key. Unknown sequences are dropped.
func ParseKeys(b []byte) []Key {
	keys, _ := decodeKeys(b, true)
	return keys
}

// decodeKeys decodes b and returns the keys and the number of bytes used.
// Unless final is set, decoding stops before an escape sequence or UTF-8
// rune that is cut off at the end of b.
func decodeKeys(b []byte, final bool) ([]Key, int) {
	var keys []Key
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0x1b:
			if !final && escapePending(b[i:]) {
				return keys, i
			}
			k, n := parseEscape(b[i:])
			if n > 1 && k == nil {
				i += n
				continue
			}
			if k == nil {
				keys = append(keys, Key{Code: KeyEscape})
			} else {
				keys = append(keys, *k)
			}
			i += n
			continue
		case c == '\r' || c == '\n':
			keys = append(keys, Key{Code: KeyEnter})
		case c == 0x7f || c == 0x08:
			keys = append(keys, Key{Code: KeyBackspace})
		case c == 0x03:
			keys = append(keys, Key{Code: KeyInterrupt})
		case c < 0x20:
		default:
			if !final && !utf8.FullRune(b[i:]) {
				return keys, i
			}
			r, size := utf8.DecodeRune(b[i:])
			if r != utf8.RuneError || size > 1 {
				keys = append(keys, R(r))
			}
			i += size
			continue
		}
		i++
	}
	return keys, len(b)
}

// escapePending reports whether b, which starts with ESC, may be the
// beginning of a CSI or SS3 sequence that continues in the next read.
func escapePending(b []byte) bool {
	if len(b) == 1 {
		return true
	}
	if b[1] != '[' && b[1] != 'O' {
		return false
	}
	for _, c := range b[2:] {
		if (c < '0' || c > '9') && c != ';' {
			return false
		}
	}
	return true
}

// keyDecoder decodes a stream of reads, holding back a sequence split
// between two reads.
type keyDecoder struct {
	pending []byte
}

// feed decodes b after any held-back bytes.
func (d *keyDecoder) feed(b []byte) []Key {
	d.pending = append(d.pending, b...)
	keys, n := decodeKeys(d.pending, false)
	d.pending = append(d.pending[:0], d.pending[n:]...)
	return keys
}

// flush decodes the held-back bytes as complete input.
func (d *keyDecoder) flush() []Key {
	keys := ParseKeys(d.pending)
	d.pending = d.pending[:0]
	return keys
}

// waiting reports whether bytes are held back.
func (d *keyDecoder) waiting() bool { return len(d.pending) > 0 }

// parseEscape decodes a sequence starting with ESC. It returns the key (nil
// for a bare or unknown escape) and the number of bytes consumed.
func parseEscape(b []byte) (*Key, int) {
	if len(b) < 2 || (b[1] != '[' && b[1] != 'O') {
		return nil, 1
	}
	for j := 2; j < len(b); j++ {
		c := b[j]
		if c >= 0x40 && c <= 0x7e {
			params := string(b[2:j])
			if c == '~' {
				if code, ok := tildeKeys[params]; ok {
					return &Key{Code: code}, j + 1
				}
				return nil, j + 1
			}
			if code, ok := csiKeys[c]; ok && (params == "" || params == "1") {
				return &Key{Code: code}, j + 1
			}
			return nil, j + 1
		}
		if (c < '0' || c > '9') && c != ';' {
			break
		}
	}
	return nil, 1
}
