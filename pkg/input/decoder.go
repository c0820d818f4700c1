// Package input turns raw terminal input into key events.
package input

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/keycat/pkg/types"
)

const (
	// SequenceBase offsets positions for CSI and SS3 keys (arrows, function
	// keys) past the Unicode range.
	SequenceBase = 0x110000
	// AltBase offsets positions for Alt-modified keys.
	AltBase = 0x200000

	esc = 0x1b
)

// Reports that look like CSI sequences but are not key presses.
var ignoredSequences = [][]byte{
	[]byte("\033[I"),    // Focus in
	[]byte("\033[O"),    // Focus out
	[]byte("\033[200~"), // Bracketed paste start
	[]byte("\033[201~"), // Bracketed paste end
}

// ss3Finals are the bytes that end an SS3 key (ESC O x): cursor, home/end,
// F1-F4 and the application keypad.
const ss3Finals = "ABCDEFHPQRSMXjklmnopqrstuvwxy"

// Decoder splits terminal input into keys. Terminals do not report key
// releases, so every decoded key yields a press followed by a release.
// Incomplete UTF-8 and escape sequences are held until the next chunk.
type Decoder struct {
	pending []byte
}

// NewDecoder creates a decoder with an empty buffer.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode consumes data and returns the key events it completes.
func (d *Decoder) Decode(data []byte) []types.KeyEvent {
	buf := append(d.pending, data...)
	d.pending = nil

	var events []types.KeyEvent
	emit := func(position int) {
		events = append(events, types.Press(position), types.Release(position))
	}

	i := 0
	for i < len(buf) {
		if buf[i] == esc {
			n, position, ok := decodeEscape(buf[i:])
			if n == 0 {
				// Incomplete sequence, keep it for the next chunk
				d.pending = append([]byte(nil), buf[i:]...)
				break
			}
			if ok {
				emit(position)
			}
			i += n
			continue
		}

		if !utf8.FullRune(buf[i:]) {
			d.pending = append([]byte(nil), buf[i:]...)
			break
		}
		r, size := utf8.DecodeRune(buf[i:])
		emit(int(r))
		i += size
	}

	return events
}

// Pending reports how many bytes are buffered.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

// decodeEscape decodes the sequence at the start of b, which begins with ESC.
// It returns the bytes consumed (0 when incomplete), the key position and
// whether the sequence is a key at all.
func decodeEscape(b []byte) (int, int, bool) {
	if len(b) == 1 {
		// A lone ESC at the end of a read is the Escape key.
		return 1, esc, true
	}

	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		// Terminals send SS3 keys in one write, so ESC O at the end of a
		// read or before a non-final byte is Alt+Shift+O.
		if len(b) < 3 || strings.IndexByte(ss3Finals, b[2]) < 0 {
			return 2, AltBase | 'O', true
		}
		return 3, SequenceBase | int(b[2]), true
	case esc:
		// ESC ESC: the first one is a plain Escape key.
		return 1, esc, true
	default:
		if !utf8.FullRune(b[1:]) {
			return 0, 0, false
		}
		r, size := utf8.DecodeRune(b[1:])
		return 1 + size, AltBase | int(r), true
	}
}

// decodeCSI decodes ESC [ params intermediates final.
func decodeCSI(b []byte) (int, int, bool) {
	param := 0
	inParam := true
	for j := 2; j < len(b); j++ {
		c := b[j]
		switch {
		case c >= '0' && c <= '9':
			if inParam {
				param = param*10 + int(c-'0')
			}
		case c >= 0x30 && c <= 0x3f:
			// Separators and private markers end the leading parameter
			inParam = false
		case c >= 0x20 && c <= 0x2f:
			inParam = false
		case c >= 0x40 && c <= 0x7e:
			seq := b[:j+1]
			for _, ignored := range ignoredSequences {
				if bytes.Equal(seq, ignored) {
					return j + 1, 0, false
				}
			}
			return j + 1, SequenceBase | (param&0xff)<<8 | int(c), true
		default:
			// Malformed: treat the ESC as its own key and resume after it
			return 1, esc, true
		}
	}
	return 0, 0, false
}
