package input

import (
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
)

const esc = 0x1b

// maxPending bounds the undecoded tail kept between reads.
const maxPending = 32

// Decode converts raw terminal bytes into keys. It understands printable
// UTF-8, control letters, enter, tab, backspace, escape, alt chords, and the
// CSI and SS3 cursor sequences. Unknown sequences are dropped, and so is a
// truncated sequence at the end of b.
func Decode(b []byte) []tea.Key {
	keys, _ := DecodeStream(b)
	return keys
}

// DecodeStream is Decode for data arriving in chunks: it also returns the
// trailing bytes of a sequence cut off by the chunk boundary, which the
// caller prepends to the next chunk. A lone trailing ESC is a complete
// escape key.
func DecodeStream(b []byte) ([]tea.Key, []byte) {
	var keys []tea.Key
	for len(b) > 0 {
		k, n := decodeOne(b)
		if n == 0 {
			return keys, b
		}
		if k != nil {
			keys = append(keys, *k)
		}
		b = b[n:]
	}
	return keys, nil
}

// decodeOne decodes the key at the start of b and the bytes it used. A zero
// length means b ends inside a sequence.
func decodeOne(b []byte) (*tea.Key, int) {
	c := b[0]
	switch {
	case c == esc:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return &tea.Key{Code: tea.KeyEnter}, 1
	case c == '\t':
		return &tea.Key{Code: tea.KeyTab}, 1
	case c == 0x7f || c == 0x08:
		return &tea.Key{Code: tea.KeyBackspace}, 1
	case c == 0x00:
		return &tea.Key{Code: tea.KeySpace, Mod: tea.ModCtrl}, 1
	case c < 0x1b:
		return &tea.Key{Code: rune('a' + c - 1), Mod: tea.ModCtrl}, 1
	case c < 0x20:
		return nil, 1
	}
	if !utf8.FullRune(b) {
		return nil, 0
	}
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return nil, n
	}
	return &tea.Key{Code: r, Text: string(r)}, n
}

func decodeEscape(b []byte) (*tea.Key, int) {
	if len(b) == 1 {
		return &tea.Key{Code: tea.KeyEscape}, 1
	}
	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return nil, 0
		}
		if code, ok := cursorKey(b[2]); ok {
			return &tea.Key{Code: code}, 3
		}
		return nil, 3
	case esc:
		return &tea.Key{Code: tea.KeyEscape}, 1
	}
	k, n := decodeOne(b[1:])
	if n == 0 {
		return nil, 0
	}
	if k == nil {
		return &tea.Key{Code: tea.KeyEscape}, 1
	}
	k.Mod |= tea.ModAlt
	k.Text = ""
	return k, n + 1
}

// decodeCSI consumes ESC [ params final.
func decodeCSI(b []byte) (*tea.Key, int) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	if i >= len(b) {
		return nil, 0
	}
	final := b[i]
	params := string(b[2:i])
	n := i + 1
	if code, ok := cursorKey(final); ok && params == "" {
		return &tea.Key{Code: code}, n
	}
	if final == '~' {
		switch params {
		case "3":
			return &tea.Key{Code: tea.KeyDelete}, n
		}
	}
	return nil, n
}

func cursorKey(final byte) (rune, bool) {
	switch final {
	case 'A':
		return tea.KeyUp, true
	case 'B':
		return tea.KeyDown, true
	case 'C':
		return tea.KeyRight, true
	case 'D':
		return tea.KeyLeft, true
	}
	return 0, false
}
