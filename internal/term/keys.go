package term

import "unicode/utf8"

// Key identifies a decoded keypress.
type Key uint8

const (
	KeyNone Key = iota
	KeyRune     // Printable character, see Event.Rune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlZ
)

// Event is one keypress.
type Event struct {
	Key  Key
	Rune rune
}

// Decode turns raw terminal input into key events. An ESC that does not
// start a recognised sequence is the Escape key; unknown CSI sequences are
// skipped.
func Decode(data []byte) []Event {
	var out []Event
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b == 0x1b:
			n, ev := decodeEscape(data[i:])
			if ev.Key != KeyNone {
				out = append(out, ev)
			}
			i += n
		case b >= 0x20 && b < 0x7f:
			out = append(out, Event{Key: KeyRune, Rune: rune(b)})
			i++
		case b == 0x7f || b == 0x08:
			out = append(out, Event{Key: KeyBackspace})
			i++
		case b < 0x20:
			if ev := control(b); ev.Key != KeyNone {
				out = append(out, ev)
			}
			i++
		default:
			r, size := utf8.DecodeRune(data[i:])
			if r != utf8.RuneError {
				out = append(out, Event{Key: KeyRune, Rune: r})
			}
			i += size
		}
	}
	return out
}

func control(b byte) Event {
	switch b {
	case 0x03:
		return Event{Key: KeyCtrlC}
	case 0x09:
		return Event{Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Key: KeyEnter}
	case 0x1a:
		return Event{Key: KeyCtrlZ}
	}
	return Event{}
}

// decodeEscape handles input starting with ESC and returns the bytes used.
func decodeEscape(data []byte) (int, Event) {
	if len(data) < 2 || (data[1] != '[' && data[1] != 'O') {
		return 1, Event{Key: KeyEscape}
	}

	// Scan to the final byte of the sequence.
	end := 2
	for end < len(data) {
		c := data[end]
		end++
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '~' {
			break
		}
		if c < 0x20 || c > 0x7e {
			return end - 1, Event{Key: KeyEscape}
		}
	}

	switch data[end-1] {
	case 'A':
		return end, Event{Key: KeyUp}
	case 'B':
		return end, Event{Key: KeyDown}
	case 'C':
		return end, Event{Key: KeyRight}
	case 'D':
		return end, Event{Key: KeyLeft}
	case 'Z':
		// Shift-Tab
		return end, Event{Key: KeyTab}
	}
	return end, Event{}
}
