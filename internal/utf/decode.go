package utf

// The decoder is Björn Höhrmann's DFA: bytes map to character classes,
// (state, class) pairs map to the next state. State 0 accepts, state 12
// rejects.

const (
	decodeAccept = 0
	decodeReject = 12
)

var decodeType = [256]uint8{
	0x00: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x10: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x20: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x30: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x40: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x50: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x60: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x70: 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0x80: 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0x90: 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9,
	0xA0: 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	0xB0: 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	0xC0: 8, 8, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	0xD0: 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	0xE0: 10, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 4, 3, 3,
	0xF0: 11, 6, 6, 6, 5, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
}

var decodeTransition = [108]uint8{
	0, 12, 24, 36, 60, 96, 84, 12, 12, 12, 48, 72, // state  0 (accept)
	12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, // state 12 (reject)
	12, 0, 12, 12, 12, 12, 12, 0, 12, 0, 12, 12, // state 24
	12, 24, 12, 12, 12, 12, 12, 24, 12, 24, 12, 12, // state 36
	12, 12, 12, 12, 12, 12, 12, 24, 12, 12, 12, 12, // state 48
	12, 24, 12, 12, 12, 12, 12, 12, 12, 24, 12, 12, // state 60
	12, 12, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12, // state 72
	12, 36, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12, // state 84
	12, 36, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, // state 96
}

// Decode decodes the first code point of p. On success it returns the code
// point and the number of bytes it occupied. On malformed input it returns
// (RuneError, 1, ErrInvalid): the caller consumes one byte and substitutes
// U+FFFD. If p ends inside a sequence that is still well-formed so far, it
// returns (RuneError, 0, ErrIncomplete).
func Decode(p []byte) (r rune, size int, err error) {
	if len(p) == 0 {
		return RuneError, 0, ErrIncomplete
	}

	var cp rune
	state := uint8(decodeAccept)
	for i, b := range p {
		t := decodeType[b]
		if state == decodeAccept {
			cp = rune(b) & (0xFF >> t)
		} else {
			cp = cp<<6 | rune(b)&0x3F
		}
		state = decodeTransition[state+t]
		switch state {
		case decodeAccept:
			return cp, i + 1, nil
		case decodeReject:
			return RuneError, 1, ErrInvalid
		}
	}
	return RuneError, 0, ErrIncomplete
}
