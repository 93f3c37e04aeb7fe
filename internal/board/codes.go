package board

import "strings"

// Vestaboard character codes. The board does not follow ASCII.
// https://docs.vestaboard.com/characters
const (
	Blank     = 0
	PoundSign = 39

	Red    = 63
	Orange = 64
	Yellow = 65
	Green  = 66
	Blue   = 67
	Violet = 68
	White  = 69
	Black  = Blank
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// unlike ASCII 0-9, the board numbers 1-9 and then 0.
	digits = "1234567890"
)

// Palette lists the colors selectable for "absent" letters.
var Palette = map[string]int{
	"red":    Red,
	"orange": Orange,
	"blue":   Blue,
	"violet": Violet,
	"white":  White,
	"black":  Black,
}

// DefaultAbsent is used when no (or an unknown) absent color is requested.
const DefaultAbsent = White

// ColorByName looks up a palette color, ignoring case and surrounding space.
func ColorByName(name string) (int, bool) {
	c, ok := Palette[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Letter maps A-Z (either case) to 1-26. Anything else is blank.
func Letter(r rune) int {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if i := strings.IndexRune(letters, r); i >= 0 {
		return 1 + i
	}
	return Blank
}

// Digit maps '1'..'9' to 27..35 and '0' to 36. Anything else is blank.
func Digit(r rune) int {
	if i := strings.IndexRune(digits, r); i >= 0 {
		return 27 + i
	}
	return Blank
}

// OutcomeCode maps an evaluation tag to its tile color.
// absent uses the caller's preference; unknown tags are blank.
func OutcomeCode(o Outcome, absent int) int {
	switch o {
	case OutcomeAbsent:
		return absent
	case OutcomePresent:
		return Yellow
	case OutcomeCorrect:
		return Green
	}
	return Blank
}
