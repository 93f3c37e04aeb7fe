package board

import (
	"regexp"
	"strconv"
	"strings"
)

// wirePattern is what the proxy endpoint accepts for ?characters=.
// It is a sanity check, not a security boundary.
var wirePattern = regexp.MustCompile(`^[0-9\[\],]*$`)

// Wire serializes g as a compact 2D numeric array, e.g. [[0,0,...],[...]].
// The output has no whitespace and always satisfies ValidWire.
func (g Grid) Wire() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range g {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, c := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(c))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

// String implements fmt.Stringer with the wire form.
func (g Grid) String() string { return g.Wire() }

// ValidWire reports whether s contains only digits, commas and brackets.
func ValidWire(s string) bool { return wirePattern.MatchString(s) }
