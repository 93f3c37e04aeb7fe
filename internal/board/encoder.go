// internal/board/encoder.go
//
// Translates host game state into a Vestaboard grid.
//
//   Vestaboard: 22 x 6
// ----------------------
//      WORD1  *****
//      WORD2  *****
//      WORD3  *****
//      WORD4  *****
//      WORD5  *****
//      WORD6  ***** #xxx
// ----------------------
// (where #xxx is the puzzle day index)
//
// Notes:
//   - Cells are written left to right; a short word is not padded, so the
//     following blocks shift left and the row ends in blanks.
//   - Encode is pure: the same snapshot and options always give the same grid.

package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	marginCols    = 5
	separatorCols = 2
	dayCols       = 5

	// MaxDay is the largest day index whose "#nnnn" label fits the day block.
	MaxDay = 9999
)

var (
	ErrWordTooLong     = errors.New("board: row does not fit")
	ErrDayOutOfRange   = errors.New("board: day index out of range")
	ErrTooManyAttempts = errors.New("board: more attempts than rows")
)

// Options control the parts of the encoding that are chosen per session.
type Options struct {
	// Absent is the color code drawn for "absent" letters.
	Absent int
	// Yesterday renders DayIndex-1 in the day label.
	Yesterday bool
}

// DefaultOptions draws absent letters white and uses the snapshot's day.
func DefaultOptions() Options { return Options{Absent: DefaultAbsent} }

// Encode builds the grid for s.
// Missing attempt/evaluation slots are treated as empty rows.
func Encode(s Snapshot, opts Options) (Grid, error) {
	var g Grid
	if len(s.Attempts) > Rows || len(s.Evaluations) > Rows {
		return g, ErrTooManyAttempts
	}

	day := s.DayIndex
	if opts.Yesterday {
		day--
	}
	if day < 0 || day > MaxDay {
		return g, fmt.Errorf("%w: %d", ErrDayOutOfRange, day)
	}

	for i := 0; i < Rows; i++ {
		var word string
		var eval []Outcome
		if i < len(s.Attempts) {
			word = s.Attempts[i]
		}
		if i < len(s.Evaluations) {
			eval = s.Evaluations[i]
		}
		if utf8.RuneCountInString(word) > WordLen || len(eval) > WordLen {
			return Grid{}, fmt.Errorf("%w: row %d", ErrWordTooLong, i)
		}

		w := rowWriter{row: &g[i]}
		w.blanks(marginCols)

		if word != "" {
			for _, r := range strings.ToUpper(word) {
				w.put(Letter(r))
			}
		} else {
			w.blanks(WordLen)
		}

		w.blanks(separatorCols)

		if eval == nil {
			// not played yet
			w.blanks(WordLen)
		} else {
			for _, o := range eval {
				w.put(OutcomeCode(o, opts.Absent))
			}
		}

		if i == Rows-1 {
			w.day(day)
		} else {
			w.blanks(dayCols)
		}
	}
	return g, nil
}

// rowWriter appends codes to a single row. The row is
// sized for the longest legal content, so put never overflows
// once the word and evaluation lengths are checked.
type rowWriter struct {
	row *[Cols]int
	n   int
}

func (w *rowWriter) put(c int) {
	if w.n < Cols {
		w.row[w.n] = c
	}
	w.n++
}

func (w *rowWriter) blanks(count int) {
	for j := 0; j < count; j++ {
		w.put(Blank)
	}
}

// day right-aligns "#<day>" within the day block.
func (w *rowWriter) day(day int) {
	s := strconv.Itoa(day)
	w.blanks(dayCols - (len(s) + 1))
	w.put(PoundSign)
	for _, r := range s {
		w.put(Digit(r))
	}
}
