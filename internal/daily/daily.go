// internal/daily/daily.go
//
// Time source for puzzle dates.
// The host game numbers puzzles by day since the Wordle epoch; a session may
// "time travel" by shifting its clock a whole number of days.

package daily

import (
	"time"
)

// Epoch is the date of puzzle #0.
var Epoch = time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)

// Clock returns "now" shifted back by OffsetDays (negative = into the future).
// The zero value is the real wall clock in the local time zone.
type Clock struct {
	OffsetDays int
	Loc        *time.Location
	// NowFunc overrides time.Now (tests).
	NowFunc func() time.Time
}

// Now returns the shifted current time in the clock's location.
func (c Clock) Now() time.Time {
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	t := now().Add(-time.Duration(c.OffsetDays) * 24 * time.Hour)
	if c.Loc != nil {
		t = t.In(c.Loc)
	}
	return t
}

// DayIndex returns the puzzle number for the clock's current date.
func (c Clock) DayIndex() int { return DayIndex(c.Now()) }

// DateKey returns the clock's current date as YYYY-MM-DD.
func (c Clock) DateKey() string { return DateKey(c.Now()) }

// DateKey returns YYYY-MM-DD in t's location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DayIndex returns the number of calendar days between the epoch and t's date
// (in t's location). Dates before the epoch are negative.
func DayIndex(t time.Time) int {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(date.Sub(Epoch).Hours() / 24)
}
