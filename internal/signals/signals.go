// internal/signals/signals.go
//
// Environment signals read from the host page URL.
//
// URL PARAMETERS - e.g. ?nocache=1&timetravel=1
//   nocache=1      - clear the host's persisted game state.
//   timetravel=n   - shift the game date back n days (negative = forward);
//                    also clears persisted state.
//   absent=color   - draw "absent" letters as red|orange|blue|violet|white|black.
//   force_dev=1    - always post to the dev / virtual board.
//   force_prod=1   - always post to the prod / real board.
//   yesterday=1    - label the board with the previous day's number.
//
// A flag counts as set when present with a non-empty value.

package signals

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/wordleboard/internal/board"
	"github.com/robalobadob/wordleboard/internal/daily"
)

// Target selects which board and credential set a session posts to.
type Target string

const (
	TargetDev  Target = "dev"
	TargetProd Target = "prod"
)

// IsDev reports whether t is the dev target.
func (t Target) IsDev() bool { return t == TargetDev }

var ErrConflictingOverrides = errors.New("signals: force_dev and force_prod are both set")

// Signals is the parsed set of host page parameters.
type Signals struct {
	Domain string

	NoCache    bool
	TimeTravel string // raw value; see TimeTravelDays
	Absent     string
	ForceDev   bool
	ForceProd  bool
	Yesterday  bool
}

// Parse reads signals from a host page URL (e.g. location.href).
func Parse(page string) (Signals, error) {
	u, err := url.Parse(page)
	if err != nil {
		return Signals{}, fmt.Errorf("signals: parse page url: %w", err)
	}
	s := FromQuery(u.Query())
	s.Domain = u.Hostname()
	return s, nil
}

// FromQuery reads signals from query parameters. Domain is left empty.
func FromQuery(q url.Values) Signals {
	return Signals{
		NoCache:    q.Get("nocache") != "",
		TimeTravel: q.Get("timetravel"),
		Absent:     q.Get("absent"),
		ForceDev:   q.Get("force_dev") != "",
		ForceProd:  q.Get("force_prod") != "",
		Yesterday:  q.Get("yesterday") != "",
	}
}

// TimeTravelDays returns the requested day offset, if timetravel is numeric.
func (s Signals) TimeTravelDays() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s.TimeTravel))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClearState reports whether the host should drop its persisted game state.
// Any timetravel value clears it to avoid mixing dates.
func (s Signals) ClearState() bool { return s.NoCache || s.TimeTravel != "" }

// Clock builds the session time source in loc.
func (s Signals) Clock(loc *time.Location) daily.Clock {
	days, _ := s.TimeTravelDays()
	return daily.Clock{OffsetDays: days, Loc: loc}
}

// ResolveTarget picks dev or prod. An explicit override wins; otherwise the
// session is dev iff the page is served from devDomain.
func ResolveTarget(s Signals, devDomain string) (Target, error) {
	switch {
	case s.ForceDev && s.ForceProd:
		return "", ErrConflictingOverrides
	case s.ForceDev:
		return TargetDev, nil
	case s.ForceProd:
		return TargetProd, nil
	case strings.EqualFold(s.Domain, devDomain):
		return TargetDev, nil
	}
	return TargetProd, nil
}

// ResolveColor returns the absent color and whether the requested name was
// recognized. Unset or unknown names give board.DefaultAbsent.
func ResolveColor(s Signals) (int, bool) {
	if s.Absent == "" {
		return board.DefaultAbsent, false
	}
	if c, ok := board.ColorByName(s.Absent); ok {
		return c, true
	}
	return board.DefaultAbsent, false
}
