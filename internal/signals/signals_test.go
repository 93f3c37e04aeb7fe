package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordleboard/internal/board"
)

func TestParse(t *testing.T) {
	s, err := Parse("http://localhost:8000/index.html?nocache=1&absent=blue&yesterday=1&timetravel=-2")
	require.NoError(t, err)
	assert.Equal(t, "localhost", s.Domain)
	assert.True(t, s.NoCache)
	assert.True(t, s.Yesterday)
	assert.Equal(t, "blue", s.Absent)
	assert.False(t, s.ForceDev)
	assert.False(t, s.ForceProd)

	days, ok := s.TimeTravelDays()
	assert.True(t, ok)
	assert.Equal(t, -2, days)
}

func TestParse_EmptyFlagIsUnset(t *testing.T) {
	s, err := Parse("https://example.com/?force_dev=&nocache=")
	require.NoError(t, err)
	assert.False(t, s.ForceDev)
	assert.False(t, s.NoCache)
	assert.False(t, s.ClearState())
}

func TestClearState(t *testing.T) {
	assert.True(t, Signals{NoCache: true}.ClearState())
	assert.True(t, Signals{TimeTravel: "1"}.ClearState())
	// non-numeric timetravel does not move the clock but still clears
	s := Signals{TimeTravel: "soon"}
	assert.True(t, s.ClearState())
	_, ok := s.TimeTravelDays()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Clock(time.UTC).OffsetDays)
}

func TestResolveTarget(t *testing.T) {
	cases := []struct {
		name string
		s    Signals
		want Target
	}{
		{"dev domain", Signals{Domain: "localhost"}, TargetDev},
		{"other domain", Signals{Domain: "wordle.example.com"}, TargetProd},
		{"force dev elsewhere", Signals{Domain: "wordle.example.com", ForceDev: true}, TargetDev},
		{"force prod on dev domain", Signals{Domain: "localhost", ForceProd: true}, TargetProd},
		{"dev domain case", Signals{Domain: "LocalHost"}, TargetDev},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveTarget(tc.s, "localhost")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveTarget_Conflict(t *testing.T) {
	_, err := ResolveTarget(Signals{Domain: "localhost", ForceDev: true, ForceProd: true}, "localhost")
	require.ErrorIs(t, err, ErrConflictingOverrides)
}

func TestResolveColor(t *testing.T) {
	c, ok := ResolveColor(Signals{})
	assert.False(t, ok)
	assert.Equal(t, board.White, c)

	c, ok = ResolveColor(Signals{Absent: "mauve"})
	assert.False(t, ok)
	assert.Equal(t, board.White, c)

	c, ok = ResolveColor(Signals{Absent: "red"})
	assert.True(t, ok)
	assert.Equal(t, board.Red, c)

	c, ok = ResolveColor(Signals{Absent: "black"})
	assert.True(t, ok)
	assert.Equal(t, board.Blank, c)
}
