// internal/board/types.go
//
// Core type definitions for the board encoder.
// Defines:
//   - Outcome: per-letter evaluation tag reported by the host game.
//   - Snapshot: read-only view of the host game's board state.
//   - Grid: the fixed 6x22 matrix of Vestaboard character codes.

package board

const (
	Rows = 6  // board rows, one per Wordle attempt
	Cols = 22 // board columns

	WordLen = 5 // letters per Wordle attempt
)

// Outcome represents the evaluation result for a single letter of an attempt.
// Possible values:
//   - "absent":  letter does not exist in the answer.
//   - "present": letter exists in the answer but in a different position.
//   - "correct": letter is in the correct position.
type Outcome string

const (
	OutcomeAbsent  Outcome = "absent"
	OutcomePresent Outcome = "present"
	OutcomeCorrect Outcome = "correct"
)

// Snapshot is the host game's state as consumed by Encode.
//
// Attempts[i] is the word typed on row i (possibly empty).
// Evaluations[i] is nil until row i has been scored; once set it is never empty.
// DayIndex identifies the puzzle (Wordle "day offset").
type Snapshot struct {
	Attempts    []string    `json:"boardState"`
	Evaluations [][]Outcome `json:"evaluations"`
	DayIndex    int         `json:"dayOffset"`
}

// Grid is one full board update: Rows x Cols character codes.
// The zero value is a blank board.
type Grid [Rows][Cols]int
