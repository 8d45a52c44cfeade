package cantus

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
)

var (
	ErrTooShort        = errors.New("cantus firmus must have at least 8 notes")
	ErrEndpoints       = errors.New("cantus firmus must begin and end on the same note")
	ErrClimaxNotUnique = errors.New("cantus firmus climax must be a single highest note")
	ErrClimaxPlacement = errors.New("cantus firmus climax must fall after the midpoint and before the last two notes")
	ErrForbiddenLeap   = errors.New("cantus firmus contains a forbidden melodic interval")
)

// Validate checks a complete melody given as MIDI numbers
func Validate(melody []int) error {
	n := len(melody)
	if n < MinMeasures {
		return ErrTooShort
	}
	if melody[0] != melody[n-1] {
		return ErrEndpoints
	}

	maxIdx := 0
	count := 0
	for i, p := range melody {
		switch {
		case p > melody[maxIdx]:
			maxIdx, count = i, 1
		case p == melody[maxIdx]:
			count++
		}
	}
	if count > 1 {
		return ErrClimaxNotUnique
	}
	if 2*maxIdx < n || maxIdx >= n-2 {
		return fmt.Errorf("%w: index %d of %d", ErrClimaxPlacement, maxIdx, n)
	}

	for i := 1; i < n; i++ {
		if r := rules.CheckForbiddenInterval(melody[i-1], melody[i]); !r.Passed {
			return fmt.Errorf("%w at note %d: %s", ErrForbiddenLeap, i+1, r.Message)
		}
	}
	return nil
}
