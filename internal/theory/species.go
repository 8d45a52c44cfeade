package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Species is a Fuxian species number, 1 through 5
type Species int

const (
	FirstSpecies  Species = 1
	SecondSpecies Species = 2
	ThirdSpecies  Species = 3
	FourthSpecies Species = 4
	FifthSpecies  Species = 5
)

// ParseSpecies accepts "1".."5", optionally with an ordinal suffix ("3rd")
func ParseSpecies(s string) (Species, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		trimmed = strings.TrimSuffix(trimmed, suffix)
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid species: %q", s)
	}
	sp := Species(n)
	if !sp.Known() {
		return 0, fmt.Errorf("invalid species: %d", n)
	}
	return sp, nil
}

// Known reports whether s is 1..5 (including the unimplemented fifth species)
func (s Species) Known() bool {
	return s >= FirstSpecies && s <= FifthSpecies
}

// Implemented reports whether the engine can generate s
func (s Species) Implemented() bool {
	return s >= FirstSpecies && s <= FourthSpecies
}

// Name returns "1st species", "2nd species", ...
func (s Species) Name() string {
	switch s {
	case FirstSpecies:
		return "1st species"
	case SecondSpecies:
		return "2nd species"
	case ThirdSpecies:
		return "3rd species"
	default:
		return fmt.Sprintf("%dth species", int(s))
	}
}

// NotesPerMeasure is the number of counterpoint notes against each cantus note
func (s Species) NotesPerMeasure() int {
	switch s {
	case SecondSpecies, FourthSpecies:
		return 2
	case ThirdSpecies:
		return 4
	default:
		return 1
	}
}

// LineLength is the counterpoint length for a cantus firmus of cfLen notes
func (s Species) LineLength(cfLen int) int {
	return s.NotesPerMeasure() * cfLen
}

// Duration is the note value used for each counterpoint note
func (s Species) Duration() Duration {
	switch s {
	case SecondSpecies, FourthSpecies:
		return Half
	case ThirdSpecies:
		return Quarter
	default:
		return Whole
	}
}
