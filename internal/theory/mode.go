package theory

import (
	"fmt"
	"sort"
	"strings"
)

// Mode is one of the six church modes
type Mode string

const (
	Ionian     Mode = "ionian"
	Dorian     Mode = "dorian"
	Phrygian   Mode = "phrygian"
	Lydian     Mode = "lydian"
	Mixolydian Mode = "mixolydian"
	Aeolian    Mode = "aeolian"
)

// Finalis is the modal tonic, one of the seven natural letter names
type Finalis string

const (
	// Engine pitch range, C3..C6
	MinPitch = 48
	MaxPitch = 84

	scaleOctaveSpan = 3
)

var modeIntervals = map[Mode][7]int{
	Ionian:     {0, 2, 4, 5, 7, 9, 11}, // W-W-H-W-W-W-H
	Dorian:     {0, 2, 3, 5, 7, 9, 10}, // W-H-W-W-W-H-W
	Phrygian:   {0, 1, 3, 5, 7, 8, 10}, // H-W-W-W-H-W-W
	Lydian:     {0, 2, 4, 6, 7, 9, 11}, // W-W-W-H-W-W-H
	Mixolydian: {0, 2, 4, 5, 7, 9, 10}, // W-W-H-W-W-H-W
	Aeolian:    {0, 2, 3, 5, 7, 8, 10}, // W-H-W-W-H-W-W
}

var modeDisplayNames = map[Mode]string{
	Ionian:     "Ionian (Major)",
	Dorian:     "Dorian",
	Phrygian:   "Phrygian",
	Lydian:     "Lydian",
	Mixolydian: "Mixolydian",
	Aeolian:    "Aeolian (Minor)",
}

var finalisOptions = []Finalis{"C", "D", "E", "F", "G", "A", "B"}

// Modes lists the modes in their traditional order
func Modes() []Mode {
	return []Mode{Ionian, Dorian, Phrygian, Lydian, Mixolydian, Aeolian}
}

// FinalisOptions lists the allowed finals
func FinalisOptions() []Finalis {
	out := make([]Finalis, len(finalisOptions))
	copy(out, finalisOptions)
	return out
}

// ParseMode accepts a mode name in any case
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeIntervals[m]; !ok {
		return "", fmt.Errorf("unknown mode: %s", s)
	}
	return m, nil
}

// ParseFinalis accepts a natural letter name in any case
func ParseFinalis(s string) (Finalis, error) {
	f := Finalis(strings.ToUpper(strings.TrimSpace(s)))
	for _, opt := range finalisOptions {
		if f == opt {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown finalis: %s", s)
}

// Valid reports whether m is one of the six modes
func (m Mode) Valid() bool {
	_, ok := modeIntervals[m]
	return ok
}

// Intervals returns the ascending semitone pattern from the final
func (m Mode) Intervals() [7]int {
	return modeIntervals[m]
}

// DisplayName returns a human-readable mode name
func (m Mode) DisplayName() string {
	if name, ok := modeDisplayNames[m]; ok {
		return name
	}
	return string(m)
}

// Valid reports whether f is a natural letter name
func (f Finalis) Valid() bool {
	_, err := ParseFinalis(string(f))
	return err == nil
}

// Pitch places the finalis in the given octave
func (f Finalis) Pitch(octave int) Pitch {
	return Pitch(fmt.Sprintf("%s%d", f, octave))
}

// PitchSet is a set of MIDI numbers. A nil set admits every pitch.
type PitchSet map[int]struct{}

// Contains reports membership; nil sets contain everything
func (s PitchSet) Contains(n int) bool {
	if s == nil {
		return true
	}
	_, ok := s[n]
	return ok
}

// Sorted returns the members in ascending order
func (s PitchSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// ScalePitches expands the mode's pattern across ±3 octaves from finalis4 and
// keeps the pitches within [minBound, maxBound].
func ScalePitches(finalis Finalis, mode Mode, minBound, maxBound int) PitchSet {
	root := PitchToNumber(finalis.Pitch(4))
	intervals := mode.Intervals()
	set := make(PitchSet)
	for octave := -scaleOctaveSpan; octave <= scaleOctaveSpan; octave++ {
		for _, iv := range intervals {
			p := root + iv + octave*12
			if p >= minBound && p <= maxBound {
				set[p] = struct{}{}
			}
		}
	}
	return set
}

// NewScale returns the engine-range scale, or nil when mode filtering is off
func NewScale(finalis Finalis, mode Mode) PitchSet {
	if finalis == "" || mode == "" || !mode.Valid() || !finalis.Valid() {
		return nil
	}
	return ScalePitches(finalis, mode, MinPitch, MaxPitch)
}
