package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Pitch is a note name with octave, e.g. "C4", "F#3" or "Bb2"
type Pitch string

const (
	// DefaultPitchNumber is what malformed pitch strings resolve to (middle C).
	DefaultPitchNumber = 60

	minMIDI = 0
	maxMIDI = 127
)

var (
	letterOffsets = map[byte]int{
		'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
	}
	pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	intervalNames   = []string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"}
)

// ParsePitch converts a note name like "E1", "C4", "F#3", "Bb2" to a MIDI note number
// Format: <letter><accidental?><octave> where:
//   - letter: A-G (case insensitive)
//   - accidental: # (sharp) or b (flat), optional
//   - octave: -1 to 9 (C4 = 60 = middle C)
func ParsePitch(s string) (int, error) {
	name := strings.TrimSpace(s)
	if len(name) < 2 {
		return 0, fmt.Errorf("pitch name too short: %q", s)
	}

	letter := name[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semitone, ok := letterOffsets[letter]
	if !ok {
		return 0, fmt.Errorf("invalid pitch letter in %q", s)
	}

	idx := 1
	switch name[idx] {
	case '#':
		semitone++
		idx++
	case 'b':
		semitone--
		idx++
	}

	if idx >= len(name) {
		return 0, fmt.Errorf("missing octave in pitch %q", s)
	}
	octave, err := strconv.Atoi(name[idx:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in pitch %q: %w", s, err)
	}

	// (octave + 1) * 12 gives C-1 = 0, C4 = 60
	n := (octave+1)*12 + semitone
	if n < minMIDI || n > maxMIDI {
		return 0, fmt.Errorf("pitch %q outside MIDI range", s)
	}
	return n, nil
}

// PitchToNumber is the fail-soft form of ParsePitch: anything unparseable becomes
// DefaultPitchNumber. Callers that accept user input should validate with ParsePitch first.
func PitchToNumber(p Pitch) int {
	n, err := ParsePitch(string(p))
	if err != nil {
		return DefaultPitchNumber
	}
	return n
}

// Number returns the MIDI number of p (fail-soft, see PitchToNumber)
func (p Pitch) Number() int {
	return PitchToNumber(p)
}

// Valid reports whether p parses
func (p Pitch) Valid() bool {
	_, err := ParsePitch(string(p))
	return err == nil
}

// NumberToPitch spells a MIDI number with sharps
func NumberToPitch(n int) Pitch {
	octave := n/12 - 1
	pc := n % 12
	if pc < 0 {
		pc += 12
		octave--
	}
	return Pitch(fmt.Sprintf("%s%d", pitchClassNames[pc], octave))
}

// IsNatural reports whether a MIDI number falls on a white key
func IsNatural(n int) bool {
	return !strings.Contains(pitchClassNames[((n%12)+12)%12], "#")
}

// Semitones returns the unsigned distance between two MIDI numbers
func Semitones(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// Interval returns the unsigned semitone distance between two pitches
func Interval(a, b Pitch) int {
	return Semitones(PitchToNumber(a), PitchToNumber(b))
}

// Direction returns 1 for ascending motion, -1 for descending and 0 for none
func Direction(from, to int) int {
	switch {
	case to > from:
		return 1
	case to < from:
		return -1
	default:
		return 0
	}
}

// IsConsonant reports whether an interval is a perfect or imperfect consonance
func IsConsonant(interval int) bool {
	switch normalize(interval) {
	case 0, 3, 4, 7, 8, 9:
		return true
	}
	return false
}

// IsDissonant is the complement of IsConsonant
func IsDissonant(interval int) bool {
	return !IsConsonant(interval)
}

// IsPerfectConsonance reports unisons, fifths and octaves (and their compounds)
func IsPerfectConsonance(interval int) bool {
	n := normalize(interval)
	return n == 0 || n == 7
}

// IsImperfectConsonance reports thirds and sixths
func IsImperfectConsonance(interval int) bool {
	return IsConsonant(interval) && !IsPerfectConsonance(interval)
}

// IntervalName labels an interval P1..P8, or "{n}st" beyond an octave
func IntervalName(semitones int) string {
	if semitones < 0 {
		semitones = -semitones
	}
	if semitones < len(intervalNames) {
		return intervalNames[semitones]
	}
	return fmt.Sprintf("%dst", semitones)
}

func normalize(interval int) int {
	if interval < 0 {
		interval = -interval
	}
	return interval % 12
}
