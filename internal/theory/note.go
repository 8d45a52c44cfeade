package theory

import (
	"fmt"
	"strings"
)

// Note is an immutable (pitch, duration) pair
type Note struct {
	Pitch    Pitch    `json:"pitch"`
	Duration Duration `json:"duration"`
}

// NewNote builds a note from a MIDI number
func NewNote(n int, d Duration) Note {
	return Note{Pitch: NumberToPitch(n), Duration: d}
}

// Number returns the MIDI number of the note's pitch
func (n Note) Number() int {
	return n.Pitch.Number()
}

// Numbers converts a line of notes to MIDI numbers
func Numbers(notes []Note) []int {
	out := make([]int, len(notes))
	for i, n := range notes {
		out[i] = n.Number()
	}
	return out
}

// NotesFromNumbers builds a line with a uniform duration
func NotesFromNumbers(nums []int, d Duration) []Note {
	out := make([]Note, len(nums))
	for i, n := range nums {
		out[i] = NewNote(n, d)
	}
	return out
}

// ParseLine reads whitespace- or comma-separated pitches ("D4 F4 E4 D4") as whole notes
func ParseLine(s string) ([]Note, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	notes := make([]Note, 0, len(fields))
	for i, f := range fields {
		if _, err := ParsePitch(f); err != nil {
			return nil, fmt.Errorf("note %d: %w", i+1, err)
		}
		notes = append(notes, Note{Pitch: Pitch(f), Duration: Whole})
	}
	return notes, nil
}

// FormatLine renders pitches separated by spaces
func FormatLine(notes []Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = string(n.Pitch)
	}
	return strings.Join(parts, " ")
}
