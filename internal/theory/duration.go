package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Duration is a symbolic note value
type Duration string

const (
	Whole         Duration = "w"
	Half          Duration = "h"
	Quarter       Duration = "q"
	Eighth        Duration = "8"
	Sixteenth     Duration = "16"
	DottedHalf    Duration = "hd"
	DottedQuarter Duration = "qd"
)

const dottedMultiplier = 1.5

// Beat counts per beat unit. Unknown beat units fall back to quarter-note beats.
var beatTables = map[int]map[Duration]float64{
	2: {Whole: 2, Half: 1, Quarter: 0.5, Eighth: 0.25, Sixteenth: 0.125},
	4: {Whole: 4, Half: 2, Quarter: 1, Eighth: 0.5, Sixteenth: 0.25},
	8: {Whole: 8, Half: 4, Quarter: 2, Eighth: 1, Sixteenth: 0.5},
}

// Durations lists the closed set of note values
func Durations() []Duration {
	return []Duration{Whole, Half, Quarter, Eighth, Sixteenth, DottedHalf, DottedQuarter}
}

// Valid reports whether d is in the closed set
func (d Duration) Valid() bool {
	for _, known := range Durations() {
		if d == known {
			return true
		}
	}
	return false
}

// Dotted reports whether d carries a dot
func (d Duration) Dotted() bool {
	return strings.HasSuffix(string(d), "d")
}

// Base strips the dot
func (d Duration) Base() Duration {
	return Duration(strings.TrimSuffix(string(d), "d"))
}

// Beats returns the beat count of d for the given beat unit (the time signature denominator)
func (d Duration) Beats(beatUnit int) float64 {
	table, ok := beatTables[beatUnit]
	if !ok {
		table = beatTables[4]
	}
	beats := table[d.Base()]
	if d.Dotted() {
		beats *= dottedMultiplier
	}
	return beats
}

// TimeSignature is beats per measure over beat unit
type TimeSignature struct {
	BeatsPerMeasure int
	BeatUnit        int
}

// CommonTime is 4/4
var CommonTime = TimeSignature{BeatsPerMeasure: 4, BeatUnit: 4}

// ParseTimeSignature accepts "C" (4/4), "C|" (2/2) or "n/d"
func ParseTimeSignature(s string) (TimeSignature, error) {
	switch strings.TrimSpace(s) {
	case "", "C":
		return CommonTime, nil
	case "C|":
		return TimeSignature{BeatsPerMeasure: 2, BeatUnit: 2}, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return TimeSignature{}, fmt.Errorf("invalid time signature: %s", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || num <= 0 {
		return TimeSignature{}, fmt.Errorf("invalid time signature numerator: %s", s)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || den <= 0 {
		return TimeSignature{}, fmt.Errorf("invalid time signature denominator: %s", s)
	}
	return TimeSignature{BeatsPerMeasure: num, BeatUnit: den}, nil
}

// Measures groups notes into measures, starting a new measure whenever the next
// note would overflow the current one.
func (ts TimeSignature) Measures(notes []Note) [][]Note {
	var measures [][]Note
	var current []Note
	beats := 0.0
	limit := float64(ts.BeatsPerMeasure)

	for _, n := range notes {
		nb := n.Duration.Beats(ts.BeatUnit)
		if beats+nb > limit && len(current) > 0 {
			measures = append(measures, current)
			current = nil
			beats = 0
		}
		current = append(current, n)
		beats += nb
	}
	if len(current) > 0 {
		measures = append(measures, current)
	}
	return measures
}
