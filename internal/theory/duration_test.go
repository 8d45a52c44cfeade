package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationBeats(t *testing.T) {
	tests := []struct {
		duration Duration
		unit     int
		expected float64
	}{
		{Whole, 4, 4},
		{Half, 4, 2},
		{Quarter, 4, 1},
		{Eighth, 4, 0.5},
		{Sixteenth, 4, 0.25},
		{DottedHalf, 4, 3},
		{DottedQuarter, 4, 1.5},
		{Whole, 2, 2},
		{Quarter, 8, 2},
		{Half, 3, 2}, // unknown unit falls back to quarter beats
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.duration.Beats(tt.unit), "%s in /%d", tt.duration, tt.unit)
	}
}

func TestParseTimeSignature(t *testing.T) {
	ts, err := ParseTimeSignature("C")
	require.NoError(t, err)
	assert.Equal(t, CommonTime, ts)

	ts, err = ParseTimeSignature("C|")
	require.NoError(t, err)
	assert.Equal(t, TimeSignature{BeatsPerMeasure: 2, BeatUnit: 2}, ts)

	ts, err = ParseTimeSignature("3/4")
	require.NoError(t, err)
	assert.Equal(t, TimeSignature{BeatsPerMeasure: 3, BeatUnit: 4}, ts)

	_, err = ParseTimeSignature("3-4")
	assert.Error(t, err)
}

func TestMeasures(t *testing.T) {
	notes := []Note{
		{Pitch: "D4", Duration: Half},
		{Pitch: "E4", Duration: Half},
		{Pitch: "F4", Duration: Whole},
		{Pitch: "G4", Duration: Quarter},
		{Pitch: "A4", Duration: DottedHalf},
	}
	measures := CommonTime.Measures(notes)
	require.Len(t, measures, 3)
	assert.Len(t, measures[0], 2)
	assert.Len(t, measures[1], 1)
	assert.Len(t, measures[2], 2)
}

func TestSpeciesLineLength(t *testing.T) {
	assert.Equal(t, 8, FirstSpecies.LineLength(8))
	assert.Equal(t, 16, SecondSpecies.LineLength(8))
	assert.Equal(t, 32, ThirdSpecies.LineLength(8))
	assert.Equal(t, 16, FourthSpecies.LineLength(8))
	assert.Equal(t, Quarter, ThirdSpecies.Duration())
	assert.False(t, FifthSpecies.Implemented())
	assert.True(t, FifthSpecies.Known())

	sp, err := ParseSpecies("3rd")
	require.NoError(t, err)
	assert.Equal(t, ThirdSpecies, sp)
	_, err = ParseSpecies("6")
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	notes, err := ParseLine("D4 F4, E4 D4")
	require.NoError(t, err)
	assert.Equal(t, []int{62, 65, 64, 62}, Numbers(notes))
	assert.Equal(t, "D4 F4 E4 D4", FormatLine(notes))

	_, err = ParseLine("D4 Q4")
	assert.Error(t, err)
}
