package cantus

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/counterpoint-api/internal/random"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DorianOnD_AlwaysValid(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		out := New(random.New(seed)).Generate(Config{Mode: theory.Dorian, Finalis: "D"})
		melody := theory.Numbers(out.Notes)

		require.NoError(t, Validate(melody), "seed %d produced %s", seed, theory.FormatLine(out.Notes))
		assert.GreaterOrEqual(t, len(melody), MinMeasures)
		assert.LessOrEqual(t, len(melody), MaxMeasures)
		assert.Equal(t, 62, melody[0], "starts on D4")
		for _, n := range out.Notes {
			assert.Equal(t, theory.Whole, n.Duration)
		}
	}
}

func TestGenerate_EveryModeAndFinalis(t *testing.T) {
	for _, mode := range theory.Modes() {
		for _, finalis := range theory.FinalisOptions() {
			for seed := uint64(0); seed < 3; seed++ {
				out := New(random.New(seed)).Generate(Config{Mode: mode, Finalis: finalis})
				assert.NoError(t, Validate(theory.Numbers(out.Notes)), "%s on %s seed %d", mode, finalis, seed)
			}
		}
	}
}

func TestGenerate_StaysInModeAndRange(t *testing.T) {
	scale := theory.ScalePitches("E", theory.Phrygian, 0, 127)
	for seed := uint64(0); seed < 20; seed++ {
		out := New(random.New(seed)).Generate(Config{Mode: theory.Phrygian, Finalis: "E", Measures: 11})
		if !out.Fallback {
			require.Len(t, out.Notes, 11)
		}
		for _, n := range theory.Numbers(out.Notes) {
			assert.True(t, scale.Contains(n), "%s outside E phrygian", theory.NumberToPitch(n))
			assert.GreaterOrEqual(t, n, 64-5)
			assert.LessOrEqual(t, n, 64+12)
		}
	}
}

func TestGenerate_ClampsMeasures(t *testing.T) {
	out := New(random.New(3)).Generate(Config{Measures: 3})
	if !out.Fallback {
		assert.Len(t, out.Notes, MinMeasures)
	}
	out = New(random.New(3)).Generate(Config{Measures: 40})
	if !out.Fallback {
		assert.Len(t, out.Notes, MaxMeasures)
	}
}

func TestGenerate_DefaultsToDorianOnD(t *testing.T) {
	out := New(random.New(11)).Generate(Config{})
	scale := theory.ScalePitches("D", theory.Dorian, 0, 127)
	assert.Equal(t, theory.Pitch("D4"), out.Notes[0].Pitch)
	for _, n := range theory.Numbers(out.Notes) {
		assert.True(t, scale.Contains(n))
	}
}

func TestGenerate_SameSeedSameMelody(t *testing.T) {
	a := New(random.New(99)).Generate(Config{Measures: 10})
	b := New(random.New(99)).Generate(Config{Measures: 10})
	assert.Equal(t, a, b)
}

func TestFallback_PassesValidation(t *testing.T) {
	for _, mode := range theory.Modes() {
		for _, finalis := range theory.FinalisOptions() {
			final := finalis.Pitch(4).Number()
			melody := fallback(final, mode)
			assert.NoError(t, Validate(melody), "fallback for %s on %s", mode, finalis)
			assert.Equal(t, 6, climaxIndexOf(melody))
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		melody   []int
		expected error
	}{
		{"valid", []int{62, 64, 65, 64, 67, 69, 71, 69, 64, 62}, nil},
		{"too short", []int{62, 64, 67, 65, 64, 62}, ErrTooShort},
		{"different endpoints", []int{62, 64, 65, 67, 69, 71, 67, 64, 60}, ErrEndpoints},
		{"shared climax", []int{62, 64, 69, 65, 67, 69, 67, 64, 62}, ErrClimaxNotUnique},
		{"climax too early", []int{62, 71, 69, 67, 65, 64, 65, 64, 62}, ErrClimaxPlacement},
		{"climax too late", []int{62, 64, 65, 64, 65, 67, 69, 71, 62}, ErrClimaxPlacement},
		{"tritone leap", []int{62, 64, 65, 64, 65, 71, 69, 64, 62}, ErrForbiddenLeap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.melody)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestOutlinesTritone(t *testing.T) {
	assert.False(t, outlinesTritone([]int{65}, 71))
	assert.True(t, outlinesTritone([]int{65, 67}, 71))
	assert.True(t, outlinesTritone([]int{65, 67, 69}, 71))
	assert.False(t, outlinesTritone([]int{65, 67, 69, 67}, 71), "F is outside the window")
}
