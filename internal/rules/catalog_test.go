package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(rules []Config) []ID {
	out := make([]ID, len(rules))
	for i, r := range rules {
		out[i] = r.ID
	}
	return out
}

func TestDefaultRules_PerSpecies(t *testing.T) {
	tests := []struct {
		species  theory.Species
		expected []ID
	}{
		{
			species: theory.FirstSpecies,
			expected: []ID{NoParallelFifths, NoDirectFifths, PreferContraryMotion, PreferStepwiseMotion,
				ConsonantIntervalsOnly, AvoidRepetitions, NoForbiddenIntervals, LeapRecovery,
				NoExposedTritone, AvoidConsecutiveLeaps},
		},
		{
			species: theory.SecondSpecies,
			expected: []ID{NoParallelFifths, NoDirectFifths, PreferContraryMotion, PreferStepwiseMotion,
				ConsonantIntervalsOnly, DownbeatConsonance, AllowPassingTones, AvoidRepetitions,
				NoForbiddenIntervals, LeapRecovery, NoExposedTritone, AvoidConsecutiveLeaps},
		},
		{
			species: theory.ThirdSpecies,
			expected: []ID{NoParallelFifths, NoDirectFifths, PreferContraryMotion, PreferStepwiseMotion,
				AllowPassingTones, BeatOneConsonance, BeatThreeConsonance, AllowCambiata, PenultimateCadence, AvoidRepetitions,
				NoForbiddenIntervals, LeapRecovery, NoExposedTritone, AvoidConsecutiveLeaps},
		},
		{
			species: theory.FourthSpecies,
			expected: []ID{NoParallelFifths, NoDirectFifths, PreferContraryMotion, PreferStepwiseMotion,
				UpbeatConsonance, SuspensionResolution, AvoidRepetitions,
				NoForbiddenIntervals, LeapRecovery, NoExposedTritone, AvoidConsecutiveLeaps},
		},
	}

	for _, tt := range tests {
		t.Run(tt.species.Name(), func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(DefaultRules(tt.species)))
		})
	}
}

func TestDefaultRules_SpeciesSpecificWording(t *testing.T) {
	second := ForSpecies(theory.SecondSpecies, nil)
	assert.Equal(t, "No Parallel 5ths/8ves on Downbeats", second.Name(NoParallelFifths))

	third := ForSpecies(theory.ThirdSpecies, nil)
	assert.Equal(t, "No Parallel 5ths/8ves on Beat 1", third.Name(NoParallelFifths))
	assert.Equal(t, 70, third.Weight(PreferStepwiseMotion))
	assert.Equal(t, 90, third.Weight(PenultimateCadence))

	first := ForSpecies(theory.FirstSpecies, nil)
	assert.Equal(t, "No Parallel 5ths/8ves", first.Name(NoParallelFifths))
	assert.Equal(t, 50, first.Weight(PreferStepwiseMotion))
	assert.Equal(t, 0, first.Weight(SuspensionResolution))
}

func TestDefaultRules_FifthSpeciesUsesFirst(t *testing.T) {
	assert.Equal(t, DefaultRules(theory.FirstSpecies), DefaultRules(theory.FifthSpecies))
}

func TestNewWeights_OverlayAndClamp(t *testing.T) {
	w := ForSpecies(theory.FirstSpecies, []Config{
		{ID: PreferContraryMotion, Weight: 90},
		{ID: ConsonantIntervalsOnly, Weight: 150},
		{ID: NoDirectFifths, Weight: -3},
		{ID: AllowCambiata, Weight: 40},
		{ID: "bogus", Weight: 100},
	})

	assert.Equal(t, 90, w.Weight(PreferContraryMotion))
	assert.Equal(t, 100, w.Weight(ConsonantIntervalsOnly))
	assert.True(t, w.Hard(ConsonantIntervalsOnly))
	assert.Equal(t, 0, w.Weight(NoDirectFifths))
	assert.False(t, w.Enabled(NoDirectFifths))
	assert.Equal(t, 40, w.Weight(AllowCambiata), "rules outside the species list can be switched on")
	assert.Equal(t, 100, w.Weight(NoParallelFifths), "untouched rules keep their default")
	assert.Equal(t, 0, w.Weight("bogus"))

	// resolved list keeps catalog order and appends extras
	list := w.Rules()
	assert.Equal(t, NoParallelFifths, list[0].ID)
	assert.Equal(t, AllowCambiata, list[len(list)-1].ID)
	assert.Equal(t, "Allow Cambiata", list[len(list)-1].Name)
}

func TestWeights_Penalty(t *testing.T) {
	w := ForSpecies(theory.ThirdSpecies, nil)
	assert.InDelta(t, 30.0, w.Penalty(PreferContraryMotion), 1e-9)
	assert.InDelta(t, 14.0, w.Penalty(PreferStepwiseMotion), 1e-9)
	assert.InDelta(t, 30.0, w.Penalty(BeatThreeConsonance), 1e-9)
	assert.InDelta(t, 80.0, w.Penalty(LeapRecovery), 1e-9)
	assert.InDelta(t, 80.0, w.Penalty(NoExposedTritone), 1e-9)
	assert.InDelta(t, 50.0, w.Penalty(AvoidConsecutiveLeaps), 1e-9)
	assert.InDelta(t, 80.0, w.Penalty(NoDirectFifths), 1e-9)
	assert.InDelta(t, 100.0, w.Penalty(NoParallelFifths), 1e-9)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DefaultRules(theory.FourthSpecies)))
	assert.Error(t, Validate([]Config{{ID: "noHiddenOctaves", Weight: 10}}))
	assert.Error(t, Validate([]Config{{ID: LeapRecovery, Weight: 10}, {ID: LeapRecovery, Weight: 20}}))
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(`
species:
  1:
    preferContraryMotion: 75
  3rd:
    beatThreeConsonance: 100
`))
	require.NoError(t, err)

	first := NewWeights(c.Rules(theory.FirstSpecies), nil)
	assert.Equal(t, 75, first.Weight(PreferContraryMotion))

	third := NewWeights(c.Rules(theory.ThirdSpecies), nil)
	assert.True(t, third.Hard(BeatThreeConsonance))

	// the default catalog is untouched
	assert.Equal(t, 60, ForSpecies(theory.FirstSpecies, nil).Weight(PreferContraryMotion))
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown rule", "species:\n  1:\n    noHiddenOctaves: 10\n"},
		{"weight out of range", "species:\n  2:\n    noDirectFifths: 120\n"},
		{"unknown species", "species:\n  7:\n    noDirectFifths: 20\n"},
		{"fifth species", "species:\n  5:\n    noDirectFifths: 20\n"},
		{"malformed", "species: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("species:\n  4:\n    avoidRepetitions: 20\n"), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 20, NewWeights(c.Rules(theory.FourthSpecies), nil).Weight(AvoidRepetitions))

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
