package rules

import (
	"math/rand/v2"
	"testing"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcomeIDs(outcomes []Outcome) []ID {
	out := make([]ID, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.ID
	}
	return out
}

func TestScorer_FirstNoteOnlyChecksConsonance(t *testing.T) {
	s := NewScorer(ForSpecies(theory.FirstSpecies, nil))
	outcomes := s.Evaluate(Transition{Consonance: ConsonantIntervalsOnly, CF: 62, CP: 74})
	require.Len(t, outcomes, 1)
	assert.Equal(t, ConsonantIntervalsOnly, outcomes[0].ID)
	assert.Equal(t, Baseline, s.ScoreOutcomes(outcomes))
	assert.True(t, s.Admissible(outcomes))
}

func TestScorer_ParallelFifthsAreInadmissible(t *testing.T) {
	s := NewScorer(ForSpecies(theory.FirstSpecies, nil))
	outcomes := s.Evaluate(Transition{
		Consonance: ConsonantIntervalsOnly,
		CF:         64, CP: 71,
		HasPrev: true, PrevCF: 62, PrevCP: 69,
		History: []int{69},
	})
	assert.False(t, s.Admissible(outcomes))
}

func TestScorer_SoftPenaltiesAreDamped(t *testing.T) {
	s := NewScorer(ForSpecies(theory.FirstSpecies, nil))
	// D4/F4 -> E4/G4: parallel thirds, similar motion by step
	outcomes := s.Evaluate(Transition{
		Consonance: ConsonantIntervalsOnly,
		CF:         64, CP: 67,
		HasPrev: true, PrevCF: 62, PrevCP: 65,
		History: []int{65},
	})
	assert.True(t, s.Admissible(outcomes))
	// similar motion costs 60 * 0.5
	assert.InDelta(t, 70.0, s.ScoreOutcomes(outcomes), 1e-9)
	assert.Equal(t, []ID{ConsonantIntervalsOnly, NoParallelFifths, NoDirectFifths, PreferContraryMotion,
		PreferStepwiseMotion, NoForbiddenIntervals, AvoidRepetitions, NoExposedTritone}, outcomeIDs(outcomes))
}

func TestScorer_LeapAndRepetition(t *testing.T) {
	s := NewScorer(ForSpecies(theory.FirstSpecies, nil))
	repeated := s.Score(Transition{
		Consonance: ConsonantIntervalsOnly,
		CF:         64, CP: 67,
		HasPrev: true, PrevCF: 62, PrevCP: 67,
		History: []int{67},
	})
	// oblique motion, repeated note costs 50
	assert.InDelta(t, 50.0, repeated, 1e-9)

	leap := s.Score(Transition{
		Consonance: ConsonantIntervalsOnly,
		CF:         64, CP: 60,
		HasPrev: true, PrevCF: 62, PrevCP: 65,
		History: []int{65},
	})
	// contrary motion, leap of a P4 costs 50 * 0.2
	assert.InDelta(t, 90.0, leap, 1e-9)
}

func TestScorer_DisabledRulesAreSkipped(t *testing.T) {
	s := NewScorer(ForSpecies(theory.FirstSpecies, []Config{
		{ID: PreferContraryMotion, Weight: 0},
		{ID: PreferStepwiseMotion, Weight: 0},
	}))
	outcomes := s.Evaluate(Transition{
		Consonance: ConsonantIntervalsOnly,
		CF:         64, CP: 67,
		HasPrev: true, PrevCF: 62, PrevCP: 65,
	})
	assert.NotContains(t, outcomeIDs(outcomes), PreferContraryMotion)
	assert.NotContains(t, outcomeIDs(outcomes), PreferStepwiseMotion)
	assert.Equal(t, Baseline, s.ScoreOutcomes(outcomes))
}

func TestScorer_SoftConsonanceAllowsDissonance(t *testing.T) {
	s := NewScorer(ForSpecies(theory.FirstSpecies, []Config{{ID: ConsonantIntervalsOnly, Weight: 40}}))
	outcomes := s.Evaluate(Transition{Consonance: ConsonantIntervalsOnly, CF: 60, CP: 62})
	assert.True(t, s.Admissible(outcomes))
	assert.InDelta(t, 60.0, s.ScoreOutcomes(outcomes), 1e-9)
}

func TestRank_OrdersByScoreAndShufflesTies(t *testing.T) {
	candidates := []Candidate{
		{Pitch: 60, Score: 50},
		{Pitch: 62, Score: 100},
		{Pitch: 64, Score: 100},
		{Pitch: 65, Score: 100},
		{Pitch: 67, Score: 75},
	}

	firsts := make(map[int]bool)
	for seed := uint64(0); seed < 64; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed))
		order := Rank(candidates, rng)
		require.Len(t, order, 5)
		assert.ElementsMatch(t, []int{62, 64, 65}, order[:3])
		assert.Equal(t, 67, order[3])
		assert.Equal(t, 60, order[4])
		firsts[order[0]] = true
	}
	assert.Len(t, firsts, 3, "every tied candidate should lead for some seed")

	// input untouched
	assert.Equal(t, 60, candidates[0].Pitch)
}

func TestRank_SameSeedSameOrder(t *testing.T) {
	candidates := []Candidate{{60, 1}, {62, 1}, {64, 1}, {65, 1}, {67, 1}, {69, 1}}
	a := Rank(candidates, rand.New(rand.NewPCG(7, 7)))
	b := Rank(candidates, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

func TestBest(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)

	c, ok := Best([]Candidate{{60, 10}, {62, 30}, {64, 30}})
	require.True(t, ok)
	assert.Equal(t, 62, c.Pitch)
}
