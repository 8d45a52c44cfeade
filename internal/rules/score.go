package rules

import (
	"math/rand/v2"
	"sort"
)

// Baseline is the score every candidate starts from
const Baseline = 100.0

// Transition is the local window a candidate is judged in. Harmonic rules compare
// against the previous structural pair; melodic rules walk History.
type Transition struct {
	// Consonance is the structural consonance rule for this position
	// (consonantIntervalsOnly, downbeatConsonance, ...). Empty skips the check.
	Consonance ID
	CF         int
	CP         int
	// HasPrev marks PrevCF/PrevCP as meaningful
	HasPrev bool
	PrevCF  int
	PrevCP  int
	// History holds the preceding notes of the melodic line, oldest first
	History []int
}

// Outcome is one evaluated rule
type Outcome struct {
	ID     ID
	Result Result
}

// Scorer evaluates transitions against a resolved rule set
type Scorer struct {
	weights *Weights
}

// NewScorer creates a scorer for the given weights
func NewScorer(w *Weights) *Scorer {
	return &Scorer{weights: w}
}

// Weights exposes the rule set the scorer was built with
func (s *Scorer) Weights() *Weights {
	return s.weights
}

// Evaluate runs every enabled rule that applies to t, in a fixed order
func (s *Scorer) Evaluate(t Transition) []Outcome {
	w := s.weights
	var out []Outcome
	add := func(id ID, check func() Result) {
		if w.Enabled(id) {
			out = append(out, Outcome{ID: id, Result: check()})
		}
	}

	if t.Consonance != "" {
		add(t.Consonance, func() Result { return CheckConsonance(t.CF, t.CP) })
	}
	if t.HasPrev {
		add(NoParallelFifths, func() Result { return CheckParallelFifths(t.PrevCF, t.CF, t.PrevCP, t.CP) })
		add(NoDirectFifths, func() Result { return CheckDirectFifths(t.PrevCF, t.CF, t.PrevCP, t.CP) })
		add(PreferContraryMotion, func() Result { return CheckContraryMotion(t.PrevCF, t.CF, t.PrevCP, t.CP) })
	}

	n := len(t.History)
	if n == 0 {
		return out
	}
	prev := t.History[n-1]
	add(PreferStepwiseMotion, func() Result { return CheckStepwiseMotion(prev, t.CP) })
	add(NoForbiddenIntervals, func() Result { return CheckForbiddenInterval(prev, t.CP) })
	add(AvoidRepetitions, func() Result { return CheckRepetition(prev, t.CP) })
	if n >= 2 {
		prevPrev := t.History[n-2]
		add(LeapRecovery, func() Result { return CheckLeapRecovery(prevPrev, prev, t.CP).Result })
	}
	add(NoExposedTritone, func() Result { return CheckExposedTritone(t.History, t.CP) })
	if n >= 2 {
		add(AvoidConsecutiveLeaps, func() Result { return CheckConsecutiveLeapsSameDirection(t.History, t.CP) })
	}
	return out
}

// Score is Baseline minus the penalty of every failing rule
func (s *Scorer) Score(t Transition) float64 {
	return s.ScoreOutcomes(s.Evaluate(t))
}

// ScoreOutcomes sums penalties of already evaluated rules
func (s *Scorer) ScoreOutcomes(outcomes []Outcome) float64 {
	score := Baseline
	for _, o := range outcomes {
		if !o.Result.Passed {
			score -= s.weights.Penalty(o.ID)
		}
	}
	return score
}

// Admissible reports whether no hard rule fails
func (s *Scorer) Admissible(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if !o.Result.Passed && s.weights.Hard(o.ID) {
			return false
		}
	}
	return true
}

// Candidate is a pitch with its score
type Candidate struct {
	Pitch int
	Score float64
}

// Rank orders candidates by descending score. Candidates with equal scores are
// shuffled with rng, which is the only source of variety in generation.
func Rank(candidates []Candidate, rng *rand.Rand) []int {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make([]int, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Score == sorted[start].Score {
			end++
		}
		group := sorted[start:end]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		for _, c := range group {
			out = append(out, c.Pitch)
		}
		start = end
	}
	return out
}

// Best returns the highest-scoring candidate, first one wins on ties
func Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}
