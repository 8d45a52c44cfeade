package species

import (
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

// half notes leap at most an octave
const halfLeap = 12

var weakSteps = []int{1, -1, 2, -2}

// second alternates consonant downbeats with upbeats. An upbeat is judged once
// the downbeat after it is chosen, so a passing tone that cannot step into the
// next measure sends the search back.
func (j *job) second() ([]int, error) {
	passing := j.weights.Enabled(rules.AllowPassingTones)
	line, err := j.solve(
		func(buf *arena) []int {
			k := buf.len()
			i := k / 2
			if k%2 == 0 {
				return j.structural(i, rules.DownbeatConsonance)
			}
			down := buf.at(k - 1)
			if i == j.last() {
				return []int{down}
			}
			return j.weakBeat(j.cf[i], down, halfLeap, passing)
		},
		func(buf *arena, p int) float64 {
			if k := buf.len(); k%2 == 0 {
				return j.structuralBonus(k/2, p)
			}
			return 0
		},
	)
	if err != nil {
		return nil, j.exhausted(err, "half-note line")
	}
	return line, nil
}

// weakBeat lists pitches for an unaccented note after prev: steps on either
// side of the cantus and consonant leaps up to maxLeap on the counterpoint's
// side. Dissonant steps are listed only when dissonant is set.
func (j *job) weakBeat(cf, prev, maxLeap int, dissonant bool) []int {
	out := make([]int, 0, len(weakSteps)+maxLeap)
	for _, d := range weakSteps {
		p := prev + d
		if !j.inRange(p) {
			continue
		}
		if !dissonant && theory.IsDissonant(theory.Semitones(cf, p)) {
			continue
		}
		out = append(out, p)
	}

	lo, hi := j.rangeFor(cf)
	for p := max(lo, prev-maxLeap); p <= min(hi, prev+maxLeap); p++ {
		if theory.Semitones(prev, p) <= maxStep || !j.inRange(p) {
			continue
		}
		if theory.IsConsonant(theory.Semitones(cf, p)) {
			out = append(out, p)
		}
	}
	return out
}
