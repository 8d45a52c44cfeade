package species

import (
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

const (
	preparationBonus = 25.0
	syncopeJitter    = 10.0
)

// intervals (mod 12) against the next cantus note that make a tied upbeat a
// suspension: seconds, fourths, the tritone and sevenths
var suspensionIntervals = map[int]bool{1: true, 2: true, 5: true, 6: true, 10: true, 11: true}

// fourth chooses the upbeats. Each upbeat is tied into the next measure, so the
// line is (u0, u0), (u0, u1), (u1, u2) ... and the downbeat of measure i is a
// suspension whenever u[i-1] is dissonant against cf[i]. The checker judges the
// tie when its resolution is chosen.
func (j *job) fourth() ([]int, error) {
	line, err := j.solve(
		func(buf *arena) []int {
			k := buf.len()
			i := k / 2
			if k > 0 && (k%2 == 0 || i == 0) {
				return []int{buf.at(k - 1)}
			}
			return j.structural(i, rules.UpbeatConsonance)
		},
		func(buf *arena, p int) float64 {
			k := buf.len()
			i := k / 2
			if k > 0 && (k%2 == 0 || i == 0) {
				return 0
			}
			bonus := j.structuralBonus(i, p) + j.rng.Float64()*syncopeJitter
			if i < j.last() && suspensionIntervals[theory.Semitones(j.cf[i+1], p)%12] {
				bonus += preparationBonus
			}
			return bonus
		},
	)
	if err != nil {
		return nil, j.exhausted(err, "upbeat line")
	}
	return line, nil
}
