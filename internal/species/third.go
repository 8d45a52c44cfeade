package species

import "github.com/Conceptual-Machines/counterpoint-api/internal/rules"

// quarter notes leap at most a fifth
const quarterLeap = 7

func (j *job) third() ([]int, error) {
	passing := j.weights.Enabled(rules.AllowPassingTones)
	cambiata := j.weights.Enabled(rules.AllowCambiata)

	line, err := j.relaxable(
		func(buf *arena) []int {
			k := buf.len()
			i, b := k/4, k%4
			if b == 0 {
				return j.structural(i, rules.BeatOneConsonance)
			}
			if i == j.last() {
				// the final note is held across the measure
				return []int{buf.at(4 * i)}
			}
			return j.weakBeat(j.cf[i], buf.at(k-1), quarterLeap, passing || (b == 1 && cambiata))
		},
		func(buf *arena, p int) float64 {
			if k := buf.len(); k%4 == 0 {
				return j.structuralBonus(k/4, p)
			}
			return 0
		},
	)
	if err != nil {
		return nil, j.exhausted(err, "quarter-note line")
	}
	return line, nil
}
