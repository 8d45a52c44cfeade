package species

import "github.com/Conceptual-Machines/counterpoint-api/internal/rules"

func (j *job) first() ([]int, error) {
	line, err := j.solve(
		func(buf *arena) []int {
			return j.structural(buf.len(), rules.ConsonantIntervalsOnly)
		},
		func(buf *arena, p int) float64 {
			return j.structuralBonus(buf.len(), p)
		},
	)
	if err != nil {
		return nil, j.exhausted(err, "line")
	}
	return line, nil
}
