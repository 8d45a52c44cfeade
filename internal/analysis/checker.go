package analysis

import (
	"fmt"

	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

// Finding is one rule outcome attached to a counterpoint note
type Finding struct {
	Note    int
	Outcome rules.Outcome
}

// Checker walks a counterpoint line one note at a time. Each call to Settle
// returns the rule outcomes that the newest note makes decidable, so a
// generator can prune as it goes and a finished line reports exactly what
// the generator saw.
//
// Some outcomes belong to an earlier note: a weak beat is only judged once the
// note after it is known, and a suspension once its resolution is.
type Checker struct {
	species theory.Species
	scorer  *rules.Scorer
	cf      []int
	above   bool
}

// NewChecker builds a checker for cf. above places the counterpoint over the
// cantus, which decides the penultimate cadence interval.
func NewChecker(sp theory.Species, cf []int, w *rules.Weights, above bool) *Checker {
	return &Checker{
		species: sp,
		scorer:  rules.NewScorer(w),
		cf:      cf,
		above:   above,
	}
}

// Len is the number of counterpoint notes a complete line has
func (c *Checker) Len() int {
	return c.species.LineLength(len(c.cf))
}

// Measure maps a counterpoint note index to its cantus note
func (c *Checker) Measure(k int) int {
	return k / c.species.NotesPerMeasure()
}

// Weights exposes the rule set the checker scores with
func (c *Checker) Weights() *rules.Weights {
	return c.scorer.Weights()
}

// Score sums penalties of fs and reports whether no hard rule failed
func (c *Checker) Score(fs []Finding) (float64, bool) {
	w := c.Weights()
	score, ok := rules.Baseline, true
	for _, f := range fs {
		if f.Outcome.Result.Passed {
			continue
		}
		score -= w.Penalty(f.Outcome.ID)
		if w.Hard(f.Outcome.ID) {
			ok = false
		}
	}
	return score, ok
}

// Settle returns the outcomes decided by appending cp[len(cp)-1] to cp[:len(cp)-1]
func (c *Checker) Settle(cp []int) []Finding {
	k := len(cp) - 1
	if k < 0 || k >= c.Len() {
		return nil
	}
	switch c.species {
	case theory.FirstSpecies:
		return c.first(cp, k)
	case theory.SecondSpecies:
		return c.second(cp, k)
	case theory.ThirdSpecies:
		return c.third(cp, k)
	case theory.FourthSpecies:
		return c.fourth(cp, k)
	}
	return nil
}

func (c *Checker) evaluate(out []Finding, note int, t rules.Transition) []Finding {
	for _, o := range c.scorer.Evaluate(t) {
		out = append(out, Finding{Note: note, Outcome: o})
	}
	return out
}

// check appends r when id is enabled
func (c *Checker) check(out []Finding, note int, id rules.ID, r rules.Result) []Finding {
	if !c.Weights().Enabled(id) {
		return out
	}
	return append(out, Finding{Note: note, Outcome: rules.Outcome{ID: id, Result: r}})
}

// weakBeat reports dissonance treatment on an unaccented note
func (c *Checker) weakBeat(out []Finding, note, cf, prev, curr, next int) []Finding {
	if c.Weights().Enabled(rules.AllowPassingTones) {
		return c.check(out, note, rules.AllowPassingTones, rules.CheckPassingTone(cf, prev, curr, next))
	}
	// passing tones switched off: weak beats must be consonant too
	return append(out, Finding{Note: note, Outcome: rules.Outcome{
		ID: rules.AllowPassingTones,
		Result: rules.Result{
			Passed:  theory.IsConsonant(theory.Semitones(cf, curr)),
			Message: rules.CheckConsonance(cf, curr).Message,
		},
	}})
}

// recent returns up to historyLen entries of line before index
func recent(line []int, index int) []int {
	return line[max(0, index-historyLen):index]
}

func (c *Checker) first(cp []int, k int) []Finding {
	t := rules.Transition{
		Consonance: rules.ConsonantIntervalsOnly,
		CF:         c.cf[k],
		CP:         cp[k],
		History:    recent(cp, k),
	}
	if k > 0 {
		t.HasPrev, t.PrevCF, t.PrevCP = true, c.cf[k-1], cp[k-1]
	}
	return c.evaluate(nil, k, t)
}

func (c *Checker) second(cp []int, k int) []Finding {
	var out []Finding
	i, p := k/2, cp[k]

	if k%2 == 0 {
		if i > 0 {
			out = c.weakBeat(out, k-1, c.cf[i-1], cp[k-2], cp[k-1], p)
		}
		t := rules.Transition{
			Consonance: rules.DownbeatConsonance,
			CF:         c.cf[i],
			CP:         p,
			History:    recent(cp, k),
		}
		if i > 0 {
			t.HasPrev, t.PrevCF, t.PrevCP = true, c.cf[i-1], cp[k-2]
		}
		return c.evaluate(out, k, t)
	}

	if i == len(c.cf)-1 {
		down := cp[k-1]
		if p == down {
			// final downbeat held through the measure
			return nil
		}
		out = c.weakBeat(out, k, c.cf[i], down, p, p)
	}
	return c.evaluate(out, k, rules.Transition{CF: c.cf[i], CP: p, History: recent(cp, k)})
}

// held reports a final-measure note that sustains the final downbeat
func (c *Checker) held(cp []int, n int) bool {
	last := len(c.cf) - 1
	return n/4 == last && n%4 > 0 && cp[n] == cp[4*last]
}

// cambiataPending reports a dissonant beat 2 left by leap, judged as a
// cambiata once beat 4 is known
func (c *Checker) cambiataPending(cf, beat2, beat3 int) bool {
	return c.Weights().Enabled(rules.AllowCambiata) &&
		theory.IsDissonant(theory.Semitones(cf, beat2)) &&
		theory.Semitones(beat2, beat3) > 2
}

func (c *Checker) third(cp []int, k int) []Finding {
	var out []Finding
	i, b, p := k/4, k%4, cp[k]
	cf := c.cf[i]

	switch {
	case b == 0 && i > 0:
		out = c.weakBeat(out, k-1, c.cf[i-1], cp[k-2], cp[k-1], p)
	case b == 2 && !c.held(cp, k-1) && !c.cambiataPending(cf, cp[k-1], p):
		out = c.weakBeat(out, k-1, cf, cp[k-2], cp[k-1], p)
	case b == 3 && !c.held(cp, k-2) && c.cambiataPending(cf, cp[k-2], cp[k-1]):
		out = c.check(out, k-2, rules.AllowCambiata, rules.CheckCambiata(cf, cp[k-3], cp[k-2], cp[k-1], p))
	}

	if c.held(cp, k) {
		return out
	}

	switch b {
	case 0:
		t := rules.Transition{
			Consonance: rules.BeatOneConsonance,
			CF:         cf,
			CP:         p,
			History:    recent(cp, k),
		}
		if i > 0 {
			t.HasPrev, t.PrevCF, t.PrevCP = true, c.cf[i-1], cp[k-4]
		}
		out = c.evaluate(out, k, t)
		if i == len(c.cf)-2 {
			out = c.check(out, k, rules.PenultimateCadence, rules.CheckCadence(cf, p, c.above))
		}
		return out
	case 2:
		r := rules.CheckConsonance(cf, p)
		if !r.Passed {
			r.Message = fmt.Sprintf("Beat 3 should be consonant (%s)", theory.IntervalName(theory.Semitones(cf, p)))
		}
		out = c.check(out, k, rules.BeatThreeConsonance, r)
	case 3:
		if i == len(c.cf)-1 {
			out = c.weakBeat(out, k, cf, cp[k-1], p, p)
		}
	}
	return c.evaluate(out, k, rules.Transition{CF: cf, CP: p, History: recent(cp, k)})
}

func (c *Checker) fourth(cp []int, k int) []Finding {
	if k%2 == 0 {
		// a tied downbeat is judged once its resolution is known
		return nil
	}
	var out []Finding
	i, p := k/2, cp[k]
	if i > 0 {
		out = c.check(out, k-1, rules.SuspensionResolution, rules.CheckSuspensionResolution(c.cf[i], cp[k-1], p))
	}

	upbeats := make([]int, 0, historyLen)
	for j := max(0, i-historyLen); j < i; j++ {
		upbeats = append(upbeats, cp[2*j+1])
	}
	t := rules.Transition{
		Consonance: rules.UpbeatConsonance,
		CF:         c.cf[i],
		CP:         p,
		History:    upbeats,
	}
	if i > 0 {
		t.HasPrev, t.PrevCF, t.PrevCP = true, c.cf[i-1], cp[k-2]
	}
	return c.evaluate(out, k, t)
}
