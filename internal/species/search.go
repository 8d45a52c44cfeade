package species

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Conceptual-Machines/counterpoint-api/internal/analysis"
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

const (
	// a step is at most a whole tone
	maxStep = 2
	// notes the checker can still look back at from the next index
	stateTail = 6

	// ranking bonuses added to the checker's score
	openingOctaveBonus = 50.0
	imperfectBonus     = 8.0
)

// job is the state of one generation call
type job struct {
	species  theory.Species
	cf       []int
	above    bool
	scale    theory.PitchSet
	weights  *rules.Weights
	checker  *analysis.Checker
	rng      *rand.Rand
	budget   int
	nodes    int
	warnings []string

	// strict narrows soft cadence preferences into filters
	strict bool
	// dead records states whose every continuation failed
	dead map[state]struct{}

	next  candidateFunc
	bonus bonusFunc
}

// arena is the partial line under construction. The search pushes a note before
// descending and pops it when backtracking, so the buffer always holds exactly
// the current path.
type arena struct {
	notes []int
}

func newArena(capacity int) *arena {
	return &arena{notes: make([]int, 0, capacity)}
}

func (a *arena) push(n int) { a.notes = append(a.notes, n) }
func (a *arena) pop()       { a.notes = a.notes[:len(a.notes)-1] }
func (a *arena) len() int   { return len(a.notes) }

func (a *arena) at(i int) int { return a.notes[i] }

// line returns a copy of the buffer
func (a *arena) line() []int {
	out := make([]int, len(a.notes))
	copy(out, a.notes)
	return out
}

// state is everything the remaining search depends on: the next index and the
// notes rules can still reach back to
type state struct {
	k    int
	tail [stateTail]int
}

func (a *arena) state() state {
	s := state{k: len(a.notes)}
	for i := range s.tail {
		idx := len(a.notes) - stateTail + i
		if idx < 0 {
			s.tail[i] = -1
			continue
		}
		s.tail[i] = a.notes[idx]
	}
	return s
}

// candidateFunc lists the pitches worth trying at the arena's next index
type candidateFunc func(buf *arena) []int

// bonusFunc adds species preferences to a candidate's rule score
type bonusFunc func(buf *arena, p int) float64

// errBudget marks a search stopped by the node budget
var errBudget = fmt.Errorf("%w: search budget exhausted", ErrSearchExhausted)

// solve runs the depth-first search for a full line
func (j *job) solve(next candidateFunc, bonus bonusFunc) ([]int, error) {
	j.next, j.bonus = next, bonus
	j.dead = make(map[state]struct{})
	buf := newArena(j.checker.Len())
	if err := j.search(buf); err != nil {
		return nil, err
	}
	return buf.line(), nil
}

// search fills buf depth-first, backtracking on dead ends
func (j *job) search(buf *arena) error {
	if buf.len() == j.checker.Len() {
		return nil
	}
	key := buf.state()
	if _, ok := j.dead[key]; ok {
		return ErrSearchExhausted
	}
	for _, p := range j.rank(buf) {
		if j.nodes >= j.budget {
			return errBudget
		}
		j.nodes++
		buf.push(p)
		err := j.search(buf)
		if err == nil || err == errBudget {
			return err
		}
		buf.pop()
	}
	j.dead[key] = struct{}{}
	return ErrSearchExhausted
}

// rank settles each candidate against the line so far, drops inadmissible ones
// and orders the rest
func (j *job) rank(buf *arena) []int {
	ps := j.next(buf)
	scored := make([]rules.Candidate, 0, len(ps))
	for _, p := range ps {
		buf.push(p)
		score, ok := j.settle(buf.notes)
		buf.pop()
		if !ok {
			continue
		}
		if j.bonus != nil {
			score += j.bonus(buf, p)
		}
		scored = append(scored, rules.Candidate{Pitch: p, Score: score})
	}
	return rules.Rank(scored, j.rng)
}

// settle scores the newest note. With passing tones switched off a dissonant
// weak beat is never admissible.
func (j *job) settle(line []int) (float64, bool) {
	fs := j.checker.Settle(line)
	score, ok := j.checker.Score(fs)
	if !ok || j.weights.Enabled(rules.AllowPassingTones) {
		return score, ok
	}
	for _, f := range fs {
		if f.Outcome.ID == rules.AllowPassingTones && !f.Outcome.Result.Passed {
			return score, false
		}
	}
	return score, true
}

// exhausted wraps a failed search with what was being generated
func (j *job) exhausted(err error, what string) error {
	if errors.Is(err, errBudget) {
		return fmt.Errorf("%w after %d nodes (%s, %s)", ErrSearchExhausted, j.nodes, j.species.Name(), what)
	}
	return fmt.Errorf("%w: no %s satisfies the hard rules (%s)", ErrSearchExhausted, what, j.species.Name())
}

func (j *job) warn(format string, args ...any) {
	j.warnings = append(j.warnings, fmt.Sprintf(format, args...))
}

func (j *job) last() int {
	return len(j.cf) - 1
}

// rangeFor is the pitch range on the counterpoint's side of cf
func (j *job) rangeFor(cf int) (lo, hi int) {
	if j.above {
		return cf, theory.MaxPitch
	}
	return theory.MinPitch, cf
}

// inRange reports whether p is a legal in-mode pitch for the engine
func (j *job) inRange(p int) bool {
	return p >= theory.MinPitch && p <= theory.MaxPitch && j.scale.Contains(p)
}

// pitches lists in-mode pitches on the counterpoint's side of cf. When
// consonance is hard only consonances are listed.
func (j *job) pitches(cf int, consonance rules.ID) []int {
	lo, hi := j.rangeFor(cf)
	consonantOnly := j.weights.Hard(consonance)
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		if !j.scale.Contains(p) {
			continue
		}
		if consonantOnly && !theory.IsConsonant(theory.Semitones(cf, p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// keep returns the members of ps that satisfy pred
func keep(ps []int, pred func(int) bool) []int {
	var out []int
	for _, p := range ps {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// opening narrows the first note to perfect consonances when there are any
func opening(cf int, ps []int) []int {
	if perfect := keep(ps, func(p int) bool { return theory.IsPerfectConsonance(theory.Semitones(cf, p)) }); len(perfect) > 0 {
		return perfect
	}
	return ps
}

// finalNotes applies the closing constraint: unison or octave, or failing that
// any compound octave. An empty result forces a backtrack.
func finalNotes(cf int, ps []int) []int {
	if exact := keep(ps, func(p int) bool {
		s := theory.Semitones(cf, p)
		return s == 0 || s == 12
	}); len(exact) > 0 {
		return exact
	}
	return keep(ps, func(p int) bool { return theory.Semitones(cf, p)%12 == 0 })
}

// structural lists the accented-note candidates for measure i
func (j *job) structural(i int, consonance rules.ID) []int {
	cf := j.cf[i]
	ps := j.pitches(cf, consonance)
	if i == 0 {
		ps = opening(cf, ps)
	}
	if i == j.last() {
		ps = finalNotes(cf, ps)
	}
	if i > 0 && i == j.last()-1 {
		ps = j.cadence(cf, ps)
	}
	return ps
}

// structuralBonus prefers an octave or unison opening and imperfect
// consonances inside the line
func (j *job) structuralBonus(i, p int) float64 {
	interval := theory.Semitones(j.cf[i], p)
	switch {
	case i == 0 && interval%12 == 0:
		return openingOctaveBonus
	case i > 0 && i < j.last() && theory.IsImperfectConsonance(interval):
		return imperfectBonus
	}
	return 0
}

// cadence narrows the penultimate structural note to the cadential interval
// while the search is strict. A hard rule is enforced by the checker either way.
func (j *job) cadence(cf int, ps []int) []int {
	if !j.strict || !j.weights.Enabled(rules.PenultimateCadence) {
		return ps
	}
	want := rules.CadenceInterval(j.above)
	return keep(ps, func(p int) bool { return theory.Semitones(cf, p)%12 == want })
}

// relaxable runs solve strictly first, on half the node budget. When a soft
// cadence preference leaves no line it searches again without it and records
// a warning.
func (j *job) relaxable(next candidateFunc, bonus bonusFunc) ([]int, error) {
	soft := j.weights.Enabled(rules.PenultimateCadence) && !j.weights.Hard(rules.PenultimateCadence)
	penultimate := j.last() - 1
	if !soft || penultimate < 1 {
		return j.solve(next, bonus)
	}

	j.strict = true
	if len(j.structural(penultimate, rules.BeatOneConsonance)) > 0 {
		budget := j.budget
		j.budget = j.nodes + budget/2
		line, err := j.solve(next, bonus)
		j.budget = budget
		if err == nil {
			return line, nil
		}
	}

	j.strict = false
	line, err := j.solve(next, bonus)
	if err == nil {
		j.warn("measure %d: penultimate cadence relaxed, no %s against %s fits the line",
			penultimate+1, theory.IntervalName(rules.CadenceInterval(j.above)), theory.NumberToPitch(j.cf[penultimate]))
	}
	return line, err
}
