package rules

import (
	"fmt"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

// Result is the outcome of a single rule predicate
type Result struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// LeapResult extends Result with whether the previous leap still awaits recovery
type LeapResult struct {
	Result
	NeedsRecovery bool `json:"needsRecovery"`
}

func pass(msg string) Result { return Result{Passed: true, Message: msg} }
func fail(msg string) Result { return Result{Passed: false, Message: msg} }

func similarMotion(cfMotion, cpMotion int) bool {
	return (cfMotion > 0 && cpMotion > 0) || (cfMotion < 0 && cpMotion < 0)
}

// CheckParallelFifths fails when two consecutive pairs form the same perfect
// consonance and both voices move in the same direction.
func CheckParallelFifths(prevCF, currCF, prevCP, currCP int) Result {
	prevInterval := theory.Semitones(prevCF, prevCP)
	currInterval := theory.Semitones(currCF, currCP)

	if !theory.IsPerfectConsonance(prevInterval) || !theory.IsPerfectConsonance(currInterval) {
		return pass("No parallel perfect intervals")
	}
	if prevInterval%12 != currInterval%12 {
		return pass("Different interval types")
	}
	if similarMotion(currCF-prevCF, currCP-prevCP) {
		if currInterval%12 == 0 {
			return fail("Parallel octaves")
		}
		return fail("Parallel fifths")
	}
	return pass("No parallel motion")
}

// CheckDirectFifths fails when a perfect consonance is reached by similar motion
// with a leap in the counterpoint.
func CheckDirectFifths(prevCF, currCF, prevCP, currCP int) Result {
	currInterval := theory.Semitones(currCF, currCP)
	if !theory.IsPerfectConsonance(currInterval) {
		return pass("Not a perfect interval")
	}

	cpMotion := currCP - prevCP
	if similarMotion(currCF-prevCF, cpMotion) && theory.Semitones(prevCP, currCP) > 2 {
		if currInterval%12 == 0 {
			return fail("Direct octave by leap")
		}
		return fail("Direct fifth by leap")
	}
	return pass("No direct fifths/octaves")
}

// CheckContraryMotion passes contrary and oblique motion, fails similar motion
func CheckContraryMotion(prevCF, currCF, prevCP, currCP int) Result {
	cfMotion := currCF - prevCF
	cpMotion := currCP - prevCP

	if cfMotion == 0 || cpMotion == 0 {
		return pass("Oblique motion")
	}
	if (cfMotion > 0) != (cpMotion > 0) {
		return pass("Contrary motion")
	}
	return fail("Similar motion")
}

// CheckForbiddenInterval rejects melodic tritones, sevenths, leaps beyond an octave,
// descending sixths and the ascending major sixth.
func CheckForbiddenInterval(prevCP, currCP int) Result {
	interval := theory.Semitones(prevCP, currCP)
	ascending := currCP > prevCP

	switch {
	case interval == 6:
		return fail("Forbidden: tritone leap")
	case interval == 10:
		return fail("Forbidden: minor 7th leap")
	case interval == 11:
		return fail("Forbidden: major 7th leap")
	case interval > 12:
		return fail(fmt.Sprintf("Forbidden: leap greater than octave (%d semitones)", interval))
	case !ascending && interval == 8:
		return fail("Forbidden: descending minor 6th")
	case !ascending && interval == 9:
		return fail("Forbidden: descending major 6th")
	case ascending && interval == 9:
		return fail("Forbidden: ascending major 6th")
	}

	if interval <= 2 {
		return pass("Stepwise motion")
	}
	return pass("Leap of " + theory.IntervalName(interval))
}

// IsForbiddenInterval is the boolean form of CheckForbiddenInterval
func IsForbiddenInterval(prevCP, currCP int) bool {
	return !CheckForbiddenInterval(prevCP, currCP).Passed
}

// CheckLeapRecovery requires a step in the opposite direction after an ascending
// minor 6th or octave, or a descending octave.
func CheckLeapRecovery(prevPrevCP, prevCP, currCP int) LeapResult {
	prevInterval := theory.Semitones(prevPrevCP, prevCP)
	prevDirection := theory.Direction(prevPrevCP, prevCP)

	up := prevDirection == 1 && (prevInterval == 8 || prevInterval == 12)
	down := prevDirection == -1 && prevInterval == 12
	if !up && !down {
		return LeapResult{Result: pass("No recovery needed")}
	}

	isStep := theory.Semitones(prevCP, currCP) <= 2
	opposite := theory.Direction(prevCP, currCP) == -prevDirection
	if isStep && opposite {
		return LeapResult{Result: pass("Leap properly recovered by step")}
	}

	leapType := "descending octave"
	if up {
		leapType = "ascending octave"
		if prevInterval == 8 {
			leapType = "ascending minor 6th"
		}
	}
	return LeapResult{
		Result:        fail(fmt.Sprintf("Leap recovery needed: %s must be followed by step in opposite direction", leapType)),
		NeedsRecovery: true,
	}
}

// CheckExposedTritone looks at the last four notes (recent plus next). A run moving
// in one direction (repeated notes ignored) whose span is exactly 6 semitones fails.
func CheckExposedTritone(recent []int, next int) Result {
	if len(recent) == 0 {
		return pass("No tritone outline")
	}

	window := tail(recent, 3, next)
	direction := 0
	for i := 1; i < len(window); i++ {
		d := theory.Direction(window[i-1], window[i])
		if d == 0 {
			continue
		}
		if direction == 0 {
			direction = d
		} else if d != direction {
			return pass("No tritone outline")
		}
	}
	if direction == 0 {
		return pass("No tritone outline")
	}

	if theory.Semitones(window[0], window[len(window)-1]) == 6 {
		return fail("Exposed tritone: notes outline augmented 4th")
	}
	return pass("No tritone outline")
}

// CheckConsecutiveLeapsSameDirection fails when the last three intervals end in two
// or more leaps (> 2 semitones) in the same direction.
func CheckConsecutiveLeapsSameDirection(recent []int, next int) Result {
	if len(recent) < 2 {
		return pass("Melodic variety")
	}

	window := tail(recent, 3, next)
	run := 0
	lastDir := 0
	for i := 1; i < len(window); i++ {
		interval := theory.Semitones(window[i-1], window[i])
		dir := 1
		if window[i] <= window[i-1] {
			dir = -1
		}
		if interval <= 2 {
			run, lastDir = 0, 0
			continue
		}
		if lastDir == dir {
			run++
		} else {
			run, lastDir = 1, dir
		}
	}

	if run >= 2 {
		return fail(fmt.Sprintf("Multiple leaps in same direction (%d consecutive)", run+1))
	}
	return pass("Melodic variety")
}

// CheckStepwiseMotion passes motion of at most a whole step
func CheckStepwiseMotion(prevCP, currCP int) Result {
	interval := theory.Semitones(prevCP, currCP)
	if interval <= 2 {
		return pass("Stepwise motion")
	}
	return fail("Leap of " + theory.IntervalName(interval))
}

// CheckConsonance classifies the harmonic interval between the voices
func CheckConsonance(cf, cp int) Result {
	interval := theory.Semitones(cf, cp)
	if theory.IsConsonant(interval) {
		return pass(fmt.Sprintf("Consonant (%s)", theory.IntervalName(interval)))
	}
	return fail(fmt.Sprintf("Dissonant (%s)", theory.IntervalName(interval)))
}

// CheckRepetition fails on an immediately repeated pitch
func CheckRepetition(prevCP, currCP int) Result {
	if prevCP == currCP {
		return fail("Repeated note")
	}
	return pass("No repetition")
}

// CheckSuspensionResolution checks a note tied over into cf. A consonant tie passes;
// a dissonant one must resolve down by one or two semitones.
func CheckSuspensionResolution(cf, suspended, resolution int) Result {
	interval := theory.Semitones(cf, suspended)
	name := theory.IntervalName(interval)
	if theory.IsConsonant(interval) {
		return pass(fmt.Sprintf("Consonant tie (%s)", name))
	}

	drop := suspended - resolution
	if drop >= 1 && drop <= 2 {
		return pass(fmt.Sprintf("Valid suspension (%s → resolves down)", name))
	}
	return fail(fmt.Sprintf("Invalid suspension (%s - must resolve down by step)", name))
}

// ResolvesSuspension reports whether candidate is a downward step of 1-2 semitones from suspended
func ResolvesSuspension(suspended, candidate int) bool {
	drop := suspended - candidate
	return drop >= 1 && drop <= 2
}

// CheckPassingTone passes consonant notes; a dissonant note must be approached
// and left by step.
func CheckPassingTone(cf, prev, curr, next int) Result {
	interval := theory.Semitones(cf, curr)
	name := theory.IntervalName(interval)
	if theory.IsConsonant(interval) {
		return pass(fmt.Sprintf("Consonant (%s)", name))
	}
	if theory.Semitones(prev, curr) <= 2 && theory.Semitones(curr, next) <= 2 {
		return pass(fmt.Sprintf("Valid passing tone (%s)", name))
	}
	return fail(fmt.Sprintf("Dissonance must move by step (%s)", name))
}

// IsCambiata reports the figure: dissonant beat 2 reached by step, leap to a
// consonant beat 3, then a step back against the leap.
func IsCambiata(cf, beat1, beat2, beat3, beat4 int) bool {
	if theory.IsConsonant(theory.Semitones(cf, beat2)) || theory.Semitones(beat1, beat2) > 2 {
		return false
	}
	if !theory.IsConsonant(theory.Semitones(cf, beat3)) || theory.Semitones(beat2, beat3) <= 2 {
		return false
	}
	leapDir := theory.Direction(beat2, beat3)
	return theory.Direction(beat3, beat4) == -leapDir && theory.Semitones(beat3, beat4) <= 2
}

// CheckCambiata evaluates a dissonant beat 2 that is left by leap
func CheckCambiata(cf, beat1, beat2, beat3, beat4 int) Result {
	name := theory.IntervalName(theory.Semitones(cf, beat2))
	if IsCambiata(cf, beat1, beat2, beat3, beat4) {
		return pass(fmt.Sprintf("Cambiata (%s)", name))
	}
	return fail(fmt.Sprintf("Invalid cambiata (%s)", name))
}

// tail returns the last n values of recent followed by next
func tail(recent []int, n, next int) []int {
	start := len(recent) - n
	if start < 0 {
		start = 0
	}
	out := make([]int, 0, len(recent)-start+1)
	out = append(out, recent[start:]...)
	return append(out, next)
}

// CadenceInterval is the preferred penultimate interval: a major 6th with the
// counterpoint above, a minor 3rd with it below.
func CadenceInterval(above bool) int {
	if above {
		return 9
	}
	return 3
}

// CheckCadence evaluates the penultimate structural note of a line
func CheckCadence(cf, cp int, above bool) Result {
	want := CadenceInterval(above)
	got := theory.Semitones(cf, cp)
	if got%12 == want {
		return pass(fmt.Sprintf("Cadential %s", theory.IntervalName(want)))
	}
	return fail(fmt.Sprintf("Penultimate should be %s (%s)", theory.IntervalName(want), theory.IntervalName(got)))
}
