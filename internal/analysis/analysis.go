// Package analysis re-walks a finished cantus/counterpoint pairing and reports,
// per note, which rules pass or fail. It never alters the notes it is given.
package analysis

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

var (
	ErrEmpty          = errors.New("nothing to analyze")
	ErrLengthMismatch = errors.New("counterpoint length does not match the cantus firmus")
	ErrUnsupported    = errors.New("analysis is not available for this species")
)

// history depth for melodic rules
const historyLen = 3

// RuleResult is one rule evaluated at one note
type RuleResult struct {
	RuleID   rules.ID `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message"`
}

// NoteAnalysis is the diagnostic trail for one counterpoint note
type NoteAnalysis struct {
	NoteIndex   int          `json:"noteIndex"`
	CFPitch     theory.Pitch `json:"cfPitch"`
	CPPitch     theory.Pitch `json:"cpPitch"`
	Interval    string       `json:"interval"`
	RuleResults []RuleResult `json:"ruleResults"`
}

// Report is the full analysis of a pairing
type Report struct {
	Species      theory.Species `json:"species"`
	NoteAnalyses []NoteAnalysis `json:"noteAnalyses"`
	Violations   int            `json:"violations"`
	Summary      string         `json:"summary"`
}

// Analyze checks cp against cf using the species defaults overlaid with ruleSet.
// above places the counterpoint over the cantus.
func Analyze(sp theory.Species, cf, cp []theory.Note, ruleSet []rules.Config, above bool) (Report, error) {
	return AnalyzeWeights(sp, cf, cp, rules.ForSpecies(sp, ruleSet), above)
}

// AnalyzeWeights checks cp against cf with an already resolved rule set
func AnalyzeWeights(sp theory.Species, cf, cp []theory.Note, w *rules.Weights, above bool) (Report, error) {
	if !sp.Implemented() {
		return Report{}, fmt.Errorf("%w: %s", ErrUnsupported, sp.Name())
	}
	if len(cf) == 0 {
		return Report{}, ErrEmpty
	}
	if want := sp.LineLength(len(cf)); len(cp) != want {
		return Report{}, fmt.Errorf("%w: got %d notes, want %d for %s", ErrLengthMismatch, len(cp), want, sp.Name())
	}

	cfNums, cpNums := theory.Numbers(cf), theory.Numbers(cp)
	c := NewChecker(sp, cfNums, w, above)

	notes := make([]NoteAnalysis, len(cpNums))
	for k, p := range cpNums {
		cfPitch := cfNums[c.Measure(k)]
		notes[k] = NoteAnalysis{
			NoteIndex:   k,
			CFPitch:     theory.NumberToPitch(cfPitch),
			CPPitch:     theory.NumberToPitch(p),
			Interval:    theory.IntervalName(theory.Semitones(cfPitch, p)),
			RuleResults: []RuleResult{},
		}
	}

	report := Report{Species: sp, NoteAnalyses: notes}
	for k := range cpNums {
		for _, f := range c.Settle(cpNums[:k+1]) {
			n := &notes[f.Note]
			n.RuleResults = append(n.RuleResults, RuleResult{
				RuleID:   f.Outcome.ID,
				RuleName: w.Name(f.Outcome.ID),
				Passed:   f.Outcome.Result.Passed,
				Message:  f.Outcome.Result.Message,
			})
			if !f.Outcome.Result.Passed {
				report.Violations++
			}
		}
	}
	report.Summary = Summary(sp, report.Violations)
	return report, nil
}

// Summary renders the one-line verdict
func Summary(sp theory.Species, violations int) string {
	switch violations {
	case 0:
		return fmt.Sprintf("All rules followed (%s)", sp.Name())
	case 1:
		return fmt.Sprintf("1 rule violation (%s)", sp.Name())
	default:
		return fmt.Sprintf("%d rule violations (%s)", violations, sp.Name())
	}
}
