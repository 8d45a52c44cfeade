// Package cantus synthesizes cantus firmus melodies: 8 to 14 whole notes in a
// church mode, starting and ending on the final, with one climax in the back half.
package cantus

import (
	"math/rand/v2"
	"sort"

	"github.com/Conceptual-Machines/counterpoint-api/internal/random"
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

const (
	MinMeasures = 8
	MaxMeasures = 14
	MaxAttempts = 100

	DefaultMode    = theory.Dorian
	DefaultFinalis = theory.Finalis("D")

	// the final is placed in octave 4
	finalOctave = 4
	// range around the final
	rangeBelow = 5
	rangeAbove = 12
	// climax sits 5-9 semitones above the final
	climaxMinAbove = 4
	climaxMaxAbove = 9
	climaxFallback = 7
	climaxPosition = 0.7
	topCandidates  = 3
)

// fallbackDegrees is the skeleton melody used when every attempt fails, as
// indexes into the mode pattern: 1-2-3-2-3-4-5-3-2-1
var fallbackDegrees = []int{0, 1, 2, 1, 2, 3, 4, 2, 1, 0}

// Config selects the melody shape. Zero values pick the defaults.
type Config struct {
	Measures int            `json:"measures,omitempty"`
	Mode     theory.Mode    `json:"mode,omitempty"`
	Finalis  theory.Finalis `json:"finalis,omitempty"`
}

// Outcome is a generated melody and how it was reached
type Outcome struct {
	Notes    []theory.Note `json:"notes"`
	Fallback bool          `json:"fallback"`
	Attempts int           `json:"attempts"`
	Climax   int           `json:"climaxIndex"`
}

// Generator builds melodies from an injected random source
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. A nil rng is replaced by a clock-seeded one.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = random.FromClock()
	}
	return &Generator{rng: rng}
}

// GenerateCantusFirmus builds a melody with a clock-seeded source
func GenerateCantusFirmus(cfg Config) []theory.Note {
	return New(nil).Generate(cfg).Notes
}

// plan is the fixed shape of one generation: everything chosen before the attempts
type plan struct {
	measures    int
	final       int
	scale       []int
	climax      int
	climaxIndex int
}

func (g *Generator) resolve(cfg Config) Config {
	if cfg.Measures == 0 {
		cfg.Measures = MinMeasures + g.rng.IntN(MaxMeasures-MinMeasures+1)
	}
	cfg.Measures = min(max(cfg.Measures, MinMeasures), MaxMeasures)
	if !cfg.Mode.Valid() {
		cfg.Mode = DefaultMode
	}
	if !cfg.Finalis.Valid() {
		cfg.Finalis = DefaultFinalis
	}
	return cfg
}

func (g *Generator) plan(cfg Config) plan {
	final := cfg.Finalis.Pitch(finalOctave).Number()
	scale := theory.ScalePitches(cfg.Finalis, cfg.Mode, final-rangeBelow, final+rangeAbove).Sorted()

	var climaxOptions []int
	for _, p := range scale {
		if p > final+climaxMinAbove && p <= final+climaxMaxAbove {
			climaxOptions = append(climaxOptions, p)
		}
	}
	climax := final + climaxFallback
	if len(climaxOptions) > 0 {
		climax = climaxOptions[g.rng.IntN(len(climaxOptions))]
	}

	return plan{
		measures:    cfg.Measures,
		final:       final,
		scale:       scale,
		climax:      climax,
		climaxIndex: min(int(float64(cfg.Measures)*climaxPosition), cfg.Measures-3),
	}
}

// Generate never fails: after MaxAttempts it returns the skeleton melody
func (g *Generator) Generate(cfg Config) Outcome {
	cfg = g.resolve(cfg)
	p := g.plan(cfg)

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		melody, ok := g.attempt(p)
		if !ok {
			continue
		}
		if Validate(melody) == nil {
			return Outcome{
				Notes:    theory.NotesFromNumbers(melody, theory.Whole),
				Attempts: attempt,
				Climax:   p.climaxIndex,
			}
		}
	}

	melody := fallback(p.final, cfg.Mode)
	return Outcome{
		Notes:    theory.NotesFromNumbers(melody, theory.Whole),
		Fallback: true,
		Attempts: MaxAttempts,
		Climax:   climaxIndexOf(melody),
	}
}

func (g *Generator) attempt(p plan) ([]int, bool) {
	melody := make([]int, 1, p.measures)
	melody[0] = p.final

	for i := 1; i < p.measures-1; i++ {
		valid := nextNotes(melody, p, i)
		if len(valid) == 0 {
			return nil, false
		}

		scored := make([]rules.Candidate, len(valid))
		for j, note := range valid {
			scored[j] = rules.Candidate{Pitch: note, Score: g.score(note, melody, i, p.climaxIndex)}
		}
		sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })

		top := min(topCandidates, len(scored))
		melody = append(melody, scored[g.rng.IntN(top)].Pitch)
	}

	return append(melody, p.final), true
}

// nextNotes applies the per-step filters in order
func nextNotes(melody []int, p plan, index int) []int {
	last := melody[len(melody)-1]

	needsStepDown, needsStepUp := false, false
	if len(melody) >= 2 {
		prev := melody[len(melody)-2]
		leap := theory.Semitones(prev, last)
		switch theory.Direction(prev, last) {
		case 1:
			needsStepDown = leap >= 8
		case -1:
			needsStepUp = leap == 12
		}
	}

	var valid []int
	for _, pitch := range p.scale {
		interval := theory.Semitones(last, pitch)
		direction := theory.Direction(last, pitch)

		switch {
		case interval == 0:
			continue
		case rules.IsForbiddenInterval(last, pitch):
			continue
		case outlinesTritone(melody, pitch):
			continue
		case needsStepDown && (direction != -1 || interval > 2):
			continue
		case needsStepUp && (direction != 1 || interval > 2):
			continue
		case index < p.climaxIndex && pitch > p.climax:
			continue
		case index == p.climaxIndex && pitch != p.climax:
			continue
		case index > p.climaxIndex && pitch >= p.climax:
			continue
		case index == p.measures-2 && !isStep(pitch, p.final):
			continue
		case pitch < p.final-rangeBelow || pitch > p.final+rangeAbove:
			continue
		}
		valid = append(valid, pitch)
	}
	return valid
}

func (g *Generator) score(note int, melody []int, index, climaxIndex int) float64 {
	score := 100.0
	last := melody[len(melody)-1]
	interval := theory.Semitones(last, note)
	direction := theory.Direction(last, note)

	switch {
	case interval <= 2:
		score += 30
	case interval <= 4:
		score += 15
	case interval <= 7:
		score += 5
	}

	if len(melody) >= 2 {
		prevDir := theory.Direction(melody[len(melody)-2], last)
		if direction != prevDir && direction != 0 {
			score += 20
			if sameDirectionRun(melody) >= 3 {
				score += 10
			}
		}
	}

	switch {
	case index < climaxIndex && direction == 1:
		score += 5
	case index > climaxIndex && direction == -1:
		score += 5
	}

	return score + g.rng.Float64()*20
}

// outlinesTritone rejects any tritone among the last three notes and the new one
func outlinesTritone(melody []int, next int) bool {
	if len(melody) < 2 {
		return false
	}
	start := max(len(melody)-3, 0)
	window := append(append([]int(nil), melody[start:]...), next)
	for i := 0; i < len(window)-1; i++ {
		for j := i + 1; j < len(window); j++ {
			if theory.Semitones(window[i], window[j]) == 6 {
				return true
			}
		}
	}
	return false
}

// sameDirectionRun counts how many moves before the last one went the same way
func sameDirectionRun(melody []int) int {
	n := len(melody)
	if n < 2 {
		return 0
	}
	lastDir := theory.Direction(melody[n-2], melody[n-1])
	count := 0
	for i := n - 2; i > 0; i-- {
		dir := theory.Direction(melody[i-1], melody[i])
		if dir != lastDir || dir == 0 {
			break
		}
		count++
	}
	return count
}

func isStep(a, b int) bool {
	s := theory.Semitones(a, b)
	return s == 1 || s == 2
}

func fallback(final int, mode theory.Mode) []int {
	intervals := mode.Intervals()
	melody := make([]int, len(fallbackDegrees))
	for i, degree := range fallbackDegrees {
		melody[i] = final + intervals[degree]
	}
	return melody
}

func climaxIndexOf(melody []int) int {
	idx := 0
	for i, p := range melody {
		if p > melody[idx] {
			idx = i
		}
	}
	return idx
}
