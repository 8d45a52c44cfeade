// Package species generates a counterpoint line against a cantus firmus for the
// first four Fuxian species. Each call owns its search state and random source,
// so a Generator may be shared by concurrent callers only if its rng is not.
package species

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Conceptual-Machines/counterpoint-api/internal/analysis"
	"github.com/Conceptual-Machines/counterpoint-api/internal/random"
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

// DefaultMaxNodes bounds the number of candidates the depth-first search may try
const DefaultMaxNodes = 200_000

var (
	ErrEmptyCantusFirmus = errors.New("Cantus firmus is empty")
	ErrNotImplemented    = errors.New("not yet implemented")
	ErrInvalidSpecies    = errors.New("invalid species")
	ErrInvalidRules      = errors.New("invalid rules")
	ErrSearchExhausted   = errors.New("could not generate counterpoint")
)

// IsInputError reports whether err was caused by the request rather than the search
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyCantusFirmus) ||
		errors.Is(err, ErrNotImplemented) ||
		errors.Is(err, ErrInvalidSpecies) ||
		errors.Is(err, ErrInvalidRules)
}

// Request is one generation call
type Request struct {
	CantusFirmus []theory.Note  `json:"cantusFirmus"`
	Above        bool           `json:"isCounterpointAbove"`
	Rules        []rules.Config `json:"rules,omitempty"`
	Mode         theory.Mode    `json:"mode,omitempty"`
	Finalis      theory.Finalis `json:"finalis,omitempty"`
}

// Result is the discriminated outcome of a generation. On failure Notes is empty
// and Err is set; partial lines are never returned.
type Result struct {
	Species  theory.Species   `json:"species"`
	Notes    []theory.Note    `json:"notes"`
	Analysis *analysis.Report `json:"analysis,omitempty"`
	Success  bool             `json:"success"`
	Err      error            `json:"-"`
	Message  string           `json:"error,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Nodes    int              `json:"nodes"`
}

// Options tune a Generator. Zero values pick the defaults.
type Options struct {
	MaxNodes int
	Catalog  *rules.Catalog
}

// Generator runs the species searches with an injected random source
type Generator struct {
	rng      *rand.Rand
	maxNodes int
	catalog  *rules.Catalog
}

// New creates a generator. A nil rng is replaced by a clock-seeded one.
func New(rng *rand.Rand, opts Options) *Generator {
	if rng == nil {
		rng = random.FromClock()
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Catalog == nil {
		opts.Catalog = rules.DefaultCatalog()
	}
	return &Generator{rng: rng, maxNodes: opts.MaxNodes, catalog: opts.Catalog}
}

// Generate dispatches on species. Species 5 is recognized but rejected.
func (g *Generator) Generate(sp theory.Species, req Request) Result {
	switch sp {
	case theory.FirstSpecies:
		return g.First(req)
	case theory.SecondSpecies:
		return g.Second(req)
	case theory.ThirdSpecies:
		return g.Third(req)
	case theory.FourthSpecies:
		return g.Fourth(req)
	case theory.FifthSpecies:
		return failure(sp, fmt.Errorf("%s counterpoint is %w", sp.Name(), ErrNotImplemented), 0)
	default:
		return failure(sp, fmt.Errorf("%w: %d", ErrInvalidSpecies, int(sp)), 0)
	}
}

// First generates note-against-note counterpoint
func (g *Generator) First(req Request) Result {
	return g.run(theory.FirstSpecies, req, (*job).first)
}

// Second generates two half notes against each cantus note
func (g *Generator) Second(req Request) Result {
	return g.run(theory.SecondSpecies, req, (*job).second)
}

// Third generates four quarter notes against each cantus note
func (g *Generator) Third(req Request) Result {
	return g.run(theory.ThirdSpecies, req, (*job).third)
}

// Fourth generates syncopated, tied half notes against each cantus note
func (g *Generator) Fourth(req Request) Result {
	return g.run(theory.FourthSpecies, req, (*job).fourth)
}

func (g *Generator) run(sp theory.Species, req Request, search func(*job) ([]int, error)) Result {
	if len(req.CantusFirmus) == 0 {
		return failure(sp, ErrEmptyCantusFirmus, 0)
	}
	if err := rules.Validate(req.Rules); err != nil {
		return failure(sp, fmt.Errorf("%w: %v", ErrInvalidRules, err), 0)
	}

	w := rules.NewWeights(g.catalog.Rules(sp), req.Rules)
	cf := theory.Numbers(req.CantusFirmus)
	j := &job{
		species: sp,
		cf:      cf,
		above:   req.Above,
		scale:   theory.NewScale(req.Finalis, req.Mode),
		weights: w,
		checker: analysis.NewChecker(sp, cf, w, req.Above),
		rng:     g.rng,
		budget:  g.maxNodes,
	}

	line, err := search(j)
	if err != nil {
		return failure(sp, err, j.nodes)
	}

	notes := theory.NotesFromNumbers(line, sp.Duration())
	report, err := analysis.AnalyzeWeights(sp, req.CantusFirmus, notes, w, req.Above)
	if err != nil {
		return failure(sp, err, j.nodes)
	}
	return Result{
		Species:  sp,
		Notes:    notes,
		Analysis: &report,
		Success:  true,
		Warnings: j.warnings,
		Nodes:    j.nodes,
	}
}

func failure(sp theory.Species, err error, nodes int) Result {
	return Result{
		Species: sp,
		Notes:   []theory.Note{},
		Success: false,
		Err:     err,
		Message: err.Error(),
		Nodes:   nodes,
	}
}

// GenerateFirstSpecies runs species 1 with a clock-seeded source
func GenerateFirstSpecies(cf []theory.Note, above bool, ruleSet []rules.Config, mode theory.Mode, finalis theory.Finalis) Result {
	return New(nil, Options{}).First(Request{CantusFirmus: cf, Above: above, Rules: ruleSet, Mode: mode, Finalis: finalis})
}

// GenerateSecondSpecies runs species 2 with a clock-seeded source
func GenerateSecondSpecies(cf []theory.Note, above bool, ruleSet []rules.Config, mode theory.Mode, finalis theory.Finalis) Result {
	return New(nil, Options{}).Second(Request{CantusFirmus: cf, Above: above, Rules: ruleSet, Mode: mode, Finalis: finalis})
}

// GenerateThirdSpecies runs species 3 with a clock-seeded source
func GenerateThirdSpecies(cf []theory.Note, above bool, ruleSet []rules.Config, mode theory.Mode, finalis theory.Finalis) Result {
	return New(nil, Options{}).Third(Request{CantusFirmus: cf, Above: above, Rules: ruleSet, Mode: mode, Finalis: finalis})
}

// GenerateFourthSpecies runs species 4 with a clock-seeded source
func GenerateFourthSpecies(cf []theory.Note, above bool, ruleSet []rules.Config, mode theory.Mode, finalis theory.Finalis) Result {
	return New(nil, Options{}).Fourth(Request{CantusFirmus: cf, Above: above, Rules: ruleSet, Mode: mode, Finalis: finalis})
}
