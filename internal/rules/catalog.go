package rules

import (
	"fmt"
	"os"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"gopkg.in/yaml.v3"
)

// Weight bounds. A rule at MaxWeight is a hard constraint.
const (
	MinWeight = 0
	MaxWeight = 100
)

// Config is one rule as exposed to callers, with its weight in percent
type Config struct {
	ID          ID     `json:"id" yaml:"id" binding:"required"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Weight      int    `json:"weight" yaml:"weight" binding:"min=0,max=100"`
}

// perSpecies is one cell of the catalog table. Empty name/description fall back
// to the row defaults.
type perSpecies struct {
	weight      int
	name        string
	description string
}

type entry struct {
	id          ID
	name        string
	description string
	// damping scales the weight when the rule is soft and fails during scoring
	damping float64
	species map[theory.Species]perSpecies
}

// catalog is the rule table: row order is the order rules are listed in.
var catalog = []entry{
	{
		id:          NoParallelFifths,
		name:        "No Parallel 5ths/8ves",
		description: "Avoid consecutive perfect fifths or octaves",
		damping:     1,
		species: map[theory.Species]perSpecies{
			theory.FirstSpecies: {weight: 100},
			theory.SecondSpecies: {weight: 100,
				name:        "No Parallel 5ths/8ves on Downbeats",
				description: "Avoid parallel perfect intervals on consecutive downbeats"},
			theory.ThirdSpecies: {weight: 100,
				name:        "No Parallel 5ths/8ves on Beat 1",
				description: "Avoid parallel perfect intervals on consecutive downbeats"},
			theory.FourthSpecies: {weight: 100,
				description: "Avoid parallel perfect intervals on consecutive upbeats"},
		},
	},
	{
		id:          NoDirectFifths,
		name:        "No Direct 5ths/8ves",
		description: "Avoid approaching perfect intervals by similar motion",
		damping:     1,
		species:     allSpecies(80),
	},
	{
		id:          PreferContraryMotion,
		name:        "Prefer Contrary Motion",
		description: "Voices should move in opposite directions",
		damping:     0.5,
		species:     allSpecies(60),
	},
	{
		id:          PreferStepwiseMotion,
		name:        "Prefer Stepwise Motion",
		description: "Counterpoint should move by step when possible",
		damping:     0.2,
		species: map[theory.Species]perSpecies{
			theory.FirstSpecies:  {weight: 50},
			theory.SecondSpecies: {weight: 50},
			theory.ThirdSpecies:  {weight: 70},
			theory.FourthSpecies: {weight: 70},
		},
	},
	{
		id:          ConsonantIntervalsOnly,
		name:        "Consonant Intervals",
		description: "Use only consonant intervals (3rds, 5ths, 6ths, 8ves)",
		damping:     1,
		species: map[theory.Species]perSpecies{
			theory.FirstSpecies:  {weight: 100},
			theory.SecondSpecies: {weight: 100},
		},
	},
	{
		id:          DownbeatConsonance,
		name:        "Downbeat Consonance",
		description: "Downbeats must be consonant with the cantus firmus",
		damping:     1,
		species:     only(theory.SecondSpecies, 100),
	},
	{
		id:          AllowPassingTones,
		name:        "Allow Passing Tones",
		description: "Upbeats may be dissonant if moving by step (filling in the third)",
		damping:     1,
		species: map[theory.Species]perSpecies{
			theory.SecondSpecies: {weight: 100},
			theory.ThirdSpecies: {weight: 100,
				description: "Beats 2 and 4 may be dissonant only as stepwise passing tones"},
		},
	},
	{
		id:          BeatOneConsonance,
		name:        "Beat 1 Consonance",
		description: "First beat of each measure must be consonant",
		damping:     1,
		species:     only(theory.ThirdSpecies, 100),
	},
	{
		id:          BeatThreeConsonance,
		name:        "Beat 3 Consonance",
		description: "Third beat should be consonant (can be dissonant if others are consonant)",
		damping:     0.375,
		species:     only(theory.ThirdSpecies, 80),
	},
	{
		id:          AllowCambiata,
		name:        "Allow Cambiata",
		description: "Permit dissonant 2nd beat followed by leap to consonant, resolving opposite",
		damping:     1,
		species:     only(theory.ThirdSpecies, 100),
	},
	{
		id:          PenultimateCadence,
		name:        "Penultimate Cadence",
		description: "Second-to-last measure: M6→P8 (CF below) or m3→P1 (CF above)",
		damping:     1,
		species:     only(theory.ThirdSpecies, 90),
	},
	{
		id:          UpbeatConsonance,
		name:        "Upbeat Consonance",
		description: "Upbeats (beat 3) must always be consonant",
		damping:     1,
		species:     only(theory.FourthSpecies, 100),
	},
	{
		id:          SuspensionResolution,
		name:        "Suspension Resolution",
		description: "Dissonances on downbeat must resolve down by step",
		damping:     1,
		species:     only(theory.FourthSpecies, 100),
	},
	{
		id:          AvoidRepetitions,
		name:        "Avoid Repetitions",
		description: "Avoid repeating the same pitch pattern",
		damping:     1,
		species:     allSpecies(50),
	},
	{
		id:          NoForbiddenIntervals,
		name:        "Melodic Motion",
		description: "No tritone, seventh, descending sixth, ascending major sixth or leap beyond an octave",
		damping:     1,
		species:     allSpecies(100),
	},
	{
		id:          LeapRecovery,
		name:        "Leap Recovery",
		description: "Ascending minor 6th or octave, or descending octave, must be followed by a step back",
		damping:     1,
		species:     allSpecies(80),
	},
	{
		id:          NoExposedTritone,
		name:        "No Exposed Tritone",
		description: "A run in one direction must not outline an augmented 4th",
		damping:     1,
		species:     allSpecies(80),
	},
	{
		id:          AvoidConsecutiveLeaps,
		name:        "Avoid Consecutive Leaps",
		description: "Avoid multiple leaps in the same direction",
		damping:     1,
		species:     allSpecies(50),
	},
}

var catalogIndex = func() map[ID]int {
	idx := make(map[ID]int, len(catalog))
	for i, e := range catalog {
		idx[e.id] = i
	}
	return idx
}()

func allSpecies(weight int) map[theory.Species]perSpecies {
	return map[theory.Species]perSpecies{
		theory.FirstSpecies:  {weight: weight},
		theory.SecondSpecies: {weight: weight},
		theory.ThirdSpecies:  {weight: weight},
		theory.FourthSpecies: {weight: weight},
	}
}

func only(sp theory.Species, weight int) map[theory.Species]perSpecies {
	return map[theory.Species]perSpecies{sp: {weight: weight}}
}

// catalogSpecies maps unimplemented species onto the first-species list
func catalogSpecies(sp theory.Species) theory.Species {
	if sp.Implemented() {
		return sp
	}
	return theory.FirstSpecies
}

// Catalog holds the default rule lists, optionally re-weighted by an operator file
type Catalog struct {
	overrides map[theory.Species]map[ID]int
}

// catalogFile is the YAML shape of an override file:
//
//	species:
//	  1:
//	    preferContraryMotion: 70
//	  3:
//	    beatThreeConsonance: 100
type catalogFile struct {
	Species map[string]map[string]int `yaml:"species"`
}

var defaultCatalog = &Catalog{}

// DefaultCatalog returns the built-in catalog with no overrides
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog reads weight overrides from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules config: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML weight overrides. Species keys may be "1".."4" or "3rd" style.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules config: %w", err)
	}

	c := &Catalog{overrides: make(map[theory.Species]map[ID]int)}
	for key, weights := range file.Species {
		sp, err := theory.ParseSpecies(key)
		if err != nil {
			return nil, err
		}
		if !sp.Implemented() {
			return nil, fmt.Errorf("rules config: species %d cannot be configured", int(sp))
		}
		for rawID, w := range weights {
			id := ID(rawID)
			if !id.Valid() {
				return nil, fmt.Errorf("rules config: unknown rule id %q", rawID)
			}
			if w < MinWeight || w > MaxWeight {
				return nil, fmt.Errorf("rules config: weight %d for %s out of range", w, rawID)
			}
			if c.overrides[sp] == nil {
				c.overrides[sp] = make(map[ID]int)
			}
			c.overrides[sp][id] = w
		}
	}
	return c, nil
}

// Rules materializes the ordered rule list for a species
func (c *Catalog) Rules(sp theory.Species) []Config {
	sp = catalogSpecies(sp)
	var out []Config
	for _, e := range catalog {
		cell, ok := e.species[sp]
		if !ok {
			// an override can switch on a rule the species does not list by default
			w, overridden := c.overrides[sp][e.id]
			if !overridden {
				continue
			}
			cell = perSpecies{weight: w}
		}
		cfg := Config{ID: e.id, Name: e.name, Description: e.description, Weight: cell.weight}
		if cell.name != "" {
			cfg.Name = cell.name
		}
		if cell.description != "" {
			cfg.Description = cell.description
		}
		if w, ok := c.overrides[sp][e.id]; ok {
			cfg.Weight = w
		}
		out = append(out, cfg)
	}
	return out
}

// DefaultRules returns the built-in rule list for a species
func DefaultRules(sp theory.Species) []Config {
	return defaultCatalog.Rules(sp)
}

// Validate rejects unknown rule ids and duplicate entries
func Validate(rules []Config) error {
	seen := make(map[ID]bool, len(rules))
	for _, r := range rules {
		if !r.ID.Valid() {
			return fmt.Errorf("unknown rule id: %q", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id: %q", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Weights is a resolved rule set: species defaults overlaid with caller weights
type Weights struct {
	rules []Config
	index map[ID]int
}

// NewWeights overlays caller rules on defaults. Ids missing from the caller list keep
// the default weight; weights are clamped to 0..100. Ids the defaults do not list are
// appended so callers can switch on extra rules.
func NewWeights(defaults, overrides []Config) *Weights {
	w := &Weights{index: make(map[ID]int, len(defaults)+len(overrides))}
	for _, r := range defaults {
		w.put(r)
	}
	for _, r := range overrides {
		if !r.ID.Valid() {
			continue
		}
		if i, ok := w.index[r.ID]; ok {
			merged := w.rules[i]
			merged.Weight = clamp(r.Weight)
			if r.Name != "" {
				merged.Name = r.Name
			}
			w.rules[i] = merged
			continue
		}
		e := catalog[catalogIndex[r.ID]]
		if r.Name == "" {
			r.Name = e.name
		}
		if r.Description == "" {
			r.Description = e.description
		}
		w.put(r)
	}
	return w
}

// ForSpecies resolves caller rules against the default catalog
func ForSpecies(sp theory.Species, overrides []Config) *Weights {
	return NewWeights(DefaultRules(sp), overrides)
}

func (w *Weights) put(r Config) {
	r.Weight = clamp(r.Weight)
	w.index[r.ID] = len(w.rules)
	w.rules = append(w.rules, r)
}

// Weight returns the weight of id, 0 when the rule is not part of the set
func (w *Weights) Weight(id ID) int {
	if i, ok := w.index[id]; ok {
		return w.rules[i].Weight
	}
	return 0
}

// Hard reports whether id filters candidates rather than penalizing them
func (w *Weights) Hard(id ID) bool {
	return w.Weight(id) >= MaxWeight
}

// Enabled reports whether id takes part in scoring and analysis
func (w *Weights) Enabled(id ID) bool {
	return w.Weight(id) > MinWeight
}

// Name returns the display name of id within this set
func (w *Weights) Name(id ID) string {
	if i, ok := w.index[id]; ok && w.rules[i].Name != "" {
		return w.rules[i].Name
	}
	if i, ok := catalogIndex[id]; ok {
		return catalog[i].name
	}
	return string(id)
}

// Penalty is the score reduction for a failing rule, damped for soft rules
func (w *Weights) Penalty(id ID) float64 {
	weight := w.Weight(id)
	if weight >= MaxWeight {
		return float64(weight)
	}
	damping := 1.0
	if i, ok := catalogIndex[id]; ok {
		damping = catalog[i].damping
	}
	return float64(weight) * damping
}

// Rules returns a copy of the resolved list
func (w *Weights) Rules() []Config {
	out := make([]Config, len(w.rules))
	copy(out, w.rules)
	return out
}

func clamp(weight int) int {
	switch {
	case weight < MinWeight:
		return MinWeight
	case weight > MaxWeight:
		return MaxWeight
	default:
		return weight
	}
}
