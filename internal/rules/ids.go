package rules

// ID identifies a counterpoint rule. The set is closed; unknown ids are rejected by Validate.
type ID string

const (
	NoParallelFifths       ID = "noParallelFifths"
	NoDirectFifths         ID = "noDirectFifths"
	PreferContraryMotion   ID = "preferContraryMotion"
	PreferStepwiseMotion   ID = "preferStepwiseMotion"
	ConsonantIntervalsOnly ID = "consonantIntervalsOnly"

	// 2nd species
	DownbeatConsonance ID = "downbeatConsonance"
	AllowPassingTones  ID = "allowPassingTones"

	// 3rd species
	BeatOneConsonance   ID = "beatOneConsonance"
	BeatThreeConsonance ID = "beatThreeConsonance"
	AllowCambiata       ID = "allowCambiata"
	PenultimateCadence  ID = "penultimateCadence"

	// 4th species
	UpbeatConsonance     ID = "upbeatConsonance"
	SuspensionResolution ID = "suspensionResolution"
	AvoidRepetitions     ID = "avoidRepetitions"

	// Melodic rules shared by every species
	NoForbiddenIntervals  ID = "noForbiddenIntervals"
	LeapRecovery          ID = "leapRecovery"
	NoExposedTritone      ID = "noExposedTritone"
	AvoidConsecutiveLeaps ID = "avoidConsecutiveLeaps"
)

// IDs lists every rule id in catalog order
func IDs() []ID {
	out := make([]ID, len(catalog))
	for i, e := range catalog {
		out[i] = e.id
	}
	return out
}

// Valid reports whether id is part of the catalog
func (id ID) Valid() bool {
	_, ok := catalogIndex[id]
	return ok
}
