package models

import (
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
)

// NoteInput is a note as submitted by a client. Pitches are validated at the
// binding layer so malformed input never reaches the engine.
type NoteInput struct {
	Pitch    string `json:"pitch" binding:"required,pitch"`
	Duration string `json:"duration,omitempty" binding:"omitempty,duration"`
}

// Notes converts inputs to engine notes, defaulting the duration to d
func Notes(in []NoteInput, d theory.Duration) []theory.Note {
	out := make([]theory.Note, len(in))
	for i, n := range in {
		dur := theory.Duration(n.Duration)
		if dur == "" {
			dur = d
		}
		out[i] = theory.Note{Pitch: theory.Pitch(n.Pitch), Duration: dur}
	}
	return out
}

// CantusRequest asks for a new cantus firmus
type CantusRequest struct {
	Measures int     `json:"measures,omitempty" binding:"omitempty,gte=0"` // Clamped to 8..14, 0 picks at random
	Mode     string  `json:"mode,omitempty" binding:"omitempty,mode"`
	Finalis  string  `json:"finalis,omitempty" binding:"omitempty,finalis"`
	Seed     *uint64 `json:"seed,omitempty"` // Optional seed for reproducibility
}

// CantusResponse is a generated cantus firmus
type CantusResponse struct {
	Notes    []theory.Note  `json:"notes"`
	Mode     theory.Mode    `json:"mode"`
	Finalis  theory.Finalis `json:"finalis"`
	Fallback bool           `json:"fallback"`
	Attempts int            `json:"attempts"`
	Seed     uint64         `json:"seed"`
}

// GenerateRequest wraps the parameters of a counterpoint generation
type GenerateRequest struct {
	CantusFirmus []NoteInput    `json:"cantusFirmus" binding:"dive"`
	Above        *bool          `json:"isCounterpointAbove,omitempty"` // Defaults to true
	Rules        []rules.Config `json:"rules,omitempty"`
	Mode         string         `json:"mode,omitempty" binding:"omitempty,mode"`
	Finalis      string         `json:"finalis,omitempty" binding:"omitempty,finalis"`
	Seed         *uint64        `json:"seed,omitempty"`
}

// IsAbove reports the voice placement, defaulting to above the cantus
func (r GenerateRequest) IsAbove() bool {
	return r.Above == nil || *r.Above
}

// AnalyzeRequest submits a finished pair for analysis
type AnalyzeRequest struct {
	CantusFirmus []NoteInput    `json:"cantusFirmus" binding:"dive"`
	Counterpoint []NoteInput    `json:"counterpoint" binding:"dive"`
	Above        *bool          `json:"isCounterpointAbove,omitempty"`
	Rules        []rules.Config `json:"rules,omitempty"`
}

// IsAbove reports the voice placement, defaulting to above the cantus
func (r AnalyzeRequest) IsAbove() bool {
	return r.Above == nil || *r.Above
}

// MIDIExportRequest renders a pair to a Standard MIDI File
type MIDIExportRequest struct {
	CantusFirmus []NoteInput `json:"cantusFirmus" binding:"dive"`
	Counterpoint []NoteInput `json:"counterpoint" binding:"dive"`
	BPM          float64     `json:"bpm,omitempty" binding:"omitempty,gt=0,lte=400"`
}

// ModeInfo describes one church mode
type ModeInfo struct {
	ID        theory.Mode `json:"id"`
	Name      string      `json:"name"`
	Intervals [7]int      `json:"intervals"`
}

// ModesResponse lists the modes and finalis options
type ModesResponse struct {
	Modes   []ModeInfo       `json:"modes"`
	Finalis []theory.Finalis `json:"finalis"`
}

// RulesResponse lists the default rules for a species
type RulesResponse struct {
	Species theory.Species `json:"species"`
	Name    string         `json:"name"`
	Rules   []rules.Config `json:"rules"`
}
