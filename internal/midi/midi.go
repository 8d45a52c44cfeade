// Package midi writes a cantus/counterpoint pair to a Standard MIDI File and
// reads a single voice back. Each voice gets its own track.
package midi

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	DefaultBPM = 60.0

	CantusTrackName       = "Cantus Firmus"
	CounterpointTrackName = "Counterpoint"

	ticksPerQuarter = 960
	velocity        = 0.8
	cantusChannel   = 0
	counterpointCh  = 1
)

var (
	ErrNoTracks        = errors.New("No tracks found in MIDI file")
	ErrNoNotes         = errors.New("No notes found in MIDI file")
	ErrUnknownDuration = errors.New("unknown note duration")
)

// export counts one second per half note at 60 bpm
var exportMeter = theory.TimeSignature{BeatsPerMeasure: 2, BeatUnit: 2}

// Ticks converts a note value to ticks at bpm
func Ticks(d theory.Duration, bpm float64) (uint32, error) {
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDuration, d)
	}
	sec := d.Beats(exportMeter.BeatUnit)
	beats := sec * bpm / 60
	return uint32(math.Round(beats * ticksPerQuarter)), nil
}

// Export writes a format 1 file: a tempo track, then one track per voice.
// A non-positive bpm uses DefaultBPM.
func Export(w io.Writer, cf, cp []theory.Note, bpm float64) error {
	if bpm <= 0 {
		bpm = DefaultBPM
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return fmt.Errorf("failed to add tempo track: %w", err)
	}

	for _, voice := range []struct {
		name    string
		channel uint8
		notes   []theory.Note
	}{
		{CantusTrackName, cantusChannel, cf},
		{CounterpointTrackName, counterpointCh, cp},
	} {
		tr, err := voiceTrack(voice.name, voice.channel, voice.notes, bpm)
		if err != nil {
			return fmt.Errorf("%s: %w", voice.name, err)
		}
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("failed to add %s track: %w", voice.name, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}

func voiceTrack(name string, channel uint8, notes []theory.Note, bpm float64) (smf.Track, error) {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	vel := uint8(math.Round(velocity * 127))
	for i, n := range notes {
		ticks, err := Ticks(n.Duration, bpm)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		key := uint8(n.Number())
		tr.Add(0, gomidi.NoteOn(channel, key, vel))
		tr.Add(ticks, gomidi.NoteOff(channel, key))
	}
	tr.Close(0)
	return tr, nil
}

// Import reads the first track that contains notes. Every note comes back as a
// whole note, since the engine only takes whole-note cantus lines.
func Import(r io.Reader) ([]theory.Note, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	if len(s.Tracks) == 0 {
		return nil, ErrNoTracks
	}

	for _, tr := range s.Tracks {
		var nums []int
		for _, ev := range tr {
			var ch, key, vel uint8
			if gomidi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
				nums = append(nums, int(key))
			}
		}
		if len(nums) > 0 {
			return theory.NotesFromNumbers(nums, theory.Whole), nil
		}
	}
	return nil, ErrNoNotes
}
