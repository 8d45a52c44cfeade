package midi

import (
	"bytes"
	"testing"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		duration theory.Duration
		bpm      float64
		ticks    uint32
	}{
		{theory.Whole, 60, 1920},
		{theory.Half, 60, 960},
		{theory.Quarter, 120, 960},
		{theory.DottedQuarter, 60, 720},
		{theory.Sixteenth, 60, 120},
		{theory.DottedHalf, 60, 1440},
	}

	for _, tt := range tests {
		t.Run(string(tt.duration), func(t *testing.T) {
			got, err := Ticks(tt.duration, tt.bpm)
			require.NoError(t, err)
			assert.Equal(t, tt.ticks, got)
		})
	}

	_, err := Ticks("x", 60)
	assert.ErrorIs(t, err, ErrUnknownDuration)
}

func TestExportImport(t *testing.T) {
	cf := theory.NotesFromNumbers([]int{62, 65, 64, 62}, theory.Whole)
	cp := theory.NotesFromNumbers([]int{74, 72, 71, 69, 69, 67, 74, 74}, theory.Half)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, cf, cp, 90))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 3)

	notes, err := Import(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, cf, notes, "the cantus track comes back first")
}

func TestExport_RejectsUnknownDuration(t *testing.T) {
	cf := []theory.Note{{Pitch: "D4", Duration: "breve"}}
	err := Export(&bytes.Buffer{}, cf, nil, 0)
	assert.ErrorIs(t, err, ErrUnknownDuration)
}

func TestImport_Errors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, nil, 60))
	_, err := Import(&buf)
	assert.ErrorIs(t, err, ErrNoNotes)

	_, err = Import(bytes.NewReader([]byte("not a midi file")))
	assert.Error(t, err)
}
