package handlers

const (
	// MIDI upload and download
	maxMIDIUploadBytes = 1 << 20 // Standard MIDI files for a cantus are a few KB
	midiContentType    = "audio/midi"
	midiFilename       = "counterpoint.mid"

	// History paging
	maxHistoryPageSize = 200
)
