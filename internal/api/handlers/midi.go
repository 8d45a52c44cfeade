package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/Conceptual-Machines/counterpoint-api/internal/midi"
	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/gin-gonic/gin"
)

type MIDIHandler struct {
	defaultBPM float64
}

func NewMIDIHandler(defaultBPM float64) *MIDIHandler {
	return &MIDIHandler{defaultBPM: defaultBPM}
}

// Export renders the pair as a Standard MIDI File download
func (h *MIDIHandler) Export(c *gin.Context) {
	var req models.MIDIExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bpm := req.BPM
	if bpm == 0 {
		bpm = h.defaultBPM
	}

	var buf bytes.Buffer
	cf := models.Notes(req.CantusFirmus, theory.Whole)
	cp := models.Notes(req.Counterpoint, theory.Whole)
	if err := midi.Export(&buf, cf, cp, bpm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+midiFilename+`"`)
	c.Data(http.StatusOK, midiContentType, buf.Bytes())
}

// Import reads a cantus firmus from an uploaded MIDI file (multipart field "file")
func (h *MIDIHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing MIDI file in form field \"file\""})
		return
	}
	if header.Size > maxMIDIUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "MIDI file too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	notes, err := midi.Import(io.LimitReader(f, maxMIDIUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notes": notes,
		"line":  theory.FormatLine(notes),
	})
}
