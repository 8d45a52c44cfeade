package models

import (
	"time"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerationLog records one counterpoint generation for the history endpoint
type GenerationLog struct {
	ID           uuid.UUID     `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
	RequestID    string        `gorm:"index" json:"request_id"`
	UserID       string        `gorm:"index" json:"user_id,omitempty"` // Set behind a gateway
	Species      int           `gorm:"not null;index" json:"species"`
	Above        bool          `gorm:"not null" json:"above"`
	Mode         string        `json:"mode,omitempty"`
	Finalis      string        `json:"finalis,omitempty"`
	Seed         string        `json:"seed"` // uint64 does not fit a Postgres bigint
	CantusFirmus []theory.Note `gorm:"type:jsonb;serializer:json" json:"cantus_firmus"`
	Counterpoint []theory.Note `gorm:"type:jsonb;serializer:json" json:"counterpoint"`
	Success      bool          `gorm:"not null;index" json:"success"`
	Error        string        `json:"error,omitempty"`
	Violations   int           `gorm:"not null;default:0" json:"violations"`
	DurationMS   int64         `gorm:"not null" json:"duration_ms"`
	Nodes        int           `gorm:"not null" json:"nodes"`
}

// BeforeCreate assigns an id when the caller left it empty
func (g *GenerationLog) BeforeCreate(_ *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
