package services

import (
	"context"
	"errors"

	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"gorm.io/gorm"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// ErrHistoryDisabled is returned by reads when no database is configured
var ErrHistoryDisabled = errors.New("generation history is disabled")

// HistoryService persists generations. A nil db disables it: writes become
// no-ops and reads return ErrHistoryDisabled.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Enabled reports whether a database backs the history
func (s *HistoryService) Enabled() bool {
	return s != nil && s.db != nil
}

// Ping checks the database connection
func (s *HistoryService) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return ErrHistoryDisabled
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Record stores a generation
func (s *HistoryService) Record(ctx context.Context, entry *models.GenerationLog) error {
	if !s.Enabled() {
		return nil
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// HistoryQuery filters history reads. Zero fields match everything.
type HistoryQuery struct {
	Species theory.Species
	UserID  string
	Limit   int
}

func (s *HistoryService) filter(ctx context.Context, q HistoryQuery) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.GenerationLog{})
	if q.Species != 0 {
		query = query.Where("species = ?", int(q.Species))
	}
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
	}
	return query
}

// Recent returns the latest generations, newest first
func (s *HistoryService) Recent(ctx context.Context, q HistoryQuery) ([]models.GenerationLog, error) {
	if !s.Enabled() {
		return nil, ErrHistoryDisabled
	}

	var logs []models.GenerationLog
	err := s.filter(ctx, q).Order("created_at DESC").Limit(clampLimit(q.Limit)).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// Stats aggregates the stored generations
func (s *HistoryService) Stats(ctx context.Context, q HistoryQuery) (*HistoryStats, error) {
	if !s.Enabled() {
		return nil, ErrHistoryDisabled
	}

	var stats HistoryStats
	if err := s.filter(ctx, q).Select(
		"COUNT(*) as total_generations",
		"COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) as successful",
		"COALESCE(AVG(duration_ms), 0) as avg_duration_ms",
		"COALESCE(AVG(nodes), 0) as avg_nodes",
	).Scan(&stats).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

type HistoryStats struct {
	TotalGenerations int64   `json:"total_generations"`
	Successful       int64   `json:"successful"`
	AvgDurationMS    float64 `json:"avg_duration_ms"`
	AvgNodes         float64 `json:"avg_nodes"`
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
