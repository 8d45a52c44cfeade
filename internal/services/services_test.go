package services

import (
	"context"
	"os"
	"testing"

	"github.com/Conceptual-Machines/counterpoint-api/internal/analysis"
	"github.com/Conceptual-Machines/counterpoint-api/internal/database"
	"github.com/Conceptual-Machines/counterpoint-api/internal/metrics"
	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/species"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(n uint64) *uint64 { return &n }

func cantusInput(pitches ...string) []models.NoteInput {
	out := make([]models.NoteInput, len(pitches))
	for i, p := range pitches {
		out[i] = models.NoteInput{Pitch: p}
	}
	return out
}

func newService() *GenerationService {
	rec := metrics.NewRecorder(nil, nil, metrics.NewPrometheus(prometheus.NewRegistry()))
	return NewGenerationService(nil, 0, rec, NewHistoryService(nil))
}

func TestGenerationService_Cantus(t *testing.T) {
	svc := newService()

	resp, err := svc.Cantus(context.Background(), models.CantusRequest{Mode: "Phrygian", Finalis: "e", Measures: 10, Seed: seed(7)})
	require.NoError(t, err)
	assert.Equal(t, theory.Phrygian, resp.Mode)
	assert.Equal(t, theory.Finalis("E"), resp.Finalis)
	assert.Len(t, resp.Notes, 10)
	assert.Equal(t, uint64(7), resp.Seed)

	again, err := svc.Cantus(context.Background(), models.CantusRequest{Mode: "phrygian", Finalis: "E", Measures: 10, Seed: seed(7)})
	require.NoError(t, err)
	assert.Equal(t, resp.Notes, again.Notes, "same seed, same melody")

	_, err = svc.Cantus(context.Background(), models.CantusRequest{Mode: "locrian"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerationService_Generate(t *testing.T) {
	svc := newService()
	req := models.GenerateRequest{CantusFirmus: cantusInput("D4", "F4", "E4", "D4"), Seed: seed(42)}

	resp, err := svc.Generate(context.Background(), RequestMeta{RequestID: "req-1"}, theory.FirstSpecies, req)
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, resp.Notes, 4)
	assert.Equal(t, uint64(42), resp.Seed)
	require.NotNil(t, resp.Analysis)

	again, err := svc.Generate(context.Background(), RequestMeta{RequestID: "req-2"}, theory.FirstSpecies, req)
	require.NoError(t, err)
	assert.Equal(t, resp.Notes, again.Notes)
}

func TestGenerationService_GenerateFailures(t *testing.T) {
	svc := newService()

	resp, err := svc.Generate(context.Background(), RequestMeta{}, theory.FifthSpecies, models.GenerateRequest{CantusFirmus: cantusInput("D4", "E4")})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.ErrorIs(t, resp.Err, species.ErrNotImplemented)
	assert.Empty(t, resp.Notes)

	resp, err = svc.Generate(context.Background(), RequestMeta{}, theory.FirstSpecies, models.GenerateRequest{})
	require.NoError(t, err)
	assert.ErrorIs(t, resp.Err, species.ErrEmptyCantusFirmus)

	_, err = svc.Generate(context.Background(), RequestMeta{}, theory.FirstSpecies, models.GenerateRequest{Finalis: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerationService_Analyze(t *testing.T) {
	svc := newService()
	req := models.AnalyzeRequest{
		CantusFirmus: cantusInput("D4", "F4", "E4", "D4"),
		Counterpoint: cantusInput("A4", "C5", "B4", "D5"),
	}

	report, err := svc.Analyze(theory.FirstSpecies, req)
	require.NoError(t, err)
	assert.Len(t, report.NoteAnalyses, 4)
	assert.Positive(t, report.Violations)

	req.Rules = []rules.Config{{ID: "noSuchRule", Weight: 10}}
	_, err = svc.Analyze(theory.FirstSpecies, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerationService_AnalyzePlacement(t *testing.T) {
	svc := newService()
	req := models.AnalyzeRequest{
		CantusFirmus: cantusInput("D4", "F4", "E4", "D4"),
		Counterpoint: cantusInput(
			"D3", "E3", "F3", "G3",
			"A3", "G3", "F3", "E3",
			"C#4", "B3", "A3", "B3",
			"D4", "D4", "D4", "D4",
		),
	}
	cadence := func(r analysis.Report) analysis.RuleResult {
		for _, res := range r.NoteAnalyses[8].RuleResults {
			if res.RuleID == rules.PenultimateCadence {
				return res
			}
		}
		t.Fatal("no cadence result")
		return analysis.RuleResult{}
	}

	tests := []struct {
		name   string
		above  *bool
		passed bool
	}{
		{"defaults to above", nil, false},
		{"above", boolPtr(true), false},
		{"below", boolPtr(false), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Above = tt.above
			report, err := svc.Analyze(theory.ThirdSpecies, req)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, cadence(report).Passed)
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestHistoryService_Disabled(t *testing.T) {
	h := NewHistoryService(nil)
	ctx := context.Background()

	assert.False(t, h.Enabled())
	assert.NoError(t, h.Record(ctx, &models.GenerationLog{}))
	_, err := h.Recent(ctx, HistoryQuery{Limit: 10})
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = h.Stats(ctx, HistoryQuery{})
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	assert.ErrorIs(t, h.Ping(ctx), ErrHistoryDisabled)

	var nilService *HistoryService
	assert.False(t, nilService.Enabled())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, clampLimit(0))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, MaxHistoryLimit, clampLimit(10_000))
}

func TestHistoryService_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping history integration test")
	}

	db, err := database.Connect(url)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := NewHistoryService(db)
	require.NoError(t, h.Ping(context.Background()))

	rec := metrics.NewRecorder(nil, nil, nil)
	svc := NewGenerationService(nil, 0, rec, h)
	_, err = svc.Generate(context.Background(), RequestMeta{RequestID: "history-test", UserID: "u-1"}, theory.SecondSpecies,
		models.GenerateRequest{CantusFirmus: cantusInput("D4", "F4", "E4", "D4"), Seed: seed(3)})
	require.NoError(t, err)

	logs, err := h.Recent(context.Background(), HistoryQuery{Species: theory.SecondSpecies, UserID: "u-1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "history-test", logs[0].RequestID)
	assert.Len(t, logs[0].CantusFirmus, 4)

	stats, err := h.Stats(context.Background(), HistoryQuery{Species: theory.SecondSpecies})
	require.NoError(t, err)
	assert.Positive(t, stats.TotalGenerations)
}
