package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/Conceptual-Machines/counterpoint-api/internal/analysis"
	"github.com/Conceptual-Machines/counterpoint-api/internal/cantus"
	"github.com/Conceptual-Machines/counterpoint-api/internal/logger"
	"github.com/Conceptual-Machines/counterpoint-api/internal/metrics"
	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/random"
	"github.com/Conceptual-Machines/counterpoint-api/internal/rules"
	"github.com/Conceptual-Machines/counterpoint-api/internal/species"
	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/getsentry/sentry-go"
)

// ErrInvalidInput marks request problems the binding layer could not catch
var ErrInvalidInput = errors.New("invalid input")

// GenerationService runs the engine for the API and CLI, recording metrics and history
type GenerationService struct {
	catalog  *rules.Catalog
	maxNodes int
	recorder *metrics.Recorder
	history  *HistoryService
}

// NewGenerationService wires the engine. recorder and history may be nil.
func NewGenerationService(catalog *rules.Catalog, maxNodes int, recorder *metrics.Recorder, history *HistoryService) *GenerationService {
	if catalog == nil {
		catalog = rules.DefaultCatalog()
	}
	return &GenerationService{
		catalog:  catalog,
		maxNodes: maxNodes,
		recorder: recorder,
		history:  history,
	}
}

// GenerationResponse is a species result plus the seed that reproduces it
type GenerationResponse struct {
	species.Result
	Seed uint64 `json:"seed"`
}

// source returns a per-call random source and its seed
func source(seed *uint64) (*rand.Rand, uint64) {
	s := random.Seed()
	if seed != nil {
		s = *seed
	}
	return random.New(s), s
}

// Rules returns the default rules for a species under the loaded catalog
func (s *GenerationService) Rules(sp theory.Species) []rules.Config {
	return s.catalog.Rules(sp)
}

// Cantus generates a cantus firmus
func (s *GenerationService) Cantus(ctx context.Context, req models.CantusRequest) (models.CantusResponse, error) {
	cfg := cantus.Config{Measures: req.Measures, Mode: cantus.DefaultMode, Finalis: cantus.DefaultFinalis}
	if req.Mode != "" {
		mode, err := theory.ParseMode(req.Mode)
		if err != nil {
			return models.CantusResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		cfg.Mode = mode
	}
	if req.Finalis != "" {
		finalis, err := theory.ParseFinalis(req.Finalis)
		if err != nil {
			return models.CantusResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		cfg.Finalis = finalis
	}

	rng, seed := source(req.Seed)
	start := time.Now()
	out := cantus.New(rng).Generate(cfg)
	duration := time.Since(start)

	s.recorder.RecordCantus(ctx, metrics.Cantus{
		Measures: len(out.Notes),
		Attempts: out.Attempts,
		Fallback: out.Fallback,
		Duration: duration,
	})
	fields := logger.Fields{
		"mode":     cfg.Mode,
		"finalis":  cfg.Finalis,
		"measures": len(out.Notes),
		"attempts": out.Attempts,
		"seed":     seed,
	}
	if out.Fallback {
		logger.Warn("Cantus firmus fell back to the fixed skeleton", fields)
	} else {
		logger.Debug("Cantus firmus generated", fields)
	}

	return models.CantusResponse{
		Notes:    out.Notes,
		Mode:     cfg.Mode,
		Finalis:  cfg.Finalis,
		Fallback: out.Fallback,
		Attempts: out.Attempts,
		Seed:     seed,
	}, nil
}

// RequestMeta identifies the caller of a generation
type RequestMeta struct {
	RequestID string
	UserID    string
}

// Generate runs one species. Engine failures are reported in the result, not
// as an error; the error is reserved for malformed mode or finalis values.
func (s *GenerationService) Generate(ctx context.Context, meta RequestMeta, sp theory.Species, req models.GenerateRequest) (GenerationResponse, error) {
	sreq := species.Request{
		CantusFirmus: models.Notes(req.CantusFirmus, theory.Whole),
		Above:        req.IsAbove(),
		Rules:        req.Rules,
	}
	if req.Mode != "" {
		mode, err := theory.ParseMode(req.Mode)
		if err != nil {
			return GenerationResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		sreq.Mode = mode
	}
	if req.Finalis != "" {
		finalis, err := theory.ParseFinalis(req.Finalis)
		if err != nil {
			return GenerationResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		sreq.Finalis = finalis
	}

	rng, seed := source(req.Seed)
	gen := species.New(rng, species.Options{MaxNodes: s.maxNodes, Catalog: s.catalog})

	start := time.Now()
	res := gen.Generate(sp, sreq)
	duration := time.Since(start)

	violations := 0
	if res.Analysis != nil {
		violations = res.Analysis.Violations
	}

	s.recorder.RecordGeneration(ctx, metrics.Generation{
		Species:    sp.Name(),
		Duration:   duration,
		Nodes:      res.Nodes,
		Violations: violations,
		Success:    res.Success,
		InputError: species.IsInputError(res.Err),
	})

	fields := logger.Fields{
		"request_id": meta.RequestID,
		"user_id":    meta.UserID,
		"above":      sreq.Above,
		"cf_length":  len(sreq.CantusFirmus),
		"success":    res.Success,
		"violations": violations,
		"seed":       seed,
	}
	if len(res.Warnings) > 0 {
		fields["warnings"] = res.Warnings
	}
	if res.Err != nil {
		fields["error"] = res.Message
	}
	logger.LogGeneration(ctx, sp.Name(), duration, res.Nodes, fields)
	if !res.Success && !species.IsInputError(res.Err) {
		logger.LogToSentry(sentry.LevelWarning, "Counterpoint search exhausted", fields)
	}

	entry := &models.GenerationLog{
		RequestID:    meta.RequestID,
		UserID:       meta.UserID,
		Species:      int(sp),
		Above:        sreq.Above,
		Mode:         string(sreq.Mode),
		Finalis:      string(sreq.Finalis),
		Seed:         strconv.FormatUint(seed, 10),
		CantusFirmus: sreq.CantusFirmus,
		Counterpoint: res.Notes,
		Success:      res.Success,
		Error:        res.Message,
		Violations:   violations,
		DurationMS:   duration.Milliseconds(),
		Nodes:        res.Nodes,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		logger.Error("Failed to record generation history", err, logger.Fields{"request_id": meta.RequestID})
	}

	return GenerationResponse{Result: res, Seed: seed}, nil
}

// Analyze reports rule results for a caller-supplied pair
func (s *GenerationService) Analyze(sp theory.Species, req models.AnalyzeRequest) (analysis.Report, error) {
	if err := rules.Validate(req.Rules); err != nil {
		return analysis.Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	w := rules.NewWeights(s.catalog.Rules(sp), req.Rules)
	cf := models.Notes(req.CantusFirmus, theory.Whole)
	cp := models.Notes(req.Counterpoint, sp.Duration())
	return analysis.AnalyzeWeights(sp, cf, cp, w, req.IsAbove())
}
