package metrics

import (
	"context"
	"time"
)

// Generation outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeInvalid   = "invalid"
)

// Generation describes one counterpoint generation for the sinks
type Generation struct {
	Species    string
	Duration   time.Duration
	Nodes      int
	Violations int
	Success    bool
	// InputError marks a request rejected before any search ran
	InputError bool
}

// Outcome labels the generation for metrics
func (g Generation) Outcome() string {
	switch {
	case g.Success:
		return OutcomeSuccess
	case g.InputError:
		return OutcomeInvalid
	default:
		return OutcomeExhausted
	}
}

// Cantus describes one cantus firmus generation
type Cantus struct {
	Measures int
	Attempts int
	Fallback bool
	Duration time.Duration
}

// Recorder fans each measurement out to Sentry, CloudWatch and Prometheus.
// Any sink may be nil.
type Recorder struct {
	Sentry     *SentryMetrics
	CloudWatch *Client
	Prometheus *Prometheus
}

// NewRecorder creates a recorder over the given sinks
func NewRecorder(s *SentryMetrics, cw *Client, p *Prometheus) *Recorder {
	return &Recorder{Sentry: s, CloudWatch: cw, Prometheus: p}
}

// RecordAPIRequest records an HTTP request in every sink
func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	if r.Sentry != nil {
		r.Sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
	if r.CloudWatch != nil {
		r.CloudWatch.RecordAPIRequest(endpoint, statusCode, duration)
	}
	if r.Prometheus != nil {
		r.Prometheus.RecordAPIRequest(endpoint, statusCode, duration)
	}
}

// RecordGeneration records a counterpoint generation in every sink
func (r *Recorder) RecordGeneration(ctx context.Context, g Generation) {
	if r == nil {
		return
	}
	if r.Sentry != nil {
		r.Sentry.RecordGeneration(ctx, g)
	}
	if r.CloudWatch != nil {
		r.CloudWatch.RecordGeneration(g)
	}
	if r.Prometheus != nil {
		r.Prometheus.RecordGeneration(g)
	}
}

// RecordCantus records a cantus firmus generation in every sink
func (r *Recorder) RecordCantus(ctx context.Context, c Cantus) {
	if r == nil {
		return
	}
	if r.Sentry != nil {
		r.Sentry.RecordCantus(ctx, c)
	}
	if r.CloudWatch != nil {
		r.CloudWatch.RecordCantus(c)
	}
	if r.Prometheus != nil {
		r.Prometheus.RecordCantus(c)
	}
}
