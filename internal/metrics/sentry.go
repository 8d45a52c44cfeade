package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	// Create a span for API request tracking using the request context
	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	// Set span tags
	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	// Set span data
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	// Set span status based on response
	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration records one counterpoint search on the request transaction
func (m *SentryMetrics) RecordGeneration(ctx context.Context, g Generation) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("counterpoint.species", g.Species)
		transaction.SetData("counterpoint.nodes", g.Nodes)
	}

	span := sentry.StartSpan(ctx, "counterpoint.generate")
	defer span.Finish()

	span.SetTag("species", g.Species)
	span.SetTag("outcome", g.Outcome())
	span.SetData("duration_ms", g.Duration.Milliseconds())
	span.SetData("nodes", g.Nodes)
	span.SetData("violations", g.Violations)

	if g.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusAborted
	}

	span.Description = fmt.Sprintf("Generation: %s", g.Species)
}

// RecordCantus records a cantus firmus generation
func (m *SentryMetrics) RecordCantus(ctx context.Context, c Cantus) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "cantus.generate")
	defer span.Finish()

	span.SetTag("fallback", fmt.Sprintf("%t", c.Fallback))
	span.SetData("attempts", c.Attempts)
	span.SetData("measures", c.Measures)
	span.SetData("duration_ms", c.Duration.Milliseconds())
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Cantus firmus: %d measures", c.Measures)
}
