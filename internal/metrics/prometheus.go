package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "counterpoint"

// Prometheus holds the collectors exposed on /metrics
type Prometheus struct {
	gatherer prometheus.Gatherer

	// requests counts HTTP requests.
	// Labels: endpoint, status
	requests *prometheus.CounterVec

	// latency measures HTTP request latency in seconds.
	// Labels: endpoint
	latency *prometheus.HistogramVec

	// generations counts counterpoint generations.
	// Labels: species, outcome (success, exhausted, invalid)
	generations *prometheus.CounterVec

	// generationDuration measures search time in seconds.
	// Labels: species
	generationDuration *prometheus.HistogramVec

	// searchNodes tracks how many candidates a search tried.
	// Labels: species
	searchNodes *prometheus.HistogramVec

	// violations tracks soft-rule violations left in successful lines.
	// Labels: species
	violations *prometheus.HistogramVec

	// cantus counts cantus firmus generations.
	// Labels: fallback
	cantus *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg. A nil reg uses a fresh registry.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Prometheus{
		gatherer: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "engine",
			Name:      "generations_total",
			Help:      "Counterpoint generations by species and outcome",
		}, []string{"species", "outcome"}),
		generationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "engine",
			Name:      "generation_duration_seconds",
			Help:      "Counterpoint search time in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"species"}),
		searchNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "engine",
			Name:      "search_nodes",
			Help:      "Candidates tried by the backtracking search",
			Buckets:   prometheus.ExponentialBuckets(4, 4, 9),
		}, []string{"species"}),
		violations: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "engine",
			Name:      "rule_violations",
			Help:      "Soft rule violations in generated lines",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}, []string{"species"}),
		cantus: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "engine",
			Name:      "cantus_total",
			Help:      "Cantus firmus generations by whether the fallback melody was used",
		}, []string{"fallback"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// RecordAPIRequest records an HTTP request
func (p *Prometheus) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	p.requests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	p.latency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordGeneration records a counterpoint generation
func (p *Prometheus) RecordGeneration(g Generation) {
	p.generations.WithLabelValues(g.Species, g.Outcome()).Inc()
	p.generationDuration.WithLabelValues(g.Species).Observe(g.Duration.Seconds())
	p.searchNodes.WithLabelValues(g.Species).Observe(float64(g.Nodes))
	if g.Success {
		p.violations.WithLabelValues(g.Species).Observe(float64(g.Violations))
	}
}

// RecordCantus records a cantus firmus generation
func (p *Prometheus) RecordCantus(c Cantus) {
	p.cantus.WithLabelValues(strconv.FormatBool(c.Fallback)).Inc()
}
