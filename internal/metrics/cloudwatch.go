package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/Conceptual-Machines/counterpoint-api/internal/logger"
)

const (
	namespace      = "Counterpoint/API"
	publishTimeout = 5 * time.Second
)

// putter is the part of the CloudWatch API the client uses
type putter interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, opts ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client publishes engine metrics to CloudWatch. A client without an API
// handle drops everything.
type Client struct {
	api         putter
	environment string
}

// NewClient returns a client publishing from production only. Outside
// production, or when no AWS config loads, the client is disabled.
func NewClient(ctx context.Context, environment string) (*Client, error) {
	if environment != "production" {
		logger.Info("CloudWatch metrics disabled", logger.Fields{"environment": environment})
		return &Client{environment: environment}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Warn("CloudWatch metrics disabled: no AWS config", logger.Fields{"error": err.Error()})
		return &Client{environment: environment}, nil
	}

	logger.Info("CloudWatch metrics enabled", logger.Fields{"namespace": namespace})
	return &Client{api: cloudwatch.NewFromConfig(cfg), environment: environment}, nil
}

func (m *Client) enabled() bool {
	return m != nil && m.api != nil
}

// RecordAPIRequest counts a request, or an error on 5xx, and its latency
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled() {
		return
	}
	dims := m.dimensions("Endpoint", endpoint)
	name := "APIRequests"
	if statusCode >= http.StatusInternalServerError {
		name = "APIErrors"
	}
	m.publish(
		datum(name, 1, types.StandardUnitCount, dims),
		datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims),
	)
}

// RecordGeneration publishes a search's duration and node count, plus a
// failure count when no line was found
func (m *Client) RecordGeneration(g Generation) {
	if !m.enabled() {
		return
	}
	dims := m.dimensions("Species", g.Species, "Outcome", g.Outcome())
	data := []types.MetricDatum{
		datum("GenerationDuration", float64(g.Duration.Milliseconds()), types.StandardUnitMilliseconds, dims),
		datum("SearchNodes", float64(g.Nodes), types.StandardUnitCount, dims),
	}
	if !g.Success {
		data = append(data, datum("GenerationFailures", 1, types.StandardUnitCount, dims))
	}
	m.publish(data...)
}

// RecordCantus publishes how many attempts a cantus firmus took and counts
// runs that ended on the fallback melody
func (m *Client) RecordCantus(c Cantus) {
	if !m.enabled() {
		return
	}
	dims := m.dimensions("Fallback", strconv.FormatBool(c.Fallback))
	data := []types.MetricDatum{
		datum("CantusAttempts", float64(c.Attempts), types.StandardUnitCount, dims),
	}
	if c.Fallback {
		data = append(data, datum("CantusFallbacks", 1, types.StandardUnitCount, dims))
	}
	m.publish(data...)
}

// publish sends data in one call without blocking the caller
func (m *Client) publish(data ...types.MetricDatum) {
	go func() {
		if err := m.put(data); err != nil {
			logger.Warn("CloudWatch publish failed", logger.Fields{
				"metric": aws.ToString(data[0].MetricName),
				"count":  len(data),
				"error":  err.Error(),
			})
		}
	}()
}

func (m *Client) put(data []types.MetricDatum) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	_, err := m.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	return err
}

// dimensions builds name/value pairs from kv and appends the environment
func (m *Client) dimensions(kv ...string) []types.Dimension {
	out := make([]types.Dimension, 0, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, types.Dimension{Name: aws.String(kv[i]), Value: aws.String(kv[i+1])})
	}
	return append(out, types.Dimension{Name: aws.String("Environment"), Value: aws.String(m.environment)})
}

func datum(name string, value float64, unit types.StandardUnit, dims []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dims,
	}
}
