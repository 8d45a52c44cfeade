package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	calls chan *cloudwatch.PutMetricDataInput
}

func newFakePutter() *fakePutter {
	return &fakePutter{calls: make(chan *cloudwatch.PutMetricDataInput, 4)}
}

func (f *fakePutter) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.calls <- in
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func (f *fakePutter) next(t *testing.T) *cloudwatch.PutMetricDataInput {
	t.Helper()
	select {
	case in := <-f.calls:
		return in
	case <-time.After(2 * time.Second):
		t.Fatal("no PutMetricData call")
		return nil
	}
}

func names(in *cloudwatch.PutMetricDataInput) []string {
	out := make([]string, len(in.MetricData))
	for i, d := range in.MetricData {
		out[i] = aws.ToString(d.MetricName)
	}
	return out
}

func dimension(d types.MetricDatum, name string) string {
	for _, dim := range d.Dimensions {
		if aws.ToString(dim.Name) == name {
			return aws.ToString(dim.Value)
		}
	}
	return ""
}

func TestClient_Publishes(t *testing.T) {
	tests := []struct {
		name   string
		record func(*Client)
		want   []string
		dims   map[string]string
	}{
		{
			name:   "api request",
			record: func(c *Client) { c.RecordAPIRequest("/api/v1/generate", http.StatusOK, 3*time.Millisecond) },
			want:   []string{"APIRequests", "APILatency"},
			dims:   map[string]string{"Endpoint": "/api/v1/generate", "Environment": "production"},
		},
		{
			name:   "api error",
			record: func(c *Client) { c.RecordAPIRequest("/api/v1/generate", http.StatusServiceUnavailable, 0) },
			want:   []string{"APIErrors", "APILatency"},
		},
		{
			name:   "generation success",
			record: func(c *Client) { c.RecordGeneration(Generation{Species: "2nd species", Nodes: 40, Success: true}) },
			want:   []string{"GenerationDuration", "SearchNodes"},
			dims:   map[string]string{"Species": "2nd species", "Outcome": OutcomeSuccess},
		},
		{
			name:   "generation exhausted",
			record: func(c *Client) { c.RecordGeneration(Generation{Species: "4th species", Nodes: 900}) },
			want:   []string{"GenerationDuration", "SearchNodes", "GenerationFailures"},
			dims:   map[string]string{"Outcome": OutcomeExhausted},
		},
		{
			name:   "cantus",
			record: func(c *Client) { c.RecordCantus(Cantus{Attempts: 3}) },
			want:   []string{"CantusAttempts"},
			dims:   map[string]string{"Fallback": "false"},
		},
		{
			name:   "cantus fallback",
			record: func(c *Client) { c.RecordCantus(Cantus{Attempts: 50, Fallback: true}) },
			want:   []string{"CantusAttempts", "CantusFallbacks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakePutter()
			c := &Client{api: fake, environment: "production"}
			tt.record(c)

			in := fake.next(t)
			assert.Equal(t, namespace, aws.ToString(in.Namespace))
			assert.Equal(t, tt.want, names(in))
			for name, value := range tt.dims {
				assert.Equal(t, value, dimension(in.MetricData[0], name), name)
			}
		})
	}
}

func TestClient_Disabled(t *testing.T) {
	c, err := NewClient(context.Background(), "development")
	require.NoError(t, err)
	assert.False(t, c.enabled())

	var none *Client
	assert.NotPanics(t, func() {
		c.RecordAPIRequest("/health", http.StatusOK, time.Millisecond)
		none.RecordGeneration(Generation{})
		none.RecordCantus(Cantus{Fallback: true})
	})
}
