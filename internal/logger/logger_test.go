package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFields(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{"empty", nil, ""},
		{"string", Fields{"species": "1st species"}, "{species=1st species}"},
		{"int", Fields{"nodes": 42}, "{nodes=42}"},
		{"float", Fields{"bpm": 60.0}, "{bpm=60.00}"},
		{"sorted", Fields{"species": "3rd species", "nodes": 7, "above": true}, "{above=true, nodes=7, species=3rd species}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFields(tt.fields))
		})
	}
}

func TestToMap(t *testing.T) {
	fields := Fields{"a": 1}
	m := toMap(fields)
	assert.Equal(t, map[string]interface{}{"a": 1}, m)

	m["b"] = 2
	assert.NotContains(t, fields, "b", "breadcrumb data is a copy")
	assert.Empty(t, toMap(nil))
}

func TestLoggingWithoutSentryClient(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("search started", Fields{"species": "2nd species"})
		Warn("cadence relaxed", nil)
		Debug("candidates", Fields{"count": 3})
		Error("history write failed", assert.AnError, Fields{"request_id": "r1", "seed": uint64(7)})
	})
}
