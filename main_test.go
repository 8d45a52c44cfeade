package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSensitiveHeaders(t *testing.T) {
	got := filterSensitiveHeaders(map[string]string{
		"authorization": "Bearer abc",
		"x-user-email":  "a@example.com",
		"content-type":  "application/json",
	})
	assert.Equal(t, map[string]string{
		"authorization": "[REDACTED]",
		"x-user-email":  "[REDACTED]",
		"content-type":  "application/json",
	}, got)
}
