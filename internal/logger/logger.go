package logger

import (
	"context"
	"fmt"
	"log"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// fields promoted to Sentry tags so events can be filtered by them
var taggedFields = []string{"request_id", "species", "seed"}

// WithContext extracts request context for logging
func WithContext(c *gin.Context) Fields {
	fields := Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
	if userID, exists := c.Get("user_id"); exists {
		fields["user_id"] = userID
	}
	return fields
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s %s", msg, formatFields(fields))
	breadcrumb(sentry.LevelInfo, "info", "log", msg, fields)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s %s", msg, formatFields(fields))
	breadcrumb(sentry.LevelWarning, "warning", "log", msg, fields)
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	log.Printf("[DEBUG] %s %s", msg, formatFields(fields))
	breadcrumb(sentry.LevelDebug, "debug", "log", msg, fields)
}

// Error logs an error and captures it in Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %s", msg, err, formatFields(fields))
	withScope(fields, func(hub *sentry.Hub, _ *sentry.Scope) {
		hub.CaptureException(err)
	})
}

// LogToSentry sends a message to Sentry as an event at level
func LogToSentry(level sentry.Level, msg string, fields Fields) {
	withScope(fields, func(hub *sentry.Hub, scope *sentry.Scope) {
		scope.SetLevel(level)
		hub.CaptureMessage(msg)
	})
}

// LogAPIRequest logs a finished HTTP request
func LogAPIRequest(c *gin.Context, duration time.Duration, statusCode int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	fields["duration_ms"] = duration.Milliseconds()
	fields["status_code"] = statusCode
	fields["request_id"] = c.GetString("request_id")
	fields["method"] = c.Request.Method
	fields["path"] = c.Request.URL.Path
	fields["client_ip"] = c.ClientIP()

	log.Printf("[INFO] API request completed %s", formatFields(fields))
	breadcrumb(sentry.LevelInfo, "http", "api", "API request", fields)
}

// LogGeneration logs a finished search and records it as a span on the request
// transaction
func LogGeneration(ctx context.Context, species string, duration time.Duration, nodes int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	fields["species"] = species
	fields["duration_ms"] = duration.Milliseconds()
	fields["nodes"] = nodes

	Info("Generation completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "counterpoint.generate")
		span.Description = species
		span.SetData("nodes", nodes)
		span.Finish()
	}
}

func breadcrumb(level sentry.Level, kind, category, msg string, fields Fields) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     kind,
		Category: category,
		Message:  msg,
		Data:     toMap(fields),
		Level:    level,
	})
}

// withScope runs capture on the current hub with fields attached as contexts
// and the tagged ones as tags
func withScope(fields Fields, capture func(*sentry.Hub, *sentry.Scope)) {
	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range fields {
			scope.SetContext(key, sentry.Context{"value": value})
		}
		for _, key := range taggedFields {
			if v, ok := fields[key]; ok {
				scope.SetTag(key, fmt.Sprint(v))
			}
		}
		capture(hub, scope)
	})
}

// formatFields renders fields as {k=v, ...} in key order
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(v)
}

func toMap(fields Fields) map[string]interface{} {
	if fields == nil {
		return map[string]interface{}{}
	}
	return maps.Clone(map[string]interface{}(fields))
}
