package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Poll tasks enrich their context once and every log statement
// below them carries the repo and event identifiers without re-stating them.
type LogFields struct {
	Repo      *string // watched repo key, e.g. "golang/go"
	EventType *string // upstream event type, e.g. "PushEvent"
	EventID   *string // upstream event identifier
	Component string  // component name (OTel semantic convention style, e.g. "watcher.poller")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.Repo != nil {
		result.Repo = next.Repo
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.EventID != nil {
		result.EventID = next.EventID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Repo: logger.Ptr(key)})
func Ptr[T any](v T) *T {
	return &v
}
