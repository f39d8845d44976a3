package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so the chat message that started a flow
// (channel, message, author) shows up in every log line the flow writes.
type LogFields struct {
	ChannelID *string // Chat channel the triggering message arrived in
	MessageID *string // Chat message ID that triggered this flow
	AuthorID  *string // Author of the triggering message
	Flow      *string // Flow name (e.g., "summarize", "keep", "task_update", "daily_briefing")
	Component string  // Component name (OTel semantic convention style, e.g., "pa.service.lifecycle")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
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

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ChannelID != nil {
		result.ChannelID = new.ChannelID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.AuthorID != nil {
		result.AuthorID = new.AuthorID
	}
	if new.Flow != nil {
		result.Flow = new.Flow
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Flow: logger.Ptr("keep")})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like raw LLM output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
