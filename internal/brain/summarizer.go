package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ludvigisaksen/PA-AI/common/llm"
	"github.com/ludvigisaksen/PA-AI/common/logger"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
	"github.com/ludvigisaksen/PA-AI/internal/normalize"
)

const (
	ReasonNotConfigured = "Summarizer not configured (missing OPENAI_API_KEY) - no tasks created."
	ReasonNoLogs        = "No log content to summarize - no tasks created."
	ReasonCallFailed    = "Error calling OpenAI - no tasks created."
	ReasonEmptyContent  = "Model returned empty content - no tasks created."
	ReasonNotJSON       = "Model returned non-JSON content - no tasks created."
	ReasonNotObject     = "Model output was not an object - no tasks created."
)

const summarizerTemperature = 0.1

var canonicalEventSchema = llm.GenerateSchema[domain.CanonicalEvent]()

// Summarizer turns a block of raw chat logs into a canonical event.
// Summarize never fails: every upstream problem becomes a fallback event
// whose content explains what went wrong.
type Summarizer interface {
	Summarize(ctx context.Context, rawLogs string) domain.CanonicalEvent
}

type summarizer struct {
	llm       llm.Client
	maxTokens int
	now       func() time.Time
}

// NewSummarizer builds a summarizer. A nil client is allowed and yields the
// "not configured" fallback on every call.
func NewSummarizer(client llm.Client, maxTokens int) Summarizer {
	return &summarizer{llm: client, maxTokens: maxTokens, now: time.Now}
}

func (s *summarizer) Summarize(ctx context.Context, rawLogs string) domain.CanonicalEvent {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pa.brain.summarizer"})
	now := s.now()

	if strings.TrimSpace(rawLogs) == "" {
		slog.WarnContext(ctx, "summarizer called with empty logs")
		return normalize.FallbackEvent(ReasonNoLogs, now)
	}
	if s.llm == nil {
		slog.ErrorContext(ctx, "summarizer missing OPENAI_API_KEY, returning fallback event")
		return normalize.FallbackEvent(ReasonNotConfigured, now)
	}

	start := time.Now()
	resp, err := s.llm.Complete(ctx, llm.Request{
		SystemPrompt: summarizerSystemPrompt,
		UserPrompt:   summarizerUserPrompt(rawLogs, now),
		SchemaName:   "canonical_event",
		Schema:       canonicalEventSchema,
		MaxTokens:    s.maxTokens,
		Temperature:  llm.Temp(summarizerTemperature),
	})
	if err != nil {
		reason := failureReason(err)
		slog.ErrorContext(ctx, "summarizer call failed",
			"error", err,
			"status", llm.StatusCode(err),
			"duration_ms", time.Since(start).Milliseconds())
		return normalize.FallbackEvent(reason, now)
	}

	event, err := normalize.CanonicalEvent(resp.Content, ReasonNotJSON, now)
	if err != nil {
		if errors.Is(err, normalize.ErrNotObject) {
			event = normalize.FallbackEvent(ReasonNotObject, now)
		}
		slog.ErrorContext(ctx, "summarizer output unusable",
			"error", err,
			"raw", logger.Truncate(resp.Content, 500))
		return event
	}

	slog.InfoContext(ctx, "summary produced",
		"tasks", len(event.Tasks),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds())
	return event
}

func failureReason(err error) string {
	if errors.Is(err, llm.ErrEmptyResponse) {
		return ReasonEmptyContent
	}
	if status := llm.StatusCode(err); status != 0 {
		return fmt.Sprintf("OpenAI error %d - no tasks created.", status)
	}
	return ReasonCallFailed
}
