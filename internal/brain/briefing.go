package brain

import (
	"context"
	"log/slog"
	"time"

	"github.com/ludvigisaksen/PA-AI/common/llm"
	"github.com/ludvigisaksen/PA-AI/common/logger"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
	"github.com/ludvigisaksen/PA-AI/internal/normalize"
)

const briefingTemperature = 0.3

var briefingSchema = llm.GenerateSchema[domain.Briefing]()

// BriefingGenerator produces the daily digest for a task list. Like the
// summarizer it never fails; without a usable LLM answer it ranks the tasks
// itself.
type BriefingGenerator interface {
	Generate(ctx context.Context, tasks []domain.Task) domain.Briefing
}

type briefingGenerator struct {
	llm       llm.Client
	maxTokens int
	now       func() time.Time
}

func NewBriefingGenerator(client llm.Client, maxTokens int) BriefingGenerator {
	return &briefingGenerator{llm: client, maxTokens: maxTokens, now: time.Now}
}

func (g *briefingGenerator) Generate(ctx context.Context, tasks []domain.Task) domain.Briefing {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pa.brain.briefing"})
	now := g.now()

	if g.llm == nil {
		slog.WarnContext(ctx, "briefing generator has no llm client, using fallback")
		return normalize.FallbackBriefing(tasks, now)
	}

	prompt, err := briefingUserPrompt(tasks, now)
	if err != nil {
		slog.ErrorContext(ctx, "building briefing prompt failed", "error", err)
		return normalize.FallbackBriefing(tasks, now)
	}

	resp, err := g.llm.Complete(ctx, llm.Request{
		SystemPrompt: briefingSystemPrompt,
		UserPrompt:   prompt,
		SchemaName:   "daily_briefing",
		Schema:       briefingSchema,
		MaxTokens:    g.maxTokens,
		Temperature:  llm.Temp(briefingTemperature),
	})
	if err != nil {
		slog.ErrorContext(ctx, "briefing call failed, using fallback",
			"error", err,
			"status", llm.StatusCode(err))
		return normalize.FallbackBriefing(tasks, now)
	}

	briefing, err := normalize.Briefing(resp.Content)
	if err != nil {
		slog.ErrorContext(ctx, "briefing output unusable, using fallback",
			"error", err,
			"raw", logger.Truncate(resp.Content, 500))
		return normalize.FallbackBriefing(tasks, now)
	}

	slog.InfoContext(ctx, "briefing produced",
		"input_tasks", len(tasks),
		"listed_tasks", len(briefing.ActionableList.Tasks))
	return briefing
}
