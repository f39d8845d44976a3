package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ludvigisaksen/PA-AI/common/logger"
	"github.com/ludvigisaksen/PA-AI/internal/batch"
	"github.com/ludvigisaksen/PA-AI/internal/brain"
	"github.com/ludvigisaksen/PA-AI/internal/chat"
	"github.com/ludvigisaksen/PA-AI/internal/stateapi"
)

const flowDailyBriefing = "daily_briefing"

// ErrBriefingDisabled is returned when the bridge runs without a chat client.
var ErrBriefingDisabled = errors.New("daily briefing disabled: chat is not configured")

type BriefingRunner interface {
	Run(ctx context.Context) error
}

type briefingRunner struct {
	chat      chat.Client
	generator brain.BriefingGenerator
	state     stateapi.Client
	batches   *batch.Store
	channels  Channels
	ops       opsLog
	now       func() time.Time
}

// NewBriefingRunner wires the daily briefing. client may be nil, in which
// case Run always fails with ErrBriefingDisabled.
func NewBriefingRunner(client chat.Client, generator brain.BriefingGenerator, state stateapi.Client, batches *batch.Store, channels Channels) BriefingRunner {
	return &briefingRunner{
		chat:      client,
		generator: generator,
		state:     state,
		batches:   batches,
		channels:  channels,
		ops:       opsLog{chat: client, channelID: channels.Log},
		now:       time.Now,
	}
}

// Run fetches tasks, generates the briefing, posts it and caches the listed
// tasks for later update commands.
func (r *briefingRunner) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Flow:      logger.Ptr(flowDailyBriefing),
		Component: "pa.service.briefing",
	})
	span := logger.StartSpan(ctx, "briefing.run")
	defer span.End()
	ctx = span.Context()

	if r.chat == nil {
		return ErrBriefingDisabled
	}

	err := r.run(ctx)
	if err != nil {
		span.RecordError(err)
		r.ops.report(ctx, flowDailyBriefing, err)
	}
	return err
}

func (r *briefingRunner) run(ctx context.Context) error {
	tasks, err := r.state.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetching tasks: %w", err)
	}

	briefing := r.generator.Generate(ctx, tasks)

	if _, err := r.chat.Send(ctx, r.channels.Broadcast, briefing.DailyMessage); err != nil {
		return fmt.Errorf("posting daily message: %w", err)
	}
	messageID, err := r.chat.Send(ctx, r.channels.Inbox, briefing.ActionableList.Message)
	if err != nil {
		return fmt.Errorf("posting actionable list: %w", err)
	}

	listed := batch.ListedTasks{
		Tasks:    briefing.ActionableList.Tasks,
		PostedAt: r.now(),
	}
	if messageID != "" {
		listed.MessageID = &messageID
	}
	r.batches.ReplaceListed(listed)

	slog.InfoContext(ctx, "daily briefing posted",
		"tasks", len(tasks),
		"listed", len(listed.Tasks),
		"message_id", messageID)
	return nil
}
