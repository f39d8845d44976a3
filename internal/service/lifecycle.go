package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/ludvigisaksen/PA-AI/common/logger"
	"github.com/ludvigisaksen/PA-AI/internal/batch"
	"github.com/ludvigisaksen/PA-AI/internal/brain"
	"github.com/ludvigisaksen/PA-AI/internal/chat"
	"github.com/ludvigisaksen/PA-AI/internal/command"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
	"github.com/ludvigisaksen/PA-AI/internal/stateapi"
)

const (
	flowSummarize  = "summarize"
	flowKeep       = "keep"
	flowTaskUpdate = "task_update"
)

// Channels are the chat channels the flows read from and post to.
type Channels struct {
	Input     string
	Inbox     string
	Broadcast string
	Log       string
}

type LifecycleConfig struct {
	Chat             chat.Client
	Summarizer       brain.Summarizer
	State            stateapi.Client
	Batches          *batch.Store
	Channels         Channels
	AuthorizedUserID string
	TriggerPhrases   []string
	Lookback         int
}

// Lifecycle drives a summary from trigger to persisted tasks, and applies
// update commands to the last posted task list.
type Lifecycle struct {
	chat       chat.Client
	summarizer brain.Summarizer
	state      stateapi.Client
	batches    *batch.Store
	triggers   *TriggerDetector
	extractor  *LogExtractor
	channels   Channels
	authorID   string
	ops        opsLog
}

func NewLifecycle(cfg LifecycleConfig) *Lifecycle {
	triggers := NewTriggerDetector(cfg.TriggerPhrases, cfg.Channels.Input, cfg.AuthorizedUserID)
	return &Lifecycle{
		chat:       cfg.Chat,
		summarizer: cfg.Summarizer,
		state:      cfg.State,
		batches:    cfg.Batches,
		triggers:   triggers,
		extractor:  NewLogExtractor(cfg.Chat, triggers, cfg.AuthorizedUserID, cfg.Lookback),
		channels:   cfg.Channels,
		authorID:   cfg.AuthorizedUserID,
		ops:        opsLog{chat: cfg.Chat, channelID: cfg.Channels.Log},
	}
}

// HandleMessage routes one inbound message. It never panics and never
// returns an error: failures are logged and answered in chat.
func (l *Lifecycle) HandleMessage(ctx context.Context, msg chat.Message) {
	if msg.AuthorIsBot || msg.AuthorID != l.authorID {
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ChannelID: logger.Ptr(msg.ChannelID),
		MessageID: logger.Ptr(msg.ID),
		AuthorID:  logger.Ptr(msg.AuthorID),
		Component: "pa.service.lifecycle",
	})
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic while handling message", "panic", r, "stack", string(debug.Stack()))
			l.reply(ctx, msg.ChannelID, ReplyUnexpectedFailure)
		}
	}()

	switch {
	case l.triggers.IsTrigger(msg):
		l.summarize(ctx, msg)
	case msg.ChannelID == l.channels.Inbox:
		l.handleCommand(ctx, msg)
	}
}

func (l *Lifecycle) summarize(ctx context.Context, trigger chat.Message) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Flow: logger.Ptr(flowSummarize)})
	span := logger.StartSpan(ctx, "lifecycle.summarize")
	defer span.End()
	ctx = span.Context()

	logs, found, err := l.extractor.Extract(ctx, trigger)
	if err != nil {
		span.RecordError(err)
		l.ops.report(ctx, flowSummarize, err)
		l.reply(ctx, trigger.ChannelID, ReplyHistoryFailed)
		return
	}
	if !found {
		slog.InfoContext(ctx, "no log block found before trigger")
		l.reply(ctx, trigger.ChannelID, ReplyNoLogBlock)
		return
	}

	event := l.summarizer.Summarize(ctx, logs)
	l.reply(ctx, trigger.ChannelID, renderSummary(event))

	if len(event.Tasks) == 0 {
		l.batches.ResetPending()
		l.reply(ctx, l.channels.Inbox, ReplyNoActionableTasks)
		return
	}

	ref := batchSourceRef(event, trigger)
	meta := event.Meta
	gen := l.batches.ReplacePending(batch.PendingBatch{
		Tasks:     event.Tasks,
		SourceRef: &ref,
		Meta:      &meta,
	})
	slog.InfoContext(ctx, "tasks proposed",
		"count", len(event.Tasks),
		"source_ref", ref,
		"generation", gen)

	l.reply(ctx, l.channels.Inbox, renderProposal(event.Tasks))
}

func (l *Lifecycle) handleCommand(ctx context.Context, msg chat.Message) {
	cmd := command.Parse(msg.Content)
	switch {
	case cmd.IsKeep():
		l.keep(ctx, msg, cmd)
	case cmd.IsTaskUpdate():
		l.updateTasks(ctx, msg, cmd)
	}
}

func (l *Lifecycle) keep(ctx context.Context, msg chat.Message, cmd command.Command) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Flow: logger.Ptr(flowKeep)})
	span := logger.StartSpan(ctx, "lifecycle.keep")
	defer span.End()
	ctx = span.Context()

	pending, gen := l.batches.Pending()
	if pending.IsEmpty() {
		l.reply(ctx, msg.ChannelID, ReplyNoPendingBatch)
		return
	}

	selected := pending.Select(cmd)
	if len(selected) == 0 {
		slog.InfoContext(ctx, "keep command selected nothing", "indices", cmd.Indices, "pending", len(pending.Tasks))
		l.reply(ctx, msg.ChannelID, ReplyNoValidNumbers)
		return
	}

	tasks := make([]domain.Task, 0, len(selected))
	for _, p := range selected {
		t := p.Task()
		if t.SourceRef == nil {
			t.SourceRef = pending.SourceRef
		}
		tasks = append(tasks, t)
	}

	saved, err := l.state.UpsertTasks(ctx, tasks)
	if err != nil {
		span.RecordError(err)
		l.ops.report(ctx, flowKeep, fmt.Errorf("saving %d task(s): %w", len(tasks), err))
		l.reply(ctx, msg.ChannelID, ReplySaveFailed)
		return
	}

	if !l.batches.ClearPending(gen) {
		slog.InfoContext(ctx, "newer batch proposed while saving, leaving it pending", "generation", gen)
	}
	slog.InfoContext(ctx, "tasks saved", "selected", len(tasks), "saved", len(saved))
	l.reply(ctx, msg.ChannelID, renderSaved(saved))
}

func (l *Lifecycle) updateTasks(ctx context.Context, msg chat.Message, cmd command.Command) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Flow: logger.Ptr(flowTaskUpdate)})
	span := logger.StartSpan(ctx, "lifecycle.update_tasks")
	defer span.End()
	ctx = span.Context()

	listed := l.batches.Listed()
	if listed.IsEmpty() {
		l.reply(ctx, msg.ChannelID, ReplyNoCachedList)
		return
	}

	positions := listed.Positions(cmd.Indices)
	selected := listed.Resolve(positions)
	if len(selected) == 0 {
		l.reply(ctx, msg.ChannelID, ReplyNoMatchingNumbers)
		return
	}

	updates := make([]domain.Task, 0, len(selected))
	for _, lt := range selected {
		t := lt.Task
		switch cmd.Kind {
		case command.KindStatusChange:
			t.Status = cmd.TargetStatus()
		case command.KindProjectTag:
			project := cmd.Project
			t.ProjectHint = &project
		}
		updates = append(updates, t)
	}

	saved, err := l.state.UpsertTasks(ctx, updates)
	if err != nil {
		span.RecordError(err)
		l.ops.report(ctx, flowTaskUpdate, fmt.Errorf("updating %d task(s): %w", len(updates), err))
		l.reply(ctx, msg.ChannelID, ReplyUpdateFailed)
		return
	}

	merged := l.batches.MergeListed(saved)
	slog.InfoContext(ctx, "tasks updated",
		"command", cmd.Kind.String(),
		"requested", len(updates),
		"merged", merged)
	l.reply(ctx, msg.ChannelID, cmd.Confirmation(positions))
}

func (l *Lifecycle) reply(ctx context.Context, channelID, content string) {
	if _, err := l.chat.Send(ctx, channelID, content); err != nil {
		slog.ErrorContext(ctx, "sending chat message failed", "channel", channelID, "error", err)
	}
}
