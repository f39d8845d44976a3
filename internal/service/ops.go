package service

import (
	"context"
	"log/slog"

	"github.com/ludvigisaksen/PA-AI/internal/chat"
)

// opsLog mirrors flow failures into the operational log channel. Posting is
// best-effort: a failure here is only logged.
type opsLog struct {
	chat      chat.Client
	channelID string
}

func (o opsLog) report(ctx context.Context, flow string, err error) {
	slog.ErrorContext(ctx, "flow failed", "flow", flow, "error", err)
	if o.chat == nil || o.channelID == "" {
		return
	}
	if _, sendErr := o.chat.Send(ctx, o.channelID, renderOpsLog(flow, err)); sendErr != nil {
		slog.WarnContext(ctx, "posting to ops log channel failed", "error", sendErr)
	}
}
