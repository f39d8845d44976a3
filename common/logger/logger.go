package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/ludvigisaksen/PA-AI/core/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// Setup installs the process-wide slog handler.
//
//   - production with a collector: records go to the OTel log pipeline
//   - production without one: JSON on stdout
//   - anything else: text on stdout
//
// LOG_LEVEL overrides the default level (debug in development, info
// elsewhere).
func Setup(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: level(cfg)}

	var handler slog.Handler
	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		handler = otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case cfg.IsProduction():
		handler = NewTraceHandler(slog.NewJSONHandler(os.Stdout, opts))
	default:
		handler = NewTraceHandler(slog.NewTextHandler(os.Stdout, opts))
	}

	slog.SetDefault(slog.New(handler))
}

func level(cfg config.Config) slog.Level {
	var lvl slog.Level
	if cfg.LogLevel != "" && lvl.UnmarshalText([]byte(cfg.LogLevel)) == nil {
		return lvl
	}
	if cfg.IsDevelopment() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// TraceHandler decorates records with the active trace/span ids and the
// LogFields carried by the context.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	r.AddAttrs(fieldAttrs(GetLogFields(ctx))...)
	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

func fieldAttrs(f LogFields) []slog.Attr {
	var attrs []slog.Attr
	add := func(key string, v *string) {
		if v != nil {
			attrs = append(attrs, slog.String(key, *v))
		}
	}
	add("channel_id", f.ChannelID)
	add("message_id", f.MessageID)
	add("author_id", f.AuthorID)
	add("flow", f.Flow)
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}
