package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ludvigisaksen/PA-AI"

// SpanContext pairs a span with the context that carries it.
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan starts a child span. Any log fields already on ctx are copied
// onto the span as attributes so traces and logs can be joined on them.
//
//	span := logger.StartSpan(ctx, "lifecycle.summarize")
//	defer span.End()
//	ctx = span.Context()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	if attrs := spanAttributes(GetLogFields(ctx)); len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}

// RecordError records err on the span and marks the span failed.
func (sc *SpanContext) RecordError(err error) {
	if sc.span == nil || err == nil {
		return
	}
	sc.span.RecordError(err)
	sc.span.SetStatus(codes.Error, err.Error())
}

func spanAttributes(f LogFields) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if f.ChannelID != nil {
		attrs = append(attrs, attribute.String("pa.channel_id", *f.ChannelID))
	}
	if f.MessageID != nil {
		attrs = append(attrs, attribute.String("pa.message_id", *f.MessageID))
	}
	if f.Flow != nil {
		attrs = append(attrs, attribute.String("pa.flow", *f.Flow))
	}
	return attrs
}
