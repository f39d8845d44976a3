package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ludvigisaksen/PA-AI/core/config"
)

var _ = Describe("WithLogFields", func() {
	It("merges newer fields over older ones", func() {
		ctx := WithLogFields(context.Background(), LogFields{
			ChannelID: Ptr("inbox"),
			Flow:      Ptr("summarize"),
			Component: "pa.service.lifecycle",
		})
		ctx = WithLogFields(ctx, LogFields{Flow: Ptr("keep")})

		fields := GetLogFields(ctx)
		Expect(*fields.ChannelID).To(Equal("inbox"))
		Expect(*fields.Flow).To(Equal("keep"))
		Expect(fields.Component).To(Equal("pa.service.lifecycle"))
	})

	It("returns empty fields for a bare context", func() {
		Expect(GetLogFields(context.Background())).To(Equal(LogFields{}))
	})
})

var _ = Describe("TraceHandler", func() {
	It("adds context fields to every record", func() {
		var buf bytes.Buffer
		log := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil)))
		ctx := WithLogFields(context.Background(), LogFields{
			MessageID: Ptr("m1"),
			AuthorID:  Ptr("u1"),
			Flow:      Ptr("task_update"),
			Component: "pa.service.lifecycle",
		})

		log.InfoContext(ctx, "tasks updated", "count", 2)

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("message_id", "m1"))
		Expect(record).To(HaveKeyWithValue("author_id", "u1"))
		Expect(record).To(HaveKeyWithValue("flow", "task_update"))
		Expect(record).To(HaveKeyWithValue("component", "pa.service.lifecycle"))
		Expect(record).NotTo(HaveKey("channel_id"))
		Expect(record).NotTo(HaveKey("trace_id"))
	})
})

var _ = DescribeTable("level",
	func(cfg config.Config, expected slog.Level) {
		Expect(level(cfg)).To(Equal(expected))
	},
	Entry("development defaults to debug", config.Config{Env: "development"}, slog.LevelDebug),
	Entry("production defaults to info", config.Config{Env: "production"}, slog.LevelInfo),
	Entry("explicit level wins", config.Config{Env: "development", LogLevel: "warn"}, slog.LevelWarn),
	Entry("unknown level is ignored", config.Config{Env: "production", LogLevel: "loud"}, slog.LevelInfo),
)

var _ = Describe("Truncate", func() {
	It("keeps short strings", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("cuts long strings", func() {
		Expect(Truncate("abcdefghij", 4)).To(Equal("abcd..."))
	})
})
