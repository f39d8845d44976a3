package brain_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ludvigisaksen/PA-AI/common/llm"
	"github.com/ludvigisaksen/PA-AI/internal/brain"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

var _ = Describe("Summarizer", func() {
	var (
		ctx    context.Context
		client *mockLLMClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLMClient{}
	})

	expectFallback := func(event domain.CanonicalEvent, reason string) {
		Expect(event.EventType).To(Equal(domain.EventTypeMassInputSummary))
		Expect(event.Content).To(Equal(reason))
		Expect(event.Tasks).To(BeEmpty())
		Expect(event.Tasks).NotTo(BeNil())
		Expect(event.Source).To(Equal(domain.EventSource{}))
		Expect(*event.Meta.Importance).To(Equal(domain.ImportanceLow))
		_, err := time.Parse(time.RFC3339, event.Meta.Now)
		Expect(err).NotTo(HaveOccurred())
	}

	It("returns the not-configured fallback without a client", func() {
		event := brain.NewSummarizer(nil, 0).Summarize(ctx, "Ludvig - 01/02/2025, 10.00: ship it")
		expectFallback(event, brain.ReasonNotConfigured)
	})

	It("does not call the model for blank logs", func() {
		event := brain.NewSummarizer(client, 0).Summarize(ctx, "   ")
		expectFallback(event, brain.ReasonNoLogs)
		Expect(client.requests).To(BeEmpty())
	})

	It("sends the logs with a low temperature and a schema hint", func() {
		brain.NewSummarizer(client, 900).Summarize(ctx, "Ludvig - 01/02/2025, 10.00: send linesheet")

		Expect(client.requests).To(HaveLen(1))
		req := client.requests[0]
		Expect(req.UserPrompt).To(ContainSubstring("send linesheet"))
		Expect(req.SystemPrompt).To(ContainSubstring("canonical event schema"))
		Expect(req.SchemaName).To(Equal("canonical_event"))
		Expect(req.Schema).NotTo(BeNil())
		Expect(req.MaxTokens).To(Equal(900))
		Expect(*req.Temperature).To(BeNumerically("~", 0.1))
	})

	It("normalizes a fenced model answer", func() {
		client.completeFn = respondWith("Here you go:\n```json\n" + `{
			"event_type": "discord_mass_input_summary",
			"source": {"platform": "discord", "server": "pa-ai", "channel": "general", "time_window": "2025-02-01"},
			"content": "Team agreed on the launch plan.",
			"tasks": [{"id": "x", "title": "Send linesheet", "due": "2025-02-07T12:00:00Z", "priority_hint": "high"}],
			"meta": {"now": "2025-02-01T10:00:00Z", "locale": "en-DK", "importance": "high"}
		}` + "\n```")

		event := brain.NewSummarizer(client, 0).Summarize(ctx, "logs")

		Expect(event.Content).To(Equal("Team agreed on the launch plan."))
		Expect(*event.Source.Channel).To(Equal("general"))
		Expect(event.Tasks).To(HaveLen(1))
		Expect(event.Tasks[0].ID).To(BeNil())
		Expect(event.Tasks[0].Title).To(Equal("Send linesheet"))
		Expect(*event.Tasks[0].Due).To(Equal("2025-02-07"))
		Expect(*event.Tasks[0].PriorityHint).To(Equal(domain.PriorityHigh))
	})

	DescribeTable("falls back with a reason for unusable answers",
		func(fn func(context.Context, llm.Request) (*llm.Response, error), reason string) {
			client.completeFn = fn
			expectFallback(brain.NewSummarizer(client, 0).Summarize(ctx, "logs"), reason)
		},
		Entry("network failure", func(context.Context, llm.Request) (*llm.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		}, brain.ReasonCallFailed),
		Entry("empty content", func(context.Context, llm.Request) (*llm.Response, error) {
			return nil, llm.ErrEmptyResponse
		}, brain.ReasonEmptyContent),
		Entry("prose", respondWith("I could not find any tasks."), brain.ReasonNotJSON),
		Entry("array", respondWith(`[{"title": "a"}]`), brain.ReasonNotObject),
	)

	It("backfills missing fields of a partial object", func() {
		client.completeFn = respondWith(`{"content": "short", "tasks": "none"}`)

		event := brain.NewSummarizer(client, 0).Summarize(ctx, "logs")

		Expect(event.EventType).To(Equal(domain.EventTypeMassInputSummary))
		Expect(event.Content).To(Equal("short"))
		Expect(event.Tasks).To(BeEmpty())
		Expect(event.Meta.Locale).To(Equal(domain.EventLocale))
		Expect(*event.Meta.Importance).To(Equal(domain.ImportanceNormal))
	})
})
