package normalize_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
	"github.com/ludvigisaksen/PA-AI/internal/normalize"
)

var _ = Describe("CanonicalEvent", func() {
	now := time.Date(2025, 11, 14, 9, 30, 0, 0, time.UTC)

	canonical := func(raw, reason string, at time.Time) domain.CanonicalEvent {
		event, _ := normalize.CanonicalEvent(raw, reason, at)
		return event
	}

	expectWellFormed := func(event domain.CanonicalEvent) {
		Expect(event.EventType).NotTo(BeEmpty())
		Expect(event.Content).NotTo(BeEmpty())
		Expect(event.Tasks).NotTo(BeNil())
		Expect(event.Meta.Locale).NotTo(BeEmpty())
		_, err := time.Parse(time.RFC3339, event.Meta.Now)
		Expect(err).NotTo(HaveOccurred())

		raw, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		var generic map[string]any
		Expect(json.Unmarshal(raw, &generic)).To(Succeed())
		Expect(generic).To(HaveKey("event_type"))
		Expect(generic).To(HaveKey("source"))
		Expect(generic).To(HaveKey("content"))
		Expect(generic).To(HaveKey("tasks"))
		Expect(generic).To(HaveKey("meta"))
		Expect(generic["tasks"]).To(BeAssignableToTypeOf([]any{}))
		Expect(generic["source"]).To(HaveKey("platform"))
		Expect(generic["source"]).To(HaveKey("server"))
		Expect(generic["source"]).To(HaveKey("channel"))
		Expect(generic["source"]).To(HaveKey("time_window"))
		Expect(generic["meta"]).To(HaveKey("importance"))
	}

	DescribeTable("always produces a well-formed event",
		func(raw string) {
			expectWellFormed(canonical(raw, "Model returned unusable content.", now))
		},
		Entry("empty", ""),
		Entry("whitespace", "  \n "),
		Entry("prose", "Sorry, I can't help with that."),
		Entry("truncated JSON", `{"event_type":"x","tasks":[{"title":"a"`),
		Entry("array", `[1,2,3]`),
		Entry("string", `"summary"`),
		Entry("number", `42`),
		Entry("null", `null`),
		Entry("empty object", `{}`),
		Entry("wrong types everywhere", `{"event_type":7,"source":"x","content":false,"tasks":{"a":1},"meta":[]}`),
		Entry("tasks with junk entries", `{"tasks":[1,"two",null,{"title":42}]}`),
		Entry("meta with bad timestamp", `{"meta":{"now":"yesterday","locale":3}}`),
	)

	It("builds a fallback event from the reason", func() {
		event := canonical("not json", "OpenAI error 500 – no tasks created.", now)
		Expect(event.EventType).To(Equal(domain.EventTypeMassInputSummary))
		Expect(event.Content).To(Equal("OpenAI error 500 – no tasks created."))
		Expect(event.Source).To(Equal(domain.EventSource{}))
		Expect(event.Tasks).To(BeEmpty())
		Expect(event.Meta.Now).To(Equal("2025-11-14T09:30:00Z"))
		Expect(event.Meta.Locale).To(Equal(domain.EventLocale))
		Expect(*event.Meta.Importance).To(Equal(domain.ImportanceLow))
	})

	DescribeTable("reports why it fell back",
		func(raw string, cause error) {
			event, err := normalize.CanonicalEvent(raw, "fallback reason", now)
			Expect(err).To(MatchError(cause))
			Expect(event.Content).To(Equal("fallback reason"))
		},
		Entry("empty", "  ", normalize.ErrNoJSON),
		Entry("prose", "I could not find any tasks.", normalize.ErrNoJSON),
		Entry("array", `[{"title": "a"}]`, normalize.ErrNotObject),
	)

	It("returns no error for an object", func() {
		_, err := normalize.CanonicalEvent(`{"content":"ok"}`, "unused", now)
		Expect(err).NotTo(HaveOccurred())
	})

	It("backfills missing fields independently", func() {
		event := canonical(`{"content":"Team agreed on the linesheet.","tasks":[{"title":"Send linesheet","due":"2025-11-20T00:00:00.000Z","priority_hint":"HIGH","id":"should-be-dropped"}]}`, "unused", now)
		Expect(event.EventType).To(Equal(domain.EventTypeMassInputSummary))
		Expect(event.Source).To(Equal(domain.EventSource{}))
		Expect(event.Content).To(Equal("Team agreed on the linesheet."))
		Expect(*event.Meta.Importance).To(Equal(domain.ImportanceNormal))
		Expect(event.Meta.Now).To(Equal("2025-11-14T09:30:00Z"))

		Expect(event.Tasks).To(HaveLen(1))
		task := event.Tasks[0]
		Expect(task.ID).To(BeNil())
		Expect(task.Title).To(Equal("Send linesheet"))
		Expect(*task.Due).To(Equal("2025-11-20"))
		Expect(*task.PriorityHint).To(Equal(domain.PriorityHigh))
		Expect(task.Context).To(Equal(""))
	})

	It("keeps well-formed fields and fills task placeholders", func() {
		event := canonical(`{
			"event_type": "discord_mass_input_summary",
			"source": {"platform": "discord", "server": "fc-internal", "channel": "#ops", "time_window": "2025-10-29 to 2025-11-12"},
			"content": "Summary",
			"tasks": [{"title": "  ", "due": "by friday", "priority_hint": "urgent", "project_hint": "Linesheet"}],
			"meta": {"now": "2025-11-12T08:00:00Z", "locale": "en-DK", "importance": "high"}
		}`, "unused", now)

		Expect(*event.Source.Server).To(Equal("fc-internal"))
		Expect(*event.Source.Channel).To(Equal("#ops"))
		Expect(event.Meta.Now).To(Equal("2025-11-12T08:00:00Z"))
		Expect(*event.Meta.Importance).To(Equal(domain.ImportanceHigh))
		Expect(event.Tasks[0].Title).To(Equal(domain.UntitledTask))
		Expect(event.Tasks[0].Due).To(BeNil())
		Expect(event.Tasks[0].PriorityHint).To(BeNil())
		Expect(*event.Tasks[0].ProjectHint).To(Equal("Linesheet"))
	})

	It("recovers an event wrapped in a code fence", func() {
		event := canonical("```json\n{\"content\":\"fenced summary\",\"tasks\":[{\"title\":\"A\"}]}\n```", "unused", now)
		Expect(event.Content).To(Equal("fenced summary"))
		Expect(event.Tasks).To(HaveLen(1))
	})

	It("is idempotent on well-formed events", func() {
		first := canonical(`{
			"source": {"platform": "discord", "channel": "#general"},
			"content": "Summary",
			"source_ref": "discord:#general@2025-11-12",
			"tasks": [{"title": "Book photographer", "context": "For the lookbook", "due": "2025-11-21", "priority_hint": "medium", "source_ref": null}],
			"meta": {"now": "2025-11-12T08:00:00Z", "importance": null}
		}`, "unused", now)

		raw, err := json.Marshal(first)
		Expect(err).NotTo(HaveOccurred())

		second := canonical(string(raw), "unused", now.Add(time.Hour))
		Expect(second).To(Equal(first))

		fallback := normalize.FallbackEvent("reason", now)
		raw, err = json.Marshal(fallback)
		Expect(err).NotTo(HaveOccurred())
		Expect(canonical(string(raw), "other", now.Add(time.Hour))).To(Equal(fallback))
	})
})
