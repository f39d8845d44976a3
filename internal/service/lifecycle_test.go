package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ludvigisaksen/PA-AI/internal/batch"
	"github.com/ludvigisaksen/PA-AI/internal/chat"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
	"github.com/ludvigisaksen/PA-AI/internal/service"
)

const (
	inputChannel  = "input"
	inboxChannel  = "inbox"
	logChannel    = "ops"
	authorizedID  = "ludvig"
	someoneElseID = "intern"
)

var baseTime = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func msgAt(id, channel, author, content string, offset time.Duration) chat.Message {
	return chat.Message{ID: id, ChannelID: channel, AuthorID: author, Content: content, CreatedAt: baseTime.Add(offset)}
}

func proposed(titles ...string) []domain.ProposedTask {
	out := make([]domain.ProposedTask, len(titles))
	for i, t := range titles {
		out[i] = domain.ProposedTask{Title: t}
	}
	return out
}

func listedTasks(n int) []domain.ListedTask {
	ids := []string{"t_10", "t_11", "t_12", "t_13"}
	out := make([]domain.ListedTask, n)
	for i := 0; i < n; i++ {
		id := ids[i]
		out[i] = domain.ListedTask{Task: domain.Task{ID: &id, Title: "Listed " + id, Status: domain.TaskStatusOpen}}
	}
	return out
}

var _ = Describe("Lifecycle", func() {
	var (
		ctx        context.Context
		chatClient *mockChat
		summarizer *mockSummarizer
		state      *mockStateClient
		batches    *batch.Store
		lifecycle  *service.Lifecycle
	)

	BeforeEach(func() {
		ctx = context.Background()
		chatClient = &mockChat{}
		summarizer = &mockSummarizer{}
		state = &mockStateClient{}
		batches = batch.NewStore()
		lifecycle = service.NewLifecycle(service.LifecycleConfig{
			Chat:             chatClient,
			Summarizer:       summarizer,
			State:            state,
			Batches:          batches,
			Channels:         service.Channels{Input: inputChannel, Inbox: inboxChannel, Broadcast: "broadcast", Log: logChannel},
			AuthorizedUserID: authorizedID,
			TriggerPhrases:   []string{"summarize", "sum up"},
			Lookback:         20,
		})
	})

	seedPending := func(titles ...string) {
		batches.ReplacePending(batch.PendingBatch{Tasks: proposed(titles...), SourceRef: strPtr("discord:general@2025-02-01")})
	}

	inbox := func(content string) {
		lifecycle.HandleMessage(ctx, msgAt("cmd", inboxChannel, authorizedID, content, time.Minute))
	}

	Describe("summarize flow", func() {
		var trigger chat.Message

		BeforeEach(func() {
			trigger = msgAt("trigger", inputChannel, authorizedID, "Please summarize", 0)
			chatClient.recentFn = func(context.Context, string, int) ([]chat.Message, error) {
				return []chat.Message{
					trigger,
					msgAt("older", inputChannel, authorizedID, "old logs", -10*time.Minute),
					msgAt("logs", inputChannel, authorizedID, "Anna - 01/02/2025, 09.00: send the linesheet", -time.Minute),
					msgAt("other", inputChannel, someoneElseID, "not mine", -30*time.Second),
				}, nil
			}
		})

		It("summarizes the latest log block and proposes its tasks", func() {
			summarizer.summarizeFn = func(context.Context, string) domain.CanonicalEvent {
				return domain.CanonicalEvent{
					Content: "Anna needs the linesheet.",
					Source:  domain.EventSource{Channel: strPtr("general"), TimeWindow: strPtr("2025-02-01")},
					Tasks:   proposed("Send linesheet", "Book photographer"),
				}
			}

			lifecycle.HandleMessage(ctx, trigger)

			Expect(summarizer.received).To(Equal([]string{"Anna - 01/02/2025, 09.00: send the linesheet"}))
			Expect(chatClient.recentRequests).To(Equal([]int{20}))
			Expect(chatClient.sentTo(inputChannel)).To(ConsistOf(ContainSubstring("Anna needs the linesheet.")))

			proposal := chatClient.sentTo(inboxChannel)
			Expect(proposal).To(HaveLen(1))
			Expect(proposal[0]).To(ContainSubstring("1. Send linesheet"))
			Expect(proposal[0]).To(ContainSubstring("2. Book photographer"))
			Expect(proposal[0]).To(ContainSubstring("keep all"))

			pending, _ := batches.Pending()
			Expect(pending.Tasks).To(HaveLen(2))
			Expect(*pending.SourceRef).To(Equal("discord:general@2025-02-01"))
		})

		It("prefers an explicit source ref from the event", func() {
			summarizer.summarizeFn = func(context.Context, string) domain.CanonicalEvent {
				return domain.CanonicalEvent{SourceRef: strPtr("discord:#launch@2025-01-30"), Tasks: proposed("a")}
			}
			lifecycle.HandleMessage(ctx, trigger)

			pending, _ := batches.Pending()
			Expect(*pending.SourceRef).To(Equal("discord:#launch@2025-01-30"))
		})

		It("falls back to the trigger channel and time for the source ref", func() {
			summarizer.summarizeFn = func(context.Context, string) domain.CanonicalEvent {
				return domain.CanonicalEvent{Tasks: proposed("a")}
			}
			lifecycle.HandleMessage(ctx, trigger)

			pending, _ := batches.Pending()
			Expect(*pending.SourceRef).To(Equal("discord:input@2025-02-01T10:00:00Z"))
		})

		It("resets the pending batch when nothing is actionable", func() {
			seedPending("stale")
			summarizer.summarizeFn = func(context.Context, string) domain.CanonicalEvent {
				return domain.CanonicalEvent{Content: "Just chatter.", Tasks: []domain.ProposedTask{}}
			}

			lifecycle.HandleMessage(ctx, trigger)

			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyNoActionableTasks}))
			pending, _ := batches.Pending()
			Expect(pending.IsEmpty()).To(BeTrue())
		})

		It("replaces an unconfirmed batch with the new proposal", func() {
			seedPending("old one", "old two")
			summarizer.summarizeFn = func(context.Context, string) domain.CanonicalEvent {
				return domain.CanonicalEvent{Tasks: proposed("new")}
			}

			lifecycle.HandleMessage(ctx, trigger)

			pending, _ := batches.Pending()
			Expect(pending.Tasks).To(Equal(proposed("new")))
		})

		It("reports when no log block precedes the trigger", func() {
			chatClient.recentFn = func(context.Context, string, int) ([]chat.Message, error) {
				return []chat.Message{trigger, msgAt("later", inputChannel, authorizedID, "after", time.Minute)}, nil
			}

			lifecycle.HandleMessage(ctx, trigger)

			Expect(summarizer.received).To(BeEmpty())
			Expect(chatClient.sentTo(inputChannel)).To(Equal([]string{service.ReplyNoLogBlock}))
		})

		It("reports a history failure to the user and the ops channel", func() {
			chatClient.recentFn = func(context.Context, string, int) ([]chat.Message, error) {
				return nil, errors.New("rate limited")
			}

			lifecycle.HandleMessage(ctx, trigger)

			Expect(chatClient.sentTo(inputChannel)).To(Equal([]string{service.ReplyHistoryFailed}))
			Expect(chatClient.sentTo(logChannel)).To(ConsistOf(ContainSubstring("rate limited")))
		})

		It("ignores cue phrases from other senders", func() {
			lifecycle.HandleMessage(ctx, msgAt("x", inputChannel, someoneElseID, "summarize", 0))
			Expect(chatClient.sent).To(BeEmpty())
		})

		It("ignores cue phrases outside the input channel", func() {
			lifecycle.HandleMessage(ctx, msgAt("x", "random", authorizedID, "summarize", 0))
			Expect(chatClient.sent).To(BeEmpty())
		})
	})

	Describe("keep commands", func() {
		It("saves the tasks at the given positions in order", func() {
			seedPending("one", "two", "three")

			inbox("keep: 1,3")

			Expect(state.upserted).To(HaveLen(1))
			saved := state.upserted[0]
			Expect(saved).To(HaveLen(2))
			Expect(saved[0].Title).To(Equal("one"))
			Expect(saved[1].Title).To(Equal("three"))
			Expect(saved[0].ID).To(BeNil())
			Expect(saved[0].Status).To(Equal(domain.TaskStatusOpen))
			Expect(*saved[0].SourceRef).To(Equal("discord:general@2025-02-01"))

			Expect(chatClient.sentTo(inboxChannel)).To(ConsistOf(ContainSubstring("Saved 2 task(s)")))
			pending, _ := batches.Pending()
			Expect(pending.IsEmpty()).To(BeTrue())
		})

		It("keeps a task's own source ref", func() {
			batches.ReplacePending(batch.PendingBatch{
				Tasks:     []domain.ProposedTask{{Title: "one", SourceRef: strPtr("discord:#own@2025-01-01")}},
				SourceRef: strPtr("discord:batch"),
			})

			inbox("keep all")

			Expect(*state.upserted[0][0].SourceRef).To(Equal("discord:#own@2025-01-01"))
		})

		It("reports the count the state api returned", func() {
			seedPending("one", "two", "three")
			state.upsertTasksFn = func(_ context.Context, tasks []domain.Task) ([]domain.Task, error) {
				t := tasks[0]
				t.ID = strPtr("t_1")
				return []domain.Task{t}, nil
			}

			inbox("keep all")

			Expect(state.upserted[0]).To(HaveLen(3))
			Expect(chatClient.sentTo(inboxChannel)).To(ConsistOf(ContainSubstring("Saved 1 task(s)")))
		})

		It("answers out-of-range positions without saving or clearing", func() {
			seedPending("one", "two", "three")

			inbox("keep: 5")

			Expect(state.upserted).To(BeEmpty())
			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyNoValidNumbers}))
			pending, _ := batches.Pending()
			Expect(pending.Tasks).To(HaveLen(3))
		})

		It("answers a keep command without a pending batch", func() {
			inbox("keep all")

			Expect(state.upserted).To(BeEmpty())
			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyNoPendingBatch}))
		})

		It("keeps the batch for a retry when saving fails", func() {
			seedPending("one", "two")
			state.upsertTasksFn = func(context.Context, []domain.Task) ([]domain.Task, error) {
				return nil, errors.New("POST /state/tasks: status 500")
			}

			inbox("keep all")

			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplySaveFailed}))
			Expect(chatClient.sentTo(logChannel)).To(ConsistOf(ContainSubstring("status 500")))
			pending, _ := batches.Pending()
			Expect(pending.Tasks).To(HaveLen(2))
		})

		It("leaves a batch proposed during the save pending", func() {
			seedPending("one")
			state.upsertTasksFn = func(_ context.Context, tasks []domain.Task) ([]domain.Task, error) {
				batches.ReplacePending(batch.PendingBatch{Tasks: proposed("newer")})
				return tasks, nil
			}

			inbox("keep all")

			pending, _ := batches.Pending()
			Expect(pending.Tasks).To(Equal(proposed("newer")))
		})

		It("ignores text that is not a command", func() {
			seedPending("one")
			inbox("thanks, looks good")

			Expect(chatClient.sent).To(BeEmpty())
			Expect(state.upserted).To(BeEmpty())
		})

		It("ignores commands from other senders", func() {
			seedPending("one")
			lifecycle.HandleMessage(ctx, msgAt("cmd", inboxChannel, someoneElseID, "keep all", 0))

			Expect(state.upserted).To(BeEmpty())
		})
	})

	Describe("task update commands", func() {
		BeforeEach(func() {
			batches.ReplaceListed(batch.ListedTasks{Tasks: listedTasks(3), PostedAt: baseTime, MessageID: strPtr("brief-1")})
		})

		It("marks only the addressed task done", func() {
			inbox("done 2")

			Expect(state.upserted).To(HaveLen(1))
			Expect(state.upserted[0]).To(HaveLen(1))
			Expect(*state.upserted[0][0].ID).To(Equal("t_11"))
			Expect(state.upserted[0][0].Status).To(Equal(domain.TaskStatusDone))

			listed := batches.Listed()
			Expect(listed.Tasks[0].Status).To(Equal(domain.TaskStatusOpen))
			Expect(listed.Tasks[1].Status).To(Equal(domain.TaskStatusDone))
			Expect(listed.Tasks[2].Status).To(Equal(domain.TaskStatusOpen))
			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{"Marked #2 as done."}))
		})

		It("confirms only the positions that exist in the list", func() {
			inbox("done 2, 9")

			Expect(state.upserted).To(HaveLen(1))
			Expect(state.upserted[0]).To(HaveLen(1))
			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{"Marked #2 as done."}))
		})

		It("leaves tasks alone when the status word starts a sentence", func() {
			inbox("remove 2 of those next week")

			Expect(state.upserted).To(BeEmpty())
			Expect(chatClient.sent).To(BeEmpty())
		})

		It("tags tasks with a project in input order", func() {
			inbox("project 3, 1: Launch")

			Expect(*state.upserted[0][0].ID).To(Equal("t_12"))
			Expect(*state.upserted[0][1].ID).To(Equal("t_10"))
			Expect(*state.upserted[0][0].ProjectHint).To(Equal("Launch"))
			Expect(state.upserted[0][0].Status).To(Equal(domain.TaskStatusOpen))
			Expect(*batches.Listed().Tasks[2].ProjectHint).To(Equal("Launch"))
		})

		It("works while a batch is pending", func() {
			seedPending("one")
			inbox("remove 1")

			Expect(state.upserted[0][0].Status).To(Equal(domain.TaskStatusRemoved))
			pending, _ := batches.Pending()
			Expect(pending.Tasks).To(HaveLen(1))
		})

		It("drops positions past the end of the list", func() {
			inbox("reopen 1, 9")

			Expect(state.upserted[0]).To(HaveLen(1))
		})

		It("answers when no position matches", func() {
			inbox("done 9")

			Expect(state.upserted).To(BeEmpty())
			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyNoMatchingNumbers}))
		})

		It("leaves the cache alone when the update fails", func() {
			state.upsertTasksFn = func(context.Context, []domain.Task) ([]domain.Task, error) {
				return nil, errors.New("connection refused")
			}

			inbox("done 1")

			Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyUpdateFailed}))
			Expect(batches.Listed().Tasks[0].Status).To(Equal(domain.TaskStatusOpen))
		})
	})

	It("answers update commands when nothing has been listed", func() {
		inbox("done 1")

		Expect(state.upserted).To(BeEmpty())
		Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyNoCachedList}))
	})

	It("recovers from a panicking collaborator", func() {
		seedPending("one")
		state.upsertTasksFn = func(context.Context, []domain.Task) ([]domain.Task, error) {
			panic("boom")
		}

		Expect(func() { inbox("keep all") }).NotTo(Panic())
		Expect(chatClient.sentTo(inboxChannel)).To(Equal([]string{service.ReplyUnexpectedFailure}))
	})
})
