package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ludvigisaksen/PA-AI/internal/chat"
)

// DefaultLookback is how many recent messages are searched for a log block.
const DefaultLookback = 20

// LogExtractor finds the log block a trigger refers to: the latest earlier
// message by the authorized sender that has text and is not itself a trigger.
type LogExtractor struct {
	chat     chat.Client
	triggers *TriggerDetector
	authorID string
	lookback int
}

func NewLogExtractor(client chat.Client, triggers *TriggerDetector, authorizedUserID string, lookback int) *LogExtractor {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &LogExtractor{chat: client, triggers: triggers, authorID: authorizedUserID, lookback: lookback}
}

// Extract returns the log block and whether one was found.
func (e *LogExtractor) Extract(ctx context.Context, trigger chat.Message) (string, bool, error) {
	msgs, err := e.chat.RecentMessages(ctx, trigger.ChannelID, e.lookback)
	if err != nil {
		return "", false, fmt.Errorf("fetching channel history: %w", err)
	}

	candidates := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == trigger.ID || m.AuthorID != e.authorID {
			continue
		}
		if !m.CreatedAt.Before(trigger.CreatedAt) {
			continue
		}
		if strings.TrimSpace(m.Content) == "" || e.triggers.isBareCue(m.Content) {
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return "", false, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates[len(candidates)-1].Content, true, nil
}
