// Package chat is the boundary to the chat platform: fetching recent channel
// history, sending messages and receiving new ones.
package chat

import (
	"context"
	"strings"
	"time"
)

// MaxMessageLength is the platform's per-message character limit.
const MaxMessageLength = 2000

type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
	CreatedAt   time.Time
}

// Client is what the flows need from the platform.
type Client interface {
	// RecentMessages returns up to limit of the newest messages in a channel,
	// in no particular order.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	// Send posts content to a channel and returns the id of the first
	// message posted. Content longer than MaxMessageLength is split.
	Send(ctx context.Context, channelID, content string) (string, error)
}

// Handler receives every inbound message.
type Handler func(ctx context.Context, msg Message)

// Split breaks content into chunks of at most limit runes, preferring to cut
// at line breaks.
func Split(content string, limit int) []string {
	if limit <= 0 {
		return []string{content}
	}
	var chunks []string
	rest := []rune(content)
	for len(rest) > limit {
		cut := limit
		if i := lastNewline(rest[:limit]); i > 0 {
			cut = i + 1
		}
		chunks = append(chunks, strings.TrimRight(string(rest[:cut]), "\n"))
		rest = rest[cut:]
	}
	if len(rest) > 0 || len(chunks) == 0 {
		chunks = append(chunks, string(rest))
	}
	return chunks
}

func lastNewline(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == '\n' {
			return i
		}
	}
	return -1
}
