package service

import (
	"strings"

	"github.com/ludvigisaksen/PA-AI/internal/chat"
)

// TriggerDetector decides whether a message asks for a summary.
type TriggerDetector struct {
	phrases   []string
	channelID string
	authorID  string
}

func NewTriggerDetector(phrases []string, inputChannelID, authorizedUserID string) *TriggerDetector {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &TriggerDetector{phrases: lowered, channelID: inputChannelID, authorID: authorizedUserID}
}

// IsTrigger reports whether msg is a cue phrase from the authorized sender in
// the input channel.
func (d *TriggerDetector) IsTrigger(msg chat.Message) bool {
	if msg.AuthorIsBot || msg.ChannelID != d.channelID || msg.AuthorID != d.authorID {
		return false
	}
	return d.HasCue(msg.Content)
}

// HasCue reports whether content mentions any cue phrase, ignoring case.
func (d *TriggerDetector) HasCue(content string) bool {
	lowered := strings.ToLower(content)
	for _, p := range d.phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// isBareCue reports whether content is nothing but a cue phrase. Such
// messages are earlier triggers, not log blocks.
func (d *TriggerDetector) isBareCue(content string) bool {
	trimmed := strings.ToLower(strings.Trim(strings.TrimSpace(content), ".!?"))
	for _, p := range d.phrases {
		if trimmed == p {
			return true
		}
	}
	return false
}
