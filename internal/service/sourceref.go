package service

import (
	"fmt"
	"time"

	"github.com/ludvigisaksen/PA-AI/internal/chat"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// batchSourceRef picks the provenance tag stamped on kept tasks that carry
// none of their own: an explicit event ref, then the event source channel
// (with its time window when known), then the trigger's channel and time.
func batchSourceRef(event domain.CanonicalEvent, trigger chat.Message) string {
	if event.SourceRef != nil && *event.SourceRef != "" {
		return *event.SourceRef
	}
	src := event.Source
	if src.Channel != nil && *src.Channel != "" {
		if src.TimeWindow != nil && *src.TimeWindow != "" {
			return fmt.Sprintf("%s:%s@%s", domain.EventPlatform, *src.Channel, *src.TimeWindow)
		}
		return fmt.Sprintf("%s:%s", domain.EventPlatform, *src.Channel)
	}
	return fmt.Sprintf("%s:%s@%s", domain.EventPlatform, trigger.ChannelID, trigger.CreatedAt.UTC().Format(time.RFC3339))
}
