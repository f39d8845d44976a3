package normalize

import (
	"strings"
	"time"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// CanonicalEvent normalizes raw summarizer output. Empty, unparseable or
// non-object input yields FallbackEvent(reason, now) together with the cause
// (ErrNoJSON or ErrNotObject). The returned event is always usable.
func CanonicalEvent(raw, reason string, now time.Time) (domain.CanonicalEvent, error) {
	if strings.TrimSpace(raw) == "" {
		return FallbackEvent(reason, now), ErrNoJSON
	}
	obj, err := JSONObject(raw)
	if err != nil {
		return FallbackEvent(reason, now), err
	}
	return Event(obj, now), nil
}

// FallbackEvent is the event used whenever the summarizer produced nothing
// usable. It carries the reason as its content so the user sees why no tasks
// were proposed.
func FallbackEvent(reason string, now time.Time) domain.CanonicalEvent {
	content := strings.TrimSpace(reason)
	if content == "" {
		content = domain.NoSummaryContent
	}
	low := domain.ImportanceLow
	return domain.CanonicalEvent{
		EventType: domain.EventTypeMassInputSummary,
		Source:    domain.EventSource{},
		Content:   content,
		Tasks:     []domain.ProposedTask{},
		Meta: domain.EventMeta{
			Now:        now.UTC().Format(time.RFC3339),
			Locale:     domain.EventLocale,
			Importance: &low,
		},
	}
}

// Event backfills each top-level field of a decoded object independently.
func Event(obj map[string]any, now time.Time) domain.CanonicalEvent {
	event := domain.CanonicalEvent{
		EventType: domain.EventType(stringOr(obj["event_type"], string(domain.EventTypeMassInputSummary))),
		Source:    source(obj["source"]),
		Content:   content(obj["content"]),
		Tasks:     proposedTasks(obj["tasks"]),
		Meta:      meta(obj["meta"], now),
		SourceRef: optString(obj["source_ref"]),
	}
	return event
}

func source(v any) domain.EventSource {
	m, ok := v.(map[string]any)
	if !ok {
		return domain.EventSource{}
	}
	return domain.EventSource{
		Platform:   optString(m["platform"]),
		Server:     optString(m["server"]),
		Channel:    optString(m["channel"]),
		TimeWindow: optString(m["time_window"]),
	}
}

func content(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return domain.NoSummaryContent
	}
	return s
}

func meta(v any, now time.Time) domain.EventMeta {
	m, ok := v.(map[string]any)
	if !ok {
		normal := domain.ImportanceNormal
		return domain.EventMeta{
			Now:        now.UTC().Format(time.RFC3339),
			Locale:     domain.EventLocale,
			Importance: &normal,
		}
	}

	ts := stringOr(m["now"], "")
	if !isTimestamp(ts) {
		ts = now.UTC().Format(time.RFC3339)
	}
	return domain.EventMeta{
		Now:        ts,
		Locale:     stringOr(m["locale"], domain.EventLocale),
		Importance: optImportance(m["importance"]),
	}
}

func proposedTasks(v any) []domain.ProposedTask {
	items, ok := v.([]any)
	if !ok {
		return []domain.ProposedTask{}
	}
	tasks := make([]domain.ProposedTask, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tasks = append(tasks, domain.ProposedTask{
			ID:           nil,
			Title:        stringOr(m["title"], domain.UntitledTask),
			Context:      textOr(m["context"]),
			Due:          optDate(m["due"]),
			PriorityHint: optPriority(m["priority_hint"]),
			ProjectHint:  optString(m["project_hint"]),
			SourceRef:    optString(m["source_ref"]),
		})
	}
	return tasks
}

func textOr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
