package domain

// EventType tags the kind of structured summary the summarizer produced.
type EventType string

const (
	EventTypeMassInputSummary EventType = "discord_mass_input_summary"
)

const (
	EventPlatform    = "discord"
	EventLocale      = "en-DK"
	NoSummaryContent = "No summary available."
)

type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceNormal Importance = "normal"
	ImportanceLow    Importance = "low"
)

// CanonicalEvent is the normalized summary of a block of chat logs.
// After normalization every field is present; optional values are JSON null,
// never missing.
type CanonicalEvent struct {
	EventType EventType      `json:"event_type"`
	Source    EventSource    `json:"source"`
	Content   string         `json:"content"`
	Tasks     []ProposedTask `json:"tasks"`
	Meta      EventMeta      `json:"meta"`
	// SourceRef is an explicit provenance tag some model outputs carry at the
	// top level. It takes precedence when deriving a batch source ref.
	SourceRef *string `json:"source_ref,omitempty"`
}

type EventSource struct {
	Platform   *string `json:"platform"`
	Server     *string `json:"server"`
	Channel    *string `json:"channel"`
	TimeWindow *string `json:"time_window"`
}

type EventMeta struct {
	Now        string      `json:"now"`
	Locale     string      `json:"locale"`
	Importance *Importance `json:"importance"`
}

// ProposedTask is a task suggested by the summarizer. It has no id until a
// human keeps it and the state API persists it.
type ProposedTask struct {
	ID           *string       `json:"id"`
	Title        string        `json:"title"`
	Context      string        `json:"context"`
	Due          *string       `json:"due"`
	PriorityHint *PriorityHint `json:"priority_hint"`
	ProjectHint  *string       `json:"project_hint"`
	SourceRef    *string       `json:"source_ref"`
}

// Task converts a proposal into the persistence shape with status open.
func (p ProposedTask) Task() Task {
	return Task{
		Title:        p.Title,
		Context:      p.Context,
		Status:       TaskStatusOpen,
		Due:          p.Due,
		PriorityHint: p.PriorityHint,
		ProjectHint:  p.ProjectHint,
		SourceRef:    p.SourceRef,
	}
}

// Briefing is the daily digest produced from the current task list.
type Briefing struct {
	DailyMessage   string         `json:"daily_message"`
	ActionableList ActionableList `json:"actionable_list"`
}

type ActionableList struct {
	Message string       `json:"message"`
	Tasks   []ListedTask `json:"tasks"`
}

// ListedTask is a persisted task as it appears in an actionable list.
// ID is always set.
type ListedTask struct {
	Task
	Score *float64 `json:"score"`
}

const (
	NoDailyMessage      = "No daily briefing available."
	NoActionableMessage = "No actionable tasks today."
)
