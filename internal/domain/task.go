package domain

import (
	"strings"
	"time"
)

type (
	TaskStatus   string
	PriorityHint string
)

const (
	TaskStatusOpen    TaskStatus = "open"
	TaskStatusBlocked TaskStatus = "blocked"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusRemoved TaskStatus = "removed"
)

const (
	PriorityHigh   PriorityHint = "high"
	PriorityMedium PriorityHint = "medium"
	PriorityLow    PriorityHint = "low"
)

const (
	UntitledTask    = "Untitled task"
	DateLayout      = "2006-01-02"
	ProjectActive   = "active"
	UntitledProject = "Untitled project"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusBlocked, TaskStatusDone, TaskStatusRemoved:
		return true
	}
	return false
}

func (p PriorityHint) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for display: high first, unset last.
func (p PriorityHint) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Task is both the proposed (ID nil) and persisted form of a task.
// Project linkage is advisory: neither ProjectID nor ProjectHint is checked
// against the project table.
type Task struct {
	ID           *string       `json:"id"`
	Title        string        `json:"title"`
	Context      string        `json:"context"`
	Status       TaskStatus    `json:"status"`
	Due          *string       `json:"due"`
	PriorityHint *PriorityHint `json:"priority_hint"`
	ProjectID    *string       `json:"project_id"`
	ProjectHint  *string       `json:"project_hint"`
	SourceRef    *string       `json:"source_ref"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

// IsOpen reports whether the task still needs attention.
func (t Task) IsOpen() bool {
	return t.Status != TaskStatusDone && t.Status != TaskStatusRemoved
}

// Project groups tasks under a named initiative.
type Project struct {
	ID          *string    `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    *string    `json:"deadline"`
	Milestones  []any      `json:"milestones"`
	Risks       []any      `json:"risks"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// NormalizeDate keeps only the YYYY-MM-DD part of a date or timestamp string.
// Anything that does not start with a valid calendar date yields nil.
func NormalizeDate(s string) *string {
	s = strings.TrimSpace(s)
	if len(s) < len(DateLayout) {
		return nil
	}
	day := s[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, day); err != nil {
		return nil
	}
	return &day
}

// StringOrNil maps blank strings to nil, trimming the rest.
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
