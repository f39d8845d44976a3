package normalize

import "github.com/ludvigisaksen/PA-AI/internal/domain"

// Task reads a task record as sent to the state API. The id is optional;
// a record without a title is rejected.
func Task(m map[string]any) (domain.Task, bool) {
	task := taskFields(m)
	if task.Title == "" {
		return domain.Task{}, false
	}
	return task, true
}

// Project reads a project record. A record without a name is rejected.
func Project(m map[string]any) (domain.Project, bool) {
	name := stringOr(m["name"], "")
	if name == "" {
		return domain.Project{}, false
	}
	return domain.Project{
		ID:          optID(m["id"]),
		Name:        name,
		Description: textOr(m["description"]),
		Status:      stringOr(m["status"], domain.ProjectActive),
		Deadline:    optDate(m["deadline"]),
		Milestones:  list(m["milestones"]),
		Risks:       list(m["risks"]),
	}, true
}

func taskFields(m map[string]any) domain.Task {
	return domain.Task{
		ID:           optID(m["id"]),
		Title:        stringOr(m["title"], ""),
		Context:      textOr(m["context"]),
		Status:       status(m["status"]),
		Due:          optDate(m["due"]),
		PriorityHint: optPriority(m["priority_hint"]),
		ProjectID:    optID(m["project_id"]),
		ProjectHint:  optString(m["project_hint"]),
		SourceRef:    optString(m["source_ref"]),
	}
}

func list(v any) []any {
	items, ok := v.([]any)
	if !ok {
		return []any{}
	}
	return items
}
