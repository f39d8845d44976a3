package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// FallbackBriefingSize is how many tasks the fallback briefing lists.
const FallbackBriefingSize = 5

// Briefing normalizes raw briefing output. Listed tasks without an id are
// dropped since task-update commands can only address persisted rows.
func Briefing(raw string) (domain.Briefing, error) {
	obj, err := JSONObject(raw)
	if err != nil {
		return domain.Briefing{}, err
	}
	return BriefingFromObject(obj), nil
}

func BriefingFromObject(obj map[string]any) domain.Briefing {
	list, _ := obj["actionable_list"].(map[string]any)

	return domain.Briefing{
		DailyMessage: stringOr(obj["daily_message"], domain.NoDailyMessage),
		ActionableList: domain.ActionableList{
			Message: stringOr(list["message"], domain.NoActionableMessage),
			Tasks:   listedTasks(list["tasks"]),
		},
	}
}

func listedTasks(v any) []domain.ListedTask {
	items, ok := v.([]any)
	if !ok {
		return []domain.ListedTask{}
	}
	tasks := make([]domain.ListedTask, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		task, ok := persistedTask(m)
		if !ok {
			continue
		}
		tasks = append(tasks, domain.ListedTask{Task: task, Score: optNumber(m["score"])})
	}
	return tasks
}

// persistedTask reads a task that must already carry an id.
func persistedTask(m map[string]any) (domain.Task, bool) {
	task := taskFields(m)
	if task.ID == nil {
		return domain.Task{}, false
	}
	if task.Title == "" {
		task.Title = domain.UntitledTask
	}
	return task, true
}

// FallbackBriefing builds a briefing straight from the task list when the
// LLM could not produce one: the top open tasks by priority then due date.
func FallbackBriefing(tasks []domain.Task, now time.Time) domain.Briefing {
	open := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == nil || !t.IsOpen() {
			continue
		}
		open = append(open, t)
	}

	sort.SliceStable(open, func(i, j int) bool {
		pi, pj := priorityRank(open[i]), priorityRank(open[j])
		if pi != pj {
			return pi < pj
		}
		return dueBefore(open[i].Due, open[j].Due)
	})

	top := open
	if len(top) > FallbackBriefingSize {
		top = top[:FallbackBriefingSize]
	}

	day := now.Format("Monday 2 January")
	briefing := domain.Briefing{
		DailyMessage: fmt.Sprintf("Daily briefing for %s: %d open task(s). The assistant was unavailable, so this list is ranked by priority and due date.", day, len(open)),
		ActionableList: domain.ActionableList{
			Message: domain.NoActionableMessage,
			Tasks:   make([]domain.ListedTask, 0, len(top)),
		},
	}
	if len(top) == 0 {
		return briefing
	}

	var b strings.Builder
	b.WriteString("Top tasks today:\n")
	for i, t := range top {
		briefing.ActionableList.Tasks = append(briefing.ActionableList.Tasks, domain.ListedTask{Task: t})
		fmt.Fprintf(&b, "%d. %s", i+1, t.Title)
		if t.Due != nil {
			fmt.Fprintf(&b, " (due %s)", *t.Due)
		}
		if t.PriorityHint != nil {
			fmt.Fprintf(&b, " [%s]", *t.PriorityHint)
		}
		b.WriteString("\n")
	}
	b.WriteString("Reply `done 1`, `remove 2`, `reopen 3` or `project 1,2: Name` to update.")
	briefing.ActionableList.Message = b.String()
	return briefing
}

func priorityRank(t domain.Task) int {
	if t.PriorityHint == nil {
		return domain.PriorityHint("").Rank()
	}
	return t.PriorityHint.Rank()
}

// dueBefore orders dated tasks first, earliest first.
func dueBefore(a, b *string) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return *a < *b
}
