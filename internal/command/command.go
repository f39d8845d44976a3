// Package command parses the short text commands the authorized user types
// in the inbox channel: keep/drop decisions on a proposed batch and status or
// project updates on the last posted task list.
package command

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

type Kind int

const (
	KindNoMatch Kind = iota
	KindKeepAll
	KindKeepIndices
	KindStatusChange
	KindProjectTag
)

func (k Kind) String() string {
	switch k {
	case KindKeepAll:
		return "keep_all"
	case KindKeepIndices:
		return "keep_indices"
	case KindStatusChange:
		return "status_change"
	case KindProjectTag:
		return "project_tag"
	}
	return "no_match"
}

type Action string

const (
	ActionDone   Action = "done"
	ActionRemove Action = "remove"
	ActionReopen Action = "reopen"
)

// Command is the parsed intent of one message. The zero value is NoMatch.
type Command struct {
	Kind    Kind
	Action  Action // StatusChange only
	Indices []int  // 1-based positions
	Project string // ProjectTag only
}

var (
	keepAllPattern = regexp.MustCompile(`^keep\s+all\b`)
	keepPattern    = regexp.MustCompile(`^keep(?:\s*:\s*|\s+)(.+)$`)
	statusPattern  = regexp.MustCompile(`^(done|remove|reopen)(?:\s*:\s*|\s+)([-+\d.,\s]+)$`)
	projectPattern = regexp.MustCompile(`(?i)^project\s+([-+\d.,\s]+):(.*)$`)
	indexSeparator = regexp.MustCompile(`[,\s]+`)
)

// Parse classifies text. It never fails: anything that is not a command is
// KindNoMatch and should be ignored without a reply.
//
// Keep indices come back sorted ascending; status and project indices keep
// the order they were typed in. Both are deduplicated. Status and project
// commands only match when the index list holds nothing but number-like
// tokens, so prose such as "done with 3 things" stays NoMatch.
func Parse(text string) Command {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Command{}
	}
	lower := strings.ToLower(trimmed)

	if keepAllPattern.MatchString(lower) {
		return Command{Kind: KindKeepAll}
	}

	if m := keepPattern.FindStringSubmatch(lower); m != nil {
		indices := parseIndices(m[1])
		sort.Ints(indices)
		// A keep command with nothing usable is still a keep command; the
		// caller answers it differently from plain chatter.
		return Command{Kind: KindKeepIndices, Indices: indices}
	}

	if m := statusPattern.FindStringSubmatch(lower); m != nil {
		indices := parseIndices(m[2])
		if len(indices) == 0 {
			return Command{}
		}
		return Command{Kind: KindStatusChange, Action: Action(m[1]), Indices: indices}
	}

	if m := projectPattern.FindStringSubmatch(trimmed); m != nil {
		indices := parseIndices(m[1])
		name := strings.TrimSpace(m[2])
		if len(indices) == 0 || name == "" {
			return Command{}
		}
		return Command{Kind: KindProjectTag, Indices: indices, Project: name}
	}

	return Command{}
}

// parseIndices splits on commas and whitespace, keeps positive integers and
// drops duplicates, preserving first-occurrence order.
func parseIndices(s string) []int {
	seen := make(map[int]struct{})
	indices := []int{}
	for _, token := range indexSeparator.Split(strings.TrimSpace(s), -1) {
		n, err := strconv.Atoi(token)
		if err != nil || n <= 0 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		indices = append(indices, n)
	}
	return indices
}

func (c Command) IsKeep() bool {
	return c.Kind == KindKeepAll || c.Kind == KindKeepIndices
}

func (c Command) IsTaskUpdate() bool {
	return c.Kind == KindStatusChange || c.Kind == KindProjectTag
}

// TargetStatus is the status a StatusChange forces on its tasks.
func (c Command) TargetStatus() domain.TaskStatus {
	switch c.Action {
	case ActionDone:
		return domain.TaskStatusDone
	case ActionRemove:
		return domain.TaskStatusRemoved
	}
	return domain.TaskStatusOpen
}

// Confirmation is the chat reply sent after a task update went through.
// positions are the 1-based list positions that were actually updated.
func (c Command) Confirmation(positions []int) string {
	refs := formatRefs(positions)
	switch c.Kind {
	case KindStatusChange:
		switch c.Action {
		case ActionDone:
			return fmt.Sprintf("Marked %s as done.", refs)
		case ActionRemove:
			return fmt.Sprintf("Removed %s.", refs)
		case ActionReopen:
			return fmt.Sprintf("Reopened %s.", refs)
		}
	case KindProjectTag:
		return fmt.Sprintf("Tagged %s with project %q.", refs, c.Project)
	}
	return ""
}

func formatRefs(indices []int) string {
	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = "#" + strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
