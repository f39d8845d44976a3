package service

import (
	"fmt"
	"strings"

	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

func renderSummary(event domain.CanonicalEvent) string {
	return summaryHeading + "\n" + event.Content
}

// renderProposal numbers tasks from 1 in event order; keep commands refer
// to these positions.
func renderProposal(tasks []domain.ProposedTask) string {
	var b strings.Builder
	b.WriteString(proposalHeading)
	b.WriteString("\n")
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. %s", i+1, t.Title)
		if t.Due != nil {
			fmt.Fprintf(&b, " (due %s)", *t.Due)
		}
		if t.PriorityHint != nil {
			fmt.Fprintf(&b, " [%s]", *t.PriorityHint)
		}
		if t.ProjectHint != nil {
			fmt.Fprintf(&b, " {%s}", *t.ProjectHint)
		}
		b.WriteString("\n")
		if t.Context != "" {
			fmt.Fprintf(&b, "   %s\n", t.Context)
		}
	}
	b.WriteString(keepInstructions)
	return b.String()
}

func renderSaved(tasks []domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, savedHeading, len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&b, "\n- %s", t.Title)
	}
	return b.String()
}

func renderOpsLog(flow string, err error) string {
	return fmt.Sprintf("%s %s failed: %v", opsLogPrefix, flow, err)
}
