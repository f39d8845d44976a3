package service

const (
	ReplyNoLogBlock        = "I couldn't find a log block before your message. Paste the logs as one message, then ask me to summarize."
	ReplyHistoryFailed     = "I couldn't read the channel history, so nothing was summarized."
	ReplyNoActionableTasks = "No actionable tasks found in the latest summary."
	ReplyNoPendingBatch    = "There are no pending tasks to confirm."
	ReplyNoValidNumbers    = "None of those numbers match a pending task. Nothing was saved."
	ReplySaveFailed        = "Saving the tasks failed. They are still pending, so you can try again."
	ReplyNoCachedList      = "There is no task list to update yet. Wait for the next daily briefing."
	ReplyNoMatchingNumbers = "None of those numbers match the last task list."
	ReplyUpdateFailed      = "Updating the tasks failed. Nothing was changed."
	ReplyUnexpectedFailure = "Something went wrong while handling that message."
	keepInstructions       = "Reply with `keep all` or `keep: 1,3` to save tasks."
	summaryHeading         = "**Summary**"
	proposalHeading        = "**Proposed tasks**"
	savedHeading           = "Saved %d task(s):"
	opsLogPrefix           = "[pa-bridge]"
)
