// Package rollup collapses per-task completion flags into the single status
// shared by every task of a (project, user) scope.
package rollup

import (
	"taskboard/internal/checklist"
	"taskboard/internal/task"
)

// Status returns the aggregate status: done only when every task is checked,
// in-progress when some are, to-do otherwise (including an empty scope).
func Status(selected, total int) string {
	switch {
	case total > 0 && selected == total:
		return task.StatusDone
	case selected > 0:
		return task.StatusInProgress
	default:
		return task.StatusToDo
	}
}

// FromSnapshot computes the aggregate status of a checklist over total tasks.
func FromSnapshot(snap checklist.Snapshot, total int) string {
	return Status(snap.Selected(), total)
}
