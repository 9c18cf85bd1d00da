package task

import "strings"

// Canonical status values understood by the task store.
const (
	StatusToDo       = "to-do"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
	StatusCompleted  = "completed"
)

// Class is the coarse progress class of a status. Every component that needs
// to interpret a status goes through Classify so they never disagree.
type Class int

const (
	// ClassPending is the catch-all: "to-do", unknown and missing statuses.
	ClassPending Class = iota
	ClassInProgress
	ClassCompleted
)

// Classify maps a free-text status case-insensitively onto its class.
func Classify(status string) Class {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusDone, StatusCompleted:
		return ClassCompleted
	case StatusInProgress:
		return ClassInProgress
	default:
		return ClassPending
	}
}

// String returns the chart bucket name of the class.
func (c Class) String() string {
	switch c {
	case ClassCompleted:
		return "Completed"
	case ClassInProgress:
		return "In Progress"
	default:
		return "Pending"
	}
}

// Progress returns the progress percentage shown for the class.
func (c Class) Progress() int {
	switch c {
	case ClassCompleted:
		return 100
	case ClassInProgress:
		return 50
	default:
		return 0
	}
}

// StatusLabel is the human label of a status. Unknown statuses are shown as-is.
func StatusLabel(status string) string {
	switch strings.ToLower(status) {
	case StatusToDo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone, StatusCompleted:
		return "Completed"
	default:
		return status
	}
}

// StatusTone is the display tone of a status chip.
func StatusTone(status string) string {
	switch strings.ToLower(status) {
	case StatusToDo:
		return "primary"
	case StatusInProgress:
		return "info"
	case StatusDone, StatusCompleted:
		return "success"
	default:
		return "default"
	}
}

// PriorityTone is the display tone of a priority chip.
func PriorityTone(priority string) string {
	switch strings.ToLower(priority) {
	case "high":
		return "error"
	case "medium":
		return "warning"
	case "low":
		return "success"
	default:
		return "default"
	}
}
