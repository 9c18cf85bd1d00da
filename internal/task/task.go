package task

import "time"

// RawTask is a task record as returned by the remote store.
type RawTask struct {
	ID                 string `json:"_id"`
	ProjectID          string `json:"projectId"`
	ProjectName        string `json:"projectName"`
	Title              string `json:"title"`
	AssignedToUserID   string `json:"assignedToUserId"`
	AssignedToUsername string `json:"assignedToUsername"`
	Status             string `json:"status"`
	Priority           string `json:"priority"`
	DueDate            string `json:"dueDate,omitempty"`
	GitHub             string `json:"github,omitempty"`
}

// Assignee is the resolved owner of a task.
type Assignee struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Initials string `json:"initials"`
}

// Defaults applied when the store leaves the assignee blank.
const (
	UnknownUsername = "Unknown"
	UnassignedID    = "Unassigned"
	DefaultInitials = "U"
)

// NormalizedTask is the canonical in-memory task. Progress and DueDateISO are
// derived only from Status and DueDate.
type NormalizedTask struct {
	RawTask
	Assignee        Assignee `json:"assignee"`
	ProgressPercent int      `json:"progress"`
	DueDateISO      string   `json:"dueDateISO"`
}

// Class returns the progress class of the task's status.
func (t NormalizedTask) Class() Class {
	return Classify(t.Status)
}

// Overdue reports whether the calendar due date lies before now. The date is
// read as UTC midnight; tasks without a due date are never overdue.
func (t NormalizedTask) Overdue(now time.Time) bool {
	if t.DueDateISO == "" {
		return false
	}
	due, err := time.Parse(isoDate, t.DueDateISO)
	if err != nil {
		return false
	}
	return due.Before(now)
}
