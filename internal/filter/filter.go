// Package filter narrows a derived task set by project and assignee.
package filter

import "taskboard/internal/task"

// State holds the active selections. An empty value disables that dimension.
type State struct {
	ProjectID string `json:"projectFilter"`
	MemberID  string `json:"memberFilter"`
}

// IsZero reports whether no filter is applied.
func (s State) IsZero() bool {
	return s.ProjectID == "" && s.MemberID == ""
}

// Match reports whether t passes both dimensions of the filter.
func (s State) Match(t task.NormalizedTask) bool {
	return (s.ProjectID == "" || t.ProjectID == s.ProjectID) &&
		(s.MemberID == "" || t.Assignee.UserID == s.MemberID)
}

// Apply returns the tasks passing s, preserving their relative order. The
// input slice is never modified.
func Apply(tasks []task.NormalizedTask, s State) []task.NormalizedTask {
	out := make([]task.NormalizedTask, 0, len(tasks))
	for _, t := range tasks {
		if s.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Options are the selectable values of each filter dimension.
type Options struct {
	ProjectIDs []string `json:"projects"`
	MemberIDs  []string `json:"members"`
}

// OptionsFor derives the de-duplicated choices from the unfiltered task set,
// in first-occurrence order, so selecting one filter never shrinks the other.
func OptionsFor(tasks []task.NormalizedTask) Options {
	opts := Options{ProjectIDs: []string{}, MemberIDs: []string{}}
	seenProject := make(map[string]struct{})
	seenMember := make(map[string]struct{})
	for _, t := range tasks {
		if _, ok := seenProject[t.ProjectID]; !ok {
			seenProject[t.ProjectID] = struct{}{}
			opts.ProjectIDs = append(opts.ProjectIDs, t.ProjectID)
		}
		if _, ok := seenMember[t.Assignee.UserID]; !ok {
			seenMember[t.Assignee.UserID] = struct{}{}
			opts.MemberIDs = append(opts.MemberIDs, t.Assignee.UserID)
		}
	}
	return opts
}
