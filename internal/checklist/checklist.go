// Package checklist tracks which tasks of one submission scope the user
// considers complete.
package checklist

import "taskboard/internal/task"

// Item is one checkbox. Entries are keyed by TaskID; Title is display only.
type Item struct {
	TaskID  string `json:"taskId"`
	Title   string `json:"title"`
	Checked bool   `json:"checked"`
}

// Snapshot is an immutable copy of the checklist.
type Snapshot struct {
	Items []Item `json:"items"`
}

// Selected counts checked items.
func (s Snapshot) Selected() int {
	n := 0
	for _, it := range s.Items {
		if it.Checked {
			n++
		}
	}
	return n
}

// Total is the number of items.
func (s Snapshot) Total() int { return len(s.Items) }

// Checked reports the state of one task; unknown ids are unchecked.
func (s Snapshot) Checked(taskID string) bool {
	for _, it := range s.Items {
		if it.TaskID == taskID {
			return it.Checked
		}
	}
	return false
}

// State is the mutable checklist. It is not safe for concurrent use.
type State struct {
	items []Item
	index map[string]int
}

// New returns an initialized checklist for tasks.
func New(tasks []task.NormalizedTask) *State {
	s := &State{}
	s.Initialize(tasks)
	return s
}

// Initialize replaces all entries. A task starts checked when its status is
// in progress or completed.
func (s *State) Initialize(tasks []task.NormalizedTask) {
	s.items = make([]Item, 0, len(tasks))
	s.index = make(map[string]int, len(tasks))
	for _, t := range tasks {
		if _, dup := s.index[t.ID]; dup {
			continue
		}
		s.index[t.ID] = len(s.items)
		class := t.Class()
		s.items = append(s.items, Item{
			TaskID:  t.ID,
			Title:   t.Title,
			Checked: class == task.ClassCompleted || class == task.ClassInProgress,
		})
	}
}

// Toggle flips one entry and reports whether it existed. Unknown ids are a
// silent no-op.
func (s *State) Toggle(taskID string) bool {
	i, ok := s.index[taskID]
	if !ok {
		return false
	}
	s.items[i].Checked = !s.items[i].Checked
	return true
}

// Snapshot returns a copy of the current entries.
func (s *State) Snapshot() Snapshot {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items}
}
