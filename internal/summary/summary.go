// Package summary derives the per-project and per-status overview of a task set.
package summary

import "taskboard/internal/task"

// ProjectEntry counts the tasks of one project name.
type ProjectEntry struct {
	ProjectName string `json:"projectName"`
	TaskCount   int    `json:"taskCount"`
}

// Bucket is one slice of the status chart.
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary is the derived overview. Buckets always holds Completed,
// In Progress and Pending in that order.
type Summary struct {
	Projects []ProjectEntry `json:"projects"`
	Buckets  [3]Bucket      `json:"buckets"`
}

var bucketOrder = [3]task.Class{task.ClassCompleted, task.ClassInProgress, task.ClassPending}

// Aggregate computes the summary in a single pass. Projects are listed in
// first-occurrence order; tasks without a project name only count towards the
// status buckets.
func Aggregate(tasks []task.NormalizedTask) Summary {
	var s Summary
	for i, class := range bucketOrder {
		s.Buckets[i].Name = class.String()
	}

	index := make(map[string]int)
	for _, t := range tasks {
		switch t.Class() {
		case task.ClassCompleted:
			s.Buckets[0].Value++
		case task.ClassInProgress:
			s.Buckets[1].Value++
		default:
			s.Buckets[2].Value++
		}

		if t.ProjectName == "" {
			continue
		}
		if i, ok := index[t.ProjectName]; ok {
			s.Projects[i].TaskCount++
			continue
		}
		index[t.ProjectName] = len(s.Projects)
		s.Projects = append(s.Projects, ProjectEntry{ProjectName: t.ProjectName, TaskCount: 1})
	}
	if s.Projects == nil {
		s.Projects = []ProjectEntry{}
	}
	return s
}

// Total returns the sum of all bucket values.
func (s Summary) Total() int {
	n := 0
	for _, b := range s.Buckets {
		n += b.Value
	}
	return n
}
