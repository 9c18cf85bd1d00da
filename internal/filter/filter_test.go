package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/task"
)

func mk(id, project, member string) task.NormalizedTask {
	return task.NormalizedTask{
		RawTask:  task.RawTask{ID: id, ProjectID: project},
		Assignee: task.Assignee{UserID: member},
	}
}

func ids(tasks []task.NormalizedTask) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

var fixture = []task.NormalizedTask{
	mk("1", "p1", "u1"),
	mk("2", "p2", "u1"),
	mk("3", "p1", "u2"),
	mk("4", "p3", "Unassigned"),
}

func TestApply(t *testing.T) {
	t.Run("Should return the identity for an empty state", func(t *testing.T) {
		assert.Equal(t, fixture, Apply(fixture, State{}))
	})

	t.Run("Should filter by project", func(t *testing.T) {
		assert.Equal(t, []string{"1", "3"}, ids(Apply(fixture, State{ProjectID: "p1"})))
	})

	t.Run("Should filter by member", func(t *testing.T) {
		assert.Equal(t, []string{"1", "2"}, ids(Apply(fixture, State{MemberID: "u1"})))
	})

	t.Run("Should combine both dimensions", func(t *testing.T) {
		assert.Equal(t, []string{"3"}, ids(Apply(fixture, State{ProjectID: "p1", MemberID: "u2"})))
		assert.Empty(t, Apply(fixture, State{ProjectID: "p2", MemberID: "u2"}))
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		s := State{ProjectID: "p1"}
		once := Apply(fixture, s)
		assert.Equal(t, once, Apply(once, s))
	})
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(fixture)
	assert.Equal(t, []string{"p1", "p2", "p3"}, opts.ProjectIDs)
	assert.Equal(t, []string{"u1", "u2", "Unassigned"}, opts.MemberIDs)

	empty := OptionsFor(nil)
	assert.Empty(t, empty.ProjectIDs)
	assert.NotNil(t, empty.MemberIDs)
}
