package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/task"
)

func nt(id, title, status string) task.NormalizedTask {
	return task.NormalizedTask{RawTask: task.RawTask{ID: id, Title: title, Status: status}}
}

func TestState(t *testing.T) {
	t.Run("Should seed from status", func(t *testing.T) {
		s := New([]task.NormalizedTask{
			nt("1", "A", "done"),
			nt("2", "B", "to-do"),
			nt("3", "C", "In-Progress"),
			nt("4", "D", "blocked"),
		})
		snap := s.Snapshot()
		assert.True(t, snap.Checked("1"))
		assert.False(t, snap.Checked("2"))
		assert.True(t, snap.Checked("3"))
		assert.False(t, snap.Checked("4"))
		assert.Equal(t, 2, snap.Selected())
		assert.Equal(t, 4, snap.Total())
	})

	t.Run("Should toggle known ids and ignore unknown ones", func(t *testing.T) {
		s := New([]task.NormalizedTask{nt("1", "A", "to-do")})
		assert.True(t, s.Toggle("1"))
		assert.True(t, s.Snapshot().Checked("1"))
		assert.False(t, s.Toggle("nope"))
		assert.Equal(t, 1, s.Snapshot().Total())
		assert.True(t, s.Toggle("1"))
		assert.False(t, s.Snapshot().Checked("1"))
	})

	t.Run("Should keep tasks sharing a title apart", func(t *testing.T) {
		s := New([]task.NormalizedTask{nt("1", "Same", "to-do"), nt("2", "Same", "to-do")})
		s.Toggle("1")
		snap := s.Snapshot()
		assert.Equal(t, 2, snap.Total())
		assert.Equal(t, 1, snap.Selected())
	})

	t.Run("Should hand out snapshots detached from later toggles", func(t *testing.T) {
		s := New([]task.NormalizedTask{nt("1", "A", "to-do")})
		before := s.Snapshot()
		s.Toggle("1")
		require.Len(t, before.Items, 1)
		assert.False(t, before.Items[0].Checked)
	})

	t.Run("Should reset on Initialize", func(t *testing.T) {
		s := New([]task.NormalizedTask{nt("1", "A", "done")})
		s.Initialize([]task.NormalizedTask{nt("9", "Z", "to-do")})
		snap := s.Snapshot()
		assert.Equal(t, 1, snap.Total())
		assert.False(t, snap.Checked("1"))
	})
}
