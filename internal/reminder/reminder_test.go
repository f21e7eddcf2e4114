package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/routine/internal/schedule"
)

func note(content string, h, m int) schedule.Action {
	return schedule.Action{Kind: schedule.Notification, Content: content, Time: schedule.At(h, m)}
}

func TestInsertAssignsIDs(t *testing.T) {
	s := NewStore()
	a := s.Insert(Reminder{Action: note("a", 9, 0), FireTime: schedule.At(9, 10)})
	b := s.Insert(Reminder{Action: note("a", 9, 0), FireTime: schedule.At(9, 10)})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len(), "identical snoozes are distinct entries")
}

func TestTakeDueRemovesOnlyDue(t *testing.T) {
	s := NewStore()
	s.Insert(Reminder{Action: note("early", 8, 0), FireTime: schedule.At(8, 5)})
	s.Insert(Reminder{Action: note("late", 8, 0), FireTime: schedule.At(10, 0)})

	due := s.TakeDue(schedule.At(8, 0), schedule.At(8, 10))
	require.Len(t, due, 1)
	assert.Equal(t, "early", due[0].Action.Content)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "late", s.List()[0].Action.Content)

	assert.Empty(t, s.TakeDue(schedule.At(8, 0), schedule.At(8, 10)), "taken reminders do not fire twice")
}

func TestTakeDueMostRecentFirst(t *testing.T) {
	s := NewStore()
	s.Insert(Reminder{Action: note("first", 9, 0), FireTime: schedule.At(9, 5)})
	s.Insert(Reminder{Action: note("second", 9, 0), FireTime: schedule.At(9, 6)})
	s.Insert(Reminder{Action: note("third", 9, 0), FireTime: schedule.At(9, 7)})

	due := s.TakeDue(schedule.At(9, 0), schedule.At(9, 10))
	require.Len(t, due, 3)
	assert.Equal(t, "third", due[0].Action.Content)
	assert.Equal(t, "second", due[1].Action.Content)
	assert.Equal(t, "first", due[2].Action.Content)
	assert.Zero(t, s.Len())
}

func TestTakeDueAcrossMidnight(t *testing.T) {
	s := NewStore()
	s.Insert(Reminder{Action: note("a", 23, 55), FireTime: schedule.At(23, 55).Add(10 * time.Minute)})
	due := s.TakeDue(schedule.At(23, 58), schedule.At(0, 6))
	require.Len(t, due, 1)
	assert.Equal(t, schedule.At(0, 5), due[0].FireTime)
	assert.Equal(t, schedule.At(23, 55), due[0].Action.Time, "original time is preserved")
}

func TestListIsACopy(t *testing.T) {
	s := NewStore()
	s.Insert(Reminder{Action: note("a", 1, 0), FireTime: schedule.At(1, 5)})
	l := s.List()
	l[0].Action.Content = "changed"
	assert.Equal(t, "a", s.List()[0].Action.Content)
}
