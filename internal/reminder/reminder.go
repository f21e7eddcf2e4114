// Package reminder holds snoozed actions until their rescheduled time of day.
package reminder

import "github.com/sadopc/routine/internal/schedule"

// Reminder re-fires Action at FireTime. Action keeps its original time of day;
// only FireTime reflects the snooze.
type Reminder struct {
	ID       int64
	Action   schedule.Action
	FireTime schedule.TimeOfDay
	Minutes  int // the snooze offset that produced FireTime
}

// Store is an in-memory, insertion-ordered collection of outstanding
// reminders. It is not safe for concurrent use; the owner serializes access.
type Store struct {
	items  []Reminder
	nextID int64
}

func NewStore() *Store {
	return &Store{}
}

// Insert adds r and returns it with its assigned ID. Each call creates a
// distinct entry, even for an identical action and fire time.
func (s *Store) Insert(r Reminder) Reminder {
	s.nextID++
	r.ID = s.nextID
	s.items = append(s.items, r)
	return r
}

// TakeDue removes and returns every reminder whose FireTime lies in the
// inclusive window [start, end], most recently inserted first.
func (s *Store) TakeDue(start, end schedule.TimeOfDay) []Reminder {
	var due []Reminder
	kept := s.items[:0]
	for _, r := range s.items {
		if schedule.IsDue(r.FireTime, start, end) {
			due = append(due, r)
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = Reminder{}
	}
	s.items = kept

	for i, j := 0, len(due)-1; i < j; i, j = i+1, j-1 {
		due[i], due[j] = due[j], due[i]
	}
	return due
}

// List returns a copy of the outstanding reminders in insertion order.
func (s *Store) List() []Reminder {
	out := make([]Reminder, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int { return len(s.items) }
