// Package schedule reads the plain-text routine file and answers which of its
// actions fall inside a time-of-day window.
package schedule

import (
	"cmp"
	"slices"
	"time"
)

// Kind distinguishes what firing an action does.
type Kind int

const (
	Notification Kind = iota
	Command
)

func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	default:
		return "notification"
	}
}

// Action is one scheduled line. It recurs daily at Time.
type Action struct {
	Kind    Kind
	Content string
	Time    TimeOfDay
}

// Schedule is the parsed form of a schedule file. The zero value schedules
// nothing.
type Schedule struct {
	Actions         []Action
	ReminderOffsets []int // minutes, all > 0, in file order
}

// Empty reports whether s would fire nothing and offer no snooze options.
func (s Schedule) Empty() bool {
	return len(s.Actions) == 0 && len(s.ReminderOffsets) == 0
}

// Due returns the actions whose time lies in [start, end], in file order.
func (s Schedule) Due(start, end TimeOfDay) []Action {
	var due []Action
	for _, a := range s.Actions {
		if IsDue(a.Time, start, end) {
			due = append(due, a)
		}
	}
	return due
}

// Upcoming returns up to n actions ordered by how soon they next occur
// strictly after from, wrapping past midnight. Ties keep file order.
func (s Schedule) Upcoming(from TimeOfDay, n int) []Action {
	out := slices.Clone(s.Actions)
	slices.SortStableFunc(out, func(a, b Action) int {
		return cmp.Compare(until(from, a.Time), until(from, b.Time))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func until(from, t TimeOfDay) time.Duration {
	d := time.Duration(t - from)
	if d <= 0 {
		d += day
	}
	return d
}
