package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/sadopc/routine/internal/reminder"
	"github.com/sadopc/routine/internal/schedule"
)

// MaxCatchUp bounds how far back a tick looks after a long gap (suspend,
// debugger pause). Older actions are dropped rather than fired late.
const MaxCatchUp = time.Hour

var ErrNonPositiveSnooze = errors.New("snooze minutes must be positive")

// Executor performs an action's side effect. For a notification it may return
// the snooze offsets the user picked from offsets; commands return none.
type Executor interface {
	Execute(ctx context.Context, a schedule.Action, offsets []int) ([]int, error)
}

// ExecutorFunc adapts a plain function to Executor.
type ExecutorFunc func(ctx context.Context, a schedule.Action, offsets []int) ([]int, error)

func (f ExecutorFunc) Execute(ctx context.Context, a schedule.Action, offsets []int) ([]int, error) {
	return f(ctx, a, offsets)
}

// Recorder receives every firing after it ran, e.g. to keep a history log.
type Recorder interface {
	RecordFiring(f Firing) (int64, error)
}

// Source says why an action fired.
type Source int

const (
	FromSchedule Source = iota
	FromReminder
)

func (s Source) String() string {
	if s == FromReminder {
		return "reminder"
	}
	return "schedule"
}

// Firing is one executed action within a tick.
type Firing struct {
	Action    schedule.Action
	Source    Source
	At        time.Time
	Offsets   []int // snooze options offered to the executor
	Snoozed   []reminder.Reminder
	Err       error
	HistoryID int64 // set when a Recorder stored it
}

// Report describes what a Tick did.
type Report struct {
	Since time.Time // previous tick, before any catch-up clamp
	Now   time.Time

	// Ran is false when the tick was gated out (same minute, under a minute
	// elapsed, or the clock went backwards).
	Ran     bool
	Clamped bool
	Start   schedule.TimeOfDay
	End     schedule.TimeOfDay

	Schedule schedule.Schedule
	Fired    []Firing
	Errors   []error
}
