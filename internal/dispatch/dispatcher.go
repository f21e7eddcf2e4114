// Package dispatch decides, once per tick, which scheduled actions and snoozed
// reminders are due and hands them to an Executor.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/sadopc/routine/internal/reminder"
	"github.com/sadopc/routine/internal/schedule"
)

// Dispatcher owns the tick state for one schedule file. It is not safe for
// concurrent use: Tick and Snooze must be called from the same goroutine.
type Dispatcher struct {
	path      string
	last      time.Time
	reminders *reminder.Store
	exec      Executor
	rec       Recorder
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.rec = r }
}

func WithReminders(s *reminder.Store) Option {
	return func(d *Dispatcher) { d.reminders = s }
}

// New creates a Dispatcher for the schedule at path. now seeds the last known
// tick time, so the first window starts at startup.
func New(path string, now time.Time, exec Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		path:      path,
		last:      now,
		reminders: reminder.NewStore(),
		exec:      exec,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Dispatcher) Path() string { return d.path }

// LastTick is the time passed to the most recent Tick, or the seed time.
func (d *Dispatcher) LastTick() time.Time { return d.last }

// Reminders lists outstanding snoozes in insertion order.
func (d *Dispatcher) Reminders() []reminder.Reminder {
	return d.reminders.List()
}

// Tick evaluates the window between the previous tick and now. Due reminders
// fire first, most recent snooze first, then due schedule actions in file
// order. The schedule file is re-read on every tick that runs. If it cannot
// be read or parsed the error is reported and no schedule actions fire, but
// due reminders still do; they are held in memory and skipping them would
// push each one back a full day.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) Report {
	previous := d.last
	d.last = now

	r := Report{Since: previous, Now: now}
	elapsed := now.Sub(previous)
	if elapsed < 0 {
		log.Printf("dispatch: clock moved back %s, skipping tick", -elapsed)
		return r
	}
	if elapsed < time.Minute && previous.Minute() == now.Minute() {
		return r
	}
	r.Ran = true

	start := previous
	if elapsed > MaxCatchUp {
		start = now.Add(-MaxCatchUp)
		r.Clamped = true
	}
	r.Start, r.End = schedule.Clock(start), schedule.Clock(now)

	sched, err := schedule.Load(d.path)
	if err != nil {
		err = fmt.Errorf("load %s: %w", d.path, err)
		log.Printf("error: %v", err)
		r.Errors = append(r.Errors, err)
	}
	r.Schedule = sched

	for _, rem := range d.reminders.TakeDue(r.Start, r.End) {
		d.fire(ctx, &r, rem.Action, FromReminder, sched.ReminderOffsets)
	}
	for _, a := range sched.Due(r.Start, r.End) {
		d.fire(ctx, &r, a, FromSchedule, sched.ReminderOffsets)
	}
	return r
}

func (d *Dispatcher) fire(ctx context.Context, r *Report, a schedule.Action, src Source, offsets []int) {
	if a.Kind == schedule.Command {
		offsets = nil
	}
	f := Firing{Action: a, Source: src, At: r.Now, Offsets: offsets}
	log.Printf("dispatch: firing %s %s %q (%s)", a.Time, a.Kind, a.Content, src)

	choices, err := d.exec.Execute(ctx, a, offsets)
	if err != nil {
		f.Err = err
		err = fmt.Errorf("%s %q: %w", a.Kind, a.Content, err)
		log.Printf("error: %v", err)
		r.Errors = append(r.Errors, err)
	}
	for _, m := range choices {
		if !slices.Contains(offsets, m) {
			err := fmt.Errorf("snooze %d min for %q: not an offered option", m, a.Content)
			log.Printf("error: %v", err)
			r.Errors = append(r.Errors, err)
			continue
		}
		rem, err := d.Snooze(a, m, r.Now)
		if err != nil {
			err = fmt.Errorf("snooze %d min for %q: %w", m, a.Content, err)
			log.Printf("error: %v", err)
			r.Errors = append(r.Errors, err)
			continue
		}
		f.Snoozed = append(f.Snoozed, rem)
	}

	if d.rec != nil {
		id, err := d.rec.RecordFiring(f)
		if err != nil {
			err = fmt.Errorf("record firing: %w", err)
			log.Printf("error: %v", err)
			r.Errors = append(r.Errors, err)
		}
		f.HistoryID = id
	}
	r.Fired = append(r.Fired, f)
}

// Snooze schedules a to fire again minutes after at. It may be called between
// ticks, e.g. when a user answers a notification late.
func (d *Dispatcher) Snooze(a schedule.Action, minutes int, at time.Time) (reminder.Reminder, error) {
	if minutes <= 0 {
		return reminder.Reminder{}, ErrNonPositiveSnooze
	}
	rem := d.reminders.Insert(reminder.Reminder{
		Action:   a,
		FireTime: schedule.Clock(at).AddMinutes(minutes),
		Minutes:  minutes,
	})
	log.Printf("dispatch: snoozed %q for %d min, fires at %s", a.Content, minutes, rem.FireTime)
	return rem, nil
}
