package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/routine/internal/schedule"
	"github.com/sadopc/routine/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewSchedule
	viewHistory
	viewSettings
)

var viewNames = []string{"Dashboard", "Schedule", "History", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// tickMsg drives the on-screen clock.
type tickMsg time.Time

// dispatchMsg fires on every wall-clock minute boundary.
type dispatchMsg time.Time

type scheduleChangedMsg struct{}

type scheduleDataMsg struct {
	sched    schedule.Schedule
	err      error
	loadedAt time.Time
}

type exportDoneMsg struct {
	path string
}

type dashboardDataMsg struct {
	summary store.DaySummary
	recent  []store.Firing
}

// --- Helpers ---

// formatUntil renders a short relative time such as "in 1h05m" or "in 7m".
func formatUntil(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "now"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("in %dm", m)
	}
	return fmt.Sprintf("in %dh%02dm", h, m)
}

// untilNext is how long from now until t next occurs on the wall clock.
func untilNext(now time.Time, t schedule.TimeOfDay) time.Duration {
	d := time.Duration(t - schedule.Clock(now))
	if d <= 0 {
		d += 24 * time.Hour
	}
	return d
}

func kindIcon(k string) string {
	if k == schedule.Command.String() {
		return "$"
	}
	return "✉"
}
