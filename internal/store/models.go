package store

import "time"

// Firing statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSnoozed = "snoozed"
)

// Firing is one row of the history log: an action that was executed.
type Firing struct {
	ID            int64
	FiredAt       time.Time
	ActionTime    string // HH:MM as written in the schedule
	Kind          string // notification, command
	Content       string
	Source        string // schedule, reminder
	Status        string
	SnoozeMinutes int
	Error         string
}

type Setting struct {
	Key   string
	Value string
}

// FiringFilter is used to filter history queries.
type FiringFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
}

// DaySummary counts one local day's firings by status.
type DaySummary struct {
	Date    string
	Total   int
	OK      int
	Failed  int
	Snoozed int
}
