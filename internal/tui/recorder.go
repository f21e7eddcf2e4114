package tui

import (
	"github.com/sadopc/routine/internal/dispatch"
	"github.com/sadopc/routine/internal/store"
)

// historyRecorder persists every dispatched firing to the history table.
type historyRecorder struct {
	store *store.Store
}

func (r historyRecorder) RecordFiring(f dispatch.Firing) (int64, error) {
	row := store.Firing{
		FiredAt:    f.At,
		ActionTime: f.Action.Time.String(),
		Kind:       f.Action.Kind.String(),
		Content:    f.Action.Content,
		Source:     f.Source.String(),
		Status:     store.StatusOK,
	}
	if f.Err != nil {
		row.Status = store.StatusFailed
		row.Error = f.Err.Error()
	}
	if len(f.Snoozed) > 0 {
		row.Status = store.StatusSnoozed
		row.SnoozeMinutes = f.Snoozed[0].Minutes
	}
	return r.store.AddFiring(row)
}
