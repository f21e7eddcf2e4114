package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/routine/internal/store"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Count      int          `json:"count"`
	Summary    jsonSummary  `json:"summary"`
	Firings    []jsonFiring `json:"firings"`
}

type jsonSummary struct {
	OK      int `json:"ok"`
	Failed  int `json:"failed"`
	Snoozed int `json:"snoozed"`
}

type jsonFiring struct {
	ID            int64  `json:"id"`
	FiredAt       string `json:"fired_at"`
	ActionTime    string `json:"action_time"`
	Kind          string `json:"kind"`
	Content       string `json:"content"`
	Source        string `json:"source"`
	Status        string `json:"status"`
	SnoozeMinutes int    `json:"snooze_minutes,omitempty"`
	Snooze        string `json:"snooze,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ToJSON writes firing history to path as an indented document with a
// per-status summary.
func ToJSON(firings []store.Firing, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(firings),
	}

	for _, f := range firings {
		switch f.Status {
		case store.StatusOK:
			export.Summary.OK++
		case store.StatusFailed:
			export.Summary.Failed++
		case store.StatusSnoozed:
			export.Summary.Snoozed++
		}
		jf := jsonFiring{
			ID:            f.ID,
			FiredAt:       f.FiredAt.Local().Format(time.RFC3339),
			ActionTime:    f.ActionTime,
			Kind:          f.Kind,
			Content:       f.Content,
			Source:        f.Source,
			Status:        f.Status,
			SnoozeMinutes: f.SnoozeMinutes,
			Error:         f.Error,
		}
		if f.SnoozeMinutes > 0 {
			jf.Snooze = formatDuration(int64(f.SnoozeMinutes) * 60)
		}
		export.Firings = append(export.Firings, jf)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
