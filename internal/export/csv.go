package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/routine/internal/store"
)

var csvHeader = []string{"ID", "Fired At", "Scheduled", "Kind", "Content", "Source", "Status", "Snooze (min)", "Snooze", "Error"}

// ToCSV writes firing history to path, one row per firing.
func ToCSV(firings []store.Firing, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, fr := range firings {
		snooze := ""
		if fr.SnoozeMinutes > 0 {
			snooze = formatDuration(int64(fr.SnoozeMinutes) * 60)
		}
		row := []string{
			fmt.Sprintf("%d", fr.ID),
			fr.FiredAt.Local().Format(time.RFC3339),
			fr.ActionTime,
			fr.Kind,
			fr.Content,
			fr.Source,
			fr.Status,
			fmt.Sprintf("%d", fr.SnoozeMinutes),
			snooze,
			fr.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
