package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/routine/internal/schedule"
)

// scheduleModel shows the schedule file as the next tick will read it.
type scheduleModel struct {
	path   string
	width  int
	height int

	sched    schedule.Schedule
	err      error
	loadedAt time.Time
	watching bool
	offset   int
}

func newScheduleModel(path string) scheduleModel {
	return scheduleModel{path: path}
}

func (m *scheduleModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m scheduleModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sched, err := schedule.Load(m.path)
		return scheduleDataMsg{sched: sched, err: err, loadedAt: time.Now()}
	}
}

// changeRelay forwards schedule file edits to whichever program is currently
// running the App. One reader drains the watcher for the App's lifetime.
type changeRelay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// attach directs future edits to send. A nil send drops them.
func (r *changeRelay) attach(send func(tea.Msg)) {
	r.mu.Lock()
	r.send = send
	r.mu.Unlock()
}

// run reads changes until the watcher closes.
func (r *changeRelay) run(changes <-chan struct{}) {
	for range changes {
		r.mu.Lock()
		send := r.send
		r.mu.Unlock()
		if send != nil {
			send(scheduleChangedMsg{})
		}
	}
}

func (m scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	switch msg := msg.(type) {
	case scheduleDataMsg:
		m.sched = msg.sched
		m.err = msg.err
		m.loadedAt = msg.loadedAt
		if m.offset >= len(m.sched.Actions) {
			m.offset = 0
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, keys.Down):
			if m.offset < len(m.sched.Actions)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m scheduleModel) visibleRows() int {
	return max(m.height-12, 3)
}

func (m scheduleModel) view() string {
	w := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Schedule"), "  ", mutedStyle.Render(m.path),
	)
	loaded := "not loaded yet"
	if !m.loadedAt.IsZero() {
		loaded = "read at " + m.loadedAt.Format("15:04:05")
	}
	if m.watching {
		loaded += ", watching for changes"
	}

	rows := []string{header, mutedStyle.Render(loaded), ""}
	rows = append(rows, m.renderBody()...)
	rows = append(rows, "", mutedStyle.Render("  ↑/↓: scroll  edits take effect on the next minute"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m scheduleModel) renderBody() []string {
	if m.err != nil {
		var perr *schedule.ParseError
		if errors.As(m.err, &perr) {
			return []string{
				errorStyle.Render(fmt.Sprintf("✗ line %d: %s", perr.Line, perr.Reason)),
				mutedStyle.Render("  " + perr.Text),
				"",
				warningStyle.Render("Nothing will fire until the file is fixed. Snoozed reminders still fire."),
			}
		}
		return []string{errorStyle.Render("✗ " + m.err.Error())}
	}

	var rows []string
	if len(m.sched.ReminderOffsets) == 0 {
		rows = append(rows, mutedStyle.Render("No remind line: notifications cannot be snoozed"))
	} else {
		offs := make([]string, len(m.sched.ReminderOffsets))
		for i, o := range m.sched.ReminderOffsets {
			offs[i] = fmt.Sprintf("%d min", o)
		}
		rows = append(rows, "Snooze options: "+accentStyle.Render(strings.Join(offs, ", ")))
	}
	rows = append(rows, "")

	if len(m.sched.Actions) == 0 {
		return append(rows, mutedStyle.Render("No actions"))
	}

	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-6s %-13s %s", "Time", "Kind", "Content")))
	end := min(m.offset+m.visibleRows(), len(m.sched.Actions))
	for i := m.offset; i < end; i++ {
		a := m.sched.Actions[i]
		style := normalItemStyle
		if a.Kind == schedule.Command {
			style = accentStyle
		}
		rows = append(rows, fmt.Sprintf("  %-6s %-13s %s",
			a.Time, a.Kind, style.Render(a.Content)))
	}
	if rest := len(m.sched.Actions) - end; rest > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", rest)))
	}
	return rows
}
