package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/routine/internal/dispatch"
	"github.com/sadopc/routine/internal/reminder"
	"github.com/sadopc/routine/internal/schedule"
	"github.com/sadopc/routine/internal/store"
)

const upcomingCount = 5

type dashboardModel struct {
	store  *store.Store
	width  int
	height int

	now       time.Time
	last      *dispatch.Report
	sched     schedule.Schedule
	schedErr  error
	reminders []reminder.Reminder
	summary   store.DaySummary
	recent    []store.Firing
}

func newDashboardModel(s *store.Store) dashboardModel {
	return dashboardModel{
		store: s,
		now:   time.Now(),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		summary, _ := d.store.GetDaySummary(time.Now())
		recent, _ := d.store.ListFirings(store.FiringFilter{Limit: 5})
		return dashboardDataMsg{summary: summary, recent: recent}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.summary = msg.summary
		d.recent = msg.recent
	case tickMsg:
		d.now = time.Time(msg)
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderClockPanel(contentWidth),
		d.renderUpcomingPanel(contentWidth),
		d.renderRemindersPanel(contentWidth),
		d.renderTodayPanel(contentWidth),
	)
}

func (d dashboardModel) renderClockPanel(w int) string {
	clock := clockStyle.Width(w - 6).Render(d.now.Format("15:04:05"))

	var window string
	switch {
	case d.last == nil:
		window = mutedStyle.Render("waiting for the first minute boundary")
	case !d.last.Ran:
		window = mutedStyle.Render("last tick " + d.last.Now.Format("15:04:05") + " skipped")
	default:
		window = fmt.Sprintf("last window %s → %s", d.last.Start, d.last.End)
		if d.last.Clamped {
			window += warningStyle.Render("  (caught up 1h)")
		}
		window = highlightStyle.Render(window)
	}

	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, clock, window),
	)
}

func (d dashboardModel) renderUpcomingPanel(w int) string {
	title := titleStyle.Render("Up Next")
	if d.schedErr != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			errorStyle.Render("schedule not loaded: "+d.schedErr.Error()),
		))
	}
	if len(d.sched.Actions) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing scheduled"),
		))
	}

	rows := []string{title}
	for _, a := range d.sched.Upcoming(schedule.Clock(d.now), upcomingCount) {
		rows = append(rows, fmt.Sprintf("  %s %s  %-40s %s",
			kindIcon(a.Kind.String()),
			highlightStyle.Render(a.Time.String()),
			a.Content,
			mutedStyle.Render(formatUntil(untilNext(d.now, a.Time))),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRemindersPanel(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Reminders (%d)", len(d.reminders)))
	if len(d.reminders) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No snoozed notifications"),
		))
	}

	rows := []string{title}
	for _, r := range d.reminders {
		rows = append(rows, fmt.Sprintf("  ⏰ %s  %-40s %s",
			warningStyle.Render(r.FireTime.String()),
			r.Action.Content,
			mutedStyle.Render(fmt.Sprintf("from %s, +%d min", r.Action.Time, r.Minutes)),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	s := d.summary
	header := fmt.Sprintf("%s  %s  %s  %s",
		titleStyle.Render("Today"),
		successStyle.Render(fmt.Sprintf("%d ok", s.OK)),
		errorStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
		warningStyle.Render(fmt.Sprintf("%d snoozed", s.Snoozed)),
	)
	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing has fired yet"),
		))
	}

	rows := []string{header}
	for _, f := range d.recent {
		rows = append(rows, fmt.Sprintf("  %s %s  %-40s %s",
			kindIcon(f.Kind),
			f.FiredAt.Local().Format("15:04"),
			f.Content,
			statusStyle(f.Status).Render(f.Status),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
