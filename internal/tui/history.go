package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/routine/internal/store"
)

var historyFilters = []string{"", store.StatusOK, store.StatusFailed, store.StatusSnoozed}

const historyRows = 10

type historyModel struct {
	store  *store.Store
	width  int
	height int

	offset  int // days back from today (0 = today)
	filter  int // index into historyFilters
	counts  [24]int
	summary store.DaySummary
	firings []store.Firing

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	counts  [24]int
	summary store.DaySummary
	firings []store.Firing
}

func (h historyModel) day() time.Time {
	return time.Now().AddDate(0, 0, -h.offset)
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		day := h.day()
		counts, _ := h.store.HourlyCounts(day)
		summary, _ := h.store.GetDaySummary(day)

		y, m, d := day.Date()
		from := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
		to := from.AddDate(0, 0, 1)
		firings, _ := h.store.ListFirings(store.FiringFilter{
			From:   &from,
			To:     &to,
			Status: historyFilters[h.filter],
			Limit:  historyRows,
		})
		return historyDataMsg{counts: counts, summary: summary, firings: firings}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.counts = msg.counts
		h.summary = msg.summary
		h.firings = msg.firings
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			return h, h.refresh()
		case key.Matches(msg, keys.Today):
			h.offset = 0
			return h, h.refresh()
		case key.Matches(msg, keys.Filter):
			h.filter = (h.filter + 1) % len(historyFilters)
			return h, h.refresh()
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := max(h.width-8, 24)
	chartHeight := 10
	if h.height > 34 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	style := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData
	for hour, n := range h.counts {
		label := ""
		if hour%3 == 0 {
			label = fmt.Sprintf("%02d", hour)
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "firings", Value: float64(n), Style: style}},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	filter := historyFilters[h.filter]
	if filter == "" {
		filter = "all"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ",
		highlightStyle.Render(h.day().Format("Mon Jan 02, 2006")), "  ",
		mutedStyle.Render("showing "+filter),
	)

	s := h.summary
	totals := fmt.Sprintf("%d fired  %s  %s  %s",
		s.Total,
		successStyle.Render(fmt.Sprintf("%d ok", s.OK)),
		errorStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
		warningStyle.Render(fmt.Sprintf("%d snoozed", s.Snoozed)),
	)

	nav := mutedStyle.Render("  ←/→: day  t: today  f: filter status  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, totals, "", h.chart.View(), mutedStyle.Render("  firings per hour"), "",
			h.renderTable(w), "", nav,
		),
	)
}

func (h historyModel) renderTable(w int) string {
	if len(h.firings) == 0 {
		return mutedStyle.Render("  Nothing fired on this day")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %-6s %-9s %-9s %-30s %s",
		"Fired", "Time", "Source", "Status", "Content", "Detail")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 80))))

	for _, f := range h.firings {
		detail := f.Error
		if f.Status == store.StatusSnoozed {
			detail = fmt.Sprintf("+%d min", f.SnoozeMinutes)
		}
		rows = append(rows, fmt.Sprintf("  %-8s %-6s %-9s %s %-30s %s",
			f.FiredAt.Local().Format("15:04:05"),
			f.ActionTime,
			f.Source,
			statusStyle(f.Status).Width(9).Render(f.Status),
			truncate(f.Content, 30),
			mutedStyle.Render(detail),
		))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
