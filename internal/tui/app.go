package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/routine/internal/action"
	"github.com/sadopc/routine/internal/dispatch"
	"github.com/sadopc/routine/internal/export"
	"github.com/sadopc/routine/internal/reload"
	"github.com/sadopc/routine/internal/schedule"
	"github.com/sadopc/routine/internal/store"
)

// Config wires the App to its collaborators.
type Config struct {
	Store        *store.Store
	SchedulePath string

	// SelfPath is the running executable, checked every dispatch tick for a
	// newer build. Empty disables hot reload.
	SelfPath string

	// ExportDir receives history exports. Defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model. It owns the Dispatcher and is the only
// goroutine that ticks it or inserts reminders.
type App struct {
	store     *store.Store
	disp      *dispatch.Dispatcher
	exec      *action.Executor
	queue     *noticeQueue
	selfPath  string
	exportDir string
	relay     *changeRelay
	bell      io.Writer

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	reload        bool

	dashboard dashboardModel
	sched     scheduleModel
	history   historyModel
	settings  settingsModel
	notify    notifyModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the dispatcher for cfg.SchedulePath, seeded with the current
// time, and starts watching the schedule file until ctx is done.
func NewApp(ctx context.Context, cfg Config) App {
	h := help.New()
	h.ShowAll = false

	queue := &noticeQueue{}
	exec := &action.Executor{
		Runner:   action.Runner{Shell: cfg.Store.SettingOr(settingShell, action.DefaultShell)},
		Notifier: queue,
	}
	disp := dispatch.New(cfg.SchedulePath, time.Now(), exec,
		dispatch.WithRecorder(historyRecorder{store: cfg.Store}),
	)

	sm := newScheduleModel(cfg.SchedulePath)
	relay := &changeRelay{}
	changes, err := schedule.Watch(ctx, cfg.SchedulePath)
	if err != nil {
		log.Printf("error: %v", err)
	} else {
		sm.watching = true
		go relay.run(changes)
	}

	exportDir := cfg.ExportDir
	if exportDir == "" {
		if exportDir, err = os.UserHomeDir(); err != nil {
			log.Printf("error: locate home directory: %v (exporting to working directory)", err)
			exportDir = "."
		}
	}

	return App{
		store:      cfg.Store,
		disp:       disp,
		exec:       exec,
		queue:      queue,
		selfPath:   cfg.SelfPath,
		exportDir:  exportDir,
		relay:      relay,
		bell:       os.Stdout,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(cfg.Store),
		sched:      sm,
		history:    newHistoryModel(cfg.Store),
		settings:   newSettingsModel(cfg.Store),
		notify:     newNotifyModel(queue),
		help:       h,
	}
}

// Attach routes schedule file edits to p. Call it before each p.Run.
func (a App) Attach(p *tea.Program) { a.relay.attach(p.Send) }

// ReloadRequested reports whether the program quit because a newer
// executable was found.
func (a App) ReloadRequested() bool { return a.reload }

// ReloadFailed returns the App ready to run again after the process could not
// be replaced. Dispatcher state, including reminders, is kept.
func (a App) ReloadFailed(err error) App {
	a.reload = false
	a.status = fmt.Sprintf("Reload failed: %v", err)
	a.statusErr = true
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		dispatchCmd(),
		a.dashboard.loadData(),
		a.sched.refresh(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// dispatchCmd fires in step with the wall clock's minute boundaries.
func dispatchCmd() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return dispatchMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.sched.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.notify.width = a.width
		return a, nil

	case tea.KeyMsg:
		if a.notify.active() {
			return a.updateNotify(msg)
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSchedule
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewHistory
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}
		return a.updateActiveView(msg)

	case tickMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, tickCmd()

	case dispatchMsg:
		return a.runDispatch(time.Time(msg))

	case scheduleChangedMsg:
		return a, a.sched.refresh()

	case scheduleDataMsg:
		a.sched, _ = a.sched.update(msg)
		a.dashboard.sched = msg.sched
		a.dashboard.schedErr = msg.err
		return a, nil

	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil

	case historyDataMsg:
		a.history, _ = a.history.update(msg)
		return a, nil

	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil

	case settingsSavedMsg:
		a.exec.Runner.Shell = a.store.SettingOr(settingShell, action.DefaultShell)
		a.status = "Settings saved"
		a.statusErr = false
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	// Anything else belongs to an embedded form.
	var cmds []tea.Cmd
	if a.notify.active() {
		var cmd tea.Cmd
		a, cmd = a.updateNotify(msg)
		cmds = append(cmds, cmd)
	}
	m, cmd := a.updateActiveView(msg)
	return m, tea.Batch(append(cmds, cmd)...)
}

// runDispatch ticks the dispatcher on the event loop, so notification answers
// and ticks never interleave.
func (a App) runDispatch(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{dispatchCmd()}
	a.exec.Runner.Shell = a.store.SettingOr(settingShell, action.DefaultShell)

	queued := a.queue.len()
	rep := a.disp.Tick(context.Background(), now)
	a.queue.attach(queued, rep.Fired)
	a.dashboard.last = &rep
	a.dashboard.reminders = a.disp.Reminders()
	if !rep.Ran {
		return a, tea.Batch(cmds...)
	}

	if n := len(rep.Errors); n > 0 {
		a.status = rep.Errors[n-1].Error()
		a.statusErr = true
	} else if len(rep.Fired) > 0 {
		a.status = fmt.Sprintf("Fired %d at %s", len(rep.Fired), rep.End)
		a.statusErr = false
	}

	days := a.store.IntSettingOr(settingHistoryDays, defaultHistoryDays)
	if _, err := a.store.PruneFirings(now.AddDate(0, 0, -days)); err != nil {
		log.Printf("error: %v", err)
	}

	if a.selfPath != "" && reload.ShouldReload(a.selfPath, rep.Since) {
		log.Printf("reload: %s modified since %s, restarting", a.selfPath, rep.Since.Format(time.TimeOnly))
		a.reload = true
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.notify, cmd = a.notify.open()
	cmds = append(cmds, cmd, a.dashboard.loadData(), a.sched.refresh())
	if a.activeView == viewHistory {
		cmds = append(cmds, a.history.refresh())
	}
	if a.queue.len() > queued && a.store.SettingOr(settingBell, "on") == "on" {
		cmds = append(cmds, ringBell(a.bell))
	}
	return a, tea.Batch(cmds...)
}

func ringBell(w io.Writer) tea.Cmd {
	return func() tea.Msg {
		io.WriteString(w, "\a")
		return nil
	}
}

func (a App) updateNotify(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	var ans *noticeAnswer
	a.notify, cmd, ans = a.notify.update(msg)
	if ans == nil {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.answer(*ans))
}

// answer applies the user's choice for a notification. Snoozes go through the
// dispatcher like a choice returned during the tick.
func (a *App) answer(ans noticeAnswer) tea.Cmd {
	n := ans.notice
	if ans.minutes <= 0 {
		a.status = fmt.Sprintf("Dismissed %q", n.action.Content)
		a.statusErr = false
		return nil
	}

	rem, err := a.disp.Snooze(n.action, ans.minutes, time.Now())
	if err != nil {
		log.Printf("error: snooze %q: %v", n.action.Content, err)
		a.status = fmt.Sprintf("Snooze failed: %v", err)
		a.statusErr = true
		return nil
	}
	if n.historyID != 0 {
		if err := a.store.MarkSnoozed(n.historyID, ans.minutes); err != nil {
			log.Printf("error: %v", err)
		}
	}
	a.dashboard.reminders = a.disp.Reminders()
	a.status = fmt.Sprintf("Snoozed %q until %s", n.action.Content, rem.FireTime)
	a.statusErr = false
	return a.dashboard.loadData()
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewSchedule:
		a.sched, cmd = a.sched.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewSchedule:
		return a.sched.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewSchedule:
		content = a.sched.view()
	case viewHistory:
		content = a.history.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	switch {
	case a.notify.active():
		content = a.notify.view(a.width - 4)
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("routine")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	pending := ""
	if n := len(a.dashboard.reminders); n > 0 {
		pending += warningStyle.Render(fmt.Sprintf(" ⏰ %d", n))
	}
	if n := a.queue.len(); n > 0 {
		pending += highlightStyle.Render(fmt.Sprintf(" ✉ %d", n))
	}

	left := footerStyle.Render(helpView)
	right := pending + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export History"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		firings, err := a.store.ListFirings(store.FiringFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(a.exportDir, fmt.Sprintf("routine-history-%s.csv", dateStr))
			if err := export.ToCSV(firings, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(a.exportDir, fmt.Sprintf("routine-history-%s.json", dateStr))
			if err := export.ToJSON(firings, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
