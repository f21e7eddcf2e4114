package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/routine/internal/action"
	"github.com/sadopc/routine/internal/store"
)

const (
	settingShell       = "shell"
	settingBell        = "bell"
	settingHistoryDays = "history_days"

	defaultHistoryDays = 30
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	shell       *string
	bell        *string
	historyDays *string
}

func newSettingsModel(s *store.Store) settingsModel {
	sh, b, hd := "", "", ""
	return settingsModel{
		store:       s,
		shell:       &sh,
		bell:        &b,
		historyDays: &hd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

type settingsSavedMsg struct{}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.shell = s.store.SettingOr(settingShell, action.DefaultShell)
	*s.bell = s.store.SettingOr(settingBell, "on")
	*s.historyDays = strconv.Itoa(s.store.IntSettingOr(settingHistoryDays, defaultHistoryDays))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Shell").
				Description("Command actions run as <shell> -c <command>").
				Value(s.shell).
				Validate(validateShell),
			huh.NewSelect[string]().Title("Bell on notification").
				Options(
					huh.NewOption("On", "on"),
					huh.NewOption("Off", "off"),
				).Value(s.bell),
			huh.NewInput().Title("Keep history (days)").
				Value(s.historyDays).
				Validate(validateDays),
		).Title("Routine"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateShell(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("shell is required")
	}
	return nil
}

func validateDays(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of days, at least 1")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Save settings: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsSavedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := map[string]string{
		settingShell:       strings.TrimSpace(*s.shell),
		settingBell:        *s.bell,
		settingHistoryDays: strings.TrimSpace(*s.historyDays),
	}
	for k, v := range values {
		if err := s.store.SetSetting(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	if k == settingHistoryDays {
		if n, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d days", n)
		}
	}
	return v
}
