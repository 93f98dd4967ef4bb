package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeep/internal/dayspan"
	"github.com/sadopc/timekeep/internal/idle"
	"github.com/sadopc/timekeep/internal/store"
)

type settingsModel struct {
	store  *store.Store
	det    *idle.Detector
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dayStartHour    *string
	dayEndExtension *string
	idleTimeout     *string
	dailyGoal       *string
}

func newSettingsModel(s *store.Store, det *idle.Detector) settingsModel {
	dsh, dee, it, dg := "", "", "", ""
	return settingsModel{
		store:           s,
		det:             det,
		dayStartHour:    &dsh,
		dayEndExtension: &dee,
		idleTimeout:     &it,
		dailyGoal:       &dg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

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
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func validHour(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 23 {
		return fmt.Errorf("hour must be 0-23")
	}
	return nil
}

func validNonNegative(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cfg := s.store.BoundaryConfig()
	*s.dayStartHour = strconv.Itoa(cfg.StartHour)
	*s.dayEndExtension = strconv.Itoa(cfg.EndHourExtension)
	*s.idleTimeout = strconv.Itoa(int(s.store.IdleTimeout() / time.Minute))
	*s.dailyGoal = secsToHours(strconv.FormatInt(s.store.DailyGoal(), 10))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Day starts at (hour, 0-23)").Value(s.dayStartHour).
				Validate(validHour),
			huh.NewInput().Title("Day runs past midnight until (hours, 0+)").Value(s.dayEndExtension).
				Validate(validNonNegative),
		).Title("Day boundaries"),
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min)").Value(s.idleTimeout).
				Validate(validNonNegative),
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
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
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	startHour, _ := strconv.Atoi(*s.dayStartHour)
	extension, _ := strconv.Atoi(*s.dayEndExtension)
	s.store.SetBoundaryConfig(dayspan.Config{
		StartHour:        startHour,
		EndHourExtension: extension,
	})
	s.store.SetSetting("idle_timeout", minToSecs(*s.idleTimeout))
	s.store.SetSetting("daily_goal", hoursToSecs(*s.dailyGoal))

	// Apply the new timeout without a restart.
	s.det.SetTimeout(s.store.IdleTimeout())
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "idle_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "daily_goal":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
	case "day_start_hour":
		if h, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%02d:00", h)
		}
	case "day_end_extension":
		if h, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("+%dh past midnight", h)
		}
	}
	return v
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%.1f", float64(secs)/3600)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}
