package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeep/internal/clock"
	"github.com/sadopc/timekeep/internal/dayspan"
	"github.com/sadopc/timekeep/internal/idle"
	"github.com/sadopc/timekeep/internal/record"
	"github.com/sadopc/timekeep/internal/store"
	"github.com/sadopc/timekeep/internal/timer"
)

type dashboardModel struct {
	store   *store.Store
	tracker *timer.Tracker
	agg     *record.Aggregator
	det     *idle.Detector
	clk     clock.Clock
	width   int
	height  int

	cfg        dayspan.Config
	todayTotal int64
	dailyGoal  int64
	statuses   []timer.Status
	recent     []record.TimeRecord
	cursor     int

	// Start form state
	formActive    bool
	form          *huh.Form
	entityLabel   *string
	categoryLabel *string
	activityType  *string
}

func newDashboardModel(s *store.Store, tr *timer.Tracker, agg *record.Aggregator, det *idle.Detector, clk clock.Clock) dashboardModel {
	label, category, activity := "", "", "task"
	return dashboardModel{
		store:         s,
		tracker:       tr,
		agg:           agg,
		det:           det,
		clk:           clk,
		entityLabel:   &label,
		categoryLabel: &category,
		activityType:  &activity,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// loadData recomputes the dashboard from the durable store and the live
// tracker. Today's total is the aggregator's dual-source sum for the
// current logical day.
func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		now := d.clk.Now().Local()
		off := tzOffsetMinutes(now)
		cfg := d.store.BoundaryConfig()

		today := dayspan.LogicalDayStart(now, cfg.StartHour, off)
		total, _ := d.agg.TotalFor(today, cfg, off)
		recent, _ := d.store.ListRecentRecords(6)

		return dashboardDataMsg{
			todayTotal: total,
			dailyGoal:  d.store.DailyGoal(),
			cfg:        cfg,
			statuses:   d.tracker.Statuses(),
			recent:     recent,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayTotal = msg.todayTotal
		d.dailyGoal = msg.dailyGoal
		d.cfg = msg.cfg
		d.statuses = msg.statuses
		d.recent = msg.recent
		if d.cursor >= len(d.statuses) {
			d.cursor = max(0, len(d.statuses)-1)
		}
		return d, nil

	case tickMsg:
		// The tick only triggers a re-read; elapsed time always comes
		// from the tracker's timestamps.
		d.statuses = d.tracker.Statuses()
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			return d.showStartForm()

		case key.Matches(msg, keys.Stop):
			return d.stopSelected()

		case key.Matches(msg, keys.Pause):
			return d.toggleSelected()

		case key.Matches(msg, keys.Resume):
			d.det.Reset()
			return d, nil

		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.statuses)-1 {
				d.cursor++
			}
		}
	}
	return d, nil
}

func (d dashboardModel) selected() (timer.Status, bool) {
	if d.cursor < 0 || d.cursor >= len(d.statuses) {
		return timer.Status{}, false
	}
	return d.statuses[d.cursor], true
}

func (d dashboardModel) showStartForm() (dashboardModel, tea.Cmd) {
	*d.entityLabel = ""
	*d.categoryLabel = ""
	*d.activityType = "task"

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What are you working on?").Value(d.entityLabel).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("label is required")
					}
					return nil
				}),
			huh.NewInput().Title("Category (optional)").Value(d.categoryLabel),
			huh.NewSelect[string]().Title("Type").
				Options(
					huh.NewOption("Task", "task"),
					huh.NewOption("Activity", "activity"),
				).Value(d.activityType),
		).Title("Start tracking"),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		label := strings.TrimSpace(*d.entityLabel)
		d.tracker.Start(label, timer.Meta{
			EntityLabel:   label,
			CategoryLabel: strings.TrimSpace(*d.categoryLabel),
			ActivityType:  *d.activityType,
		})
		return d, tea.Batch(
			d.loadData(),
			func() tea.Msg { return timerStartedMsg{entityID: label} },
		)
	}

	return d, cmd
}

func (d dashboardModel) stopSelected() (dashboardModel, tea.Cmd) {
	st, ok := d.selected()
	if !ok {
		return d, nil
	}
	seconds := d.tracker.Stop(st.EntityID)
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{entityID: st.EntityID, seconds: seconds} },
	)
}

func (d dashboardModel) toggleSelected() (dashboardModel, tea.Cmd) {
	st, ok := d.selected()
	if !ok {
		return d, nil
	}
	switch st.Phase {
	case timer.PhaseRunning:
		d.tracker.Pause(st.EntityID)
	case timer.PhasePaused:
		d.tracker.Resume(st.EntityID)
	}
	return d, d.loadData()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.formActive && d.form != nil {
		return activePanelStyle.Width(contentWidth).Render(d.form.View())
	}

	timerPanel := d.renderTimerPanel(contentWidth)
	todayPanel := d.renderTodayPanel(contentWidth)
	recentPanel := d.renderRecentPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, todayPanel, recentPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if len(d.statuses) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  STOPPED"),
			mutedStyle.Render("Press s to start tracking"),
		)
		return panelStyle.Width(w).Render(content)
	}

	st, _ := d.selected()
	timeStr := formatSeconds(st.ElapsedSeconds)

	var timeDisplay, indicator string
	if st.Phase == timer.PhaseRunning {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
		indicator = successStyle.Render("●  RUNNING")
	} else {
		timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
		indicator = warningStyle.Render("⏸  PAUSED")
	}

	entityLine := highlightStyle.Render(st.Meta.EntityLabel)
	if st.Meta.CategoryLabel != "" {
		entityLine += mutedStyle.Render(" / " + st.Meta.CategoryLabel)
	}

	rows := []string{timeDisplay, indicator, entityLine}

	if d.det.IsIdle() {
		rows = append(rows, warningStyle.Render("zZ  idle — timers keep running, press r to wake"))
	}

	if len(d.statuses) > 1 {
		rows = append(rows, "", d.renderTimerList())
	}

	style := activePanelStyle
	if d.det.IsIdle() {
		style = idlePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (d dashboardModel) renderTimerList() string {
	var rows []string
	for i, st := range d.statuses {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := successStyle.Render("●")
		if st.Phase == timer.PhasePaused {
			marker = warningStyle.Render("⏸")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %s",
			cursor, marker, st.Meta.EntityLabel, formatSeconds(st.ElapsedSeconds))))
	}
	return strings.Join(rows, "\n")
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(d.todayTotal))
	header := fmt.Sprintf("%s  %s", title, total)

	if d.dailyGoal > 0 {
		pct := float64(d.todayTotal) / float64(d.dailyGoal) * 100
		goal := mutedStyle.Render(fmt.Sprintf("  goal %s (%.0f%%)", formatSeconds(d.dailyGoal), pct))
		header += goal
	}

	if d.cfg.StartHour != 0 || d.cfg.EndHourExtension != 0 {
		header += mutedStyle.Render(fmt.Sprintf("  day %02d:00 → +%dh", d.cfg.StartHour, d.cfg.EndHourExtension))
	}

	return panelStyle.Width(w).Render(header)
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent")
	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("No records yet")))
	}

	now := d.clk.Now().Local()
	off := tzOffsetMinutes(now)

	var rows []string
	rows = append(rows, title)
	for _, r := range d.recent {
		day := dayLabel(r.StartTime, now, d.cfg.StartHour, off)
		dot := " "
		if r.CategoryColor != "" {
			dot = lipgloss.NewStyle().Foreground(lipgloss.Color(r.CategoryColor)).Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %-10s %s  %-24s %s",
			dot, day, r.StartTime.Local().Format("15:04"),
			r.EntityLabel, formatSeconds(r.DurationSeconds)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
