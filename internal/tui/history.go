package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timekeep/internal/clock"
	"github.com/sadopc/timekeep/internal/dayspan"
	"github.com/sadopc/timekeep/internal/record"
	"github.com/sadopc/timekeep/internal/store"
)

const historyDays = 7

type historyModel struct {
	store  *store.Store
	clk    clock.Clock
	width  int
	height int

	cfg     dayspan.Config
	records []record.TimeRecord
	offset  int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newHistoryModel(s *store.Store, clk clock.Clock) historyModel {
	return historyModel{
		store: s,
		clk:   clk,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

// dateRange returns the first and last logical days of the visible block.
func (h historyModel) dateRange(cfg dayspan.Config) (time.Time, time.Time) {
	now := h.clk.Now().Local()
	off := tzOffsetMinutes(now)
	today := dayspan.LogicalDayStart(now, cfg.StartHour, off)
	last := today.AddDate(0, 0, -historyDays*h.offset)
	first := last.AddDate(0, 0, -(historyDays - 1))
	return first, last
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		cfg := h.store.BoundaryConfig()
		first, last := h.dateRange(cfg)
		off := tzOffsetMinutes(h.clk.Now().Local())

		// Fetch everything from the first day's window start to the
		// last day's window end; grouping happens per logical day.
		start, _ := dayspan.Window(first, cfg, off)
		_, end := dayspan.Window(last, cfg, off)
		records, _ := h.store.ListRecordsBetween(start, end)

		return historyDataMsg{records: records, cfg: cfg}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.records = msg.records
		h.cfg = msg.cfg
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
		}
	}
	return h, nil
}

// dayTotals sums record durations per logical day for the visible block.
func (h historyModel) dayTotals() map[string]int64 {
	off := tzOffsetMinutes(h.clk.Now().Local())
	totals := make(map[string]int64)
	for _, r := range h.records {
		day := dayspan.LogicalDayStart(r.StartTime, h.cfg.StartHour, off)
		totals[day.Format("2006-01-02")] += r.DurationSeconds
	}
	return totals
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if h.height > 30 {
		chartHeight = 16
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	first, last := h.dateRange(h.cfg)
	totals := h.dayTotals()

	var bars []barchart.BarData
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		hours := float64(totals[d.Format("2006-01-02")]) / 3600.0
		style := lipgloss.NewStyle().Foreground(colorHighlight)
		if hours == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: d.Format("2006-01-02"), Value: hours, Style: style},
			},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	first, last := h.dateRange(h.cfg)
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		first.Format("Jan 02"), last.Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", dateLabel,
	)

	chartView := h.chart.View()
	tableView := h.renderDayTable()
	nav := mutedStyle.Render("  ←/→: navigate")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (h historyModel) renderDayTable() string {
	totals := h.dayTotals()
	if len(totals) == 0 {
		return mutedStyle.Render("  No records for this period")
	}

	now := h.clk.Now().Local()
	off := tzOffsetMinutes(now)
	first, last := h.dateRange(h.cfg)

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-14s %10s", "Day", "Tracked")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", 26)))

	for d := last; !d.Before(first); d = d.AddDate(0, 0, -1) {
		total := totals[d.Format("2006-01-02")]
		if total == 0 {
			continue
		}
		label := dayLabel(d.Add(time.Duration(h.cfg.StartHour)*time.Hour), now, h.cfg.StartHour, off)
		rows = append(rows, fmt.Sprintf("  %-14s %10s", label, formatSeconds(total)))
	}

	return strings.Join(rows, "\n")
}
