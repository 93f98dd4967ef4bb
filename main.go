package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timekeep/internal/clock"
	"github.com/sadopc/timekeep/internal/idle"
	"github.com/sadopc/timekeep/internal/localstore"
	"github.com/sadopc/timekeep/internal/record"
	"github.com/sadopc/timekeep/internal/store"
	"github.com/sadopc/timekeep/internal/timer"
	"github.com/sadopc/timekeep/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	// Stdout belongs to the TUI; background write failures go to a log
	// file next to the database.
	logger := slog.New(slog.DiscardHandler)
	if f, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "timekeep.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	state := localstore.Memory()
	if statePath, err := localstore.DefaultStatePath(); err == nil {
		state = localstore.Open(statePath)
	}

	recorder := record.NewRecorder(s, logger)
	defer recorder.Close()

	clk := clock.System{}
	tracker := timer.New(clk, recorder, state)
	detector := idle.New(clk, s.IdleTimeout(), state)
	aggregator := record.NewAggregator(s, tracker)

	app := tui.NewApp(s, tracker, aggregator, detector, clk)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
