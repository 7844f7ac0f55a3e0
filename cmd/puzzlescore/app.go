package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/puzzlescore/internal/aggregate"
	"github.com/verte-zerg/puzzlescore/internal/board"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/config"
	"github.com/verte-zerg/puzzlescore/internal/editwindow"
	"github.com/verte-zerg/puzzlescore/internal/logging"
	"github.com/verte-zerg/puzzlescore/internal/metrics"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/store"
)

// app holds the wiring shared by commands that touch the database.
type app struct {
	fileCfg  config.FileConfig
	store    *store.Store
	service  *board.Service
	roster   *roster.Roster
	calendar *calendar.Calendar
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logLevel, logFormat)
	if err != nil {
		return nil, err
	}
	r, err := rosterFromConfig(fileCfg.Board.Players)
	if err != nil {
		return nil, fmt.Errorf("invalid players config: %w", err)
	}
	cal, err := calendar.New(timezone, calendar.SystemClock{})
	if err != nil {
		return nil, err
	}
	onUnknown, err := aggregate.ParseUnknownPolicy(unknownPlayer)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	m := metrics.New()
	backend := store.NewResilient(st, store.ResilientOptions{
		Timeout: storeTimeout,
		Retries: storeRetries,
		Logger:  logger,
	})
	svc := board.NewService(backend, r, cal, board.Options{
		Policy:    editwindow.Policy{WindowDays: editWindowDays},
		OnUnknown: onUnknown,
		Logger:    logger,
		Metrics:   m,
	})
	return &app{
		fileCfg:  fileCfg,
		store:    st,
		service:  svc,
		roster:   r,
		calendar: cal,
		logger:   logger,
		metrics:  m,
	}, nil
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	if serr := a.logger.Sync(); serr != nil {
		// Best-effort flush; stderr sync fails on some terminals.
		_ = serr
	}
}

// quietLogs keeps info logs off the screen while a TUI owns the terminal.
func quietLogs(cmd *cobra.Command) {
	if !cmd.Flags().Changed("log-level") {
		logLevel = "error"
	}
}

// rosterFromConfig builds the roster from [[board.players]], falling back to
// the default four players.
func rosterFromConfig(players []config.PlayerConfig) (*roster.Roster, error) {
	if len(players) == 0 {
		return roster.Default(), nil
	}
	entries := make([]roster.Entry, 0, len(players))
	for _, p := range players {
		entries = append(entries, roster.Entry{Name: p.Name, Seat: model.Seat(p.Seat)})
	}
	return roster.New(entries)
}

// resolveMonth returns month, or the current month when empty.
func (a *app) resolveMonth(month string) (string, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return a.calendar.CurrentMonth(), nil
	}
	if _, err := calendar.ParseMonth(month); err != nil {
		return "", err
	}
	return month, nil
}

// readText returns the contents of the file named by args, or stdin when
// args is empty or "-".
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
