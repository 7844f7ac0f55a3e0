package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/sample"
	"github.com/verte-zerg/puzzlescore/internal/store"
)

// Wordle puzzle 0 was published on 2021-06-19.
var firstWordle = time.Date(2021, 6, 19, 0, 0, 0, 0, time.UTC)

var (
	seedMonth  string
	seedRandom int64
	seedForce  bool
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a month with generated demo scores",
		Long:  "Fill a month with generated results for every roster player, up to today. Writes bypass the edit window; finalized and archived scores are kept.",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
	cmd.Flags().StringVar(&seedMonth, "month", "", "month (YYYY-MM; default current)")
	cmd.Flags().Int64Var(&seedRandom, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&seedForce, "force", false, "overwrite a month that already has scores")
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month, err := a.resolveMonth(seedMonth)
	if err != nil {
		return err
	}
	start, end, err := calendar.MonthRange(month)
	if err != nil {
		return err
	}
	existing, err := a.store.QueryByDateRange(cmd.Context(), start, end, model.RowFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 && !seedForce {
		return fmt.Errorf("%s already has %d scores (use --force to overwrite)", month, len(existing))
	}
	locked := make(map[string]bool)
	for _, row := range existing {
		if row.Finalized || row.Archived {
			locked[row.Date+"/"+row.Player] = true
		}
	}

	dates, err := calendar.DatesInMonth(month)
	if err != nil {
		return err
	}
	today := a.calendar.Today()
	gen := sample.New(seedRandom)
	written, kept := 0, 0
	for _, date := range dates {
		if date > today {
			break
		}
		puzzle, err := wordleNumber(date)
		if err != nil {
			return err
		}
		for _, name := range a.roster.Names() {
			day := gen.Day(puzzle)
			if locked[date+"/"+name] {
				kept++
				continue
			}
			row := model.ScoreRow{Date: date, Player: name}
			row.SetScores(day.Scores, day.Bonus)
			if _, err := a.store.UpsertRow(cmd.Context(), row); err != nil {
				if errors.Is(err, store.ErrLocked) {
					kept++
					continue
				}
				return fmt.Errorf("failed to seed %s %s: %w", name, date, err)
			}
			written++
		}
	}
	if kept > 0 {
		logErrf("Kept %d finalized scores\n", kept)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s with %d scores\n", month, written); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func wordleNumber(date string) (int, error) {
	t, err := calendar.ParseDate(date)
	if err != nil {
		return 0, err
	}
	days := int(t.Sub(firstWordle).Hours() / 24)
	if days < 1 {
		return 1, nil
	}
	return days, nil
}
