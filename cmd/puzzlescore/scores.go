package main

import (
	"encoding/json"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/puzzlescore/internal/board"
	"github.com/verte-zerg/puzzlescore/internal/entryui"
	"github.com/verte-zerg/puzzlescore/internal/scoring"
)

// The CLI runs with direct database access, so it acts as the admin. The
// edit window still applies.
const cliIsAdmin = true

var (
	scoreJSON bool

	submitPlayer string
	submitDate   string

	updatePlayer           string
	updateDate             string
	updateWordle           int
	updateConnections      int
	updateStrands          int
	updateBonusWordle      bool
	updateBonusConnections bool
	updateBonusStrands     bool

	finalizeDate string

	enterPlayer string
	enterDate   string
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score pasted results without saving them",
		Long:  "Score pasted results read from a file, or stdin when no file (or \"-\") is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScoreCmd,
	}
	cmd.Flags().BoolVar(&scoreJSON, "json", false, "print the result as JSON")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	result, breakdowns := scoring.Explain(text)
	if scoreJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			scoring.Result
			Breakdown []scoring.Breakdown `json:"breakdown"`
		}{result, breakdowns})
	}
	return writeLines(cmd.OutOrStdout(), formatBreakdown(result, breakdowns))
}

// formatBreakdown lists each game's points and reason, then the day total.
func formatBreakdown(result scoring.Result, breakdowns []scoring.Breakdown) []string {
	lines := make([]string, 0, len(breakdowns)+1)
	for _, b := range breakdowns {
		bonus := ""
		if b.Bonus {
			bonus = " bonus"
		}
		lines = append(lines, fmt.Sprintf("%-12s %d%s  %s", b.Game, b.Score, bonus, b.Reason))
	}
	lines = append(lines, fmt.Sprintf("%-12s %d/%d", "Total", result.Score, scoring.MaxTotal))
	return lines
}

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit [file]",
		Short: "Score pasted results and save them for a player",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSubmitCmd,
	}
	cmd.Flags().StringVar(&submitPlayer, "player", "", "player name")
	cmd.Flags().StringVar(&submitDate, "date", "", "date (YYYY-MM-DD, today, yesterday; default today)")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func runSubmitCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.calendar.ParseDateInput(submitDate)
	if err != nil {
		return err
	}
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	row, result, err := a.service.Submit(cmd.Context(), board.SubmitRequest{
		Date:   date,
		Player: submitPlayer,
		Text:   text,
	}, cliIsAdmin)
	if err != nil {
		return fmt.Errorf("failed to submit: %w", err)
	}
	_, breakdowns := scoring.Explain(text)
	if err := writeLines(cmd.OutOrStdout(), formatBreakdown(result, breakdowns)); err != nil {
		return err
	}
	return printSaved(cmd.OutOrStdout(), row.Player, row.Date, row.Total)
}

func printSaved(w io.Writer, player, date string, total int) error {
	if _, err := fmt.Fprintf(w, "Saved %s %s: %d points\n", player, date, total); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change stored per-game values for a player and date",
		Args:  cobra.NoArgs,
		RunE:  runUpdateCmd,
	}
	cmd.Flags().StringVar(&updatePlayer, "player", "", "player name")
	cmd.Flags().StringVar(&updateDate, "date", "", "date (YYYY-MM-DD, today, yesterday; default today)")
	cmd.Flags().IntVar(&updateWordle, "wordle", 0, "Wordle points (0-2)")
	cmd.Flags().IntVar(&updateConnections, "connections", 0, "Connections points (0-3)")
	cmd.Flags().IntVar(&updateStrands, "strands", 0, "Strands points (0-2)")
	cmd.Flags().BoolVar(&updateBonusWordle, "bonus-wordle", false, "quick Wordle bonus flag")
	cmd.Flags().BoolVar(&updateBonusConnections, "bonus-connections", false, "perfect Connections bonus flag")
	cmd.Flags().BoolVar(&updateBonusStrands, "bonus-strands", false, "early spanagram bonus flag")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func runUpdateCmd(cmd *cobra.Command, _ []string) error {
	patch := patchFromFlags(cmd)
	if patch == (board.ScorePatch{}) {
		return fmt.Errorf("nothing to update: set at least one score or bonus flag")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.calendar.ParseDateInput(updateDate)
	if err != nil {
		return err
	}
	row, err := a.service.Update(cmd.Context(), board.UpdateRequest{
		Date:   date,
		Player: updatePlayer,
		Scores: patch,
	}, cliIsAdmin)
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}
	return printSaved(cmd.OutOrStdout(), row.Player, row.Date, row.Total)
}

// patchFromFlags sets only the fields whose flags were given.
func patchFromFlags(cmd *cobra.Command) board.ScorePatch {
	var patch board.ScorePatch
	flags := cmd.Flags()
	if flags.Changed("wordle") {
		patch.Wordle = &updateWordle
	}
	if flags.Changed("connections") {
		patch.Connections = &updateConnections
	}
	if flags.Changed("strands") {
		patch.Strands = &updateStrands
	}
	if flags.Changed("bonus-wordle") {
		patch.BonusWordle = &updateBonusWordle
	}
	if flags.Changed("bonus-connections") {
		patch.BonusConnections = &updateBonusConnections
	}
	if flags.Changed("bonus-strands") {
		patch.BonusStrands = &updateBonusStrands
	}
	return patch
}

func newFinalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Lock every player's scores for a date",
		Args:  cobra.NoArgs,
		RunE:  runFinalizeCmd,
	}
	cmd.Flags().StringVar(&finalizeDate, "date", "", "date (YYYY-MM-DD, today, yesterday; default today)")
	return cmd
}

func runFinalizeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.calendar.ParseDateInput(finalizeDate)
	if err != nil {
		return err
	}
	n, err := a.service.Finalize(cmd.Context(), date, cliIsAdmin)
	if err != nil {
		return fmt.Errorf("failed to finalize %s: %w", date, err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Finalized %s (%d scores)\n", date, n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newEnterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enter",
		Short: "Paste and submit results in a terminal UI",
		Args:  cobra.NoArgs,
		RunE:  runEnterCmd,
	}
	cmd.Flags().StringVar(&enterPlayer, "player", "", "preselected player")
	cmd.Flags().StringVar(&enterDate, "date", "", "date (YYYY-MM-DD, today, yesterday; default today)")
	return cmd
}

func runEnterCmd(cmd *cobra.Command, _ []string) error {
	quietLogs(cmd)
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := a.calendar.ParseDateInput(enterDate)
	if err != nil {
		return err
	}
	if enterPlayer != "" {
		if _, ok := a.roster.Lookup(enterPlayer); !ok {
			return fmt.Errorf("unknown player %q", enterPlayer)
		}
	}
	model := entryui.NewModel(a.service, a.roster, a.calendar, entryui.Options{
		Player: enterPlayer,
		Date:   date,
		Admin:  cliIsAdmin,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run entry TUI: %w", err)
	}
	return nil
}
