package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/puzzlescore/internal/boardui"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/chart"
	"github.com/verte-zerg/puzzlescore/internal/export"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/stats"
)

var (
	boardMonth string
	boardPlain bool

	archiveMonth string

	chartMonth  string
	chartGame   string
	chartOut    string
	chartWidth  int
	chartHeight int

	exportMonth string
	exportOut   string
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the month scoreboard",
		Args:  cobra.NoArgs,
		RunE:  runBoardCmd,
	}
	cmd.Flags().StringVar(&boardMonth, "month", "", "month (YYYY-MM; default current)")
	cmd.Flags().BoolVar(&boardPlain, "plain", false, "print text instead of opening the TUI")
	return cmd
}

func runBoardCmd(cmd *cobra.Command, _ []string) error {
	interactive := !boardPlain && isTerminal(os.Stdout)
	if interactive {
		quietLogs(cmd)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month, err := a.resolveMonth(boardMonth)
	if err != nil {
		return err
	}
	if !interactive {
		report, err := stats.BuildReport(cmd.Context(), a.service, a.roster, month)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := stats.RenderReport(out, report); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(report.Dates) == 0 {
			return nil
		}
		return stats.RenderHistory(out, report, 0, 0, false)
	}

	ui := boardui.NewModel(a.service, a.roster, month)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run board TUI: %w", err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Snapshot a month's scores and mark its rows archived",
		Args:  cobra.NoArgs,
		RunE:  runArchiveCmd,
	}
	cmd.Flags().StringVar(&archiveMonth, "month", "", "month (YYYY-MM; default previous)")
	return cmd
}

func runArchiveCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month := strings.TrimSpace(archiveMonth)
	var scores model.PlayerScores
	if month == "" {
		month, scores, err = a.service.ArchivePrevious(cmd.Context(), cliIsAdmin)
	} else {
		scores, err = a.service.ArchiveMonth(cmd.Context(), month, cliIsAdmin)
	}
	if err != nil {
		return fmt.Errorf("failed to archive: %w", err)
	}
	report := stats.NewReport(month, scores, a.roster)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Archived %s (%d days)\n", month, len(report.Dates)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return writeLines(cmd.OutOrStdout(), stats.StandingsLines(report))
}

func newArchivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archives [month]",
		Short: "List archived months, or show one archived month",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runArchivesCmd,
	}
}

func runArchivesCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		months, err := a.service.ArchivedMonths(cmd.Context())
		if err != nil {
			return err
		}
		if len(months) == 0 {
			logErrln("No archived months yet. Archive with: puzzlescore archive --month YYYY-MM")
			return nil
		}
		return writeLines(cmd.OutOrStdout(), months)
	}

	month := args[0]
	if _, err := calendar.ParseMonth(month); err != nil {
		return err
	}
	scores, ok, err := a.service.ArchivedMonth(cmd.Context(), month)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no archive for %s", month)
	}
	return stats.RenderReport(cmd.OutOrStdout(), stats.NewReport(month, scores, a.roster))
}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a month chart as PNG",
		Long:  "Render running totals, or per-game points with --game, as a PNG image.",
		Args:  cobra.NoArgs,
		RunE:  runChartCmd,
	}
	cmd.Flags().StringVar(&chartMonth, "month", "", "month (YYYY-MM; default current)")
	cmd.Flags().StringVar(&chartGame, "game", "", "bar chart of one game (wordle, connections, strands) or all for totals")
	cmd.Flags().StringVar(&chartOut, "out", "", "output file (default scores-<month>.png)")
	cmd.Flags().IntVar(&chartWidth, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&chartHeight, "height", 0, "image height in pixels")
	return cmd
}

func runChartCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month, err := a.resolveMonth(chartMonth)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(cmd.Context(), a.service, a.roster, month)
	if err != nil {
		return err
	}
	path := chartOut
	if path == "" {
		path = fmt.Sprintf("scores-%s.png", month)
	}
	opts := chart.Options{Width: chartWidth, Height: chartHeight}

	return writeFileAtomic(path, func(f *os.File) error {
		if chartGame == "" {
			return chart.RunningTotals(f, report, opts)
		}
		game, err := parseGame(chartGame)
		if err != nil {
			return err
		}
		return chart.Breakdown(f, report, game, opts)
	})
}

// parseGame maps a --game value to a game; "all" selects month totals.
func parseGame(value string) (model.Game, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "all" {
		return "", nil
	}
	for _, game := range model.Games {
		if strings.ToLower(string(game)) == value {
			return game, nil
		}
	}
	return "", fmt.Errorf("unknown game %q (wordle, connections, strands or all)", value)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a month to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportMonth, "month", "", "month (YYYY-MM; default current)")
	cmd.Flags().StringVar(&exportOut, "out", "", "output file (default scores-<month>.xlsx)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month, err := a.resolveMonth(exportMonth)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(cmd.Context(), a.service, a.roster, month)
	if err != nil {
		return err
	}
	path := exportOut
	if path == "" {
		path = fmt.Sprintf("scores-%s.xlsx", month)
	}
	if err := export.WriteFile(path, report); err != nil {
		return err
	}
	logErrf("Wrote %s\n", path)
	return nil
}

// writeFileAtomic renders into a temp file next to path and renames it into
// place once render succeeds.
func writeFileAtomic(path string, render func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "puzzlescore-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := render(tmpFile); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logErrf("Wrote %s\n", path)
	return nil
}

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List roster players and any unknown names found in stored scores",
		Args:  cobra.NoArgs,
		RunE:  runPlayersCmd,
	}
}

func runPlayersCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	lines := make([]string, 0, a.roster.Len())
	for _, e := range a.roster.Entries() {
		lines = append(lines, fmt.Sprintf("%s\t%s", e.Name, e.Seat))
	}
	stored, err := a.store.ListPlayers(cmd.Context())
	if err != nil {
		return err
	}
	for _, name := range stored {
		if _, ok := a.roster.Lookup(name); !ok {
			lines = append(lines, fmt.Sprintf("%s\t(not in roster)", name))
		}
	}
	return writeLines(cmd.OutOrStdout(), lines)
}
