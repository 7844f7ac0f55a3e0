// Package export writes month reports as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/puzzlescore/internal/stats"
)

// Sheet names, in workbook order.
const (
	SheetStandings = "Standings"
	SheetDaily     = "Daily"
	SheetGames     = "Games"
)

var (
	standingsHeader = []any{"Rank", "Player", "Total", "Days", "Average", "Quick Wordle", "Perfect Connections", "Spanagram"}
	dailyHeader     = []any{"Date", "Player", "Wordle", "Connections", "Strands", "Total", "Quick Wordle", "Perfect Connections", "Spanagram", "Finalized"}
	gamesHeader     = []any{"Player", "Wordle", "Connections", "Strands", "Total"}
)

// Workbook builds the month workbook. The caller closes it.
func Workbook(r stats.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			if cerr := f.Close(); cerr != nil {
				// Best-effort workbook close.
				_ = cerr
			}
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetStandings); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetGames} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	standings := make([][]any, 0, len(r.Standings))
	for _, s := range r.Standings {
		standings = append(standings, []any{
			s.Rank, s.Name, s.Total, s.Days, s.Average,
			s.Bonuses.Wordle, s.Bonuses.Connections, s.Bonuses.Strands,
		})
	}
	if err := writeSheet(f, SheetStandings, standingsHeader, standings, bold); err != nil {
		return nil, err
	}

	var daily [][]any
	for _, date := range r.Dates {
		for _, g := range r.Breakdown {
			d, found := r.Scores[g.Seat].DailyScores[date]
			if !found {
				continue
			}
			daily = append(daily, []any{
				date, g.Name, d.Wordle, d.Connections, d.Strands, d.Total,
				d.BonusPoints.WordleQuick, d.BonusPoints.ConnectionsPerfect, d.BonusPoints.StrandsSpanagram,
				d.Finalized,
			})
		}
	}
	if err := writeSheet(f, SheetDaily, dailyHeader, daily, bold); err != nil {
		return nil, err
	}

	games := make([][]any, 0, len(r.Breakdown))
	for _, g := range r.Breakdown {
		games = append(games, []any{g.Name, g.Wordle, g.Connections, g.Strands, g.Total})
	}
	if err := writeSheet(f, SheetGames, gamesHeader, games, bold); err != nil {
		return nil, err
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: "Scoreboard " + r.Month}); err != nil {
		return nil, fmt.Errorf("failed to set properties: %w", err)
	}
	f.SetActiveSheet(0)
	ok = true
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to resolve %s row: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", sheet, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", sheet, err)
	}
	return nil
}

// Write streams the month workbook to w.
func Write(w io.Writer, r stats.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort workbook close.
			_ = cerr
		}
	}()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the month workbook at path, creating parent directories.
func WriteFile(path string, r stats.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort workbook close.
			_ = cerr
		}
	}()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
