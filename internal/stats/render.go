package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

// Bonus markers used in daily cells.
const (
	markQuickWordle = "⚡"
	markPerfect     = "🟪"
	markSpanagram   = "🟡"
	markFinalized   = "🔒"
)

// StandingsLines formats the standings table.
func StandingsLines(r Report) []string {
	headers := []string{"#", "Player", "Total", "Days", "Avg", "⚡", "🟡", "Trend"}
	rows := make([][]string, 0, len(r.Standings))
	for _, s := range r.Standings {
		name := s.Name
		if s.Leader {
			name += " " + leaderMark
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Rank),
			name,
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Days),
			fmt.Sprintf("%.2f", s.Average),
			fmt.Sprintf("%d", s.Bonuses.Wordle),
			fmt.Sprintf("%d", s.Bonuses.Strands),
			Sparkline(r.Scores[s.Seat], r.Dates),
		})
	}
	return formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true})
}

// DailyLines formats one row per date with each player's total and bonus
// markers.
func DailyLines(r Report) []string {
	ps := players(r.Scores, r.Roster)
	headers := []string{"Date"}
	for _, p := range ps {
		headers = append(headers, p.name)
	}
	rows := make([][]string, 0, len(r.Dates))
	for _, date := range r.Dates {
		row := []string{date}
		for _, p := range ps {
			daily, ok := p.data.DailyScores[date]
			row = append(row, DailyCell(daily, ok))
		}
		rows = append(rows, row)
	}
	return formatTable(headers, rows, nil)
}

// DailyCell renders one day's score as its total plus bonus markers, or "-"
// when the player has no score that day.
func DailyCell(d model.DailyScore, ok bool) string {
	if !ok {
		return "-"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d", d.Total))
	if d.BonusPoints.WordleQuick {
		b.WriteString(markQuickWordle)
	}
	if d.BonusPoints.ConnectionsPerfect {
		b.WriteString(markPerfect)
	}
	if d.BonusPoints.StrandsSpanagram {
		b.WriteString(markSpanagram)
	}
	if d.Finalized {
		b.WriteString(markFinalized)
	}
	return b.String()
}

// BreakdownLines formats per-game totals, starring each game's leader.
func BreakdownLines(r Report) []string {
	top := map[model.Game]map[string]bool{}
	for _, game := range model.Games {
		top[game] = map[string]bool{}
		for _, name := range TopByGame(r.Breakdown, game) {
			top[game][name] = true
		}
	}
	headers := []string{"Player"}
	for _, game := range model.Games {
		headers = append(headers, string(game))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(r.Breakdown))
	for _, g := range r.Breakdown {
		row := []string{g.Name}
		for _, game := range model.Games {
			cell := fmt.Sprintf("%d", g.Of(game))
			if top[game][g.Name] {
				cell = "*" + cell
			}
			row = append(row, cell)
		}
		row = append(row, fmt.Sprintf("%d", g.Total))
		rows = append(rows, row)
	}
	return formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderReport prints standings, per-game breakdown and the daily table.
func RenderReport(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Scoreboard %s\n\n", r.Month); err != nil {
		return err
	}
	sections := []struct {
		title string
		lines []string
	}{
		{"Standings", StandingsLines(r)},
		{"By Game", BreakdownLines(r)},
		{"Daily", DailyLines(r)},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s.title); err != nil {
			return err
		}
		if s.title == "Daily" && len(r.Dates) == 0 {
			if _, err := fmt.Fprintln(w, "No scores yet."); err != nil {
				return err
			}
			continue
		}
		for _, line := range s.lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory plots running totals sized to totalWidth terminal cells.
func RenderHistory(w io.Writer, r Report, totalWidth, height int, forceColor bool) error {
	if len(r.Dates) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return Plot(w, "Running Totals", r.History, PlotOptions{
		Width:      width,
		Height:     height,
		ForceColor: forceColor,
		Start:      r.Dates[0],
		End:        r.Dates[len(r.Dates)-1],
	})
}
