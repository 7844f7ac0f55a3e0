package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
)

// Source loads a month's aggregated scores.
type Source interface {
	MonthScores(ctx context.Context, month string) (model.PlayerScores, error)
}

// Report contains precomputed data for rendering one month.
type Report struct {
	Month     string
	Scores    model.PlayerScores
	Roster    *roster.Roster
	Standings []Standing
	Dates     []string
	History   []Series
	Breakdown []GameTotals
}

// BuildReport loads month from src and derives every view.
func BuildReport(ctx context.Context, src Source, r *roster.Roster, month string) (Report, error) {
	scores, err := src.MonthScores(ctx, month)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load %s: %w", month, err)
	}
	return NewReport(month, scores, r), nil
}

// NewReport derives every view from already aggregated scores.
func NewReport(month string, scores model.PlayerScores, r *roster.Roster) Report {
	standings := Standings(scores, r)
	dates := Dates(scores)
	history := RunningTotals(scores, r, dates)

	leaders := map[string]bool{}
	for _, s := range standings {
		if s.Leader {
			leaders[s.Name] = true
		}
	}
	for i := range history {
		history[i].Highlight = leaders[history[i].Name]
	}

	return Report{
		Month:     month,
		Scores:    scores,
		Roster:    r,
		Standings: standings,
		Dates:     dates,
		History:   history,
		Breakdown: Breakdown(scores, r),
	}
}

// Leaders returns the names currently in first place.
func (r Report) Leaders() []string {
	var names []string
	for _, s := range r.Standings {
		if s.Leader {
			names = append(names, s.Name)
		}
	}
	return names
}
