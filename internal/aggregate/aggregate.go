// Package aggregate folds stored score rows into per-player monthly views.
package aggregate

import (
	"fmt"

	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
)

// InvalidPlayerError reports a row whose player name is not on the roster.
type InvalidPlayerError struct {
	Name string
}

func (e *InvalidPlayerError) Error() string {
	return fmt.Sprintf("invalid player name: %q", e.Name)
}

// UnknownPolicy selects what Build does with rows for unknown players.
type UnknownPolicy int

const (
	// Abort fails the whole build on the first unknown player.
	Abort UnknownPolicy = iota
	// Skip drops the row and reports it through Options.Skipped.
	Skip
)

// ParseUnknownPolicy maps a config value ("abort", "skip") to a policy.
func ParseUnknownPolicy(value string) (UnknownPolicy, error) {
	switch value {
	case "", "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	default:
		return Abort, fmt.Errorf("unknown-player must be abort or skip, got %q", value)
	}
}

func (p UnknownPolicy) String() string {
	if p == Skip {
		return "skip"
	}
	return "abort"
}

// Options tunes Build.
type Options struct {
	OnUnknown UnknownPolicy
	// Skipped is called for every row dropped under Skip.
	Skipped func(row model.ScoreRow)
	// Freeze marks every daily score finalized.
	Freeze bool
}

// Build aggregates rows into a PlayerScores holding every roster seat. The
// result does not depend on row order: when a seat has several rows for one
// date, the most recently updated row wins.
func Build(rows []model.ScoreRow, r *roster.Roster, opts Options) (model.PlayerScores, error) {
	latest := make(map[model.Seat]map[string]model.ScoreRow, r.Len())
	for _, seat := range r.Seats() {
		latest[seat] = map[string]model.ScoreRow{}
	}

	for _, row := range rows {
		seat, ok := r.Lookup(row.Player)
		if !ok {
			if opts.OnUnknown == Skip {
				if opts.Skipped != nil {
					opts.Skipped(row)
				}
				continue
			}
			return nil, &InvalidPlayerError{Name: row.Player}
		}
		if prev, ok := latest[seat][row.Date]; ok && !newer(row, prev) {
			continue
		}
		latest[seat][row.Date] = row
	}

	scores := make(model.PlayerScores, len(latest))
	for seat, byDate := range latest {
		data := model.NewPlayerData()
		for date, row := range byDate {
			daily := row.Daily()
			if opts.Freeze {
				daily.Finalized = true
			}
			data.DailyScores[date] = daily
		}
		scores[seat] = Fold(data)
	}
	return scores, nil
}

// newer orders duplicate rows by update time, then version, then ID.
func newer(a, b model.ScoreRow) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	return a.ID > b.ID
}

// Fold recomputes Total and TotalBonuses from DailyScores.
func Fold(data model.PlayerData) model.PlayerData {
	out := model.PlayerData{DailyScores: data.DailyScores}
	if out.DailyScores == nil {
		out.DailyScores = map[string]model.DailyScore{}
	}
	for _, daily := range out.DailyScores {
		out.Total += daily.Total
		if daily.BonusPoints.WordleQuick {
			out.TotalBonuses.Wordle++
		}
		if daily.BonusPoints.ConnectionsPerfect {
			out.TotalBonuses.Connections++
		}
		if daily.BonusPoints.StrandsSpanagram {
			out.TotalBonuses.Strands++
		}
	}
	return out
}

// Verify checks that every player's totals match the fold of its daily
// scores and that each daily total is the sum of its games.
func Verify(scores model.PlayerScores) error {
	for seat, data := range scores {
		for date, daily := range data.DailyScores {
			if sum := daily.Wordle + daily.Connections + daily.Strands; sum != daily.Total {
				return fmt.Errorf("%s on %s: total %d does not match game sum %d", seat, date, daily.Total, sum)
			}
		}
		folded := Fold(data)
		if folded.Total != data.Total {
			return fmt.Errorf("%s: total %d does not match daily scores (%d)", seat, data.Total, folded.Total)
		}
		if folded.TotalBonuses != data.TotalBonuses {
			return fmt.Errorf("%s: bonus totals %+v do not match daily scores (%+v)", seat, data.TotalBonuses, folded.TotalBonuses)
		}
	}
	return nil
}
