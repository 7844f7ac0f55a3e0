// Package stats derives standings, running totals and per-game views from
// aggregated scores, and renders them as text.
package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/scoring"
)

const sparkBlocks = "▁▂▃▄▅▆▇█"

// Standing is one player's line in the month standings.
type Standing struct {
	Seat    model.Seat
	Name    string
	Rank    int
	Total   int
	Days    int
	Average float64
	Bonuses model.BonusTotals
	Leader  bool
}

// GameTotals splits a player's month total by game.
type GameTotals struct {
	Seat        model.Seat
	Name        string
	Wordle      int
	Connections int
	Strands     int
	Total       int
}

// Of returns the points for one game.
func (g GameTotals) Of(game model.Game) int {
	switch game {
	case model.GameWordle:
		return g.Wordle
	case model.GameConnections:
		return g.Connections
	case model.GameStrands:
		return g.Strands
	default:
		return 0
	}
}

type player struct {
	seat model.Seat
	name string
	data model.PlayerData
}

// players lists roster seats in roster order, followed by any extra seats
// found in scores (older snapshots) in seat order.
func players(scores model.PlayerScores, r *roster.Roster) []player {
	out := make([]player, 0, len(scores))
	seen := map[model.Seat]bool{}
	for _, e := range r.Entries() {
		data, ok := scores[e.Seat]
		if !ok {
			data = model.NewPlayerData()
		}
		out = append(out, player{seat: e.Seat, name: e.Name, data: data})
		seen[e.Seat] = true
	}
	var extra []model.Seat
	for seat := range scores {
		if !seen[seat] {
			extra = append(extra, seat)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, seat := range extra {
		out = append(out, player{seat: seat, name: string(seat), data: scores[seat]})
	}
	return out
}

// Standings ranks players by month total. Tied players share a rank; the
// leaders are the rank-one players with a positive total.
func Standings(scores model.PlayerScores, r *roster.Roster) []Standing {
	ps := players(scores, r)
	out := make([]Standing, 0, len(ps))
	for _, p := range ps {
		s := Standing{
			Seat:    p.seat,
			Name:    p.name,
			Total:   p.data.Total,
			Days:    len(p.data.DailyScores),
			Bonuses: p.data.TotalBonuses,
		}
		if s.Days > 0 {
			s.Average = float64(s.Total) / float64(s.Days)
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	for i := range out {
		switch {
		case i == 0:
			out[i].Rank = 1
		case out[i].Total == out[i-1].Total:
			out[i].Rank = out[i-1].Rank
		default:
			out[i].Rank = i + 1
		}
		out[i].Leader = out[i].Rank == 1 && out[i].Total > 0
	}
	return out
}

// Dates returns every date with at least one score, ascending.
func Dates(scores model.PlayerScores) []string {
	set := map[string]struct{}{}
	for _, data := range scores {
		for date := range data.DailyScores {
			set[date] = struct{}{}
		}
	}
	dates := make([]string, 0, len(set))
	for date := range set {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// RunningTotals returns, per player, the cumulative total after each date.
func RunningTotals(scores model.PlayerScores, r *roster.Roster, dates []string) []Series {
	ps := players(scores, r)
	out := make([]Series, 0, len(ps))
	for _, p := range ps {
		values := make([]float64, len(dates))
		running := 0
		for i, date := range dates {
			running += p.data.DailyScores[date].Total
			values[i] = float64(running)
		}
		out = append(out, Series{Name: p.name, Values: values})
	}
	return out
}

// Breakdown totals each player's points per game.
func Breakdown(scores model.PlayerScores, r *roster.Roster) []GameTotals {
	ps := players(scores, r)
	out := make([]GameTotals, 0, len(ps))
	for _, p := range ps {
		g := GameTotals{Seat: p.seat, Name: p.name}
		for _, daily := range p.data.DailyScores {
			g.Wordle += daily.Wordle
			g.Connections += daily.Connections
			g.Strands += daily.Strands
		}
		g.Total = g.Wordle + g.Connections + g.Strands
		out = append(out, g)
	}
	return out
}

// TopByGame returns the names holding the most points in game, or nil when
// nobody scored.
func TopByGame(rows []GameTotals, game model.Game) []string {
	best := 0
	for _, row := range rows {
		if v := row.Of(game); v > best {
			best = v
		}
	}
	if best == 0 {
		return nil
	}
	var names []string
	for _, row := range rows {
		if row.Of(game) == best {
			names = append(names, row.Name)
		}
	}
	return names
}

// Sparkline renders daily totals as block characters on a fixed 0..7 scale.
// Days without a score render as a space.
func Sparkline(data model.PlayerData, dates []string) string {
	blocks := []rune(sparkBlocks)
	var b strings.Builder
	for _, date := range dates {
		daily, ok := data.DailyScores[date]
		if !ok {
			b.WriteByte(' ')
			continue
		}
		idx := daily.Total * (len(blocks) - 1) / scoring.MaxTotal
		if idx < 0 {
			idx = 0
		}
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		b.WriteRune(blocks[idx])
	}
	return b.String()
}
