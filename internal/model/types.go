// Package model defines shared data structures.
package model

import "time"

// Seat is a logical player slot such as "player1". Stored data is keyed by seat
// so a player can be renamed without reshaping it.
type Seat string

// Game identifies one of the three daily puzzles.
type Game string

// Supported games, in display order.
const (
	GameWordle      Game = "Wordle"
	GameConnections Game = "Connections"
	GameStrands     Game = "Strands"
)

// Games lists the supported games in display order.
var Games = []Game{GameWordle, GameConnections, GameStrands}

// BonusPoints records which extra-credit conditions were met on one day.
type BonusPoints struct {
	WordleQuick        bool `json:"wordleQuick"`
	ConnectionsPerfect bool `json:"connectionsPerfect"`
	StrandsSpanagram   bool `json:"strandsSpanagram"`
}

// Any reports whether at least one bonus flag is set.
func (b BonusPoints) Any() bool {
	return b.WordleQuick || b.ConnectionsPerfect || b.StrandsSpanagram
}

// GameScores holds the per-game point values for one day.
type GameScores struct {
	Wordle      int `json:"wordle"`
	Connections int `json:"connections"`
	Strands     int `json:"strands"`
}

// Sum returns the total of the three game scores.
func (g GameScores) Sum() int {
	return g.Wordle + g.Connections + g.Strands
}

// DailyScore is one player's result for one calendar date.
type DailyScore struct {
	Date        string      `json:"date"`
	Wordle      int         `json:"wordle"`
	Connections int         `json:"connections"`
	Strands     int         `json:"strands"`
	Total       int         `json:"total"`
	BonusPoints BonusPoints `json:"bonusPoints"`
	Finalized   bool        `json:"finalized"`
}

// BonusTotals counts bonus-flagged days per game.
type BonusTotals struct {
	Wordle      int `json:"wordle"`
	Connections int `json:"connections"`
	Strands     int `json:"strands"`
}

// PlayerData is one player's aggregate view. Total and TotalBonuses are always
// the fold of DailyScores.
type PlayerData struct {
	DailyScores  map[string]DailyScore `json:"dailyScores"`
	Total        int                   `json:"total"`
	TotalBonuses BonusTotals           `json:"totalBonuses"`
}

// NewPlayerData returns an empty PlayerData with an allocated score map.
func NewPlayerData() PlayerData {
	return PlayerData{DailyScores: map[string]DailyScore{}}
}

// PlayerScores maps each configured seat to its aggregate.
type PlayerScores map[Seat]PlayerData

// ScoreRow is the stored form of a DailyScore, tagged with the player's name.
type ScoreRow struct {
	ID               int64
	Date             string
	Player           string
	Wordle           int
	Connections      int
	Strands          int
	Total            int
	BonusWordle      bool
	BonusConnections bool
	BonusStrands     bool
	Finalized        bool
	Archived         bool
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Daily reshapes the row into its DailyScore form.
func (r ScoreRow) Daily() DailyScore {
	return DailyScore{
		Date:        r.Date,
		Wordle:      r.Wordle,
		Connections: r.Connections,
		Strands:     r.Strands,
		Total:       r.Total,
		BonusPoints: BonusPoints{
			WordleQuick:        r.BonusWordle,
			ConnectionsPerfect: r.BonusConnections,
			StrandsSpanagram:   r.BonusStrands,
		},
		Finalized: r.Finalized,
	}
}

// SetScores copies game scores and bonus flags onto the row and recomputes Total.
func (r *ScoreRow) SetScores(scores GameScores, bonus BonusPoints) {
	r.Wordle = scores.Wordle
	r.Connections = scores.Connections
	r.Strands = scores.Strands
	r.Total = scores.Sum()
	r.BonusWordle = bonus.WordleQuick
	r.BonusConnections = bonus.ConnectionsPerfect
	r.BonusStrands = bonus.StrandsSpanagram
}

// RowFilter selects score rows. Zero-valued fields do not constrain the query.
type RowFilter struct {
	StartDate string
	EndDate   string
	Date      string
	Player    string
	Archived  *bool
	IDs       []int64
}

// RowPatch lists the columns an UpdateRows call sets. Nil fields are left as-is.
type RowPatch struct {
	Finalized *bool
	Archived  *bool
}

// MonthlyArchive is a frozen PlayerScores snapshot for one month.
type MonthlyArchive struct {
	Month     string       `json:"month"`
	Data      PlayerScores `json:"archive_data"`
	CreatedAt time.Time    `json:"created_at"`
}

// Bool returns a pointer to v, for filters and patches.
func Bool(v bool) *bool {
	return &v
}
