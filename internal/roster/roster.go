// Package roster maps player display names to their seats.
package roster

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

// Entry binds a display name to a seat.
type Entry struct {
	Name string
	Seat model.Seat
}

// Roster is an ordered, immutable name/seat table.
type Roster struct {
	entries []Entry
	byName  map[string]model.Seat
	bySeat  map[model.Seat]string
}

// DefaultEntries is the roster used when no players are configured.
var DefaultEntries = []Entry{
	{Name: "Keith", Seat: "player1"},
	{Name: "Mike", Seat: "player2"},
	{Name: "Colleen", Seat: "player3"},
	{Name: "Toby", Seat: "player4"},
}

// New validates entries and builds a roster. Names and seats must be unique
// and non-empty.
func New(entries []Entry) (*Roster, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("roster needs at least one player")
	}
	r := &Roster{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]model.Seat, len(entries)),
		bySeat:  make(map[model.Seat]string, len(entries)),
	}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		seat := model.Seat(strings.TrimSpace(string(e.Seat)))
		if name == "" || seat == "" {
			return nil, fmt.Errorf("player entry needs both name and seat: %+v", e)
		}
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("duplicate player name %q", name)
		}
		if _, ok := r.bySeat[seat]; ok {
			return nil, fmt.Errorf("duplicate seat %q", seat)
		}
		r.byName[name] = seat
		r.bySeat[seat] = name
		r.entries = append(r.entries, Entry{Name: name, Seat: seat})
	}
	return r, nil
}

// Default returns the built-in four-player roster.
func Default() *Roster {
	r, err := New(DefaultEntries)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves a display name to its seat. Matching is exact and
// case-sensitive; unknown names report ok=false.
func (r *Roster) Lookup(name string) (model.Seat, bool) {
	seat, ok := r.byName[name]
	return seat, ok
}

// Name returns the display name bound to seat.
func (r *Roster) Name(seat model.Seat) (string, bool) {
	name, ok := r.bySeat[seat]
	return name, ok
}

// Seats lists seats in roster order.
func (r *Roster) Seats() []model.Seat {
	seats := make([]model.Seat, len(r.entries))
	for i, e := range r.entries {
		seats[i] = e.Seat
	}
	return seats
}

// Names lists display names in roster order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the roster entries.
func (r *Roster) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.entries)
}
