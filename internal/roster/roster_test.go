package roster

import (
	"testing"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

func TestDefaultLookup(t *testing.T) {
	r := Default()
	seat, ok := r.Lookup("Colleen")
	if !ok || seat != "player3" {
		t.Fatalf("expected player3, got %q ok=%v", seat, ok)
	}
	if _, ok := r.Lookup("colleen"); ok {
		t.Fatalf("lookup must be case-sensitive")
	}
	if _, ok := r.Lookup("Nobody"); ok {
		t.Fatalf("unknown name must not resolve")
	}
	if r.Len() != 4 {
		t.Fatalf("expected 4 players, got %d", r.Len())
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	if _, err := New([]Entry{{"A", "player1"}, {"A", "player2"}}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if _, err := New([]Entry{{"A", "player1"}, {"B", "player1"}}); err == nil {
		t.Fatalf("expected duplicate seat error")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected empty roster error")
	}
}

func TestSeatsKeepOrder(t *testing.T) {
	r, err := New([]Entry{{"Zed", "p2"}, {"Amy", "p1"}, {"Bo", "p3"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	seats := r.Seats()
	want := []model.Seat{"p2", "p1", "p3"}
	for i := range want {
		if seats[i] != want[i] {
			t.Fatalf("unexpected seat order: %v", seats)
		}
	}
	if name, ok := r.Name("p1"); !ok || name != "Amy" {
		t.Fatalf("expected Amy, got %q", name)
	}
}
