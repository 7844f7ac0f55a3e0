package entryui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/puzzlescore/internal/editwindow"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/scoring"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		players: []string{"Keith", "Mike"},
		date:    "2024-03-01",
		result: scoring.Result{
			Score:       6,
			BonusPoints: model.BonusPoints{WordleQuick: true, StrandsSpanagram: true},
		},
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Player Keith", "Date 2024-03-01", "Score 6/7", "Bonus ⚡🟡", "Open"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterLocked(t *testing.T) {
	m := &Model{
		players: []string{"Keith"},
		date:    "2024-02-01",
		editErr: editwindow.ErrOutsideWindow,
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Score 0/7", "Locked: only today and yesterday can be edited"}) {
		t.Fatalf("footer missing lock state: %s", out)
	}
	if strings.Contains(out, "Bonus") {
		t.Fatalf("expected no bonus segment: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
