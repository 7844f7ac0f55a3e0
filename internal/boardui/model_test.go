package boardui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
)

type fakeSource struct {
	scores map[string]model.PlayerScores
	months []string
}

func (f *fakeSource) MonthScores(_ context.Context, month string) (model.PlayerScores, error) {
	f.months = append(f.months, month)
	scores, ok := f.scores[month]
	if !ok {
		if month == "2000-01" {
			return nil, errors.New("store offline")
		}
		return model.PlayerScores{}, nil
	}
	return scores, nil
}

func newSource() *fakeSource {
	keith := model.NewPlayerData()
	keith.DailyScores["2024-03-01"] = model.DailyScore{
		Date: "2024-03-01", Wordle: 2, Connections: 3, Strands: 1, Total: 6,
		BonusPoints: model.BonusPoints{WordleQuick: true},
	}
	keith.Total = 6
	keith.TotalBonuses.Wordle = 1
	return &fakeSource{scores: map[string]model.PlayerScores{
		"2024-03": {"player1": keith},
	}}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(*Model)
}

func TestViewShowsStandings(t *testing.T) {
	m := sized(t, NewModel(newSource(), roster.Default(), "2024-03"))
	view := m.View()
	for _, want := range []string{"Standings", "Month: 2024-03", "Leader: Keith", "Keith 👑"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestTabsWrapAround(t *testing.T) {
	m := sized(t, NewModel(newSource(), roster.Default(), "2024-03"))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Running Totals") {
		t.Fatalf("expected plot on history tab:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabDaily {
		t.Fatalf("expected daily tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "6⚡") {
		t.Fatalf("expected daily cell in view:\n%s", m.View())
	}
}

func TestMonthNavigation(t *testing.T) {
	src := newSource()
	m := sized(t, NewModel(src, roster.Default(), "2024-03"))
	m.Update(keyRunes("]"))
	m.Update(keyRunes("["))
	m.Update(keyRunes("["))
	if m.Month() != "2024-02" {
		t.Fatalf("expected 2024-02, got %s", m.Month())
	}
	want := []string{"2024-03", "2024-04", "2024-03", "2024-02"}
	if strings.Join(src.months, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected loads %v", src.months)
	}
	if !strings.Contains(m.View(), "No scores yet.") {
		t.Fatalf("expected empty notice:\n%s", m.View())
	}
}

func TestMonthJumpValidates(t *testing.T) {
	m := sized(t, NewModel(newSource(), roster.Default(), "2024-03"))
	m.Update(keyRunes("/"))
	if !m.monthMode {
		t.Fatalf("expected month input mode")
	}
	m.Update(keyRunes("2024-13"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.monthMode || m.monthError == "" {
		t.Fatalf("expected validation error, mode=%v err=%q", m.monthMode, m.monthError)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(keyRunes("/"))
	m.Update(keyRunes("2024-01"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.monthMode || m.Month() != "2024-01" {
		t.Fatalf("expected jump to 2024-01, mode=%v month=%s", m.monthMode, m.Month())
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := sized(t, NewModel(newSource(), roster.Default(), "2000-01"))
	if !strings.Contains(m.View(), "store offline") {
		t.Fatalf("expected error in footer:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(newSource(), roster.Default(), "2024-03")
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}
