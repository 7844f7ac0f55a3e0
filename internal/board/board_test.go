package board

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/puzzlescore/internal/aggregate"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/editwindow"
	"github.com/verte-zerg/puzzlescore/internal/metrics"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/store"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

const sampleText = "Wordle 1,000 3/6\n🟩🟩🟩🟩🟩\nConnections\nPuzzle #1\n🟪🟪🟪🟪\n🟦🟦🟦🟦\n🟩🟩🟩🟩\n🟨🟨🟨🟨\nStrands #9\n🔵🔵🔵🟡"

func newService(t *testing.T) *Service {
	t.Helper()
	return newServiceWith(t, func(st *store.Store) Store { return st })
}

func newServiceWith(t *testing.T, wrap func(*store.Store) Store) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	// Noon on 2024-03-01 in Los Angeles.
	cal, err := calendar.New("America/Los_Angeles", fixedClock{now: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	return NewService(wrap(st), roster.Default(), cal, Options{Metrics: metrics.New()})
}

// lockAfterRead runs lock once, right after the next date query returns, to
// simulate another session writing between the window check and the save.
type lockAfterRead struct {
	*store.Store
	lock func(ctx context.Context, st *store.Store) error
}

func (l *lockAfterRead) QueryByDateRange(ctx context.Context, start, end string, f model.RowFilter) ([]model.ScoreRow, error) {
	rows, err := l.Store.QueryByDateRange(ctx, start, end, f)
	if err != nil || l.lock == nil {
		return rows, err
	}
	lock := l.lock
	l.lock = nil
	return rows, lock(ctx, l.Store)
}

func finalizeDate(date string) func(ctx context.Context, st *store.Store) error {
	return func(ctx context.Context, st *store.Store) error {
		_, err := st.UpdateRows(ctx, model.RowFilter{Date: date}, model.RowPatch{Finalized: model.Bool(true)})
		return err
	}
}

func TestSubmitLosesRaceWithFinalize(t *testing.T) {
	var racer *lockAfterRead
	svc := newServiceWith(t, func(st *store.Store) Store {
		racer = &lockAfterRead{Store: st}
		return racer
	})
	ctx := context.Background()

	if _, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: "Keith", Text: sampleText}, true); err != nil {
		t.Fatalf("submit: %v", err)
	}

	racer.lock = finalizeDate("2024-03-01")
	_, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: "Keith", Text: "Wordle 1,000 5/6"}, true)
	if !store.IsConflict(err) {
		t.Fatalf("expected a conflict, got %v", err)
	}

	rows, err := racer.Store.QueryByDateRange(ctx, "2024-03-01", "2024-03-01", model.RowFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || !rows[0].Finalized || rows[0].Total != 6 {
		t.Fatalf("expected the finalized row untouched, got %+v", rows)
	}
}

func TestSubmitRefusesRowFinalizedByAnotherSession(t *testing.T) {
	var racer *lockAfterRead
	svc := newServiceWith(t, func(st *store.Store) Store {
		racer = &lockAfterRead{Store: st}
		return racer
	})
	ctx := context.Background()

	// The window check sees no row; another session then saves and finalizes one.
	racer.lock = func(ctx context.Context, st *store.Store) error {
		row := model.ScoreRow{Date: "2024-03-01", Player: "Mike"}
		row.SetScores(model.GameScores{Wordle: 1}, model.BonusPoints{})
		if _, err := st.UpsertRow(ctx, row); err != nil {
			return err
		}
		return finalizeDate("2024-03-01")(ctx, st)
	}
	_, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: "Mike", Text: sampleText}, true)
	if !errors.Is(err, editwindow.ErrFinalized) {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}
	if reason := RejectReason(err); reason != "finalized" {
		t.Fatalf("expected finalized reason, got %q", reason)
	}
}

func TestSubmitScoresAndStores(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	row, result, err := svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: "Keith", Text: sampleText}, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 6 || row.Total != 6 || !row.BonusWordle || row.BonusStrands {
		t.Fatalf("unexpected row %+v result %+v", row, result)
	}

	scores, err := svc.MonthScores(ctx, "2024-03")
	if err != nil {
		t.Fatalf("month scores: %v", err)
	}
	if scores["player1"].Total != 6 || scores["player1"].TotalBonuses.Wordle != 1 {
		t.Fatalf("unexpected month view: %+v", scores["player1"])
	}
}

func TestSubmitEnforcesEditWindow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := []struct {
		date  string
		admin bool
		want  error
	}{
		{"2024-03-01", false, editwindow.ErrNotAdmin},
		{"2024-02-28", true, editwindow.ErrOutsideWindow},
	}
	for _, tc := range cases {
		_, _, err := svc.Submit(ctx, SubmitRequest{Date: tc.date, Player: "Mike", Text: sampleText}, tc.admin)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s admin=%v: expected %v, got %v", tc.date, tc.admin, tc.want, err)
		}
	}
	if _, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-02-29", Player: "Mike", Text: sampleText}, true); err != nil {
		t.Fatalf("yesterday should be editable: %v", err)
	}
}

func TestFinalizeLocksDate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, player := range []string{"Keith", "Colleen"} {
		if _, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: player, Text: sampleText}, true); err != nil {
			t.Fatalf("submit %s: %v", player, err)
		}
	}
	n, err := svc.Finalize(ctx, "2024-03-01", true)
	if err != nil || n != 2 {
		t.Fatalf("finalize: n=%d err=%v", n, err)
	}

	_, _, err = svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: "Toby", Text: sampleText}, true)
	if !errors.Is(err, editwindow.ErrFinalized) {
		t.Fatalf("expected finalized error, got %v", err)
	}
	if err := svc.Editable(ctx, "2024-03-01", true); !errors.Is(err, editwindow.ErrFinalized) {
		t.Fatalf("expected date locked, got %v", err)
	}
	if err := svc.Editable(ctx, "2024-02-29", true); err != nil {
		t.Fatalf("expected yesterday editable, got %v", err)
	}
}

func TestUpdateAppliesPatch(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-03-01", Player: "Toby", Text: sampleText}, true); err != nil {
		t.Fatalf("submit: %v", err)
	}
	zero, yes := 0, true
	row, err := svc.Update(ctx, UpdateRequest{
		Date:   "2024-03-01",
		Player: "Toby",
		Scores: ScorePatch{Connections: &zero, BonusConnections: &yes},
	}, true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if row.Wordle != 2 || row.Connections != 0 || row.Strands != 1 || row.Total != 3 || !row.BonusConnections {
		t.Fatalf("unexpected updated row: %+v", row)
	}
	if row.Version != 2 {
		t.Fatalf("expected version 2, got %d", row.Version)
	}

	fresh, err := svc.Update(ctx, UpdateRequest{Date: "2024-02-29", Player: "Mike", Scores: ScorePatch{Wordle: &zero}}, true)
	if err != nil {
		t.Fatalf("update missing row: %v", err)
	}
	if fresh.Version != 1 || fresh.Total != 0 {
		t.Fatalf("unexpected new row: %+v", fresh)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	four := 4
	_, err := svc.Update(ctx, UpdateRequest{Date: "2024-03-01", Player: "Toby", Scores: ScorePatch{Connections: &four}}, true)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	_, err = svc.Update(ctx, UpdateRequest{Date: "2024-03-01", Player: "Ghost"}, true)
	var invalid *aggregate.InvalidPlayerError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid player, got %v", err)
	}
}

func TestArchiveRequiresAdminAndFreezesMonth(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, _, err := svc.Submit(ctx, SubmitRequest{Date: "2024-02-29", Player: "Keith", Text: sampleText}, true); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.ArchiveMonth(ctx, "2024-02", false); !errors.Is(err, editwindow.ErrNotAdmin) {
		t.Fatalf("expected not admin, got %v", err)
	}
	month, snapshot, err := svc.ArchivePrevious(ctx, true)
	if err != nil {
		t.Fatalf("archive previous: %v", err)
	}
	if month != "2024-02" || snapshot["player1"].Total != 6 {
		t.Fatalf("unexpected archive %s: %+v", month, snapshot["player1"])
	}

	// Archived rows stay visible in the month view but are locked.
	scores, err := svc.MonthScores(ctx, "2024-02")
	if err != nil || scores["player1"].Total != 6 {
		t.Fatalf("month view after archive: %+v err=%v", scores["player1"], err)
	}
	if err := svc.Editable(ctx, "2024-02-29", true); !errors.Is(err, editwindow.ErrFinalized) {
		t.Fatalf("expected archived date locked, got %v", err)
	}

	months, err := svc.ArchivedMonths(ctx)
	if err != nil || len(months) != 1 {
		t.Fatalf("archived months %v err=%v", months, err)
	}
}

func TestMonthScoresRejectsBadMonth(t *testing.T) {
	svc := newService(t)
	_, err := svc.MonthScores(context.Background(), "March")
	var invalid *calendar.InvalidMonthError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid month, got %v", err)
	}
}
