package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st
}

func newRow(date, player string, w, c, s int) model.ScoreRow {
	row := model.ScoreRow{Date: date, Player: player}
	row.SetScores(model.GameScores{Wordle: w, Connections: c, Strands: s}, model.BonusPoints{WordleQuick: w == 2})
	return row
}

func TestUpsertInsertsThenUpdates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first, err := st.UpsertRow(ctx, newRow("2024-02-01", "Keith", 1, 2, 1))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == 0 || first.Version != 1 || first.Total != 4 {
		t.Fatalf("unexpected inserted row: %+v", first)
	}

	second, err := st.UpsertRow(ctx, newRow("2024-02-01", "Keith", 2, 3, 2))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if second.ID != first.ID || second.Version != 2 || second.Total != 7 || !second.BonusWordle {
		t.Fatalf("unexpected updated row: %+v", second)
	}

	rows, err := st.QueryByDateRange(ctx, "2024-02-01", "2024-02-29", model.RowFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestUpsertVersionConflict(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stored, err := st.UpsertRow(ctx, newRow("2024-02-01", "Mike", 1, 1, 1))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	stale := stored
	stored.Wordle = 2
	if _, err := st.UpsertRow(ctx, stored); err != nil {
		t.Fatalf("versioned update: %v", err)
	}

	stale.Strands = 2
	_, err = st.UpsertRow(ctx, stale)
	if !errors.Is(err, ErrConflict) || !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var storeErr *Error
	if !errors.As(err, &storeErr) || storeErr.Op != "upsert score row" {
		t.Fatalf("expected store error with op, got %v", err)
	}

	missing := newRow("2024-02-02", "Mike", 1, 1, 1)
	missing.Version = 4
	if _, err := st.UpsertRow(ctx, missing); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for missing versioned row, got %v", err)
	}
}

func TestUpsertRefusesLockedRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	finalized, err := st.UpsertRow(ctx, newRow("2024-02-01", "Keith", 1, 2, 1))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	archived, err := st.UpsertRow(ctx, newRow("2024-02-01", "Mike", 1, 1, 1))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.UpdateRows(ctx, model.RowFilter{IDs: []int64{finalized.ID}}, model.RowPatch{Finalized: model.Bool(true)}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := st.UpdateRows(ctx, model.RowFilter{IDs: []int64{archived.ID}}, model.RowPatch{Archived: model.Bool(true)}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	for _, player := range []string{"Keith", "Mike"} {
		_, err := st.UpsertRow(ctx, newRow("2024-02-01", player, 2, 3, 2))
		if !errors.Is(err, ErrLocked) {
			t.Fatalf("expected ErrLocked for %s, got %v", player, err)
		}
		var storeErr *Error
		if !errors.As(err, &storeErr) {
			t.Fatalf("expected *Error for %s, got %T", player, err)
		}
	}

	rows, err := st.QueryByDateRange(ctx, "2024-02-01", "2024-02-01", model.RowFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, r := range rows {
		switch r.Player {
		case "Keith":
			if !r.Finalized || r.Archived || r.Total != 4 {
				t.Fatalf("finalized row changed: %+v", r)
			}
		case "Mike":
			if r.Finalized || !r.Archived || r.Total != 3 {
				t.Fatalf("archived row changed: %+v", r)
			}
		}
	}
}

func TestUpsertKeepsStoredFlags(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.UpsertRow(ctx, newRow("2024-02-02", "Keith", 1, 1, 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	replacement := newRow("2024-02-02", "Keith", 2, 2, 2)
	replacement.Finalized = true
	replacement.Archived = true
	stored, err := st.UpsertRow(ctx, replacement)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if stored.Finalized || stored.Archived || stored.Total != 6 {
		t.Fatalf("expected scores replaced and flags kept, got %+v", stored)
	}
}

func TestCanceledContextIsStoreError(t *testing.T) {
	st := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.QueryByDateRange(ctx, "2024-02-01", "2024-02-29", model.RowFilter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var storeErr *Error
	if !errors.As(err, &storeErr) || storeErr.Op != "query score rows" {
		t.Fatalf("expected *Error for query score rows, got %#v", err)
	}

	_, err = st.UpsertRow(ctx, newRow("2024-02-01", "Keith", 1, 1, 1))
	if !errors.Is(err, context.Canceled) || !errors.As(err, &storeErr) {
		t.Fatalf("expected wrapped cancellation from upsert, got %#v", err)
	}
}

func TestQueryFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, row := range []model.ScoreRow{
		newRow("2024-01-31", "Keith", 1, 1, 1),
		newRow("2024-02-01", "Keith", 1, 1, 1),
		newRow("2024-02-01", "Mike", 2, 2, 2),
		newRow("2024-02-29", "Toby", 0, 0, 0),
		newRow("2024-03-01", "Toby", 0, 0, 0),
	} {
		if _, err := st.UpsertRow(ctx, row); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rows, err := st.QueryByDateRange(ctx, "2024-02-01", "2024-02-29", model.RowFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.Date+"/"+r.Player)
	}
	want := []string{"2024-02-01/Keith", "2024-02-01/Mike", "2024-02-29/Toby"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}

	rows, err = st.QueryByDateRange(ctx, "", "", model.RowFilter{Player: "Keith"})
	if err != nil {
		t.Fatalf("query player: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 Keith rows, got %d", len(rows))
	}

	rows, err = st.QueryByDateRange(ctx, "", "", model.RowFilter{IDs: []int64{}})
	if err != nil {
		t.Fatalf("query empty ids: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("empty id set must match nothing, got %d", len(rows))
	}
}

func TestUpdateRowsPatches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a, _ := st.UpsertRow(ctx, newRow("2024-02-01", "Keith", 1, 1, 1))
	b, _ := st.UpsertRow(ctx, newRow("2024-02-01", "Mike", 1, 1, 1))
	if _, err := st.UpsertRow(ctx, newRow("2024-02-02", "Mike", 1, 1, 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := st.UpdateRows(ctx, model.RowFilter{Date: "2024-02-01"}, model.RowPatch{Finalized: model.Bool(true)})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows finalized, got %d", n)
	}

	n, err = st.UpdateRows(ctx, model.RowFilter{IDs: []int64{a.ID}}, model.RowPatch{Archived: model.Bool(true)})
	if err != nil || n != 1 {
		t.Fatalf("archive by id: n=%d err=%v", n, err)
	}

	pending, err := st.QueryByDateRange(ctx, "2024-02-01", "2024-02-29", model.RowFilter{Archived: model.Bool(false)})
	if err != nil {
		t.Fatalf("query pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending rows, got %d", len(pending))
	}
	for _, r := range pending {
		if r.ID == b.ID && (!r.Finalized || r.Version != 2) {
			t.Fatalf("expected finalized row with bumped version, got %+v", r)
		}
	}

	if n, err := st.UpdateRows(ctx, model.RowFilter{}, model.RowPatch{}); err != nil || n != 0 {
		t.Fatalf("empty patch must be a no-op: n=%d err=%v", n, err)
	}
}

func TestArchives(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetArchive(ctx, "2024-02"); err != nil || ok {
		t.Fatalf("expected no archive, ok=%v err=%v", ok, err)
	}

	data := model.PlayerScores{
		"player1": {
			DailyScores: map[string]model.DailyScore{
				"2024-02-01": {Date: "2024-02-01", Wordle: 2, Total: 2, BonusPoints: model.BonusPoints{WordleQuick: true}, Finalized: true},
			},
			Total:        2,
			TotalBonuses: model.BonusTotals{Wordle: 1},
		},
		"player2": model.NewPlayerData(),
	}
	for _, month := range []string{"2024-01", "2024-03", "2024-02"} {
		if err := st.PutArchive(ctx, month, data); err != nil {
			t.Fatalf("put %s: %v", month, err)
		}
	}
	if err := st.PutArchive(ctx, "2024-02", data); err != nil {
		t.Fatalf("re-put: %v", err)
	}

	archive, ok, err := st.GetArchive(ctx, "2024-02")
	if err != nil || !ok {
		t.Fatalf("get archive: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(data, archive.Data); diff != "" {
		t.Fatalf("archive round trip mismatch (-want +got):\n%s", diff)
	}

	months, err := st.ListArchiveMonths(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-03", "2024-02", "2024-01"}, months); diff != "" {
		t.Fatalf("unexpected months (-want +got):\n%s", diff)
	}
}

func TestListPlayers(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, row := range []model.ScoreRow{
		newRow("2024-02-01", "Mike", 1, 1, 1),
		newRow("2024-02-02", "Mike", 1, 1, 1),
		newRow("2024-02-01", "Colleen", 1, 1, 1),
	} {
		if _, err := st.UpsertRow(ctx, row); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	players, err := st.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if diff := cmp.Diff([]string{"Colleen", "Mike"}, players); diff != "" {
		t.Fatalf("unexpected players (-want +got):\n%s", diff)
	}
}
