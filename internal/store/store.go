// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/puzzlescore/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for score rows and monthly archives.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers and keeps per-connection pragmas.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS score_rows (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			player TEXT NOT NULL,
			wordle INTEGER NOT NULL,
			connections INTEGER NOT NULL,
			strands INTEGER NOT NULL,
			total INTEGER NOT NULL,
			bonus_wordle INTEGER NOT NULL DEFAULT 0,
			bonus_connections INTEGER NOT NULL DEFAULT 0,
			bonus_strands INTEGER NOT NULL DEFAULT 0,
			finalized INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (date, player)
		);`,
		`CREATE TABLE IF NOT EXISTS monthly_archives (
			month TEXT PRIMARY KEY,
			archive_data TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_score_rows_date ON score_rows(date);`,
		`CREATE INDEX IF NOT EXISTS idx_score_rows_archived ON score_rows(archived, date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return nil
}

const rowColumns = `id, date, player, wordle, connections, strands, total,
	bonus_wordle, bonus_connections, bonus_strands, finalized, archived, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (model.ScoreRow, error) {
	var row model.ScoreRow
	var createdAt, updatedAt string
	if err := sc.Scan(
		&row.ID, &row.Date, &row.Player,
		&row.Wordle, &row.Connections, &row.Strands, &row.Total,
		&row.BonusWordle, &row.BonusConnections, &row.BonusStrands,
		&row.Finalized, &row.Archived, &row.Version,
		&createdAt, &updatedAt,
	); err != nil {
		return model.ScoreRow{}, err
	}
	var err error
	if row.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.ScoreRow{}, err
	}
	if row.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return model.ScoreRow{}, err
	}
	return row, nil
}

// whereClause renders a RowFilter. start and end bound the date range when
// non-empty and take precedence over the filter's own range.
func whereClause(start, end string, f model.RowFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if start == "" {
		start = f.StartDate
	}
	if end == "" {
		end = f.EndDate
	}
	if start != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, start)
	}
	if end != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, end)
	}
	if f.Date != "" {
		clauses = append(clauses, "date = ?")
		args = append(args, f.Date)
	}
	if f.Player != "" {
		clauses = append(clauses, "player = ?")
		args = append(args, f.Player)
	}
	if f.Archived != nil {
		clauses = append(clauses, "archived = ?")
		args = append(args, *f.Archived)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			clauses = append(clauses, "0=1")
		} else {
			placeholders := make([]string, len(f.IDs))
			for i, id := range f.IDs {
				placeholders[i] = "?"
				args = append(args, id)
			}
			clauses = append(clauses, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ",")))
		}
	}
	return strings.Join(clauses, " AND "), args
}

// QueryByDateRange returns rows dated within [start, end] that match f,
// ordered by date then player.
func (s *Store) QueryByDateRange(ctx context.Context, start, end string, f model.RowFilter) ([]model.ScoreRow, error) {
	where, args := whereClause(start, end, f)
	query := fmt.Sprintf(`SELECT %s FROM score_rows WHERE %s ORDER BY date ASC, player ASC, id ASC`, rowColumns, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("query score rows", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ScoreRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, wrapError("scan score row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("query score rows", err)
	}
	return result, nil
}

// UpsertRow inserts or replaces the row keyed by (date, player). A non-zero
// row.Version must match the stored version or ErrConflict is returned.
// Replacing keeps the stored finalized and archived flags, and a locked row
// is refused with ErrLocked. The stored row is returned with its new version.
func (s *Store) UpsertRow(ctx context.Context, row model.ScoreRow) (stored model.ScoreRow, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ScoreRow{}, wrapError("begin upsert", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	existing, err := scanRow(tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM score_rows WHERE date = ? AND player = ?`, rowColumns),
		row.Date, row.Player))
	found := true
	if errors.Is(err, sql.ErrNoRows) {
		found = false
		err = nil
	}
	if err != nil {
		return model.ScoreRow{}, wrapError("load score row", err)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	total := row.Wordle + row.Connections + row.Strands
	switch {
	case !found && row.Version != 0:
		err = ErrConflict
		return model.ScoreRow{}, wrapError("upsert score row", err)
	case !found:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO score_rows (date, player, wordle, connections, strands, total,
				bonus_wordle, bonus_connections, bonus_strands, finalized, archived, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			row.Date, row.Player, row.Wordle, row.Connections, row.Strands, total,
			row.BonusWordle, row.BonusConnections, row.BonusStrands, row.Finalized, row.Archived,
			now, now)
	case row.Version != 0 && row.Version != existing.Version:
		err = ErrConflict
		return model.ScoreRow{}, wrapError("upsert score row", err)
	case existing.Finalized || existing.Archived:
		err = ErrLocked
		return model.ScoreRow{}, wrapError("upsert score row", err)
	default:
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`UPDATE score_rows SET wordle = ?, connections = ?, strands = ?, total = ?,
				bonus_wordle = ?, bonus_connections = ?, bonus_strands = ?,
				version = version + 1, updated_at = ?
			 WHERE id = ? AND version = ? AND finalized = 0 AND archived = 0`,
			row.Wordle, row.Connections, row.Strands, total,
			row.BonusWordle, row.BonusConnections, row.BonusStrands,
			now, existing.ID, existing.Version)
		if err == nil {
			var n int64
			if n, err = res.RowsAffected(); err == nil && n == 0 {
				err = ErrConflict
			}
		}
	}
	if err != nil {
		return model.ScoreRow{}, wrapError("upsert score row", err)
	}

	stored, err = scanRow(tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM score_rows WHERE date = ? AND player = ?`, rowColumns),
		row.Date, row.Player))
	if err != nil {
		return model.ScoreRow{}, wrapError("reload score row", err)
	}
	if err = tx.Commit(); err != nil {
		return model.ScoreRow{}, wrapError("commit upsert", err)
	}
	return stored, nil
}

// UpdateRows applies patch to every row matching f and returns the number of
// rows changed. An empty patch changes nothing.
func (s *Store) UpdateRows(ctx context.Context, f model.RowFilter, patch model.RowPatch) (int64, error) {
	sets := []string{}
	args := []any{}
	if patch.Finalized != nil {
		sets = append(sets, "finalized = ?")
		args = append(args, *patch.Finalized)
	}
	if patch.Archived != nil {
		sets = append(sets, "archived = ?")
		args = append(args, *patch.Archived)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "version = version + 1", "updated_at = ?")
	args = append(args, s.now().UTC().Format(time.RFC3339Nano))

	where, whereArgs := whereClause("", "", f)
	args = append(args, whereArgs...)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE score_rows SET %s WHERE %s`, strings.Join(sets, ", "), where), args...)
	if err != nil {
		return 0, wrapError("update score rows", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapError("update score rows", err)
	}
	return n, nil
}

// GetArchive loads the snapshot for month. ok is false when none exists.
func (s *Store) GetArchive(ctx context.Context, month string) (model.MonthlyArchive, bool, error) {
	var blob, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT archive_data, created_at FROM monthly_archives WHERE month = ?`, month).Scan(&blob, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MonthlyArchive{}, false, nil
	}
	if err != nil {
		return model.MonthlyArchive{}, false, wrapError("get archive", err)
	}

	archive := model.MonthlyArchive{Month: month}
	if err := json.Unmarshal([]byte(blob), &archive.Data); err != nil {
		return model.MonthlyArchive{}, false, wrapError("decode archive", err)
	}
	if archive.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.MonthlyArchive{}, false, wrapError("decode archive", err)
	}
	return archive, true, nil
}

// PutArchive stores or replaces the snapshot for month.
func (s *Store) PutArchive(ctx context.Context, month string, data model.PlayerScores) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return wrapError("encode archive", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO monthly_archives (month, archive_data, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(month) DO UPDATE SET archive_data = excluded.archive_data`,
		month, string(blob), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return wrapError("put archive", err)
	}
	return nil
}

// ListArchiveMonths returns archived month keys, newest first.
func (s *Store) ListArchiveMonths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT month FROM monthly_archives ORDER BY month DESC`)
	if err != nil {
		return nil, wrapError("list archives", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var months []string
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, wrapError("list archives", err)
		}
		months = append(months, month)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list archives", err)
	}
	return months, nil
}

// ListPlayers returns the distinct player names seen in score rows.
func (s *Store) ListPlayers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT player FROM score_rows ORDER BY player ASC`)
	if err != nil {
		return nil, wrapError("list players", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var players []string
	for rows.Next() {
		var player string
		if err := rows.Scan(&player); err != nil {
			return nil, wrapError("list players", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list players", err)
	}
	return players, nil
}
