// Package archive freezes a month's scores into a standalone snapshot.
package archive

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/puzzlescore/internal/aggregate"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
)

// Steps of an archive run, as reported by Error.
const (
	StepFetch     = "fetch"
	StepAggregate = "aggregate"
	StepStore     = "store"
	StepMark      = "mark"
)

// Error reports which archive step failed for a month.
type Error struct {
	Month string
	Step  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to archive %s (%s): %v", e.Month, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Store is the persistence surface the manager needs.
type Store interface {
	QueryByDateRange(ctx context.Context, start, end string, f model.RowFilter) ([]model.ScoreRow, error)
	UpdateRows(ctx context.Context, f model.RowFilter, patch model.RowPatch) (int64, error)
	GetArchive(ctx context.Context, month string) (model.MonthlyArchive, bool, error)
	PutArchive(ctx context.Context, month string, data model.PlayerScores) error
	ListArchiveMonths(ctx context.Context) ([]string, error)
}

// Options tunes a Manager.
type Options struct {
	// Location is the reference timezone for ArchivePrevious. Nil means UTC.
	Location  *time.Location
	OnUnknown aggregate.UnknownPolicy
}

// Manager runs archive operations against an injected store.
type Manager struct {
	store  Store
	roster *roster.Roster
	logger *zap.Logger
	opts   Options
}

// NewManager builds a Manager. A nil logger disables logging.
func NewManager(store Store, r *roster.Roster, logger *zap.Logger, opts Options) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Manager{store: store, roster: r, logger: logger, opts: opts}
}

// ArchiveMonth snapshots month and marks its pending rows archived. Running it
// again with no new rows returns the stored snapshot unchanged. Rows added
// after an earlier run are folded into a fresh snapshot of the whole month.
// The steps are not transactional: re-running after a failure completes them.
func (m *Manager) ArchiveMonth(ctx context.Context, month string) (model.PlayerScores, error) {
	start, end, err := calendar.MonthRange(month)
	if err != nil {
		return nil, err
	}
	log := m.logger.With(zap.String("month", month))

	pending, err := m.store.QueryByDateRange(ctx, start, end, model.RowFilter{Archived: model.Bool(false)})
	if err != nil {
		return nil, &Error{Month: month, Step: StepFetch, Err: err}
	}
	existing, found, err := m.store.GetArchive(ctx, month)
	if err != nil {
		return nil, &Error{Month: month, Step: StepFetch, Err: err}
	}
	if len(pending) == 0 && found {
		log.Info("month already archived", zap.Int("players", len(existing.Data)))
		return existing.Data, nil
	}

	rows := pending
	if found {
		rows, err = m.store.QueryByDateRange(ctx, start, end, model.RowFilter{})
		if err != nil {
			return nil, &Error{Month: month, Step: StepFetch, Err: err}
		}
		log.Info("folding late rows into existing archive", zap.Int("pending", len(pending)))
	}

	snapshot, err := aggregate.Build(rows, m.roster, aggregate.Options{
		OnUnknown: m.opts.OnUnknown,
		Freeze:    true,
		Skipped: func(row model.ScoreRow) {
			log.Warn("skipping row for unknown player",
				zap.String("player", row.Player),
				zap.String("date", row.Date),
			)
		},
	})
	if err != nil {
		return nil, &Error{Month: month, Step: StepAggregate, Err: err}
	}

	if err := m.store.PutArchive(ctx, month, snapshot); err != nil {
		return nil, &Error{Month: month, Step: StepStore, Err: err}
	}

	if len(pending) > 0 {
		ids := make([]int64, len(pending))
		for i, row := range pending {
			ids[i] = row.ID
		}
		n, err := m.store.UpdateRows(ctx, model.RowFilter{IDs: ids}, model.RowPatch{Archived: model.Bool(true)})
		if err != nil {
			return nil, &Error{Month: month, Step: StepMark, Err: err}
		}
		log.Info("archived month", zap.Int64("rows", n))
	} else {
		log.Info("archived empty month")
	}
	return snapshot, nil
}

// ArchivePrevious archives the month before now in the reference timezone and
// returns its key.
func (m *Manager) ArchivePrevious(ctx context.Context, now time.Time) (string, model.PlayerScores, error) {
	month := calendar.PreviousMonthOf(now.In(m.opts.Location))
	snapshot, err := m.ArchiveMonth(ctx, month)
	return month, snapshot, err
}

// FetchArchivedMonth returns the stored snapshot for month. ok is false when
// the month was never archived.
func (m *Manager) FetchArchivedMonth(ctx context.Context, month string) (model.PlayerScores, bool, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return nil, false, err
	}
	archive, found, err := m.store.GetArchive(ctx, month)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch archive %s: %w", month, err)
	}
	if !found {
		return nil, false, nil
	}
	return archive.Data, true, nil
}

// ListArchivedMonths returns archived month keys, newest first.
func (m *Manager) ListArchivedMonths(ctx context.Context) ([]string, error) {
	months, err := m.store.ListArchiveMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}
