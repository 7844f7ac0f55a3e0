// Package board implements the scoreboard operations shared by the CLI, the
// terminal UI and the HTTP API.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/puzzlescore/internal/aggregate"
	"github.com/verte-zerg/puzzlescore/internal/archive"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/editwindow"
	"github.com/verte-zerg/puzzlescore/internal/metrics"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/scoring"
	"github.com/verte-zerg/puzzlescore/internal/store"
)

// ErrInvalidInput marks request validation failures.
var ErrInvalidInput = errors.New("invalid input")

// Store is the persistence surface the service needs.
type Store interface {
	QueryByDateRange(ctx context.Context, start, end string, f model.RowFilter) ([]model.ScoreRow, error)
	UpsertRow(ctx context.Context, row model.ScoreRow) (model.ScoreRow, error)
	UpdateRows(ctx context.Context, f model.RowFilter, patch model.RowPatch) (int64, error)
	GetArchive(ctx context.Context, month string) (model.MonthlyArchive, bool, error)
	PutArchive(ctx context.Context, month string, data model.PlayerScores) error
	ListArchiveMonths(ctx context.Context) ([]string, error)
}

// Options configures a Service.
type Options struct {
	Policy    editwindow.Policy
	OnUnknown aggregate.UnknownPolicy
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Service runs scoreboard operations. Every write re-checks the edit window.
type Service struct {
	store    Store
	roster   *roster.Roster
	calendar *calendar.Calendar
	archiver *archive.Manager
	policy   editwindow.Policy
	unknown  aggregate.UnknownPolicy
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService wires a Service.
func NewService(st Store, r *roster.Roster, cal *calendar.Calendar, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		roster:   r,
		calendar: cal,
		archiver: archive.NewManager(st, r, logger, archive.Options{
			Location:  cal.Location(),
			OnUnknown: opts.OnUnknown,
		}),
		policy:  opts.Policy,
		unknown: opts.OnUnknown,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Calendar returns the reference calendar.
func (s *Service) Calendar() *calendar.Calendar {
	return s.calendar
}

// SubmitRequest carries pasted results for one player and date.
type SubmitRequest struct {
	Date   string
	Player string
	Text   string
}

// Submit scores pasted text and stores it as the player's row for the date,
// replacing any earlier submission. The write is rejected with a conflict if
// the row changed after the edit window was checked.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, isAdmin bool) (model.ScoreRow, scoring.Result, error) {
	if err := s.validate(req.Date, req.Player); err != nil {
		return model.ScoreRow{}, scoring.Result{}, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return model.ScoreRow{}, scoring.Result{}, fmt.Errorf("%w: score text is empty", ErrInvalidInput)
	}
	rows, err := s.checkWindow(ctx, req.Date, isAdmin)
	if err != nil {
		return model.ScoreRow{}, scoring.Result{}, err
	}

	result := scoring.Calculate(req.Text)
	row := model.ScoreRow{Date: req.Date, Player: req.Player}
	if existing, ok := findRow(rows, req.Player); ok {
		row.Version = existing.Version
	}
	row.SetScores(result.GameScores, result.BonusPoints)

	start := time.Now()
	stored, err := s.store.UpsertRow(ctx, row)
	s.metrics.ObserveStore("upsert", start)
	if err != nil {
		return model.ScoreRow{}, scoring.Result{}, fmt.Errorf("failed to save score: %w", lockedAsFinalized(err))
	}

	s.metrics.ObserveSubmission(req.Player, stored.Wordle, stored.Connections, stored.Strands,
		stored.BonusWordle, stored.BonusStrands)
	s.logger.Info("score submitted",
		zap.String("date", req.Date),
		zap.String("player", req.Player),
		zap.Int("total", stored.Total),
	)
	return stored, result, nil
}

// ScorePatch lists per-game values to change. Nil fields keep the stored value.
type ScorePatch struct {
	Wordle           *int  `json:"wordle,omitempty"`
	Connections      *int  `json:"connections,omitempty"`
	Strands          *int  `json:"strands,omitempty"`
	BonusWordle      *bool `json:"bonusWordle,omitempty"`
	BonusConnections *bool `json:"bonusConnections,omitempty"`
	BonusStrands     *bool `json:"bonusStrands,omitempty"`
}

// UpdateRequest edits stored values for one player and date.
type UpdateRequest struct {
	Date   string
	Player string
	Scores ScorePatch
}

// Update applies a partial score edit. A missing row is created from zero.
// The write is rejected with a conflict if the row changed in between.
func (s *Service) Update(ctx context.Context, req UpdateRequest, isAdmin bool) (model.ScoreRow, error) {
	if err := s.validate(req.Date, req.Player); err != nil {
		return model.ScoreRow{}, err
	}
	if err := validatePatch(req.Scores); err != nil {
		return model.ScoreRow{}, err
	}
	rows, err := s.checkWindow(ctx, req.Date, isAdmin)
	if err != nil {
		return model.ScoreRow{}, err
	}

	row := model.ScoreRow{Date: req.Date, Player: req.Player}
	if existing, ok := findRow(rows, req.Player); ok {
		row = existing
	}
	applyPatch(&row, req.Scores)

	start := time.Now()
	stored, err := s.store.UpsertRow(ctx, row)
	s.metrics.ObserveStore("upsert", start)
	if err != nil {
		return model.ScoreRow{}, fmt.Errorf("failed to update score: %w", lockedAsFinalized(err))
	}
	s.logger.Info("score updated",
		zap.String("date", req.Date),
		zap.String("player", req.Player),
		zap.Int("total", stored.Total),
		zap.Int64("version", stored.Version),
	)
	return stored, nil
}

func validatePatch(p ScorePatch) error {
	check := func(name string, v *int, max int) error {
		if v != nil && (*v < 0 || *v > max) {
			return fmt.Errorf("%w: %s must be between 0 and %d", ErrInvalidInput, name, max)
		}
		return nil
	}
	if err := check("wordle", p.Wordle, scoring.MaxWordle); err != nil {
		return err
	}
	if err := check("connections", p.Connections, scoring.MaxConnections); err != nil {
		return err
	}
	return check("strands", p.Strands, scoring.MaxStrands)
}

func applyPatch(row *model.ScoreRow, p ScorePatch) {
	scores := model.GameScores{Wordle: row.Wordle, Connections: row.Connections, Strands: row.Strands}
	bonus := model.BonusPoints{
		WordleQuick:        row.BonusWordle,
		ConnectionsPerfect: row.BonusConnections,
		StrandsSpanagram:   row.BonusStrands,
	}
	if p.Wordle != nil {
		scores.Wordle = *p.Wordle
	}
	if p.Connections != nil {
		scores.Connections = *p.Connections
	}
	if p.Strands != nil {
		scores.Strands = *p.Strands
	}
	if p.BonusWordle != nil {
		bonus.WordleQuick = *p.BonusWordle
	}
	if p.BonusConnections != nil {
		bonus.ConnectionsPerfect = *p.BonusConnections
	}
	if p.BonusStrands != nil {
		bonus.StrandsSpanagram = *p.BonusStrands
	}
	row.SetScores(scores, bonus)
}

// Finalize locks every row of date against further edits and returns the
// number of rows locked.
func (s *Service) Finalize(ctx context.Context, date string, isAdmin bool) (int64, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.checkWindow(ctx, date, isAdmin); err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := s.store.UpdateRows(ctx, model.RowFilter{Date: date}, model.RowPatch{Finalized: model.Bool(true)})
	s.metrics.ObserveStore("update", start)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize %s: %w", date, err)
	}
	s.logger.Info("scores finalized", zap.String("date", date), zap.Int64("rows", n))
	return n, nil
}

// Editable reports whether the caller may edit date right now, as the
// edit-window error or nil.
func (s *Service) Editable(ctx context.Context, date string, isAdmin bool) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	_, err := s.checkWindow(ctx, date, isAdmin)
	return err
}

// checkWindow loads the date's rows and applies the edit-window policy.
// Archived rows count as finalized.
func (s *Service) checkWindow(ctx context.Context, date string, isAdmin bool) ([]model.ScoreRow, error) {
	start := time.Now()
	rows, err := s.store.QueryByDateRange(ctx, date, date, model.RowFilter{})
	s.metrics.ObserveStore("query", start)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for %s: %w", date, err)
	}
	finalized := make([]bool, len(rows))
	for i, row := range rows {
		finalized[i] = row.Finalized || row.Archived
	}
	if err := s.policy.Check(date, s.calendar.Today(), finalized, isAdmin); err != nil {
		s.metrics.ObserveRejectedEdit(RejectReason(err))
		return nil, err
	}
	return rows, nil
}

func findRow(rows []model.ScoreRow, player string) (model.ScoreRow, bool) {
	for _, row := range rows {
		if row.Player == player {
			return row, true
		}
	}
	return model.ScoreRow{}, false
}

// lockedAsFinalized reports a store refusal on a locked row as the
// edit-window error callers already handle.
func lockedAsFinalized(err error) error {
	if errors.Is(err, store.ErrLocked) {
		return editwindow.ErrFinalized
	}
	return err
}

// RejectReason maps an edit-window error to a short label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, editwindow.ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, editwindow.ErrOutsideWindow):
		return "outside_window"
	case errors.Is(err, editwindow.ErrFinalized):
		return "finalized"
	case err == nil:
		return ""
	default:
		return "other"
	}
}

func (s *Service) validate(date, player string) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, ok := s.roster.Lookup(player); !ok {
		return &aggregate.InvalidPlayerError{Name: player}
	}
	return nil
}

// MonthScores aggregates every row of month, archived or not.
func (s *Service) MonthScores(ctx context.Context, month string) (model.PlayerScores, error) {
	startDate, endDate, err := calendar.MonthRange(month)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := s.store.QueryByDateRange(ctx, startDate, endDate, model.RowFilter{})
	s.metrics.ObserveStore("query", start)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for %s: %w", month, err)
	}
	scores, err := aggregate.Build(rows, s.roster, aggregate.Options{
		OnUnknown: s.unknown,
		Skipped: func(row model.ScoreRow) {
			s.logger.Warn("skipping row for unknown player",
				zap.String("month", month),
				zap.String("player", row.Player),
				zap.String("date", row.Date),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", month, err)
	}
	return scores, nil
}

// DayRows returns the stored rows for date.
func (s *Service) DayRows(ctx context.Context, date string) ([]model.ScoreRow, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	rows, err := s.store.QueryByDateRange(ctx, date, date, model.RowFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for %s: %w", date, err)
	}
	return rows, nil
}

// ArchiveMonth snapshots month. Only admins may archive.
func (s *Service) ArchiveMonth(ctx context.Context, month string, isAdmin bool) (model.PlayerScores, error) {
	if !isAdmin {
		return nil, editwindow.ErrNotAdmin
	}
	scores, err := s.archiver.ArchiveMonth(ctx, month)
	s.metrics.ObserveArchive(err)
	return scores, err
}

// ArchivePrevious snapshots the month before the current one.
func (s *Service) ArchivePrevious(ctx context.Context, isAdmin bool) (string, model.PlayerScores, error) {
	if !isAdmin {
		return "", nil, editwindow.ErrNotAdmin
	}
	month, scores, err := s.archiver.ArchivePrevious(ctx, s.calendar.Now())
	s.metrics.ObserveArchive(err)
	return month, scores, err
}

// ArchivedMonth returns a stored snapshot.
func (s *Service) ArchivedMonth(ctx context.Context, month string) (model.PlayerScores, bool, error) {
	return s.archiver.FetchArchivedMonth(ctx, month)
}

// ArchivedMonths lists archived months, newest first.
func (s *Service) ArchivedMonths(ctx context.Context) ([]string, error) {
	return s.archiver.ListArchivedMonths(ctx)
}
