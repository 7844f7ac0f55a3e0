package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

// Backend is the read/write surface the scoreboard needs from persistence.
type Backend interface {
	QueryByDateRange(ctx context.Context, start, end string, f model.RowFilter) ([]model.ScoreRow, error)
	UpsertRow(ctx context.Context, row model.ScoreRow) (model.ScoreRow, error)
	UpdateRows(ctx context.Context, f model.RowFilter, patch model.RowPatch) (int64, error)
	GetArchive(ctx context.Context, month string) (model.MonthlyArchive, bool, error)
	PutArchive(ctx context.Context, month string, data model.PlayerScores) error
	ListArchiveMonths(ctx context.Context) ([]string, error)
}

// Default resilience settings.
const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
)

// ResilientOptions configures Resilient.
type ResilientOptions struct {
	// Timeout bounds each attempt. Zero selects DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of retries after the first attempt.
	Retries int
	// InitialInterval is the first backoff delay. Zero selects 50ms.
	InitialInterval time.Duration
	Logger          *zap.Logger
}

// Resilient decorates a Backend with a per-attempt timeout and a bounded
// exponential retry of transient failures.
type Resilient struct {
	next Backend
	opts ResilientOptions
}

// NewResilient wraps next.
func NewResilient(next Backend, opts ResilientOptions) *Resilient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 50 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Resilient{next: next, opts: opts}
}

func (r *Resilient) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.opts.InitialInterval
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.opts.Retries)), ctx)

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		r.opts.Logger.Warn("retrying store operation",
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return wrapError(op, backoff.RetryNotify(attempt, b, notify))
}

// QueryByDateRange implements Backend.
func (r *Resilient) QueryByDateRange(ctx context.Context, start, end string, f model.RowFilter) ([]model.ScoreRow, error) {
	var rows []model.ScoreRow
	err := r.do(ctx, "query score rows", func(ctx context.Context) error {
		var err error
		rows, err = r.next.QueryByDateRange(ctx, start, end, f)
		return err
	})
	return rows, err
}

// UpsertRow implements Backend.
func (r *Resilient) UpsertRow(ctx context.Context, row model.ScoreRow) (model.ScoreRow, error) {
	var stored model.ScoreRow
	err := r.do(ctx, "upsert score row", func(ctx context.Context) error {
		var err error
		stored, err = r.next.UpsertRow(ctx, row)
		return err
	})
	return stored, err
}

// UpdateRows implements Backend.
func (r *Resilient) UpdateRows(ctx context.Context, f model.RowFilter, patch model.RowPatch) (int64, error) {
	var n int64
	err := r.do(ctx, "update score rows", func(ctx context.Context) error {
		var err error
		n, err = r.next.UpdateRows(ctx, f, patch)
		return err
	})
	return n, err
}

// GetArchive implements Backend.
func (r *Resilient) GetArchive(ctx context.Context, month string) (model.MonthlyArchive, bool, error) {
	var archive model.MonthlyArchive
	var ok bool
	err := r.do(ctx, "get archive", func(ctx context.Context) error {
		var err error
		archive, ok, err = r.next.GetArchive(ctx, month)
		return err
	})
	return archive, ok, err
}

// PutArchive implements Backend.
func (r *Resilient) PutArchive(ctx context.Context, month string, data model.PlayerScores) error {
	return r.do(ctx, "put archive", func(ctx context.Context) error {
		return r.next.PutArchive(ctx, month, data)
	})
}

// ListArchiveMonths implements Backend.
func (r *Resilient) ListArchiveMonths(ctx context.Context) ([]string, error) {
	var months []string
	err := r.do(ctx, "list archives", func(ctx context.Context) error {
		var err error
		months, err = r.next.ListArchiveMonths(ctx)
		return err
	})
	return months, err
}
