package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verte-zerg/puzzlescore/internal/aggregate"
	"github.com/verte-zerg/puzzlescore/internal/board"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/editwindow"
	"github.com/verte-zerg/puzzlescore/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, errorResponse{Error: message})
}

// statusFor maps a service error to an HTTP status and a user-facing message.
func statusFor(err error) (int, string) {
	var (
		monthErr  *calendar.InvalidMonthError
		dateErr   *calendar.InvalidDateError
		playerErr *aggregate.InvalidPlayerError
	)
	switch {
	case errors.As(err, &monthErr):
		return http.StatusBadRequest, "Invalid month format"
	case errors.As(err, &dateErr):
		return http.StatusBadRequest, "Invalid date format"
	case errors.As(err, &playerErr):
		return http.StatusBadRequest, "Invalid player name"
	case errors.Is(err, board.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, editwindow.ErrNotAdmin),
		errors.Is(err, editwindow.ErrOutsideWindow),
		errors.Is(err, editwindow.ErrFinalized):
		return http.StatusForbidden, err.Error()
	case store.IsConflict(err):
		return http.StatusConflict, "Score was changed by someone else, reload and retry"
	case errors.Is(err, context.DeadlineExceeded), store.IsTransient(err):
		return http.StatusServiceUnavailable, "Store is busy, retry later"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code, message := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	respondError(c, code, message)
}
