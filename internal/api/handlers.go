package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/puzzlescore/internal/board"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/scoring"
)

type submitRequest struct {
	Date   string `json:"date"`
	Player string `json:"player" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type updateRequest struct {
	Date       string           `json:"date"`
	PlayerName string           `json:"playerName" binding:"required"`
	Scores     board.ScorePatch `json:"scores"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type monthRequest struct {
	Month string `json:"month"`
}

type textRequest struct {
	Text string `json:"text"`
}

type rowResponse struct {
	Player  string           `json:"player"`
	Version int64            `json:"version"`
	Score   model.DailyScore `json:"score"`
}

type submitResponse struct {
	rowResponse
	Breakdown []scoring.Breakdown `json:"breakdown"`
}

type previewResponse struct {
	scoring.Result
	Breakdown []scoring.Breakdown `json:"breakdown"`
}

type archiveResponse struct {
	Month string             `json:"month"`
	Data  model.PlayerScores `json:"archive_data"`
}

type editableResponse struct {
	Date     string `json:"date"`
	Editable bool   `json:"editable"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

func newRowResponse(row model.ScoreRow) rowResponse {
	return rowResponse{Player: row.Player, Version: row.Version, Score: row.Daily()}
}

// dateOrToday returns date trimmed, or today in the reference timezone.
func (s *Server) dateOrToday(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.service.Calendar().Today()
	}
	return date
}

// getScores handles GET /api/scores?month=YYYY-MM.
func (s *Server) getScores(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = s.service.Calendar().CurrentMonth()
	}
	scores, err := s.service.MonthScores(c.Request.Context(), month)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// getDayScores handles GET /api/scores/day?date=YYYY-MM-DD.
func (s *Server) getDayScores(c *gin.Context) {
	date := s.dateOrToday(c.Query("date"))
	rows, err := s.service.DayRows(c.Request.Context(), date)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, newRowResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "scores": out})
}

// submitScore handles POST /api/scores.
func (s *Server) submitScore(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, _, err := s.service.Submit(c.Request.Context(), board.SubmitRequest{
		Date:   s.dateOrToday(req.Date),
		Player: req.Player,
		Text:   req.Text,
	}, isAdminRequest(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	_, breakdown := scoring.Explain(req.Text)
	c.JSON(http.StatusOK, submitResponse{rowResponse: newRowResponse(row), Breakdown: breakdown})
}

// updateScore handles POST /api/scores/update.
func (s *Server) updateScore(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	row, err := s.service.Update(c.Request.Context(), board.UpdateRequest{
		Date:   s.dateOrToday(req.Date),
		Player: req.PlayerName,
		Scores: req.Scores,
	}, isAdminRequest(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newRowResponse(row))
}

// finalizeDate handles POST /api/scores/finalize.
func (s *Server) finalizeDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	date := s.dateOrToday(req.Date)
	n, err := s.service.Finalize(c.Request.Context(), date, isAdminRequest(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "finalized": n})
}

// archiveMonth handles POST /api/scores/archive. An empty month archives the
// previous one.
func (s *Server) archiveMonth(c *gin.Context) {
	var req monthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	ctx := c.Request.Context()
	month := strings.TrimSpace(req.Month)
	var (
		scores model.PlayerScores
		err    error
	)
	if month == "" {
		month, scores, err = s.service.ArchivePrevious(ctx, isAdminRequest(c))
	} else {
		scores, err = s.service.ArchiveMonth(ctx, month, isAdminRequest(c))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, archiveResponse{Month: month, Data: scores})
}

// listArchives handles GET /api/archives.
func (s *Server) listArchives(c *gin.Context) {
	months, err := s.service.ArchivedMonths(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if months == nil {
		months = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// getArchive handles GET /api/archives/:month.
func (s *Server) getArchive(c *gin.Context) {
	month := c.Param("month")
	scores, ok, err := s.service.ArchivedMonth(c.Request.Context(), month)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, "Archive not found")
		return
	}
	c.JSON(http.StatusOK, archiveResponse{Month: month, Data: scores})
}

// getEditable handles GET /api/editable?date=YYYY-MM-DD.
func (s *Server) getEditable(c *gin.Context) {
	date := s.dateOrToday(c.Query("date"))
	err := s.service.Editable(c.Request.Context(), date, isAdminRequest(c))
	reason := board.RejectReason(err)
	if err != nil && reason == "other" {
		s.fail(c, err)
		return
	}
	resp := editableResponse{Date: date, Editable: err == nil, Reason: reason}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// scoreText handles POST /api/score-text. It never stores anything.
func (s *Server) scoreText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	result, breakdown := scoring.Explain(req.Text)
	c.JSON(http.StatusOK, previewResponse{Result: result, Breakdown: breakdown})
}
