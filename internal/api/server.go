// Package api serves the scoreboard over JSON HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/puzzlescore/internal/board"
	"github.com/verte-zerg/puzzlescore/internal/metrics"
)

// Defaults for the write rate limiter.
const (
	DefaultRate  = 1.0
	DefaultBurst = 5
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// AdminKey is compared with the X-API-Key header. Empty disables admin access.
	AdminKey string
	// Rate and Burst bound write requests per client IP.
	Rate    float64
	Burst   int
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Server exposes a board.Service over HTTP.
type Server struct {
	service  *board.Service
	router   *gin.Engine
	adminKey string
	limiter  *IPRateLimiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New builds a Server and its routes.
func New(svc *board.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := opts.Rate
	if r <= 0 {
		r = DefaultRate
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	s := &Server{
		service:  svc,
		router:   gin.New(),
		adminKey: opts.AdminKey,
		limiter:  NewIPRateLimiter(rate.Limit(r), burst),
		metrics:  opts.Metrics,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.observeMiddleware())

	api := s.router.Group("/api")
	api.Use(s.authMiddleware())
	{
		api.GET("/scores", s.getScores)
		api.GET("/scores/day", s.getDayScores)
		api.GET("/archives", s.listArchives)
		api.GET("/archives/:month", s.getArchive)
		api.GET("/editable", s.getEditable)
		api.POST("/score-text", s.scoreText)
		api.GET("/metrics", s.getMetrics)

		writes := api.Group("")
		writes.Use(s.rateLimitMiddleware())
		{
			writes.POST("/scores", s.submitScore)
			writes.POST("/scores/update", s.updateScore)
			writes.POST("/scores/finalize", s.finalizeDate)
			writes.POST("/scores/archive", s.archiveMonth)
		}
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) getMetrics(c *gin.Context) {
	if s.metrics == nil {
		respondError(c, http.StatusNotFound, "Metrics disabled")
		return
	}
	promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}
