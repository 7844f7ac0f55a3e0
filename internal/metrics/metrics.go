// Package metrics defines the Prometheus collectors for the scoreboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "puzzlescore"

// Metrics holds the scoreboard collectors and their registry.
type Metrics struct {
	Registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	gamePoints    *prometheus.CounterVec
	bonuses       *prometheus.CounterVec
	editsRejected *prometheus.CounterVec
	archiveRuns   *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Score submissions by player.",
		}, []string{"player"}),
		gamePoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_points_total",
			Help:      "Points awarded by game.",
		}, []string{"game"}),
		bonuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bonuses_total",
			Help:      "Bonus flags awarded by game.",
		}, []string{"game"}),
		editsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_rejected_total",
			Help:      "Writes refused by the edit window, by reason.",
		}, []string{"reason"}),
		archiveRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_runs_total",
			Help:      "Archive runs by result.",
		}, []string{"result"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Latency of store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissions, m.gamePoints, m.bonuses, m.editsRejected,
		m.archiveRuns, m.storeLatency, m.httpRequests,
	)
	return m
}

// ObserveSubmission records one accepted score for player.
func (m *Metrics) ObserveSubmission(player string, wordle, connections, strands int, quick, spanagram bool) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(player).Inc()
	m.gamePoints.WithLabelValues("wordle").Add(float64(wordle))
	m.gamePoints.WithLabelValues("connections").Add(float64(connections))
	m.gamePoints.WithLabelValues("strands").Add(float64(strands))
	if quick {
		m.bonuses.WithLabelValues("wordle").Inc()
	}
	if spanagram {
		m.bonuses.WithLabelValues("strands").Inc()
	}
}

// ObserveRejectedEdit counts a write refused for reason.
func (m *Metrics) ObserveRejectedEdit(reason string) {
	if m == nil {
		return
	}
	m.editsRejected.WithLabelValues(reason).Inc()
}

// ObserveArchive counts an archive run.
func (m *Metrics) ObserveArchive(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.archiveRuns.WithLabelValues(result).Inc()
}

// ObserveStore records the latency of a store call started at start.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveHTTP counts a served request.
func (m *Metrics) ObserveHTTP(route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Inc()
}
