package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	m := New()
	m.ObserveSubmission("Keith", 2, 3, 1, true, false)
	m.ObserveSubmission("Keith", 1, 0, 2, false, true)

	if got := testutil.ToFloat64(m.submissions.WithLabelValues("Keith")); got != 2 {
		t.Fatalf("expected 2 submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.gamePoints.WithLabelValues("connections")); got != 3 {
		t.Fatalf("expected 3 connections points, got %v", got)
	}
	if got := testutil.ToFloat64(m.bonuses.WithLabelValues("strands")); got != 1 {
		t.Fatalf("expected 1 strands bonus, got %v", got)
	}
}

func TestObserveArchiveAndStore(t *testing.T) {
	m := New()
	m.ObserveArchive(nil)
	m.ObserveArchive(errors.New("boom"))
	m.ObserveStore("query", time.Now())

	if got := testutil.ToFloat64(m.archiveRuns.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
	if n := testutil.CollectAndCount(m.storeLatency); n != 1 {
		t.Fatalf("expected 1 latency series, got %d", n)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSubmission("x", 1, 1, 1, false, false)
	m.ObserveRejectedEdit("finalized")
	m.ObserveArchive(nil)
	m.ObserveHTTP("/api/scores", "200")
}
