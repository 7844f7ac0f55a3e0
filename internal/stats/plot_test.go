package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlotSharedScale(t *testing.T) {
	var buf bytes.Buffer
	err := Plot(&buf, "Running Totals", []Series{
		{Name: "Keith", Values: []float64{2, 5, 7}, Highlight: true},
		{Name: "Mike", Values: []float64{1, 1, 4}},
		{Name: "Empty"},
	}, PlotOptions{Width: 12, Height: 4, Start: "2024-02-01", End: "2024-02-03"})
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// title + 4 plot rows + x labels + legend
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Running Totals" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "   7 │ ") {
		t.Fatalf("expected top axis label 7, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "   0 │ ") {
		t.Fatalf("expected bottom axis label 0, got %q", lines[4])
	}
	if !strings.Contains(lines[5], "2024-02-01") || !strings.HasSuffix(lines[5], "2024-02-03") {
		t.Fatalf("unexpected x labels %q", lines[5])
	}
	legend := lines[6]
	if !strings.Contains(legend, "Keith "+leaderMark) || strings.Contains(legend, "Mike "+leaderMark) {
		t.Fatalf("leader not marked in legend: %q", legend)
	}
	if strings.Contains(legend, "Empty") {
		t.Fatalf("empty series should be dropped: %q", legend)
	}
}

func TestPlotNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, "x", nil, PlotOptions{}); err != nil || buf.Len() != 0 {
		t.Fatalf("expected no output, got %q err=%v", buf.String(), err)
	}
}

func TestStepSample(t *testing.T) {
	if diff := cmp.Diff([]float64{1, 1, 1, 2, 2, 3}, stepSample([]float64{1, 2, 3}, 6)); diff != "" {
		t.Fatalf("stretch mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 4}, stepSample([]float64{1, 2, 3, 4}, 2)); diff != "" {
		t.Fatalf("shrink mismatch (-want +got):\n%s", diff)
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + displayWidth(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
