// Package chart renders month reports as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/stats"
)

// ErrNoScores is returned when a report has nothing to draw.
var ErrNoScores = errors.New("no scores to chart")

const (
	defaultWidth  = 800
	defaultHeight = 400
)

// Palette colors a chart.
type Palette struct {
	Background string
	Text       string
	Leader     string
	Lines      []string
}

// DefaultPalette is a light theme.
var DefaultPalette = Palette{
	Background: "ffffff",
	Text:       "333333",
	Leader:     "d4a017",
	Lines:      []string{"1f77b4", "d62728", "2ca02c", "9467bd", "8c564b", "e377c2"},
}

// Options sizes and colors a chart. Zero values use the defaults.
type Options struct {
	Width   int
	Height  int
	Palette *Palette
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (o Options) palette() Palette {
	if o.Palette != nil && len(o.Palette.Lines) > 0 {
		return *o.Palette
	}
	return DefaultPalette
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(hex)
}

// RunningTotals writes a line chart of each player's cumulative total. Lines
// start from zero on the day before the first score; leaders are drawn wider.
func RunningTotals(w io.Writer, r stats.Report, opts Options) error {
	if len(r.Dates) == 0 {
		return ErrNoScores
	}
	xs, err := xValues(r.Dates)
	if err != nil {
		return err
	}
	pal := opts.palette()
	width, height := opts.size()

	top := 0.0
	series := make([]gochart.Series, 0, len(r.History))
	for i, s := range r.History {
		ys := make([]float64, 0, len(s.Values)+1)
		ys = append(ys, 0)
		ys = append(ys, s.Values...)
		for _, v := range ys {
			top = math.Max(top, v)
		}
		style := gochart.Style{
			StrokeColor: color(pal.Lines[i%len(pal.Lines)]),
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    color(pal.Lines[i%len(pal.Lines)]),
		}
		if s.Highlight {
			style.StrokeWidth = 4
		}
		name := s.Name
		if s.Highlight {
			name += " (leader)"
		}
		series = append(series, gochart.TimeSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(series) == 0 {
		return ErrNoScores
	}
	if top == 0 {
		top = 1
	}

	graph := gochart.Chart{
		Title:  "Running Totals " + r.Month,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			FillColor: color(pal.Background),
			Padding:   gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: gochart.Style{
			FillColor: color(pal.Background),
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("01-02"),
			Style:          gochart.Style{FontColor: color(pal.Text)},
		},
		YAxis: gochart.YAxis{
			Name:  "Points",
			Style: gochart.Style{FontColor: color(pal.Text)},
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render running totals: %w", err)
	}
	return nil
}

// Breakdown writes a bar chart of each player's points in game, or of month
// totals when game is empty. Leading bars use the leader color.
func Breakdown(w io.Writer, r stats.Report, game model.Game, opts Options) error {
	if len(r.Breakdown) == 0 || len(r.Dates) == 0 {
		return ErrNoScores
	}
	pal := opts.palette()
	width, height := opts.size()

	title := "Month Totals " + r.Month
	if game != "" {
		title = fmt.Sprintf("%s %s", game, r.Month)
	}

	best := 0
	for _, g := range r.Breakdown {
		if v := pointsFor(g, game); v > best {
			best = v
		}
	}

	bars := make([]gochart.Value, 0, len(r.Breakdown))
	for i, g := range r.Breakdown {
		v := pointsFor(g, game)
		fill := color(pal.Lines[i%len(pal.Lines)])
		if best > 0 && v == best {
			fill = color(pal.Leader)
		}
		bars = append(bars, gochart.Value{
			Label: g.Name,
			Value: float64(v),
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 1,
			},
		})
	}
	top := float64(best)
	if top == 0 {
		top = 1
	}

	graph := gochart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			FillColor: color(pal.Background),
			Padding:   gochart.Box{Top: 40},
		},
		Canvas: gochart.Style{
			FillColor: color(pal.Background),
		},
		XAxis: gochart.Style{FontColor: color(pal.Text)},
		YAxis: gochart.YAxis{
			Style: gochart.Style{FontColor: color(pal.Text)},
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
		},
		BarWidth:   barWidth(width, len(bars)),
		BarSpacing: barWidth(width, len(bars)) / 2,
		Bars:       bars,
	}
	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render breakdown: %w", err)
	}
	return nil
}

func pointsFor(g stats.GameTotals, game model.Game) int {
	if game == "" {
		return g.Total
	}
	return g.Of(game)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	bw := width / (n * 2)
	if bw > 80 {
		bw = 80
	}
	return bw
}

// xValues parses dates and prepends the day before the first one.
func xValues(dates []string) ([]time.Time, error) {
	xs := make([]time.Time, 0, len(dates)+1)
	for _, d := range dates {
		t, err := calendar.ParseDate(d)
		if err != nil {
			return nil, err
		}
		xs = append(xs, t)
	}
	return append([]time.Time{xs[0].AddDate(0, 0, -1)}, xs...), nil
}
