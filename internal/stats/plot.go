package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is a named sequence of values plotted against a shared axis.
type Series struct {
	Name      string
	Values    []float64
	Highlight bool
}

// PlotOptions sizes a plot. Zero Width fits the terminal; zero Height uses
// the default. Start and End label the first and last x positions.
type PlotOptions struct {
	Width      int
	Height     int
	ForceColor bool
	Start      string
	End        string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 4
	axisSeparator       = " │ "
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	boldOn              = "\x1b[1m"
	leaderMark          = "👑"
)

var seriesColors = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// brailleBits maps a dot at (column, row) inside a 2x4 braille cell to its bit.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type canvas struct {
	cols, rows int
	cells      [][]uint8
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]uint8, rows)}
	for i := range c.cells {
		c.cells[i] = make([]uint8, cols)
	}
	return c
}

// set lights the dot at pixel (x, y); pixels are 2 per column, 4 per row.
func (c *canvas) set(x, y int) {
	col, row := x/2, y/4
	if x < 0 || y < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row][col] |= brailleBits[x%2][y%4]
}

// line lights the pixels between two points by stepping along the longer axis.
func (c *canvas) line(x0, y0, x1, y1 int) {
	steps := absInt(x1 - x0)
	if dy := absInt(y1 - y0); dy > steps {
		steps = dy
	}
	if steps == 0 {
		c.set(x0, y0)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		c.set(x, y)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Plot draws every series as a braille line chart on one shared vertical
// scale that starts at zero.
func Plot(w io.Writer, title string, series []Series, opts PlotOptions) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}

	top := 0.0
	for _, s := range kept {
		for _, v := range s.Values {
			top = math.Max(top, v)
		}
	}
	if top == 0 {
		top = 1
	}

	pixelsHigh := height * 4
	canvases := make([]*canvas, len(kept))
	for i, s := range kept {
		c := newCanvas(width, height)
		values := stepSample(s.Values, width)
		prevX, prevY := -1, -1
		for col, v := range values {
			x := col * 2
			y := pixelsHigh - 1 - int(math.Round(v/top*float64(pixelsHigh-1)))
			if prevX < 0 {
				c.set(x, y)
			} else {
				c.line(prevX, prevY, x, y)
			}
			prevX, prevY = x, y
		}
		canvases[i] = c
	}

	color := shouldUseColor(w, opts.ForceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labels := axisLabels(height, top)
	for row := 0; row < height; row++ {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, labels[row], axisSeparator))
		for col := 0; col < width; col++ {
			var mask uint8
			owner := -1
			for i, c := range canvases {
				if bits := c.cells[row][col]; bits != 0 {
					if owner < 0 || kept[i].Highlight {
						owner = i
					}
					mask |= bits
				}
			}
			ch := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				b.WriteString(seriesStyle(owner, kept[owner].Highlight))
				b.WriteRune(ch)
				b.WriteString(colorReset)
			} else {
				b.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	if opts.Start != "" || opts.End != "" {
		gap := width - displayWidth(opts.Start) - displayWidth(opts.End)
		if gap < 1 {
			gap = 1
		}
		pad := strings.Repeat(" ", axisLabelWidth+displayWidth(axisSeparator))
		if _, err := fmt.Fprintf(w, "%s%s%s%s\n", pad, opts.Start, strings.Repeat(" ", gap), opts.End); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, legend(kept, color)); err != nil {
		return err
	}
	return nil
}

func seriesStyle(i int, highlight bool) string {
	style := seriesColors[i%len(seriesColors)]
	if highlight {
		style = boldOn + style
	}
	return style
}

func legend(series []Series, color bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := "⣿ " + s.Name
		if s.Highlight {
			label += " " + leaderMark
		}
		if color {
			label = seriesStyle(i, s.Highlight) + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func axisLabels(height int, top float64) []string {
	labels := make([]string, height)
	labels[0] = formatAxis(top)
	if height > 2 {
		labels[height/2] = formatAxis(top * float64(height-1-height/2) / float64(height-1))
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func formatAxis(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// stepSample stretches or shrinks values to n points, holding each value
// until the next one. The last point is always the last value.
func stepSample(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		idx := (i+1)*len(values)/n - 1
		if idx < 0 {
			idx = 0
		}
		out[i] = values[idx]
	}
	return out
}

// PlotWidthFor returns the plot width that fits totalWidth terminal cells
// next to the axis.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	width := totalWidth - axisLabelWidth - displayWidth(axisSeparator)
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
