// Package sample builds realistic puzzle share text together with the points
// it should score.
package sample

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

const (
	yellowSquare = "🟨"
	greenSquare  = "🟩"
	blueSquare   = "🟦"
	purpleSquare = "🟪"
	blackSquare  = "⬛"
	blueCircle   = "🔵"
	yellowCircle = "🟡"
	hintBulb     = "💡"
)

// Rough outcome frequencies. Index 0 of wordleGuessWeights is a failed game.
var (
	wordleGuessWeights   = []float64{3, 1, 6, 25, 33, 23, 9}
	connectionsMistakes  = []float64{40, 25, 15, 10, 10}
	strandsHintWeights   = []float64{70, 20, 10}
	strandsThemes        = []string{"Hidden things", "On the menu", "Keep it down", "Tool time", "Shine on"}
	connectionsColorRows = []string{yellowSquare, greenSquare, blueSquare, purpleSquare}
)

// Day is one generated paste with its expected scoring.
type Day struct {
	Text   string
	Scores model.GameScores
	Bonus  model.BonusPoints
}

// Total returns the expected day total.
func (d Day) Total() int {
	return d.Scores.Sum()
}

// Generator produces randomized share text.
type Generator struct {
	rnd *rand.Rand
	// SkipPct is the chance that a game is left out of a day.
	SkipPct float64
}

// New returns a Generator with a fixed seed, so runs are reproducible.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), SkipPct: 0.1}
}

// Day builds a paste for puzzle number n. Games appear in a fixed order
// separated by blank lines; skipped games score zero.
func (g *Generator) Day(n int) Day {
	var day Day
	var sections []string
	if !g.skip() {
		text, points, quick := g.Wordle(n)
		sections = append(sections, text)
		day.Scores.Wordle = points
		day.Bonus.WordleQuick = quick
	}
	if !g.skip() {
		text, points := g.Connections(n)
		sections = append(sections, text)
		day.Scores.Connections = points
	}
	if !g.skip() {
		text, points, spanagram := g.Strands(n)
		sections = append(sections, text)
		day.Scores.Strands = points
		day.Bonus.StrandsSpanagram = spanagram
	}
	day.Text = strings.Join(sections, "\n\n")
	return day
}

func (g *Generator) skip() bool {
	return g.SkipPct > 0 && g.rnd.Float64() < g.SkipPct
}

// Wordle returns a Wordle share, its points and whether it is a quick solve.
func (g *Generator) Wordle(n int) (string, int, bool) {
	guesses := g.pick(wordleGuessWeights)
	var b strings.Builder
	if guesses == 0 {
		fmt.Fprintf(&b, "Wordle %s X/6", thousands(n))
		for i := 0; i < 6; i++ {
			b.WriteString("\n" + g.wordleMiss())
		}
		return b.String(), 0, false
	}
	fmt.Fprintf(&b, "Wordle %s %d/6", thousands(n), guesses)
	for i := 1; i < guesses; i++ {
		b.WriteString("\n" + g.wordleMiss())
	}
	b.WriteString("\n" + strings.Repeat(greenSquare, 5))
	if guesses <= 3 {
		return b.String(), 2, true
	}
	return b.String(), 1, false
}

func (g *Generator) wordleMiss() string {
	cells := []string{blackSquare, blackSquare, yellowSquare, greenSquare}
	for {
		var b strings.Builder
		greens := 0
		for i := 0; i < 5; i++ {
			c := cells[g.rnd.Intn(len(cells))]
			if c == greenSquare {
				greens++
			}
			b.WriteString(c)
		}
		if greens < 5 {
			return b.String()
		}
	}
}

// Connections returns a Connections share and its points.
func (g *Generator) Connections(n int) (string, int) {
	order := g.rnd.Perm(len(connectionsColorRows))
	mistakes := g.pick(connectionsMistakes)

	var rows []string
	if mistakes == len(connectionsMistakes)-1 {
		solved := g.rnd.Intn(len(order))
		for i := 0; i < solved; i++ {
			rows = append(rows, strings.Repeat(connectionsColorRows[order[i]], 4))
		}
		for i := 0; i < mistakes; i++ {
			at := g.rnd.Intn(len(rows) + 1)
			rows = insert(rows, at, g.connectionsMiss())
		}
		// The game ends on the fourth miss.
		if !isMissRow(rows[len(rows)-1]) {
			rows = append(rows, g.connectionsMiss())
			rows = removeFirstMiss(rows)
		}
	} else {
		for _, idx := range order {
			rows = append(rows, strings.Repeat(connectionsColorRows[idx], 4))
		}
		for i := 0; i < mistakes; i++ {
			at := g.rnd.Intn(len(rows))
			rows = insert(rows, at, g.connectionsMiss())
		}
	}

	text := fmt.Sprintf("Connections\nPuzzle #%d\n%s", n, strings.Join(rows, "\n"))
	if isMissRow(rows[len(rows)-1]) {
		return text, 0
	}
	purpleFirst := rows[0] == strings.Repeat(purpleSquare, 4)
	clean := mistakes == 0
	switch {
	case purpleFirst && clean:
		return text, 3
	case purpleFirst, clean:
		return text, 2
	default:
		return text, 1
	}
}

func (g *Generator) connectionsMiss() string {
	for {
		var b strings.Builder
		for i := 0; i < 4; i++ {
			b.WriteString(connectionsColorRows[g.rnd.Intn(len(connectionsColorRows))])
		}
		if row := b.String(); isMissRow(row) {
			return row
		}
	}
}

func isMissRow(row string) bool {
	first := []rune(row)[0]
	for _, r := range row {
		if r != first {
			return true
		}
	}
	return false
}

func removeFirstMiss(rows []string) []string {
	for i, row := range rows {
		if isMissRow(row) {
			return append(rows[:i:i], rows[i+1:]...)
		}
	}
	return rows
}

func insert(rows []string, at int, row string) []string {
	rows = append(rows, "")
	copy(rows[at+1:], rows[at:])
	rows[at] = row
	return rows
}

// Strands returns a Strands share, its points and whether the spanagram
// bonus applies.
func (g *Generator) Strands(n int) (string, int, bool) {
	words := 6 + g.rnd.Intn(3)
	position := 1 + g.rnd.Intn(words)
	hints := g.pick(strandsHintWeights)

	marks := make([]string, 0, words+hints)
	for i := 1; i <= words; i++ {
		if i == position {
			marks = append(marks, yellowCircle)
		} else {
			marks = append(marks, blueCircle)
		}
	}
	for i := 0; i < hints; i++ {
		marks = insert(marks, g.rnd.Intn(len(marks)+1), hintBulb)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Strands #%d\n“%s”", n, strandsThemes[g.rnd.Intn(len(strandsThemes))])
	for i := 0; i < len(marks); i += 4 {
		end := i + 4
		if end > len(marks) {
			end = len(marks)
		}
		b.WriteString("\n" + strings.Join(marks[i:end], ""))
	}

	switch {
	case hints > 0:
		return b.String(), 0, false
	case position <= 3:
		return b.String(), 2, true
	default:
		return b.String(), 1, false
	}
}

// pick returns an index drawn in proportion to weights.
func (g *Generator) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}

func thousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
