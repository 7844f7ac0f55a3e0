package sample

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/verte-zerg/puzzlescore/internal/scoring"
)

func TestGeneratedDaysScoreAsExpected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("scorer agrees with generated outcome", prop.ForAll(
		func(seed int64, n int) bool {
			day := New(seed).Day(n)
			got := scoring.Calculate(day.Text)
			return got.GameScores == day.Scores &&
				got.BonusPoints == day.Bonus &&
				got.Score == day.Total()
		},
		gen.Int64(),
		gen.IntRange(1, 2000),
	))

	properties.TestingRun(t)
}

func TestSameSeedSameDay(t *testing.T) {
	a := New(42).Day(100)
	b := New(42).Day(100)
	if a != b {
		t.Fatalf("expected identical days for one seed")
	}
}

func TestWordleHeader(t *testing.T) {
	g := New(7)
	text, _, _ := g.Wordle(1234)
	if !strings.HasPrefix(text, "Wordle 1,234 ") {
		t.Fatalf("unexpected header: %q", strings.SplitN(text, "\n", 2)[0])
	}
}

func TestConnectionsAlwaysEndsOnResolvedOrMiss(t *testing.T) {
	g := New(3)
	for i := 0; i < 200; i++ {
		text, points := g.Connections(i)
		lines := strings.Split(text, "\n")
		last := lines[len(lines)-1]
		if isMissRow(last) && points != 0 {
			t.Fatalf("failed game scored %d:\n%s", points, text)
		}
		if !isMissRow(last) && points == 0 {
			t.Fatalf("solved game scored zero:\n%s", text)
		}
	}
}

func TestSkipNothing(t *testing.T) {
	g := New(11)
	g.SkipPct = 0
	day := g.Day(5)
	for _, name := range []string{"Wordle", "Connections", "Strands"} {
		if !strings.Contains(day.Text, name) {
			t.Fatalf("expected %s section in:\n%s", name, day.Text)
		}
	}
}

func TestThousands(t *testing.T) {
	cases := map[int]string{7: "7", 999: "999", 1000: "1,000", 12345: "12,345", 1234567: "1,234,567"}
	for in, want := range cases {
		if got := thousands(in); got != want {
			t.Fatalf("thousands(%d) = %q, want %q", in, got, want)
		}
	}
}
