// Package scoring turns pasted puzzle-result text into per-game points and bonus flags.
package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/verte-zerg/puzzlescore/internal/model"
)

// Marker emoji as they appear in the puzzles' share text.
const (
	YellowSquare rune = '🟨'
	PurpleSquare rune = '🟪'
	BlueSquare   rune = '🟦'
	GreenSquare  rune = '🟩'
	BlueCircle   rune = '🔵'
	YellowCircle rune = '🟡'
	HintBulb     rune = '💡'
)

// Kind is the dominant classification of a line.
type Kind int

// Line kinds, in classification priority order.
const (
	KindOther Kind = iota
	KindHeader
	KindGuessCount
	KindHint
	KindGrid
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindGuessCount:
		return "guess-count"
	case KindHint:
		return "hint"
	case KindGrid:
		return "grid"
	default:
		return "other"
	}
}

var guessCountPattern = regexp.MustCompile(`([0-9]+|X)/6`)

// Token is one classified, trimmed, non-blank input line. A line can carry
// several features at once ("Wordle 1,234 3/6" is both a header and a guess
// count), so scorers read the feature fields rather than Kind.
type Token struct {
	Line  string
	Kind  Kind
	Games []model.Game
	// Marks holds the marker emoji of the line in order of appearance.
	Marks    []rune
	HasGuess bool
	Failed   bool
	Guesses  int
}

// Tokenize splits text into non-blank trimmed lines and classifies each one.
func Tokenize(text string) []Token {
	rawLines := strings.Split(text, "\n")
	tokens := make([]Token, 0, len(rawLines))
	for _, raw := range rawLines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		tokens = append(tokens, classify(line))
	}
	return tokens
}

func classify(line string) Token {
	tok := Token{Line: line}
	for _, game := range model.Games {
		if strings.Contains(line, string(game)) {
			tok.Games = append(tok.Games, game)
		}
	}
	for _, r := range line {
		if isMarker(r) {
			tok.Marks = append(tok.Marks, r)
		}
	}
	if m := guessCountPattern.FindStringSubmatch(line); m != nil {
		tok.HasGuess = true
		if m[1] == "X" {
			tok.Failed = true
		} else if n, err := strconv.Atoi(m[1]); err == nil {
			tok.Guesses = n
		} else {
			// Digit runs too long for int cannot be a real guess count.
			tok.Failed = true
		}
	}

	switch {
	case len(tok.Games) > 0:
		tok.Kind = KindHeader
	case tok.HasGuess:
		tok.Kind = KindGuessCount
	case tok.hasMark(HintBulb):
		tok.Kind = KindHint
	case len(tok.Marks) > 0:
		tok.Kind = KindGrid
	default:
		tok.Kind = KindOther
	}
	return tok
}

func isMarker(r rune) bool {
	switch r {
	case YellowSquare, PurpleSquare, BlueSquare, GreenSquare, BlueCircle, YellowCircle, HintBulb:
		return true
	}
	return false
}

func (t Token) hasMark(mark rune) bool {
	for _, r := range t.Marks {
		if r == mark {
			return true
		}
	}
	return false
}

func (t Token) hasAnyMark(marks ...rune) bool {
	for _, m := range marks {
		if t.hasMark(m) {
			return true
		}
	}
	return false
}

// filterMarks returns the line's marks restricted to the given set, in order.
func (t Token) filterMarks(marks ...rune) []rune {
	var out []rune
	for _, r := range t.Marks {
		for _, m := range marks {
			if r == m {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func (t Token) containsGame(game model.Game) bool {
	for _, g := range t.Games {
		if g == game {
			return true
		}
	}
	return false
}
