package scoring

import (
	"github.com/verte-zerg/puzzlescore/internal/model"
)

// Per-game score ceilings.
const (
	MaxWordle      = 2
	MaxConnections = 3
	MaxStrands     = 2
	MaxTotal       = MaxWordle + MaxConnections + MaxStrands
)

const quickWordleGuesses = 3

const spanagramMaxPosition = 3

// NotFound is the section start of a game missing from the input.
const NotFound = -1

// Result is the outcome of scoring one day's pasted text.
type Result struct {
	Score       int               `json:"score"`
	BonusPoints model.BonusPoints `json:"bonusPoints"`
	GameScores  model.GameScores  `json:"gameScores"`
}

// Breakdown explains how a single game was scored.
type Breakdown struct {
	Game   model.Game `json:"game"`
	Found  bool       `json:"found"`
	Score  int        `json:"score"`
	Bonus  bool       `json:"bonus"`
	Reason string     `json:"reason"`
}

// Section is the token range belonging to one game.
type Section struct {
	Game  model.Game
	Start int
	End   int
}

// Found reports whether the game header appeared in the input.
func (s Section) Found() bool {
	return s.Start != NotFound
}

// Calculate scores pasted text. It never fails: missing or malformed sections
// score zero for their game.
func Calculate(text string) Result {
	result, _ := Explain(text)
	return result
}

// Explain scores pasted text and reports a per-game breakdown.
func Explain(text string) (Result, []Breakdown) {
	tokens := Tokenize(text)
	sections := Segment(tokens)

	wordle := ScoreWordle(sections[model.GameWordle].tokens(tokens))
	connections := ScoreConnections(sections[model.GameConnections].tokens(tokens))
	strands := ScoreStrands(sections[model.GameStrands].tokens(tokens))

	breakdowns := []Breakdown{wordle, connections, strands}
	for i, game := range model.Games {
		breakdowns[i].Game = game
		breakdowns[i].Found = sections[game].Found()
		if !breakdowns[i].Found {
			breakdowns[i].Reason = "not found"
		}
	}

	result := Result{
		GameScores: model.GameScores{
			Wordle:      wordle.Score,
			Connections: connections.Score,
			Strands:     strands.Score,
		},
		BonusPoints: model.BonusPoints{
			WordleQuick:      wordle.Bonus,
			StrandsSpanagram: strands.Bonus,
		},
	}
	result.Score = result.GameScores.Sum()
	return result, breakdowns
}

// Segment locates each game's section. A section starts at the first line
// naming the game and ends where the next other section starts.
func Segment(tokens []Token) map[model.Game]Section {
	starts := make(map[model.Game]int, len(model.Games))
	for _, game := range model.Games {
		starts[game] = NotFound
		for i, tok := range tokens {
			if tok.containsGame(game) {
				starts[game] = i
				break
			}
		}
	}

	sections := make(map[model.Game]Section, len(model.Games))
	for _, game := range model.Games {
		start := starts[game]
		end := len(tokens)
		if start != NotFound {
			for _, other := range model.Games {
				if other == game {
					continue
				}
				if s := starts[other]; s > start && s < end {
					end = s
				}
			}
		}
		sections[game] = Section{Game: game, Start: start, End: end}
	}
	return sections
}

func (s Section) tokens(all []Token) []Token {
	if !s.Found() {
		return nil
	}
	return all[s.Start:s.End]
}

// ScoreWordle scores a Wordle section: 1 for a solve, +1 and the quick bonus
// for three guesses or fewer.
func ScoreWordle(section []Token) Breakdown {
	for _, tok := range section {
		if !tok.HasGuess {
			continue
		}
		if tok.Failed {
			return Breakdown{Reason: "not solved"}
		}
		if tok.Guesses <= quickWordleGuesses {
			return Breakdown{Score: 2, Bonus: true, Reason: "quick solve"}
		}
		return Breakdown{Score: 1, Reason: "solved"}
	}
	return Breakdown{Reason: "no guess count"}
}

var connectionsColors = []rune{YellowSquare, PurpleSquare, BlueSquare, GreenSquare}

// ScoreConnections scores a Connections section from its color grid.
func ScoreConnections(section []Token) Breakdown {
	var grid [][]rune
	for _, tok := range section {
		if tok.hasAnyMark(connectionsColors...) {
			grid = append(grid, tok.filterMarks(connectionsColors...))
		}
	}
	if len(grid) == 0 {
		return Breakdown{Reason: "no grid"}
	}
	if distinct(grid[len(grid)-1]) > 1 {
		return Breakdown{Reason: "not solved"}
	}

	purpleFirst := isPurpleRow(grid[0])
	hasErrors := false
	for _, row := range grid[:len(grid)-1] {
		if distinct(row) > 1 {
			hasErrors = true
			break
		}
	}

	switch {
	case purpleFirst && !hasErrors:
		return Breakdown{Score: 3, Reason: "purple first, no mistakes"}
	case purpleFirst:
		return Breakdown{Score: 2, Reason: "purple first with mistakes"}
	case !hasErrors:
		return Breakdown{Score: 2, Reason: "no mistakes"}
	default:
		return Breakdown{Score: 1, Reason: "solved with mistakes"}
	}
}

func isPurpleRow(row []rune) bool {
	if len(row) != 4 {
		return false
	}
	for _, r := range row {
		if r != PurpleSquare {
			return false
		}
	}
	return true
}

func distinct(row []rune) int {
	seen := map[rune]struct{}{}
	for _, r := range row {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// ScoreStrands scores a Strands section: 1 without hints, +1 and the
// spanagram bonus when the first yellow circle is among the first three.
func ScoreStrands(section []Token) Breakdown {
	var kept []Token
	for _, tok := range section {
		if tok.hasAnyMark(BlueCircle, YellowCircle, HintBulb) {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return Breakdown{Reason: "no grid"}
	}
	for _, tok := range kept {
		if tok.hasMark(HintBulb) {
			return Breakdown{Reason: "hint used"}
		}
	}

	position := 0
	for _, tok := range kept {
		for _, r := range tok.filterMarks(BlueCircle, YellowCircle) {
			position++
			if r == YellowCircle {
				if position <= spanagramMaxPosition {
					return Breakdown{Score: 2, Bonus: true, Reason: "early spanagram"}
				}
				return Breakdown{Score: 1, Reason: "solved"}
			}
		}
	}
	return Breakdown{Score: 1, Reason: "solved"}
}
