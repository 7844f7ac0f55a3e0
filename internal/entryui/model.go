// Package entryui provides the Bubble Tea screen for pasting and submitting
// a day's puzzle results.
package entryui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/puzzlescore/internal/board"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/model"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/scoring"
)

// Service is the part of the board the entry screen writes through.
type Service interface {
	Submit(ctx context.Context, req board.SubmitRequest, isAdmin bool) (model.ScoreRow, scoring.Result, error)
	Editable(ctx context.Context, date string, isAdmin bool) error
}

// Options preselects the player and date and sets the caller's role.
type Options struct {
	Player string
	Date   string
	Admin  bool
}

const (
	focusText = iota
	focusDate
)

var (
	gridStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	otherStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	guessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6AAA64"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

func styleForKind(k scoring.Kind) lipgloss.Style {
	switch k {
	case scoring.KindHeader:
		return headerStyle
	case scoring.KindGuessCount:
		return guessStyle
	case scoring.KindHint:
		return hintStyle
	case scoring.KindGrid:
		return gridStyle
	default:
		return otherStyle
	}
}

// Model implements the Bubble Tea entry screen.
type Model struct {
	svc      Service
	calendar *calendar.Calendar
	admin    bool

	players   []string
	playerIdx int
	date      string

	focus     int
	text      textarea.Model
	dateInput textinput.Model

	result     scoring.Result
	breakdowns []scoring.Breakdown
	editErr    error
	status     string
	statusErr  bool

	width  int
	height int
}

// NewModel constructs the entry screen. An unknown or empty player selects
// the first roster entry; an empty date selects today.
func NewModel(svc Service, r *roster.Roster, cal *calendar.Calendar, opts Options) *Model {
	m := &Model{
		svc:      svc,
		calendar: cal,
		admin:    opts.Admin,
		players:  r.Names(),
		date:     opts.Date,
	}
	for i, name := range m.players {
		if name == opts.Player {
			m.playerIdx = i
		}
	}
	if m.date == "" {
		m.date = cal.Today()
	}

	m.text = textarea.New()
	m.text.Placeholder = "Paste Wordle, Connections and Strands results"
	m.text.ShowLineNumbers = false
	m.text.CharLimit = 0
	m.text.Focus()

	m.dateInput = textinput.New()
	m.dateInput.Prompt = "Date: "
	m.dateInput.Placeholder = "YYYY-MM-DD, today, yesterday"
	m.dateInput.CharLimit = 32

	m.refreshPreview()
	m.refreshEditable()
	return m
}

// Player returns the selected player name.
func (m *Model) Player() string {
	if len(m.players) == 0 {
		return ""
	}
	return m.players[m.playerIdx]
}

// Date returns the selected date key.
func (m *Model) Date() string {
	return m.date
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			return m, m.toggleFocus()
		case tea.KeyCtrlN:
			m.movePlayer(1)
			return m, nil
		case tea.KeyCtrlP:
			m.movePlayer(-1)
			return m, nil
		case tea.KeyCtrlS:
			m.submit()
			return m, nil
		case tea.KeyCtrlL:
			m.text.Reset()
			m.refreshPreview()
			return m, nil
		}
		if m.focus == focusDate {
			return m.updateDateInput(msg)
		}
	}

	var cmd tea.Cmd
	before := m.text.Value()
	m.text, cmd = m.text.Update(msg)
	if m.text.Value() != before {
		m.refreshPreview()
	}
	return m, cmd
}

func (m *Model) updateDateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		date, err := m.calendar.ParseDateInput(m.dateInput.Value())
		if err != nil {
			m.setStatus(fmt.Sprintf("Invalid date: %v", err), true)
			return m, nil
		}
		m.date = date
		m.dateInput.Reset()
		m.refreshEditable()
		m.setStatus("", false)
		return m, m.toggleFocus()
	}
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusText {
		m.focus = focusDate
		m.text.Blur()
		return m.dateInput.Focus()
	}
	m.focus = focusText
	m.dateInput.Blur()
	return m.text.Focus()
}

func (m *Model) movePlayer(delta int) {
	if len(m.players) == 0 {
		return
	}
	m.playerIdx = (m.playerIdx + delta + len(m.players)) % len(m.players)
	m.setStatus("", false)
}

func (m *Model) refreshPreview() {
	m.result, m.breakdowns = scoring.Explain(m.text.Value())
}

func (m *Model) refreshEditable() {
	m.editErr = m.svc.Editable(context.Background(), m.date, m.admin)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) submit() {
	if m.editErr != nil {
		m.setStatus("Locked: "+m.editErr.Error(), true)
		return
	}
	row, result, err := m.svc.Submit(context.Background(), board.SubmitRequest{
		Date:   m.date,
		Player: m.Player(),
		Text:   m.text.Value(),
	}, m.admin)
	if err != nil {
		m.setStatus(fmt.Sprintf("Failed to save: %v", err), true)
		if board.RejectReason(err) != "other" {
			m.editErr = err
		}
		return
	}
	m.result = result
	m.setStatus(fmt.Sprintf("Saved %s %s: %d points", row.Player, row.Date, row.Total), false)
	m.text.Reset()
	m.refreshPreview()
}

func (m *Model) updateLayout() {
	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}
	m.text.SetWidth(inner)
	height := (m.height - 8) / 2
	if height < 3 {
		height = 3
	}
	m.text.SetHeight(height)
	m.dateInput.Width = inner - len(m.dateInput.Prompt)
}

// View implements tea.Model.
func (m *Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("%s · %s", m.Player(), m.date))
	input := m.text.View()
	if m.focus == focusDate {
		input = m.dateInput.View()
	}
	preview := m.renderPreview()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{title, input, preview, footer}, "\n")
	}
	panelWidth := m.width - 2
	if panelWidth < 1 {
		panelWidth = 1
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		panelStyle.Width(panelWidth).Render(input),
		panelStyle.Width(panelWidth).Render(preview),
	)
	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		return footer
	}
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Left, lipgloss.Top, body) + "\n" +
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderPreview() string {
	lines := []string{}
	styled := buildStyledRunes(m.text.Value())
	if len(styled) > 0 {
		wrapped := wrapStyledRunes(styled, m.width-6)
		lines = append(lines, wrapped, "")
	}
	lines = append(lines, breakdownLines(m.breakdowns)...)
	return strings.Join(lines, "\n")
}

func breakdownLines(breakdowns []scoring.Breakdown) []string {
	lines := make([]string, 0, len(breakdowns))
	for _, b := range breakdowns {
		line := fmt.Sprintf("• %-11s %d/%d", b.Game, b.Score, maxFor(b.Game))
		if b.Bonus {
			line += " " + bonusMark(b.Game)
		}
		if b.Reason != "" {
			line += "  " + b.Reason
		}
		lines = append(lines, line)
	}
	return lines
}

func maxFor(game model.Game) int {
	switch game {
	case model.GameWordle:
		return scoring.MaxWordle
	case model.GameConnections:
		return scoring.MaxConnections
	case model.GameStrands:
		return scoring.MaxStrands
	default:
		return 0
	}
}

func bonusMark(game model.Game) string {
	switch game {
	case model.GameWordle:
		return "⚡"
	case model.GameConnections:
		return "🟪"
	case model.GameStrands:
		return "🟡"
	default:
		return ""
	}
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Player %s", m.Player()),
		fmt.Sprintf("Date %s", m.date),
		fmt.Sprintf("Score %d/%d", m.result.Score, scoring.MaxTotal),
	}
	var bonuses []string
	if m.result.BonusPoints.WordleQuick {
		bonuses = append(bonuses, bonusMark(model.GameWordle))
	}
	if m.result.BonusPoints.ConnectionsPerfect {
		bonuses = append(bonuses, bonusMark(model.GameConnections))
	}
	if m.result.BonusPoints.StrandsSpanagram {
		bonuses = append(bonuses, bonusMark(model.GameStrands))
	}
	if len(bonuses) > 0 {
		segments = append(segments, "Bonus "+strings.Join(bonuses, ""))
	}
	if m.editErr != nil {
		segments = append(segments, lockedStyle.Render("Locked: "+lockReason(m.editErr)))
	} else {
		segments = append(segments, "Open")
	}
	if m.status != "" {
		if m.statusErr {
			segments = append(segments, lockedStyle.Render(m.status))
		} else {
			segments = append(segments, m.status)
		}
	}
	segments = append(segments, "ctrl+s save · ctrl+n/p player · tab date · esc quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func lockReason(err error) string {
	if errors.Is(err, board.ErrInvalidInput) {
		return "invalid date"
	}
	return err.Error()
}
