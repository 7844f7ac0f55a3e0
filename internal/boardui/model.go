// Package boardui provides the Bubble Tea scoreboard viewer.
package boardui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/roster"
	"github.com/verte-zerg/puzzlescore/internal/stats"
)

const (
	tabStandings = iota
	tabDaily
	tabHistory
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#6AAA64"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea scoreboard viewer.
type Model struct {
	source stats.Source
	roster *roster.Roster
	month  string

	report stats.Report
	errMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	daily       table.Model
	dailyLayout tableLayout

	width  int
	height int

	monthMode  bool
	monthInput textinput.Model
	monthError string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a viewer for month.
func NewModel(src stats.Source, r *roster.Roster, month string) *Model {
	m := &Model{
		source: src,
		roster: r,
		month:  month,
		tabs:   []string{"Standings", "Daily", "History"},
	}
	m.initMonthInput()
	m.daily = table.New(table.WithHeight(1))
	m.daily.SetStyles(dailyTableStyles())
	m.initViewports()
	m.refreshReport()
	return m
}

// Month returns the month on screen.
func (m *Model) Month() string {
	return m.month
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.monthMode {
			return m.updateMonthInput(msg)
		}
		if m.activeTab == tabDaily {
			m.daily.Focus()
		} else {
			m.daily.Blur()
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "[":
			m.shiftMonth(-1)
			return m, nil
		case "]":
			m.shiftMonth(1)
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		case "/":
			return m.startMonthInput()
		case "g", "home":
			if m.activeTab == tabDaily {
				m.daily.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabDaily {
				m.daily.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabDaily {
				var cmd tea.Cmd
				m.daily, cmd = m.daily.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initMonthInput() {
	input := textinput.New()
	input.Prompt = "Month (YYYY-MM): "
	input.Placeholder = m.month
	input.CharLimit = len(calendar.MonthLayout)
	input.Cursor.SetMode(cursor.CursorBlink)
	m.monthInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.monthMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setDailyTableSize(m.width, vpHeight)
	promptWidth := lipgloss.Width(m.monthInput.Prompt)
	m.monthInput.Width = maxInt(10, m.width-promptWidth-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabDaily {
		m.daily.Focus()
	} else {
		m.daily.Blur()
	}
}

func (m *Model) shiftMonth(delta int) {
	next, err := calendar.ShiftMonth(m.month, delta)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.month = next
	m.refreshReport()
	m.updateLayout()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := padLines(m.renderSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderSummary() string {
	leaders := strings.Join(m.report.Leaders(), ", ")
	if leaders == "" {
		leaders = "none"
	}
	summary := fmt.Sprintf("Month: %s  Days: %d  Leader: %s", m.month, len(m.report.Dates), leaders)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Month: [ ]  Jump: /  Refresh: r  Quit: q")
}

func (m *Model) renderFooter() string {
	if m.monthMode {
		return headerStyle.Render("enter: open month  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderMonthForm() string {
	lines := []string{"Jump to month (enter to open, esc to cancel)", m.monthInput.View()}
	if m.monthError != "" {
		lines = append(lines, errorStyle.Render(m.monthError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.monthMode {
		return fitLines(m.renderMonthForm(), m.width, height)
	}
	if m.activeTab == tabDaily {
		if len(m.report.Dates) == 0 {
			return fitLines("No scores yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.daily.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.source, m.roster, m.month)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{Month: m.month, Roster: m.roster}
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load scores.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyDailyTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabStandings].SetContent(renderStandings(m.report, width))
	m.viewports[tabHistory].SetContent(renderHistory(m.report, width))
}

func renderStandings(r stats.Report, width int) string {
	if len(r.Dates) == 0 {
		return "No scores yet."
	}
	cards := renderSummaryCards(r, width)
	standings := strings.Join(stats.StandingsLines(r), "\n")
	breakdown := strings.Join(stats.BreakdownLines(r), "\n")
	return strings.TrimRight(cards+"\n\n"+standings+"\n\n"+breakdown, "\n")
}

func renderSummaryCards(r stats.Report, width int) string {
	best, bestName, bestDate := 0, "-", ""
	bonuses := 0
	for _, s := range r.Standings {
		bonuses += s.Bonuses.Wordle + s.Bonuses.Connections + s.Bonuses.Strands
		for date, d := range r.Scores[s.Seat].DailyScores {
			if d.Total > best || (d.Total == best && d.Total > 0 && date < bestDate) {
				best, bestName, bestDate = d.Total, s.Name, date
			}
		}
	}
	top := 0
	if len(r.Standings) > 0 {
		top = r.Standings[0].Total
	}
	bestDay := "-"
	if best > 0 {
		bestDay = fmt.Sprintf("%d %s", best, bestName)
	}
	cards := []string{
		metricCard("Days", fmt.Sprintf("%d", len(r.Dates))),
		metricCard("Top Total", fmt.Sprintf("%d", top)),
		metricCard("Best Day", bestDay),
		metricCard("Bonuses", fmt.Sprintf("%d", bonuses)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderHistory(r stats.Report, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, r, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render history: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildDailyTableData(r stats.Report) ([]table.Column, []table.Row) {
	columns := []table.Column{{Title: "Date", Width: len(calendar.DateLayout)}}
	for _, g := range r.Breakdown {
		columns = append(columns, table.Column{Title: g.Name, Width: maxInt(8, runewidth.StringWidth(g.Name))})
	}
	rows := make([]table.Row, 0, len(r.Dates))
	for i := len(r.Dates) - 1; i >= 0; i-- {
		date := r.Dates[i]
		row := table.Row{date}
		for _, g := range r.Breakdown {
			d, ok := r.Scores[g.Seat].DailyScores[date]
			row = append(row, stats.DailyCell(d, ok))
		}
		rows = append(rows, row)
	}
	return columns, rows
}

func (m *Model) applyDailyTable(width, height int) {
	cols, rows := buildDailyTableData(m.report)
	// Clear rows first so no row outlives its columns.
	m.daily.SetRows(nil)
	m.daily.SetColumns(cols)
	m.daily.SetRows(rows)
	m.dailyLayout = tableLayout{rowCount: len(rows), colCount: len(cols)}
	m.setDailyTableSize(width, height)
}

func (m *Model) setDailyTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.dailyLayout.width == width && m.dailyLayout.height == viewportHeight {
		return
	}
	m.dailyLayout.width = width
	m.dailyLayout.height = viewportHeight
	m.daily.SetWidth(width)
	m.daily.SetHeight(viewportHeight)
}

func dailyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startMonthInput() (tea.Model, tea.Cmd) {
	m.monthMode = true
	m.monthError = ""
	m.monthInput.SetValue("")
	m.monthInput.Placeholder = m.month
	return m, m.monthInput.Focus()
}

func (m *Model) updateMonthInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.monthMode = false
		m.monthError = ""
		m.monthInput.Blur()
		return m, nil
	case tea.KeyEnter:
		month := strings.TrimSpace(m.monthInput.Value())
		if month == "" {
			month = m.month
		}
		if _, err := calendar.ParseMonth(month); err != nil {
			m.monthError = err.Error()
			return m, nil
		}
		m.monthMode = false
		m.monthError = ""
		m.monthInput.Blur()
		m.month = month
		m.refreshReport()
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.monthInput, cmd = m.monthInput.Update(msg)
	return m, cmd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// truncateLine cuts s to width terminal cells.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
