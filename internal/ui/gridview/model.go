// Package gridview renders the tournament competition grid: one row per
// competitor, one column per opponent, with the toggled metric percentages in
// each cell. Tabs switch between the cross-scenario summary and individual
// scenarios.
package gridview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/negwatch/negwatch/internal/export"
	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/match"
	"github.com/negwatch/negwatch/internal/model"
)

// maxLiveEvents caps the retained live negotiation events.
const maxLiveEvents = 50

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	liveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)

	tabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	tabInactive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// Each display mode keeps a fixed color so toggling modes never reshuffles
// the palette.
var modeStyles = map[grid.Mode]lipgloss.Style{
	grid.ModeCompletion: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	grid.ModeAgreement:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
	grid.ModeSuccess:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	grid.ModeTimeout:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	grid.ModeError:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

// Model is the grid view state. It owns the Board: every tournament event is
// applied here, on the update loop, so the Board never needs locking.
type Model struct {
	tournamentID string
	board        *grid.Board
	modes        grid.ModeSet
	matcher      match.NameMatcher

	tabs      []string // export.TabSummary followed by scenario paths
	activeTab int

	table table.Model
	live  []model.Negotiation // newest first
	done  bool
	fault string

	width  int
	height int
}

// New creates a grid view with the given persisted display modes.
func New(modes grid.ModeSet) Model {
	t := table.New(table.WithFocused(true))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("255"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	return Model{
		modes:   modes,
		matcher: match.PrefixMatcher{},
		table:   t,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(maxInt(height-6, 3))
	m.rebuild()
}

// SetModes replaces the display mode set, e.g. after loading persisted state.
func (m *Model) SetModes(modes grid.ModeSet) {
	m.modes = modes
	m.rebuild()
}

// Modes returns the current display mode set.
func (m *Model) Modes() grid.ModeSet {
	return m.modes
}

// ToggleMode flips a display mode and reports whether the set changed, so the
// caller knows whether to persist it. Removing the last mode never changes
// the set.
func (m *Model) ToggleMode(mode grid.Mode) bool {
	before := len(m.modes.Active())
	wasEnabled := m.modes.Enabled(mode)
	m.modes.Toggle(mode)
	changed := m.modes.Enabled(mode) != wasEnabled || len(m.modes.Active()) != before
	if changed {
		m.rebuild()
	}
	return changed
}

// ApplyEvent folds one tournament event into the grid.
func (m *Model) ApplyEvent(tournamentID string, event model.TournamentEvent) {
	switch event.Kind {
	case model.EventGridInit:
		if event.Init == nil {
			return
		}
		m.tournamentID = tournamentID
		m.board = grid.NewBoard(*event.Init)
		m.tabs = append([]string{export.TabSummary}, m.board.Init().Scenarios...)
		m.activeTab = 0
		m.live = nil
		m.done = false
		m.fault = ""

	case model.EventCellUpdate:
		if m.board == nil || event.Cell == nil {
			return
		}
		m.board.Apply(*event.Cell)

	case model.EventLiveNegotiation:
		if event.Live == nil {
			return
		}
		m.live = append([]model.Negotiation{*event.Live}, m.live...)
		if len(m.live) > maxLiveEvents {
			m.live = m.live[:maxLiveEvents]
		}

	case model.EventComplete:
		m.done = true

	case model.EventError:
		m.fault = event.Message
	}
	m.rebuild()
}

// Running reports whether a tournament is being followed.
func (m *Model) Running() bool {
	return m.board != nil && !m.done
}

// LoadHistory rebuilds the grid from persisted negotiation records. Saved
// records carry decorated instance names, so each one is assigned to its
// cell through the same matcher the live markers use.
func (m *Model) LoadHistory(tournamentID string, init model.GridInit, negotiations []model.Negotiation) {
	m.tournamentID = tournamentID
	m.board = grid.NewBoard(init)
	m.tabs = append([]string{export.TabSummary}, m.board.Init().Scenarios...)
	m.activeTab = 0
	m.live = nil
	m.done = true
	m.fault = ""

	axes := m.board.Init()
	for _, n := range negotiations {
		if key, ok := m.assignCell(axes, n); ok {
			m.board.Record(key, n.Result)
		}
	}
	m.rebuild()
}

// assignCell finds the axes triple a negotiation record belongs to.
func (m *Model) assignCell(axes model.GridInit, n model.Negotiation) (grid.Key, bool) {
	for _, competitor := range axes.Competitors {
		for _, opponent := range axes.Opponents {
			if m.board.SelfPlayDisabled(competitor, opponent) {
				continue
			}
			for _, scenario := range axes.Scenarios {
				if m.matcher.Matches(n, competitor, opponent, scenario) {
					return grid.Key{Competitor: competitor, Opponent: opponent, Scenario: scenario}, true
				}
			}
		}
	}
	return grid.Key{}, false
}

// NextTab and PrevTab cycle through the summary and scenario tabs.
func (m *Model) NextTab() {
	if len(m.tabs) > 0 {
		m.activeTab = (m.activeTab + 1) % len(m.tabs)
		m.rebuild()
	}
}

func (m *Model) PrevTab() {
	if len(m.tabs) > 0 {
		m.activeTab = (m.activeTab - 1 + len(m.tabs)) % len(m.tabs)
		m.rebuild()
	}
}

// Export renders the current tab as CSV. The filename follows the tab, scope
// and timestamp.
func (m *Model) Export(scope export.Scope) (filename, contents string, err error) {
	if m.board == nil {
		return "", "", fmt.Errorf("no tournament grid to export")
	}
	tab := m.tabs[m.activeTab]
	contents, err = export.GridCSV(m.board, tab, scope, m.modes)
	if err != nil {
		return "", "", err
	}
	return export.Filename(tab, scope, time.Now()), contents, nil
}

// rebuild recomputes the table columns and rows from the board.
func (m *Model) rebuild() {
	if m.board == nil {
		return
	}
	init := m.board.Init()

	nameWidth := runewidth.StringWidth("vs")
	for _, c := range init.Competitors {
		if w := runewidth.StringWidth(c); w > nameWidth {
			nameWidth = w
		}
	}

	cellWidth := 4*len(m.modes.Active()) + 2
	columns := []table.Column{{Title: "vs", Width: nameWidth + 1}}
	for _, opponent := range init.Opponents {
		w := runewidth.StringWidth(opponent)
		if w < cellWidth {
			w = cellWidth
		}
		columns = append(columns, table.Column{Title: opponent, Width: w + 1})
	}

	rows := make([]table.Row, 0, len(init.Competitors))
	for _, competitor := range init.Competitors {
		row := table.Row{competitor}
		for _, opponent := range init.Opponents {
			row = append(row, m.cellText(competitor, opponent))
		}
		rows = append(rows, row)
	}

	m.table.SetColumns(columns)
	m.table.SetRows(rows)
}

// cellText formats one pairing cell for the active tab and modes.
func (m *Model) cellText(competitor, opponent string) string {
	if m.board.SelfPlayDisabled(competitor, opponent) {
		return "—"
	}

	var state *grid.CellState
	scenario := ""
	if tab := m.tabs[m.activeTab]; tab == export.TabSummary {
		state = m.board.Summary(competitor, opponent)
	} else {
		scenario = tab
		state = m.board.Cell(grid.Key{
			Competitor: competitor,
			Opponent:   opponent,
			Scenario:   scenario,
		})
	}
	if state == nil || (state.Completed == 0 && state.Running == 0) {
		return "·"
	}

	metrics := grid.Metrics(state)
	parts := make([]string, 0, len(m.modes.Active()))
	for _, mode := range m.modes.Active() {
		parts = append(parts, modeStyles[mode].Render(fmt.Sprintf("%d", metrics.ByMode(mode))))
	}
	text := strings.Join(parts, "/")

	if m.hasLiveMatch(competitor, opponent, scenario) {
		text += liveStyle.Render("•")
	}
	return text
}

// hasLiveMatch reports whether an unfinished live negotiation maps onto the
// cell per the fuzzy name matcher.
func (m *Model) hasLiveMatch(competitor, opponent, scenario string) bool {
	for _, live := range m.live {
		if live.Finished() {
			continue
		}
		if m.matcher.Matches(live, competitor, opponent, scenario) {
			return true
		}
	}
	return false
}

// View renders the grid view.
func (m Model) View() string {
	if m.board == nil {
		return titleStyle.Render("COMPETITION GRID") + "\n\n" +
			dimStyle.Render("No tournament running. Press n to configure one.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("COMPETITION GRID"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.tournamentID))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderLegend())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		label := tab
		if i > 0 {
			label = shortScenario(tab)
		}
		if i == m.activeTab {
			parts = append(parts, tabActive.Render(label))
		} else {
			parts = append(parts, tabInactive.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderLegend() string {
	parts := make([]string, 0, len(m.modes.Active())+1)
	for i, mode := range grid.AllModes {
		label := fmt.Sprintf("%d:%s", i+1, mode)
		if m.modes.Enabled(mode) {
			parts = append(parts, modeStyles[mode].Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderStatus() string {
	switch {
	case m.fault != "":
		return errStyle.Render("Tournament error: " + m.fault)
	case m.done:
		return doneStyle.Render("Tournament complete")
	case len(m.live) > 0:
		latest := m.live[0]
		return liveStyle.Render("live ") + dimStyle.Render(fmt.Sprintf(
			"%s vs %s on %s", latest.Competitor, latest.Opponent, shortScenario(latest.Scenario)))
	default:
		return dimStyle.Render(fmt.Sprintf("%d cells reporting", m.board.CellCount()))
	}
}

// shortScenario trims a scenario path to its final element for display.
func shortScenario(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 && i < len(s)-1 {
		return s[i+1:]
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
