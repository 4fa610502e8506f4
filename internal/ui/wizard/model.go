// Package wizard walks the user through configuring a tournament: pick
// competitors, pick scenarios, set the run parameters, confirm. Enumerations
// arrive via messages from the server; the wizard only assembles the config.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/negwatch/negwatch/internal/model"
)

// Step is one page of the wizard.
type Step int

const (
	StepCompetitors Step = iota
	StepScenarios
	StepParams
	StepConfirm
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	stepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62")).Padding(0, 1)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Padding(0, 1)
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// paramField indexes the editable run parameters on the params step.
type paramField int

const (
	fieldRepetitions paramField = iota
	fieldRotate
	fieldSelfPlay
	fieldTimeLimit
	paramFieldCount
)

// Model is the wizard state.
type Model struct {
	step   Step
	cursor int

	negotiators []model.Negotiator
	scenarios   []model.Scenario

	pickedCompetitors map[string]bool
	pickedScenarios   map[string]bool

	repetitions int
	rotate      bool
	selfPlay    bool
	timeLimit   float64

	warning string
}

// New creates a wizard with sensible run defaults.
func New() Model {
	return Model{
		pickedCompetitors: map[string]bool{},
		pickedScenarios:   map[string]bool{},
		repetitions:       3,
		rotate:            true,
		timeLimit:         180,
	}
}

// SetNegotiators and SetScenarios install the server enumerations.
func (m *Model) SetNegotiators(negotiators []model.Negotiator) {
	m.negotiators = negotiators
}

func (m *Model) SetScenarios(scenarios []model.Scenario) {
	m.scenarios = scenarios
}

// Reset returns the wizard to its first page, keeping the enumerations.
func (m *Model) Reset() {
	m.step = StepCompetitors
	m.cursor = 0
	m.warning = ""
	m.pickedCompetitors = map[string]bool{}
	m.pickedScenarios = map[string]bool{}
}

// Step returns the current page.
func (m *Model) Step() Step {
	return m.step
}

// CursorUp and CursorDown move within the current page.
func (m *Model) CursorUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Model) CursorDown() {
	if m.cursor < m.pageSize()-1 {
		m.cursor++
	}
}

func (m *Model) pageSize() int {
	switch m.step {
	case StepCompetitors:
		return len(m.negotiators)
	case StepScenarios:
		return len(m.scenarios)
	case StepParams:
		return int(paramFieldCount)
	default:
		return 1
	}
}

// ToggleSelection flips the item under the cursor on a selection page, or a
// boolean field on the params page.
func (m *Model) ToggleSelection() {
	m.warning = ""
	switch m.step {
	case StepCompetitors:
		if m.cursor < len(m.negotiators) {
			name := m.negotiators[m.cursor].TypeName
			m.pickedCompetitors[name] = !m.pickedCompetitors[name]
		}
	case StepScenarios:
		if m.cursor < len(m.scenarios) {
			path := m.scenarios[m.cursor].Path
			m.pickedScenarios[path] = !m.pickedScenarios[path]
		}
	case StepParams:
		switch paramField(m.cursor) {
		case fieldRotate:
			m.rotate = !m.rotate
		case fieldSelfPlay:
			m.selfPlay = !m.selfPlay
		}
	}
}

// Adjust changes the numeric field under the cursor on the params page.
func (m *Model) Adjust(delta int) {
	if m.step != StepParams {
		return
	}
	switch paramField(m.cursor) {
	case fieldRepetitions:
		m.repetitions += delta
		if m.repetitions < 1 {
			m.repetitions = 1
		}
	case fieldTimeLimit:
		m.timeLimit += float64(delta * 30)
		if m.timeLimit < 0 {
			m.timeLimit = 0
		}
	}
}

// Next advances to the following page, refusing to leave a selection page
// empty. Returns true when the wizard just moved onto the confirm page or
// beyond.
func (m *Model) Next() bool {
	switch m.step {
	case StepCompetitors:
		if len(m.selectedCompetitors()) == 0 {
			m.warning = "select at least one competitor"
			return false
		}
	case StepScenarios:
		if len(m.selectedScenarios()) == 0 {
			m.warning = "select at least one scenario"
			return false
		}
	case StepConfirm:
		return true
	}
	m.step++
	m.cursor = 0
	m.warning = ""
	return m.step == StepConfirm
}

// Back returns to the previous page. Reports false when already on the first
// page, so the caller can close the wizard instead.
func (m *Model) Back() bool {
	if m.step == StepCompetitors {
		return false
	}
	m.step--
	m.cursor = 0
	m.warning = ""
	return true
}

// ScenarioUnderCursor returns the scenario the cursor is on, or nil when the
// wizard is not on the scenario page.
func (m *Model) ScenarioUnderCursor() *model.Scenario {
	if m.step != StepScenarios || m.cursor >= len(m.scenarios) {
		return nil
	}
	return &m.scenarios[m.cursor]
}

// Config assembles the tournament configuration from the selections.
func (m *Model) Config() model.TournamentConfig {
	return model.TournamentConfig{
		Competitors:  m.selectedCompetitors(),
		Scenarios:    m.selectedScenarios(),
		NRepetitions: m.repetitions,
		RotateUfuns:  m.rotate,
		SelfPlay:     m.selfPlay,
		TimeLimit:    m.timeLimit,
		SaveLogs:     true,
	}
}

// selectedCompetitors preserves the enumeration order.
func (m *Model) selectedCompetitors() []string {
	var out []string
	for _, n := range m.negotiators {
		if m.pickedCompetitors[n.TypeName] {
			out = append(out, n.TypeName)
		}
	}
	return out
}

func (m *Model) selectedScenarios() []string {
	var out []string
	for _, s := range m.scenarios {
		if m.pickedScenarios[s.Path] {
			out = append(out, s.Path)
		}
	}
	return out
}

// View renders the current wizard page.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("NEW TOURNAMENT"))
	b.WriteString("  ")
	b.WriteString(stepStyle.Render(fmt.Sprintf("step %d/4", int(m.step)+1)))
	b.WriteString("\n\n")

	switch m.step {
	case StepCompetitors:
		m.renderCompetitors(&b)
	case StepScenarios:
		m.renderScenarios(&b)
	case StepParams:
		m.renderParams(&b)
	case StepConfirm:
		m.renderConfirm(&b)
	}

	if m.warning != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(m.warning))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("space:toggle  enter:next  esc:back  j/k:move"))
	return b.String()
}

func (m Model) renderCompetitors(b *strings.Builder) {
	b.WriteString(stepStyle.Render("Select competitors"))
	b.WriteString("\n")
	if len(m.negotiators) == 0 {
		b.WriteString(dimStyle.Render("Waiting for negotiator list..."))
		b.WriteString("\n")
		return
	}
	for i, n := range m.negotiators {
		mark := "[ ]"
		if m.pickedCompetitors[n.TypeName] {
			mark = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, n.TypeName)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
}

func (m Model) renderScenarios(b *strings.Builder) {
	b.WriteString(stepStyle.Render("Select scenarios"))
	b.WriteString("\n")
	if len(m.scenarios) == 0 {
		b.WriteString(dimStyle.Render("Waiting for scenario list..."))
		b.WriteString("\n")
		return
	}
	for i, s := range m.scenarios {
		mark := "[ ]"
		if m.pickedScenarios[s.Path] {
			mark = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s (%d issues, %d outcomes)", mark, s.Path, s.NIssues, s.Outcomes)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("s recalculates solution stats for the highlighted scenario"))
	b.WriteString("\n")
}

func (m Model) renderParams(b *strings.Builder) {
	b.WriteString(stepStyle.Render("Run parameters"))
	b.WriteString("\n")
	lines := []string{
		fmt.Sprintf("Repetitions      %d", m.repetitions),
		fmt.Sprintf("Rotate ufuns     %v", m.rotate),
		fmt.Sprintf("Self play        %v", m.selfPlay),
		fmt.Sprintf("Time limit       %.0fs", m.timeLimit),
	}
	for i, line := range lines {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("h/l or -/+ adjust numbers, space flips booleans"))
	b.WriteString("\n")
}

func (m Model) renderConfirm(b *strings.Builder) {
	cfg := m.Config()
	cells := len(cfg.Competitors) * len(cfg.Competitors) * len(cfg.Scenarios)
	factor := 1
	if cfg.RotateUfuns {
		factor = 2
	}
	b.WriteString(stepStyle.Render("Review"))
	b.WriteString("\n")
	b.WriteString(normalStyle.Render(fmt.Sprintf("Competitors: %s", strings.Join(cfg.Competitors, ", "))))
	b.WriteString("\n")
	b.WriteString(normalStyle.Render(fmt.Sprintf("Scenarios:   %d selected", len(cfg.Scenarios))))
	b.WriteString("\n")
	b.WriteString(normalStyle.Render(fmt.Sprintf("Runs:        %d reps × rotate %v × self-play %v ≈ %d negotiations",
		cfg.NRepetitions, cfg.RotateUfuns, cfg.SelfPlay, cells*cfg.NRepetitions*factor)))
	b.WriteString("\n\n")
	b.WriteString(checkedStyle.Render("Press enter to start the tournament"))
	b.WriteString("\n")
}
