// Package filtersview lists the saved scenario filter presets and exposes
// delete / set-default actions. Presets arrive via messages; the view never
// talks to the server itself.
package filtersview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/negwatch/negwatch/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62")).Padding(0, 1)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Padding(0, 1)
	defaultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	confirmStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Model is the filters view state.
type Model struct {
	presets []model.FilterPreset
	cursor  int
	stale   bool

	// confirmDelete holds the preset ID awaiting a second delete press.
	confirmDelete string

	width  int
	height int
}

// New creates an empty filters view.
func New() Model {
	return Model{}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetPresets replaces the preset list. Stale marks a cached offline copy.
func (m *Model) SetPresets(presets []model.FilterPreset, stale bool) {
	m.presets = presets
	m.stale = stale
	m.confirmDelete = ""
	if m.cursor >= len(presets) && len(presets) > 0 {
		m.cursor = len(presets) - 1
	}
	if len(presets) == 0 {
		m.cursor = 0
	}
}

// CursorUp and CursorDown move the selection.
func (m *Model) CursorUp() {
	if m.cursor > 0 {
		m.cursor--
	}
	m.confirmDelete = ""
}

func (m *Model) CursorDown() {
	if m.cursor < len(m.presets)-1 {
		m.cursor++
	}
	m.confirmDelete = ""
}

// Selected returns the preset under the cursor, or nil.
func (m *Model) Selected() *model.FilterPreset {
	if m.cursor < 0 || m.cursor >= len(m.presets) {
		return nil
	}
	return &m.presets[m.cursor]
}

// RequestDelete implements a two-press confirmation for the destructive
// delete. The first press arms it; the second press on the same preset
// returns the ID to delete.
func (m *Model) RequestDelete() (id string, confirmed bool) {
	selected := m.Selected()
	if selected == nil {
		return "", false
	}
	if m.confirmDelete == selected.ID {
		m.confirmDelete = ""
		return selected.ID, true
	}
	m.confirmDelete = selected.ID
	return selected.ID, false
}

// CancelDelete disarms a pending delete confirmation.
func (m *Model) CancelDelete() {
	m.confirmDelete = ""
}

// View renders the preset list.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FILTER PRESETS"))
	if m.stale {
		b.WriteString("  ")
		b.WriteString(staleStyle.Render("(cached copy, server unreachable)"))
	}
	b.WriteString("\n\n")

	if len(m.presets) == 0 {
		b.WriteString(dimStyle.Render("No saved presets."))
		b.WriteString("\n")
	}

	for i, preset := range m.presets {
		line := preset.Name
		if preset.IsDefault {
			line += " " + defaultStyle.Render("[default]")
		}
		if m.confirmDelete == preset.ID {
			line += " " + confirmStyle.Render("press d again to delete")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("    " + describeCriteria(preset.Criteria)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("j/k:move  s:set default  u:duplicate  d:delete  e:export  esc:back"))
	return b.String()
}

// describeCriteria summarizes a preset's criteria on one line.
func describeCriteria(c model.Criteria) string {
	var parts []string
	if c.MinIssues > 0 || c.MaxIssues > 0 {
		parts = append(parts, fmt.Sprintf("issues %s", rangeText(c.MinIssues, c.MaxIssues)))
	}
	if c.MinOutcomes > 0 || c.MaxOutcomes > 0 {
		parts = append(parts, fmt.Sprintf("outcomes %s", rangeText(c.MinOutcomes, c.MaxOutcomes)))
	}
	if len(c.PathPrefixes) > 0 {
		parts = append(parts, "paths "+strings.Join(c.PathPrefixes, ","))
	}
	if len(c.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(c.Tags, ","))
	}
	if len(parts) == 0 {
		return "matches everything"
	}
	return strings.Join(parts, "  ")
}

func rangeText(lo, hi int) string {
	switch {
	case lo > 0 && hi > 0:
		return fmt.Sprintf("%d–%d", lo, hi)
	case lo > 0:
		return fmt.Sprintf("≥%d", lo)
	default:
		return fmt.Sprintf("≤%d", hi)
	}
}
