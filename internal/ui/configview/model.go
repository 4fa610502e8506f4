// Package configview shows the effective configuration and the scenario
// cache state, with build and clear actions. Cache status arrives via
// messages from the periodic refresh.
package configview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/negwatch/negwatch/internal/config"
	"github.com/negwatch/negwatch/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	buildStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Model is the config view state.
type Model struct {
	cfg     config.Config
	dataDir string

	status    *model.CacheStatus
	statusErr error

	// confirmClear and confirmReset arm the destructive actions for one more
	// keypress.
	confirmClear bool
	confirmReset bool

	width  int
	height int
}

// New creates a config view for the loaded configuration.
func New(cfg config.Config, dataDir string) Model {
	return Model{cfg: cfg, dataDir: dataDir}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetCacheStatus installs the latest poll result.
func (m *Model) SetCacheStatus(status *model.CacheStatus, err error) {
	m.status = status
	m.statusErr = err
}

// RequestClear arms a clear on first call and confirms it on the second.
func (m *Model) RequestClear() (confirmed bool) {
	m.confirmReset = false
	if m.confirmClear {
		m.confirmClear = false
		return true
	}
	m.confirmClear = true
	return false
}

// RequestReset arms a server settings reset on first call and confirms it on
// the second.
func (m *Model) RequestReset() (confirmed bool) {
	m.confirmClear = false
	if m.confirmReset {
		m.confirmReset = false
		return true
	}
	m.confirmReset = true
	return false
}

// CancelClear disarms any pending confirmation.
func (m *Model) CancelClear() {
	m.confirmClear = false
	m.confirmReset = false
}

// View renders the configuration and cache panel.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CONFIGURATION"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("Server", m.cfg.Server.URL)
	row("Request timeout", fmt.Sprintf("%ds", m.cfg.Server.TimeoutSeconds))
	row("Rate limit", fmt.Sprintf("%.0f req/s", m.cfg.Server.RequestsPerSecond))
	row("Data directory", m.dataDir)
	row("Cache poll", fmt.Sprintf("every %ds", m.cfg.Cache.PollSeconds))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("SCENARIO CACHE"))
	b.WriteString("\n\n")
	switch {
	case m.statusErr != nil:
		b.WriteString(dimStyle.Render("unreachable: " + m.statusErr.Error()))
	case m.status == nil:
		b.WriteString(dimStyle.Render("waiting for first poll..."))
	case m.status.Building:
		b.WriteString(buildStyle.Render(fmt.Sprintf("building  %d / %d cached", m.status.Cached, m.status.Total)))
	default:
		b.WriteString(okStyle.Render(fmt.Sprintf("%d / %d scenarios cached", m.status.Cached, m.status.Total)))
	}
	b.WriteString("\n")

	if m.confirmClear {
		b.WriteString("\n")
		b.WriteString(confirmStyle.Render("Press x again to clear the scenario cache"))
		b.WriteString("\n")
	}
	if m.confirmReset {
		b.WriteString("\n")
		b.WriteString(confirmStyle.Render("Press R again to reset the server settings"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("b:build cache  x:clear cache  s:backup settings  R:reset settings  esc:back"))
	return b.String()
}
