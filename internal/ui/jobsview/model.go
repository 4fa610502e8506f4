// Package jobsview renders the background job queue: active and pending jobs
// on top, recent history below.
package jobsview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/negwatch/negwatch/internal/work"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	kindStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("177"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	barFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	barEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// maxHistory limits how many finished jobs the view shows.
const maxHistory = 20

// Model is the jobs view state.
type Model struct {
	pool     *work.Pool
	snapshot work.Snapshot
	spinner  spinner.Model

	width  int
	height int
}

// New creates a jobs view backed by the given pool.
func New(pool *work.Pool) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	return Model{pool: pool, spinner: s}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Refresh pulls a fresh snapshot from the pool.
func (m *Model) Refresh() {
	if m.pool != nil {
		m.snapshot = m.pool.Snapshot()
	}
}

// Spinner returns the spinner for tick forwarding.
func (m *Model) Spinner() spinner.Model {
	return m.spinner
}

// SetSpinner updates the spinner state.
func (m *Model) SetSpinner(s spinner.Model) {
	m.spinner = s
}

// ClearHistory empties the finished job list.
func (m *Model) ClearHistory() {
	if m.pool != nil {
		m.pool.ClearHistory()
		m.Refresh()
	}
}

// View renders the job queue.
func (m Model) View() string {
	if m.pool == nil {
		return "Job pool not initialized"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("JOBS " + m.spinner.View()))
	b.WriteString("  ")
	b.WriteString(statsStyle.Render(m.snapshot.Stats.String()))
	b.WriteString("\n\n")

	for _, job := range m.snapshot.Active {
		b.WriteString(m.renderJob(job))
		b.WriteString("\n")
	}
	for i, job := range m.snapshot.Pending {
		if i >= 5 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more pending", len(m.snapshot.Pending)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(m.renderJob(job))
		b.WriteString("\n")
	}

	if len(m.snapshot.Active) > 0 || len(m.snapshot.Pending) > 0 {
		b.WriteString(dividerStyle.Render(strings.Repeat("─", minInt(m.width-4, 60))))
		b.WriteString("\n")
	}

	for i, job := range m.snapshot.Finished {
		if i >= maxHistory {
			break
		}
		b.WriteString(m.renderJob(job))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("x:clear history  esc:back"))
	return b.String()
}

func (m Model) renderJob(job *work.Job) string {
	var parts []string

	icon := "[" + job.StatusIcon() + "]"
	switch job.Status {
	case work.StatusActive:
		parts = append(parts, activeStyle.Render(icon))
	case work.StatusPending:
		parts = append(parts, pendingStyle.Render(icon))
	case work.StatusComplete:
		parts = append(parts, completeStyle.Render(icon))
	case work.StatusFailed:
		parts = append(parts, failedStyle.Render(icon))
	}

	parts = append(parts, kindStyle.Render(job.Kind.Icon()))
	parts = append(parts, truncate(job.Description, 40))

	switch job.Status {
	case work.StatusActive:
		if job.Progress > 0 {
			parts = append(parts, renderProgress(job.Progress, 10))
		}
		if job.ProgressMsg != "" {
			parts = append(parts, dimStyle.Render(job.ProgressMsg))
		}
		parts = append(parts, dimStyle.Render(formatDuration(job.Duration())))
	case work.StatusComplete:
		if job.Result != "" {
			parts = append(parts, completeStyle.Render(truncate(job.Result, 24)))
		}
		parts = append(parts, dimStyle.Render(formatAge(job.Age())))
	case work.StatusFailed:
		if job.Err != nil {
			parts = append(parts, failedStyle.Render(truncate(job.Err.Error(), 28)))
		}
		parts = append(parts, dimStyle.Render(formatAge(job.Age())))
	}

	return strings.Join(parts, " ")
}

func renderProgress(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("%s%s %2.0f%%",
		barFilled.Render(strings.Repeat("█", filled)),
		barEmpty.Render(strings.Repeat("░", width-filled)),
		pct*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
