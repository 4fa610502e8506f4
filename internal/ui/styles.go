package ui

import "github.com/charmbracelet/lipgloss"

// Colors used by the app chrome. Each sub-view carries its own styles.
var (
	colorSecondary = lipgloss.Color("241") // Gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorError     = lipgloss.Color("196") // Red
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in the status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in the status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Banner styles for the one-line feedback bar above the status bar.
var (
	BannerSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Padding(0, 1)
	BannerWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Padding(0, 1)
	BannerError   = lipgloss.NewStyle().Foreground(colorError).Bold(true).Padding(0, 1)
)
