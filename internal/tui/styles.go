package tui

import "github.com/charmbracelet/lipgloss"

// VS Code–derived color palette, matching the teacher's dashboard.
const (
	bgDefault  = "#1e1e1e"
	bgBorder   = "#3c3c3c"
	fgBright   = "#ffffff"
	fgDim      = "#808080"
	colorOK    = "#4ec9b0" // teal: not expiring soon
	colorWarn  = "#dcdcaa" // pale yellow: expiring soon
	colorError = "#f48771" // red: failed / unreachable
	colorTitle = "#4fc1ff" // sky blue
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorTitle))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(fgBright))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorTitle))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorOK))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarn))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError)).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(fgDim))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(bgBorder)).
			Padding(0, 1)
)
