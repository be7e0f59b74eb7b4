package app

import "github.com/charmbracelet/lipgloss"

// Palette (ANSI 256).
var (
	colorAccent  = lipgloss.Color("39")
	colorOK      = lipgloss.Color("40")
	colorWarn    = lipgloss.Color("214")
	colorErr     = lipgloss.Color("196")
	colorDim     = lipgloss.Color("244")
	colorBorder  = lipgloss.Color("240")
	colorRow     = lipgloss.Color("236")
	colorTitle   = lipgloss.Color("229")
	colorSpinner = lipgloss.Color("205")
)

// Shared text styles for views.
var (
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	AccentStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorOK)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarn)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorErr)
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	SpinnerStyle = lipgloss.NewStyle().Foreground(colorSpinner)

	SelectedRowStyle = lipgloss.NewStyle().Background(colorRow).Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorBorder)
)

// Agent status labels.
const (
	StatusInstalled    = "installed"
	StatusUnconfigured = "not configured"
	StatusMissing      = "missing"
)

var statusStyles = map[string]lipgloss.Style{
	StatusInstalled:    lipgloss.NewStyle().Foreground(colorOK).Bold(true),
	StatusUnconfigured: lipgloss.NewStyle().Foreground(colorWarn),
	StatusMissing:      lipgloss.NewStyle().Foreground(colorErr).Bold(true),
}

// StatusColor returns the style for an agent status label. Unknown labels
// are dimmed.
func StatusColor(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return DimStyle
}

// RenderStatus renders a status label with its color.
func RenderStatus(status string) string {
	return StatusColor(status).Render(status)
}

// RenderMessage renders a status-bar message, red when isErr is set.
func RenderMessage(msg string, isErr bool) string {
	if msg == "" {
		return ""
	}
	if isErr {
		return ErrorStyle.Render("\n  " + msg)
	}
	return DimStyle.Render("\n  " + msg)
}
