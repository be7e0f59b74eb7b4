package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 3

	// Title is shown at the left of the header.
	Title = "takopi-docker configurator"
)

var (
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorBorder)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Background(lipgloss.Color("236")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 2)

	homeStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Faint(true)
)

// renderHeader renders the title, the tab bar and the home directory the
// configurator manages.
func renderHeader(tabs []Tab, activeIdx, width int, home string) string {
	var bar []string
	for i, tab := range tabs {
		label := "[" + tab.ShortKey() + "] " + tab.Name()
		if i == activeIdx {
			bar = append(bar, activeTabStyle.Render(label))
		} else {
			bar = append(bar, inactiveTabStyle.Render(label))
		}
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render(Title), "  ", strings.Join(bar, ""))
	right := ""
	if home != "" {
		right = homeStyle.Render(home)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Drop the home path before wrapping the tab bar.
		right, gap = "", 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
