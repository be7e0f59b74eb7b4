package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	footerHeight = 2
)

var (
	footerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorBorder).
			Padding(0, 1)

	keyBindingStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	bindingSeparator = keyBindingStyle.Render("  ")
)

// GlobalBindings returns the global key bindings shown in all tabs.
func GlobalBindings() []string {
	return []string{
		"[1-4] tabs",
		"[Tab] next",
		"[q] quit",
	}
}

// renderFooter renders the tab bindings followed by the global ones.
func renderFooter(tabBindings []string, width int) string {
	all := make([]string, 0, len(tabBindings)+len(GlobalBindings()))
	all = append(all, tabBindings...)
	all = append(all, GlobalBindings()...)

	return footerStyle.Width(width).Render(RenderKeyBindings(all))
}

// formatBinding styles a "[key] action" string.
func formatBinding(binding string) string {
	if len(binding) < 3 || binding[0] != '[' {
		return keyBindingStyle.Render(binding)
	}

	closeIdx := strings.Index(binding, "]")
	if closeIdx == -1 {
		return keyBindingStyle.Render(binding)
	}

	return keyStyle.Render(binding[:closeIdx+1]) + keyBindingStyle.Render(binding[closeIdx+1:])
}

// RenderKeyBindings renders a list of key bindings.
func RenderKeyBindings(bindings []string) string {
	formatted := make([]string, len(bindings))
	for i, b := range bindings {
		formatted[i] = formatBinding(b)
	}
	return strings.Join(formatted, bindingSeparator)
}

// BindingStrings converts key bindings into "[key] action" footer strings.
// Disabled bindings are left out.
func BindingStrings(bindings ...key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		out = append(out, "["+h.Key+"] "+h.Desc)
	}
	return out
}
