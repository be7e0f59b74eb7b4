// Package app provides the full-screen configurator that runs inside the
// container. It follows the Bubble Tea architecture with one tab per area:
// agents, takopi, plugins and packages.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the main application model.
type Model struct {
	tabs      []Tab
	activeTab int
	width     int
	height    int
	quitting  bool
	err       error
	home      string
}

// New creates a new application model for the user whose home is home.
func New(home string) Model {
	return Model{
		tabs: []Tab{},
		home: home,
	}
}

// WithTabs sets the tabs for the application.
func (m Model) WithTabs(tabs ...Tab) Model {
	m.tabs = tabs
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.tabs {
		if cmd := m.tabs[i].Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - headerHeight - footerHeight
		for i := range m.tabs {
			m.tabs[i].SetSize(m.width, contentHeight)
		}
		return m, nil

	case error:
		m.err = msg
		return m, nil
	}

	// Async results go to every tab so that a tab that lost focus while a
	// command was running still sees its result.
	var cmds []tea.Cmd
	for i := range m.tabs {
		var cmd tea.Cmd
		m.tabs[i], cmd = m.tabs[i].Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// handleKeyMsg processes key events.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	hasFocusedInput := false
	if m.hasActive() {
		hasFocusedInput = m.tabs[m.activeTab].HasFocusedInput()
	}

	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// A focused text input receives alphanumeric keys, so global bindings
	// other than ctrl+c are suspended.
	if !hasFocusedInput {
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Help):
			if m.hasActive() {
				if h, ok := m.tabs[m.activeTab].(interface{ ToggleHelp() }); ok {
					h.ToggleHelp()
				}
			}
			return m, nil

		case key.Matches(msg, keys.Tab1):
			return m.switchTab(0)
		case key.Matches(msg, keys.Tab2):
			return m.switchTab(1)
		case key.Matches(msg, keys.Tab3):
			return m.switchTab(2)
		case key.Matches(msg, keys.Tab4):
			return m.switchTab(3)

		case key.Matches(msg, keys.NextTab):
			if len(m.tabs) == 0 {
				return m, nil
			}
			return m.switchTab((m.activeTab + 1) % len(m.tabs))
		case key.Matches(msg, keys.PrevTab):
			if len(m.tabs) == 0 {
				return m, nil
			}
			idx := m.activeTab - 1
			if idx < 0 {
				idx = len(m.tabs) - 1
			}
			return m.switchTab(idx)
		}
	}

	if m.hasActive() {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) hasActive() bool {
	return len(m.tabs) > 0 && m.activeTab < len(m.tabs)
}

// switchTab changes the active tab.
func (m Model) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx < 0 || idx >= len(m.tabs) || idx == m.activeTab {
		return m, nil
	}
	m.tabs[m.activeTab].Blur()
	m.activeTab = idx
	return m, m.tabs[m.activeTab].Focus()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.tabs, m.activeTab, m.width, m.home),
		m.renderContent(),
		m.renderFooter(),
	)
}

// renderContent renders the active tab's content.
func (m Model) renderContent() string {
	if !m.hasActive() {
		return ""
	}

	contentHeight := m.height - headerHeight - footerHeight
	return lipgloss.NewStyle().
		Height(contentHeight).
		Width(m.width).
		Render(m.tabs[m.activeTab].View())
}

// renderFooter renders the footer with keybindings.
func (m Model) renderFooter() string {
	var tabBindings []string
	if m.hasActive() {
		tabBindings = m.tabs[m.activeTab].KeyBindings()
	}
	return renderFooter(tabBindings, m.width)
}

// ActiveTab returns the currently active tab index.
func (m Model) ActiveTab() int {
	return m.activeTab
}

// SetActiveTab sets the active tab by index.
func (m *Model) SetActiveTab(idx int) {
	if idx >= 0 && idx < len(m.tabs) {
		m.activeTab = idx
	}
}

// Error returns the last error.
func (m Model) Error() error {
	return m.err
}

// Home returns the user's home directory.
func (m Model) Home() string {
	return m.home
}

// Run starts the configurator on the terminal.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
