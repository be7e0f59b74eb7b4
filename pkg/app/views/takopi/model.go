// Package takopi provides the view for the takopi bridge configuration.
package takopi

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zorro/takopi-docker/pkg/app"
)

type configLoadedMsg struct {
	config Config
}

// Model is the takopi view model.
type Model struct {
	app.BaseTab

	home   string
	keys   app.TakopiKeyMap
	config Config
	loaded bool
	raw    viewport.Model

	run func(tag string, cmd *exec.Cmd) tea.Cmd

	message string
	isErr   bool
}

// New creates the takopi view for the user whose home is home.
func New(home string) *Model {
	return &Model{
		BaseTab: app.NewBaseTab(app.TabTakopi),
		home:    home,
		keys:    app.DefaultTakopiKeyMap(),
		raw:     viewport.New(0, 0),
		run:     app.Exec,
	}
}

// Init loads the config.
func (m *Model) Init() tea.Cmd {
	return m.loadConfig()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Wizard):
			m.setMessage("Launching takopi wizard...", false)
			return m, m.run(tagWizard, WizardCommand(m.home))
		case key.Matches(msg, m.keys.Ping):
			m.setMessage("Testing takopi connection...", false)
			return m, m.run(tagPing, PingCommand(m.home))
		case key.Matches(msg, m.keys.Reload):
			m.message = ""
			return m, m.loadConfig()
		}
		var cmd tea.Cmd
		m.raw, cmd = m.raw.Update(msg)
		return m, cmd

	case configLoadedMsg:
		m.config = msg.config
		m.loaded = true
		m.raw.SetContent(m.config.Raw)

	case app.ExecDoneMsg:
		switch msg.Tag {
		case tagWizard:
			if msg.Err != nil {
				m.setMessage(fmt.Sprintf("takopi wizard failed: %v", msg.Err), true)
			} else {
				m.setMessage("takopi wizard finished", false)
			}
			return m, m.loadConfig()
		case tagPing:
			if msg.Err != nil {
				m.setMessage(fmt.Sprintf("Connection failed: %v", msg.Err), true)
			} else {
				m.setMessage("Connection successful!", false)
			}
		}
	}
	return m, nil
}

func (m *Model) loadConfig() tea.Cmd {
	path := ConfigPath(m.home)
	return func() tea.Msg {
		return configLoadedMsg{config: LoadConfig(path)}
	}
}

func (m *Model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.isErr = isErr
}

// View renders the config summary and its contents.
func (m *Model) View() string {
	if m.Width() == 0 {
		return "Loading..."
	}

	lines := []string{app.TitleStyle.Render("Takopi Configuration"), ""}
	switch {
	case !m.loaded:
		lines = append(lines, "  Reading config...")
	case m.config.Err != nil:
		lines = append(lines,
			"  "+app.AccentStyle.Render(m.config.Path),
			"  "+app.ErrorStyle.Render(m.config.Err.Error()))
	case !m.config.Exists:
		lines = append(lines,
			"  "+app.WarningStyle.Render("No configuration found"),
			"  "+app.DimStyle.Render("Press w to run the takopi wizard."))
	default:
		lines = append(lines, "  "+app.SuccessStyle.Render("Config found: ")+m.config.Path)
		if len(m.config.Keys) > 0 {
			lines = append(lines, "  Keys:     "+strings.Join(m.config.Keys, ", "))
		}
		if len(m.config.Sections) > 0 {
			lines = append(lines, "  Sections: "+strings.Join(m.config.Sections, ", "))
		}
		lines = append(lines, "", m.raw.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n"), app.RenderMessage(m.message, m.isErr))
}

// SetSize sizes the config viewport below the summary lines.
func (m *Model) SetSize(width, height int) {
	m.BaseTab.SetSize(width, height)
	m.raw.Width = width - 4
	m.raw.Height = max(0, height-8)
}

// Focus reloads the config when the tab becomes active.
func (m *Model) Focus() tea.Cmd {
	m.BaseTab.Focus()
	return m.loadConfig()
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	return app.BindingStrings(m.keys.Wizard, m.keys.Ping, m.keys.Reload)
}
