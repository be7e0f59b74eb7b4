// Package plugins provides the view for installing takopi plugins with uv.
package plugins

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zorro/takopi-docker/pkg/app"
)

const tagInstall = "plugins:install"

// Model is the plugins view model.
type Model struct {
	app.BaseTab

	input   textinput.Model
	tempDir string
	workDir string // clone directory of the running install, removed when it ends
	pending string

	run func(tag string, cmd *exec.Cmd) tea.Cmd

	message string
	isErr   bool
}

// New creates the plugins view.
func New() *Model {
	ti := textinput.New()
	ti.Placeholder = "takopi-plugin or https://github.com/org/plugin.git"
	ti.CharLimit = 256
	ti.Width = 60
	ti.Prompt = "> "

	return &Model{
		BaseTab: app.NewBaseTab(app.TabPlugins),
		input:   ti,
		tempDir: os.TempDir(),
		run:     app.Exec,
	}
}

// Init implements app.Tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.input.Focused() {
			if msg.Type == tea.KeyEnter || msg.String() == "/" {
				return m, m.input.Focus()
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			return m.install()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case app.ExecDoneMsg:
		if msg.Tag != tagInstall {
			return m, nil
		}
		if m.workDir != "" {
			_ = os.RemoveAll(m.workDir)
			m.workDir = ""
		}
		if msg.Err != nil {
			m.setMessage(fmt.Sprintf("Failed to install %s: %v", m.pending, msg.Err), true)
		} else {
			m.setMessage(m.pending+" installed successfully", false)
			m.input.SetValue("")
		}
		m.pending = ""
	}
	return m, nil
}

func (m *Model) install() (app.Tab, tea.Cmd) {
	spec := m.input.Value()

	workDir, err := os.MkdirTemp(m.tempDir, "takopi-plugin-*")
	if err != nil {
		m.setMessage(fmt.Sprintf("Failed to create work directory: %v", err), true)
		return m, nil
	}

	script, source, err := InstallScript(spec, workDir)
	if err != nil {
		_ = os.RemoveAll(workDir)
		m.setMessage(err.Error(), true)
		return m, nil
	}

	m.workDir = workDir
	m.pending = spec
	m.input.Blur()
	m.setMessage(fmt.Sprintf("Installing %s from %s...", spec, source), false)
	return m, m.run(tagInstall, app.Script(script))
}

func (m *Model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.isErr = isErr
}

// View renders the plugin form.
func (m *Model) View() string {
	if m.Width() == 0 {
		return "Loading..."
	}

	help := app.DimStyle.Render(
		"  Enter a PyPI package name or a git URL (http://, https://, git://).\n" +
			"  Plugins are installed with uv tool install -U.")

	return lipgloss.JoinVertical(lipgloss.Left,
		app.TitleStyle.Render("Plugins"),
		"",
		help,
		"",
		"  "+m.input.View(),
		app.RenderMessage(m.message, m.isErr),
	)
}

// Focus implements app.Tab.
func (m *Model) Focus() tea.Cmd {
	return m.BaseTab.Focus()
}

// Blur implements app.Tab.
func (m *Model) Blur() {
	m.BaseTab.Blur()
	m.input.Blur()
}

// HasFocusedInput reports whether the text input is focused.
func (m *Model) HasFocusedInput() bool {
	return m.input.Focused()
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	if m.input.Focused() {
		return []string{"[Enter] install", "[Esc] leave input"}
	}
	return []string{"[Enter] edit"}
}
