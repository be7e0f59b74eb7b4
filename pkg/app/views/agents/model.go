// Package agents provides the agent status and installation view.
package agents

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/app"
	"github.com/zorro/takopi-docker/pkg/doctor"
	"github.com/zorro/takopi-docker/pkg/marker"
	"github.com/zorro/takopi-docker/pkg/utils"
)

type (
	statusLoadedMsg struct {
		statuses []doctor.AgentStatus
	}

	clipboardResultMsg struct {
		agent string
		err   error
	}
)

// Model is the agents view model.
type Model struct {
	app.BaseTab

	checker *doctor.Checker
	fixer   *doctor.Fixer
	markers *marker.Store
	home    string
	keys    app.AgentsKeyMap
	now     func() time.Time

	// run starts a foreground process; replaced in tests.
	run func(tag string, cmd *exec.Cmd) tea.Cmd

	statuses []doctor.AgentStatus
	cursor   int
	loading  bool
	showHelp bool
	spinner  spinner.Model
	message  string
	isErr    bool
}

// New creates the agents view for the user whose home is home.
func New(home string, markers *marker.Store) *Model {
	return NewWithChecker(doctor.NewChecker(home, markers), doctor.NewFixer(), home, markers)
}

// NewWithChecker creates the agents view with custom dependencies (for testing).
func NewWithChecker(checker *doctor.Checker, fixer *doctor.Fixer, home string, markers *marker.Store) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = app.SpinnerStyle

	return &Model{
		BaseTab: app.NewBaseTab(app.TabAgents),
		checker: checker,
		fixer:   fixer,
		markers: markers,
		home:    home,
		keys:    app.DefaultAgentsKeyMap(),
		now:     time.Now,
		run:     app.Exec,
		spinner: s,
		loading: true,
	}
}

// Init starts the first status check.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadStatus())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusLoadedMsg:
		m.loading = false
		m.statuses = msg.statuses
		if m.cursor >= len(m.statuses) {
			m.cursor = 0
		}

	case clipboardResultMsg:
		if msg.err != nil {
			m.setMessage(fmt.Sprintf("Copy failed: %v", msg.err), true)
		} else {
			m.setMessage("Install command for "+msg.agent+" copied to clipboard", false)
		}

	case app.ExecDoneMsg:
		return m.handleExecDone(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	keys := app.Keys()
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.statuses)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Install):
		return m.install()
	case key.Matches(msg, m.keys.Start):
		return m.start()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyInstallCommand()
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.message = ""
		return m, tea.Batch(m.spinner.Tick, m.loadStatus())
	}
	return m, nil
}

// selected returns the agent under the cursor.
func (m *Model) selected() (agent.Agent, doctor.AgentStatus, bool) {
	if m.cursor < 0 || m.cursor >= len(m.statuses) {
		return agent.Agent{}, doctor.AgentStatus{}, false
	}
	s := m.statuses[m.cursor]
	a := agent.Get(s.Agent)
	if a == nil {
		return agent.Agent{}, s, false
	}
	return *a, s, true
}

func (m *Model) install() (app.Tab, tea.Cmd) {
	a, _, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.setMessage("Installing "+a.Name+"...", false)
	return m, m.run(tagInstall+a.ID, InstallCommand(a, m.home))
}

func (m *Model) start() (app.Tab, tea.Cmd) {
	a, status, ok := m.selected()
	if !ok {
		return m, nil
	}
	if !status.Installed {
		m.setMessage(a.Name+" is not installed. Press i to install it.", true)
		return m, nil
	}
	return m, m.run(tagStart+a.ID, StartCommand(a, m.home))
}

func (m *Model) copyInstallCommand() tea.Cmd {
	a, _, ok := m.selected()
	if !ok {
		return nil
	}
	fix := doctor.GetFixCommand(a.ID)
	return func() tea.Msg {
		return clipboardResultMsg{agent: a.Name, err: m.fixer.CopyToClipboard(fix)}
	}
}

func (m *Model) handleExecDone(msg app.ExecDoneMsg) (app.Tab, tea.Cmd) {
	if id, ok := agentFromTag(msg.Tag, tagInstall); ok {
		if msg.Err != nil {
			m.setMessage(fmt.Sprintf("Failed to install %s: %v", id, msg.Err), true)
			return m, m.loadStatus()
		}
		if m.markers != nil {
			if _, err := m.markers.Touch(id, m.now()); err != nil {
				m.setMessage(fmt.Sprintf("%s installed, but the update marker could not be written: %v", id, err), true)
				return m, m.loadStatus()
			}
		}
		m.setMessage(id+" installed successfully", false)
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadStatus())
	}

	if id, ok := agentFromTag(msg.Tag, tagStart); ok && msg.Err != nil {
		m.setMessage(fmt.Sprintf("%s exited: %v", id, msg.Err), true)
	}
	return m, nil
}

func (m *Model) loadStatus() tea.Cmd {
	return func() tea.Msg {
		return statusLoadedMsg{statuses: m.checker.CheckAgentsAsync()}
	}
}

func (m *Model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.isErr = isErr
}

// ToggleHelp shows or hides agent descriptions.
func (m *Model) ToggleHelp() {
	m.showHelp = !m.showHelp
}

// View renders the agent table.
func (m *Model) View() string {
	if m.Width() == 0 {
		return "Loading..."
	}

	title := app.TitleStyle.Render("Coding Agents")
	if m.loading {
		title += " " + m.spinner.View()
	}

	var body string
	if m.loading && len(m.statuses) == 0 {
		body = fmt.Sprintf("\n  %s Checking agents...\n", m.spinner.View())
	} else {
		body = m.renderTable()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body, app.RenderMessage(m.message, m.isErr))
}

// StatusLabel returns the status column text for s.
func StatusLabel(s doctor.AgentStatus) string {
	switch {
	case !s.Installed:
		return app.StatusMissing
	case !s.Configured:
		return app.StatusUnconfigured
	default:
		return app.StatusInstalled
	}
}

func (m *Model) renderTable() string {
	header := fmt.Sprintf("    %-14s %-16s %-12s %-28s %s", "AGENT", "STATUS", "VERSION", "CONFIG", "UPDATED")
	lines := []string{"", app.TableHeaderStyle.Render(header)}

	for i, s := range m.statuses {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		version := s.Version
		if version == "" {
			version = "-"
		}
		updated := "never"
		if !s.LastUpdated.IsZero() {
			updated = utils.FormatTimeAgo(s.LastUpdated)
		}

		label := StatusLabel(s)
		status := app.RenderStatus(label) + strings.Repeat(" ", max(0, 16-len(label)))
		line := fmt.Sprintf("  %s%-14s %s %-12s %-28s %s", cursor, s.Name, status, version, s.ConfigDir, updated)
		if i == m.cursor {
			line = app.SelectedRowStyle.Render(line)
		}
		lines = append(lines, line)

		if m.showHelp {
			if a := agent.Get(s.Agent); a != nil {
				lines = append(lines, app.DimStyle.Render("      "+a.Description))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Focus refreshes the status when the tab becomes active.
func (m *Model) Focus() tea.Cmd {
	m.BaseTab.Focus()
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.loadStatus())
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	return append([]string{"[↑/↓] navigate"},
		app.BindingStrings(m.keys.Install, m.keys.Start, m.keys.Copy, m.keys.Refresh)...)
}
