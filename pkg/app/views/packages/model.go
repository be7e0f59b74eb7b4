// Package packages provides the view for installing system packages with apt.
package packages

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zorro/takopi-docker/pkg/app"
)

const (
	tagInstall = "packages:install"
	tagSearch  = "packages:search"
)

type field int

const (
	fieldNone field = iota
	fieldInstall
	fieldSearch
)

// KeyMap defines the bindings of the packages view.
type KeyMap struct {
	Install key.Binding
	Search  key.Binding
}

var keys = KeyMap{
	Install: key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i", "install packages")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
}

// Model is the packages view model.
type Model struct {
	app.BaseTab

	install textinput.Model
	search  textinput.Model
	active  field

	run func(tag string, cmd *exec.Cmd) tea.Cmd

	pending []string
	message string
	isErr   bool
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Width = 60
	ti.Prompt = "> "
	return ti
}

// New creates the packages view.
func New() *Model {
	return &Model{
		BaseTab: app.NewBaseTab(app.TabPackages),
		install: newInput("htop, ripgrep, tmux"),
		search:  newInput("postgresql client"),
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
		if m.active == fieldNone {
			switch {
			case key.Matches(msg, keys.Install):
				return m, m.focus(fieldInstall)
			case key.Matches(msg, keys.Search):
				return m, m.focus(fieldSearch)
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.focus(fieldNone)
			return m, nil
		case tea.KeyEnter:
			if m.active == fieldSearch {
				return m.runSearch()
			}
			return m.runInstall()
		}
		var cmd tea.Cmd
		if m.active == fieldSearch {
			m.search, cmd = m.search.Update(msg)
		} else {
			m.install, cmd = m.install.Update(msg)
		}
		return m, cmd

	case app.ExecDoneMsg:
		switch msg.Tag {
		case tagInstall:
			if msg.Err != nil {
				m.setMessage(fmt.Sprintf("Installation failed: %v", msg.Err), true)
			} else {
				m.setMessage("Installed "+strings.Join(m.pending, ", "), false)
				m.install.SetValue("")
			}
			m.pending = nil
		case tagSearch:
			if msg.Err != nil {
				m.setMessage(fmt.Sprintf("Search failed: %v", msg.Err), true)
			}
		}
	}
	return m, nil
}

func (m *Model) focus(f field) tea.Cmd {
	m.active = f
	m.install.Blur()
	m.search.Blur()
	switch f {
	case fieldInstall:
		return m.install.Focus()
	case fieldSearch:
		return m.search.Focus()
	}
	return nil
}

func (m *Model) runInstall() (app.Tab, tea.Cmd) {
	script, pkgs, err := InstallScript(m.install.Value())
	if err != nil {
		m.setMessage(err.Error(), true)
		return m, nil
	}
	m.pending = pkgs
	m.focus(fieldNone)
	m.setMessage("Installing "+strings.Join(pkgs, ", ")+"...", false)
	return m, m.run(tagInstall, app.Script(script))
}

func (m *Model) runSearch() (app.Tab, tea.Cmd) {
	script, err := SearchScript(m.search.Value())
	if err != nil {
		m.setMessage(err.Error(), true)
		return m, nil
	}
	m.focus(fieldNone)
	m.setMessage("", false)
	return m, m.run(tagSearch, app.Script(script))
}

func (m *Model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.isErr = isErr
}

// View renders the package forms.
func (m *Model) View() string {
	if m.Width() == 0 {
		return "Loading..."
	}

	label := func(s string, f field) string {
		if m.active == f {
			return app.AccentStyle.Render(s)
		}
		return app.BoldStyle.Render(s)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		app.TitleStyle.Render("System packages"),
		"",
		"  "+label("Install (comma-separated)", fieldInstall),
		"  "+m.install.View(),
		"",
		"  "+label("Search apt", fieldSearch),
		"  "+m.search.View(),
		app.RenderMessage(m.message, m.isErr),
	)
}

// Blur implements app.Tab.
func (m *Model) Blur() {
	m.BaseTab.Blur()
	m.focus(fieldNone)
}

// HasFocusedInput reports whether one of the text inputs is focused.
func (m *Model) HasFocusedInput() bool {
	return m.active != fieldNone
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	if m.active != fieldNone {
		return []string{"[Enter] run", "[Esc] leave input"}
	}
	return app.BindingStrings(keys.Install, keys.Search)
}
