package app

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// TabID identifies a configurator tab. The ID also fixes the tab's position
// and its number key.
type TabID int

const (
	TabAgents TabID = iota
	TabTakopi
	TabPlugins
	TabPackages
)

var tabNames = [...]string{
	TabAgents:   "Agents",
	TabTakopi:   "Takopi",
	TabPlugins:  "Plugins",
	TabPackages: "Packages",
}

// String returns the tab's display name.
func (id TabID) String() string {
	if id < 0 || int(id) >= len(tabNames) {
		return "Tab " + strconv.Itoa(int(id))
	}
	return tabNames[id]
}

// ShortKey returns the number key that selects the tab.
func (id TabID) ShortKey() string {
	return strconv.Itoa(int(id) + 1)
}

// Tab is a configurator view.
type Tab interface {
	ID() TabID
	Name() string
	ShortKey() string

	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string

	// Focus is called when the tab becomes active.
	Focus() tea.Cmd
	// Blur is called when the tab becomes inactive.
	Blur()

	SetSize(width, height int)

	// KeyBindings returns the footer hints for the tab's current state.
	KeyBindings() []string

	// HasFocusedInput reports whether a text input has focus. While true
	// the app does not intercept alphanumeric keys.
	HasFocusedInput() bool
}

// BaseTab holds the identity, size and focus state shared by every view.
type BaseTab struct {
	id      TabID
	width   int
	height  int
	focused bool
}

// NewBaseTab creates the base for tab id.
func NewBaseTab(id TabID) BaseTab {
	return BaseTab{id: id}
}

func (t BaseTab) ID() TabID        { return t.id }
func (t BaseTab) Name() string     { return t.id.String() }
func (t BaseTab) ShortKey() string { return t.id.ShortKey() }
func (t BaseTab) Width() int       { return t.width }
func (t BaseTab) Height() int      { return t.height }
func (t BaseTab) IsFocused() bool  { return t.focused }

// SetSize sets the content area available to the tab.
func (t *BaseTab) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Focus marks the tab as active.
func (t *BaseTab) Focus() tea.Cmd {
	t.focused = true
	return nil
}

// Blur marks the tab as inactive.
func (t *BaseTab) Blur() {
	t.focused = false
}

// HasFocusedInput is false for views without text inputs.
func (t BaseTab) HasFocusedInput() bool {
	return false
}
