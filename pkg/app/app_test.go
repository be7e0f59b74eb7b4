package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

// mockTab is a simple Tab implementation for testing.
type mockTab struct {
	BaseTab
	content  string
	updates  []tea.Msg
	inputOn  bool
	blurred  int
	helpShow bool
}

func newMockTab(id TabID, content string) *mockTab {
	return &mockTab{
		BaseTab: NewBaseTab(id),
		content: content,
	}
}

func (t *mockTab) Init() tea.Cmd { return nil }
func (t *mockTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	t.updates = append(t.updates, msg)
	return t, nil
}
func (t *mockTab) View() string          { return t.content }
func (t *mockTab) Blur()                 { t.BaseTab.Blur(); t.blurred++ }
func (t *mockTab) KeyBindings() []string { return []string{"[x] mock"} }
func (t *mockTab) HasFocusedInput() bool { return t.inputOn }
func (t *mockTab) ToggleHelp()           { t.helpShow = !t.helpShow }

type pingMsg struct{}

func TestNew(t *testing.T) {
	m := New("/home/takopi")

	assert.Equal(t, "/home/takopi", m.Home())
	assert.Equal(t, 0, m.ActiveTab())
	assert.Empty(t, m.tabs)
	assert.False(t, m.quitting)
	assert.NoError(t, m.Error())
}

func TestModel_WithTabs(t *testing.T) {
	m := New("/home/takopi").WithTabs(
		newMockTab(TabAgents, ""),
		newMockTab(TabTakopi, ""),
	)

	assert.Len(t, m.tabs, 2)
	assert.Equal(t, "Takopi", m.tabs[1].Name())
	assert.Nil(t, m.Init())
}

func TestModel_Update_WindowSizeMsg(t *testing.T) {
	tab := newMockTab(TabAgents, "")
	m := New("/home/takopi").WithTabs(tab)

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	model := updated.(Model)

	assert.Equal(t, 100, model.width)
	assert.Equal(t, 50, model.height)
	assert.Equal(t, 100, tab.Width())
	assert.Equal(t, 50-headerHeight-footerHeight, tab.Height())
	assert.Nil(t, cmd)
}

func TestModel_Update_QuitKey(t *testing.T) {
	updated, cmd := New("/home/takopi").Update(keyMsg("q"))

	assert.True(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Update_FocusedInputSuspendsGlobalKeys(t *testing.T) {
	tab := newMockTab(TabPlugins, "")
	tab.inputOn = true
	m := New("/home/takopi").WithTabs(tab, newMockTab(TabPackages, ""))

	updated, _ := m.Update(keyMsg("q"))
	model := updated.(Model)
	assert.False(t, model.quitting)

	updated, _ = model.Update(keyMsg("2"))
	assert.Equal(t, 0, updated.(Model).ActiveTab())
	assert.Len(t, tab.updates, 2)

	updated, cmd := model.Update(specialKeyMsg(tea.KeyCtrlC))
	assert.True(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Update_TabSwitching(t *testing.T) {
	tab1 := newMockTab(TabAgents, "")
	tab2 := newMockTab(TabTakopi, "")
	tab3 := newMockTab(TabPlugins, "")
	m := New("/home/takopi").WithTabs(tab1, tab2, tab3)

	updated, _ := m.Update(keyMsg("2"))
	model := updated.(Model)
	assert.Equal(t, 1, model.ActiveTab())
	assert.True(t, tab2.IsFocused())
	assert.Equal(t, 1, tab1.blurred)

	updated, _ = model.Update(keyMsg("3"))
	model = updated.(Model)
	assert.Equal(t, 2, model.ActiveTab())

	updated, _ = model.Update(specialKeyMsg(tea.KeyShiftTab))
	model = updated.(Model)
	assert.Equal(t, 1, model.ActiveTab())

	updated, _ = model.Update(specialKeyMsg(tea.KeyTab))
	model = updated.(Model)
	updated, _ = model.Update(specialKeyMsg(tea.KeyTab))
	assert.Equal(t, 0, updated.(Model).ActiveTab())
}

func TestModel_Update_HelpToggles(t *testing.T) {
	tab := newMockTab(TabAgents, "")
	m := New("/home/takopi").WithTabs(tab)

	m.Update(keyMsg("?"))
	assert.True(t, tab.helpShow)
}

func TestModel_Update_BroadcastsAsyncMessages(t *testing.T) {
	tab1 := newMockTab(TabAgents, "")
	tab2 := newMockTab(TabTakopi, "")
	m := New("/home/takopi").WithTabs(tab1, tab2)

	m.Update(pingMsg{})

	assert.Equal(t, []tea.Msg{pingMsg{}}, tab1.updates)
	assert.Equal(t, []tea.Msg{pingMsg{}}, tab2.updates)
}

func TestModel_View(t *testing.T) {
	m := New("/home/takopi")
	assert.Equal(t, "Loading...", m.View())

	m = m.WithTabs(newMockTab(TabAgents, "agent table"))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := updated.(Model).View()

	assert.Contains(t, view, Title)
	assert.Contains(t, view, "agent table")
	assert.Contains(t, view, "mock")

	model := updated.(Model)
	model.quitting = true
	assert.Equal(t, "", model.View())
}

func TestModel_SetActiveTab(t *testing.T) {
	m := New("/home/takopi").WithTabs(
		newMockTab(TabAgents, ""),
		newMockTab(TabTakopi, ""),
	)

	m.SetActiveTab(1)
	assert.Equal(t, 1, m.ActiveTab())

	m.SetActiveTab(10)
	assert.Equal(t, 1, m.ActiveTab())

	m.SetActiveTab(-1)
	assert.Equal(t, 1, m.ActiveTab())
}

func TestModel_Error(t *testing.T) {
	updated, _ := New("/home/takopi").Update(assert.AnError)
	assert.ErrorIs(t, updated.(Model).Error(), assert.AnError)
}

func TestModel_SwitchTab_BoundsCheck(t *testing.T) {
	m := New("/home/takopi").WithTabs(newMockTab(TabAgents, ""))

	updated, cmd := m.switchTab(5)
	assert.Equal(t, 0, updated.(Model).ActiveTab())
	assert.Nil(t, cmd)

	updated, cmd = m.switchTab(-1)
	assert.Equal(t, 0, updated.(Model).ActiveTab())
	assert.Nil(t, cmd)
}

func TestModel_NoTabs(t *testing.T) {
	m := New("/home/takopi")
	m.width = 100
	m.height = 50

	assert.Contains(t, m.View(), Title)

	_, cmd := m.Update(specialKeyMsg(tea.KeyTab))
	assert.Nil(t, cmd)
	_, cmd = m.Update(keyMsg("j"))
	assert.Nil(t, cmd)
}
