package app

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func specialKeyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	for name, b := range map[string]key.Binding{
		"quit": km.Quit, "help": km.Help, "next": km.NextTab, "prev": km.PrevTab,
		"tab1": km.Tab1, "tab2": km.Tab2, "tab3": km.Tab3, "tab4": km.Tab4,
		"up": km.Up, "down": km.Down, "enter": km.Enter, "escape": km.Escape,
	} {
		assert.NotEmpty(t, b.Keys(), name)
	}
	assert.Equal(t, keys, Keys())
}

func TestKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, key.Matches(keyMsg("q"), km.Quit))
	assert.True(t, key.Matches(specialKeyMsg(tea.KeyCtrlC), km.Quit))
	assert.True(t, key.Matches(keyMsg("1"), km.Tab1))
	assert.True(t, key.Matches(keyMsg("4"), km.Tab4))
	assert.True(t, key.Matches(specialKeyMsg(tea.KeyUp), km.Up))
	assert.True(t, key.Matches(keyMsg("j"), km.Down))
	assert.True(t, key.Matches(specialKeyMsg(tea.KeyShiftTab), km.PrevTab))
	assert.Equal(t, "Packages", km.Tab4.Help().Desc)
}

func TestAgentsKeyMap(t *testing.T) {
	km := DefaultAgentsKeyMap()

	assert.True(t, key.Matches(keyMsg("i"), km.Install))
	assert.True(t, key.Matches(keyMsg("s"), km.Start))
	assert.True(t, key.Matches(specialKeyMsg(tea.KeyEnter), km.Start))
	assert.True(t, key.Matches(keyMsg("c"), km.Copy))
	assert.True(t, key.Matches(keyMsg("r"), km.Refresh))
}

func TestTakopiKeyMap(t *testing.T) {
	km := DefaultTakopiKeyMap()

	assert.True(t, key.Matches(keyMsg("w"), km.Wizard))
	assert.True(t, key.Matches(keyMsg("t"), km.Ping))
	assert.True(t, key.Matches(keyMsg("r"), km.Reload))
}
