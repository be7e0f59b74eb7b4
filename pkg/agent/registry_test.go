package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_MatchesSelectors(t *testing.T) {
	// Every non-"all" selector must name exactly one agent.
	for _, sel := range Selectors() {
		if sel.IsAll() {
			continue
		}
		assert.True(t, IsKnown(sel.String()), "selector %s has no agent", sel)
	}
	assert.Len(t, All(), len(Selectors())-1)
}

func TestGet(t *testing.T) {
	a := Get("opencode")
	require.NotNil(t, a)
	assert.Equal(t, "OpenCode", a.Name)
	assert.Equal(t, "/home/takopi/.config/opencode", a.ConfigPath("/home/takopi"))

	assert.Nil(t, Get("gemini"))
}

func TestSelected(t *testing.T) {
	assert.Len(t, Selected(SelectorAll), 4)

	only := Selected(SelectorPi)
	require.Len(t, only, 1)
	assert.Equal(t, "pi", only[0].ID)
}

func TestAll_ReturnsCopy(t *testing.T) {
	agents := All()
	agents[0].Name = "changed"
	assert.NotEqual(t, "changed", Get(agents[0].ID).Name)
}
