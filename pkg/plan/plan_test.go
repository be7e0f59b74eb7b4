package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/manifest"
)

func defaultManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Default()
	require.NoError(t, err)
	return m
}

func TestEvaluate_Selectors(t *testing.T) {
	m := defaultManifest(t)

	tests := []struct {
		selector agent.Selector
		want     []string
	}{
		{agent.SelectorAll, []string{"claude", "codex", "opencode", "pi"}},
		{agent.SelectorClaude, []string{"claude"}},
		{agent.SelectorCodex, []string{"codex"}},
		{agent.SelectorOpenCode, []string{"opencode"}},
		{agent.SelectorPi, []string{"pi"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.selector), func(t *testing.T) {
			p := Evaluate(m, tt.selector, "x86_64", Options{})
			assert.Equal(t, tt.want, p.Agents())
			assert.Empty(t, p.Warnings())

			for _, e := range p.Entries {
				if !e.Step.IsAgent() {
					assert.True(t, e.Runs(), "non-agent step %s should run", e.Step.Name)
				} else if !e.Runs() {
					assert.Equal(t, ReasonSelector, e.Reason)
				}
			}
		})
	}
}

func TestEvaluate_OpenCodeArchitecture(t *testing.T) {
	m := defaultManifest(t)

	tests := []struct {
		arch string
		runs bool
	}{
		{"x86_64", true},
		{"amd64", true},
		{"aarch64", false},
		{"arm64", false},
	}

	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			p := Evaluate(m, agent.SelectorOpenCode, tt.arch, Options{})
			e := p.Entry("opencode")
			require.NotNil(t, e)

			if tt.runs {
				assert.Equal(t, ActionRun, e.Action)
				assert.Empty(t, p.Warnings())
				return
			}
			assert.Equal(t, ActionSkip, e.Action)
			assert.Equal(t, ReasonArchitecture, e.Reason)
			require.Len(t, p.Warnings(), 1)
			assert.Contains(t, p.Warnings()[0], tt.arch)
		})
	}
}

func TestEvaluate_ArchSkipKeepsOtherAgents(t *testing.T) {
	p := Evaluate(defaultManifest(t), agent.SelectorAll, "aarch64", Options{})

	assert.Equal(t, []string{"claude", "codex", "pi"}, p.Agents())
	assert.Equal(t, 1, p.Summary().Warnings)
}

func TestEvaluate_DeclaredOrder(t *testing.T) {
	m := defaultManifest(t)
	p := Evaluate(m, agent.SelectorAll, "x86_64", Options{})

	assert.Equal(t, m.Names(), p.StepNames())
	summary := p.Summary()
	assert.Equal(t, len(m.Steps), summary.Run)
	assert.Zero(t, summary.Skipped)
}

func TestEvaluate_PhaseFilter(t *testing.T) {
	p := Evaluate(defaultManifest(t), agent.SelectorAll, "x86_64", Options{
		Phases: []manifest.Phase{manifest.PhaseBuildTools},
	})

	assert.Equal(t, []string{"maven", "gradle"}, p.StepNames())
	java := p.Entry("java")
	require.NotNil(t, java)
	assert.Equal(t, ReasonFiltered, java.Reason)
}

func TestEvaluate_OnlyFilter(t *testing.T) {
	p := Evaluate(defaultManifest(t), agent.SelectorClaude, "x86_64", Options{
		Only: []string{"codex", "claude"},
	})

	// Selector still applies inside the filter.
	assert.Equal(t, []string{"claude"}, p.StepNames())
	codex := p.Entry("codex")
	require.NotNil(t, codex)
	assert.Equal(t, ReasonSelector, codex.Reason)
	node := p.Entry("node")
	require.NotNil(t, node)
	assert.Equal(t, ReasonFiltered, node.Reason)
}

func TestPlan_EntryMissing(t *testing.T) {
	p := Evaluate(defaultManifest(t), agent.SelectorAll, "x86_64", Options{})
	assert.Nil(t, p.Entry("nope"))
}
