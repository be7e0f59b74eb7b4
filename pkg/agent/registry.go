package agent

import (
	"path/filepath"
)

// Agent describes a supported coding-agent CLI.
type Agent struct {
	ID          string   // Selector value and marker suffix, e.g. "claude"
	Name        string   // Display name
	Description string   // One-line description
	Command     string   // Executable name
	CheckArgs   []string // Arguments that print the version
	InstallCmd  string   // Shell command that installs or updates the agent
	ConfigDir   string   // Config directory relative to the user's home
}

// registry lists agents in display order.
var registry = []Agent{
	{
		ID:          "claude",
		Name:        "Claude Code",
		Description: "Anthropic's AI coding assistant",
		Command:     "claude",
		CheckArgs:   []string{"--version"},
		InstallCmd:  "curl -fsSL https://claude.ai/install.sh | bash",
		ConfigDir:   ".claude",
	},
	{
		ID:          "codex",
		Name:        "Codex",
		Description: "OpenAI's coding assistant CLI",
		Command:     "codex",
		CheckArgs:   []string{"--version"},
		InstallCmd:  "npm install -g @openai/codex",
		ConfigDir:   ".codex",
	},
	{
		ID:          "opencode",
		Name:        "OpenCode",
		Description: "Open source AI coding agent",
		Command:     "opencode",
		CheckArgs:   []string{"--version"},
		InstallCmd:  "curl -fsSL https://opencode.ai/install | bash",
		ConfigDir:   filepath.Join(".config", "opencode"),
	},
	{
		ID:          "pi",
		Name:        "Pi",
		Description: "Multi-provider AI coding agent",
		Command:     "pi",
		CheckArgs:   []string{"--version"},
		InstallCmd:  "npm install -g @mariozechner/pi-coding-agent",
		ConfigDir:   ".pi",
	},
}

// All returns a copy of the agent registry.
func All() []Agent {
	out := make([]Agent, len(registry))
	copy(out, registry)
	return out
}

// Get returns the agent with the given ID, or nil if unknown.
func Get(id string) *Agent {
	for i := range registry {
		if registry[i].ID == id {
			a := registry[i]
			return &a
		}
	}
	return nil
}

// IsKnown reports whether id names a registered agent.
func IsKnown(id string) bool {
	return Get(id) != nil
}

// IDs returns the IDs of all registered agents.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for _, a := range registry {
		ids = append(ids, a.ID)
	}
	return ids
}

// Selected returns the agents matched by the selector.
func Selected(sel Selector) []Agent {
	var out []Agent
	for _, a := range registry {
		if sel.Matches(a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// ConfigPath returns the agent's config directory under home.
func (a Agent) ConfigPath(home string) string {
	return filepath.Join(home, a.ConfigDir)
}
