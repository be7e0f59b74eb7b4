// Package doctor reports which coding agents and toolchains are present in
// the image and how to install the missing ones.
package doctor

import (
	"fmt"
	"time"
)

// CheckStatus represents the status of a check.
type CheckStatus int

const (
	// StatusOK indicates the tool is installed and working.
	StatusOK CheckStatus = iota
	// StatusMissing indicates the tool is not installed.
	StatusMissing
	// StatusError indicates an error occurred during the check.
	StatusError
	// StatusWarning indicates the tool is installed but not ready to use.
	StatusWarning
)

// String returns the string representation of the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusError:
		return "error"
	case StatusWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	for _, st := range []CheckStatus{StatusOK, StatusMissing, StatusError, StatusWarning} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown check status %q", text)
}

// Check represents a single check result.
type Check struct {
	ID          string      `json:"id"`                    // Unique identifier, e.g. "java", "claude"
	Name        string      `json:"name"`                  // Display name
	Description string      `json:"description,omitempty"` // What this tool does
	Status      CheckStatus `json:"status"`                // Current status
	Message     string      `json:"message,omitempty"`     // Status message (version info, error, etc.)
	FixCommand  *FixCommand `json:"fix,omitempty"`         // How to fix if missing (nil if not fixable)
}

// FixCommand describes how to install a missing tool.
type FixCommand struct {
	Description string `json:"description"` // Human-readable description of what the fix does
	Command     string `json:"command"`     // Shell command to run
	Sudo        bool   `json:"sudo"`        // Whether the command requires sudo
}

// CheckGroup represents a group of related checks.
type CheckGroup struct {
	ID          string
	Name        string
	Description string
	Checks      []Check
}

// AgentStatus is the installation state of one coding agent.
type AgentStatus struct {
	Agent       string    `json:"agent"`
	Name        string    `json:"name"`
	Installed   bool      `json:"installed"`
	Version     string    `json:"version,omitempty"`
	ConfigDir   string    `json:"config_dir"`
	Configured  bool      `json:"configured"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Group IDs.
const (
	GroupAgents    = "agents"
	GroupToolchain = "toolchain"
)

// Toolchain check IDs. Each ID is also the executable name.
const (
	IDJava   = "java"
	IDMaven  = "mvn"
	IDGradle = "gradle"
	IDNode   = "node"
	IDNpm    = "npm"
	IDUv     = "uv"
)
