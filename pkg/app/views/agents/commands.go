package agents

import (
	"os/exec"
	"strings"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/app"
)

// Exec tags used by this view.
const (
	tagInstall = "agents:install:"
	tagStart   = "agents:start:"
)

// InstallCommand returns the foreground process that installs or updates a.
func InstallCommand(a agent.Agent, home string) *exec.Cmd {
	cmd := app.Script(a.InstallCmd)
	cmd.Dir = home
	return cmd
}

// StartCommand returns the process that starts a interactively in home.
func StartCommand(a agent.Agent, home string) *exec.Cmd {
	cmd := exec.Command(a.Command)
	cmd.Dir = home
	return cmd
}

// agentFromTag returns the agent ID encoded in an exec tag with prefix.
func agentFromTag(tag, prefix string) (string, bool) {
	if !strings.HasPrefix(tag, prefix) {
		return "", false
	}
	return strings.TrimPrefix(tag, prefix), true
}
