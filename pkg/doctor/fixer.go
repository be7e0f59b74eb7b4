package doctor

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/zorro/takopi-docker/pkg/agent"
)

// provisionFix re-runs a single manifest step.
func provisionFix(step, what string) *FixCommand {
	return &FixCommand{
		Description: "Install " + what + " from the image manifest",
		Command:     "sudo takopi-docker provision --only " + step,
		Sudo:        true,
	}
}

var toolFixes = map[string]*FixCommand{
	IDJava:   provisionFix("java", "the JDK"),
	IDMaven:  provisionFix("maven", "Maven"),
	IDGradle: provisionFix("gradle", "Gradle"),
	IDNode:   provisionFix("node", "Node.js"),
	IDNpm:    provisionFix("node", "Node.js and npm"),
	IDUv:     provisionFix("uv", "uv"),
}

// GetFixCommand returns the fix command for a toolchain or agent ID, or nil.
func GetFixCommand(id string) *FixCommand {
	if fix, ok := toolFixes[id]; ok {
		return fix
	}
	if a := agent.Get(id); a != nil && a.InstallCmd != "" {
		return &FixCommand{
			Description: "Install " + a.Name,
			Command:     a.InstallCmd,
		}
	}
	return nil
}

// Fixer provides functionality to run fix commands.
type Fixer struct {
	executor CommandExecutor
	copy     func(string) error
}

// NewFixer creates a new Fixer.
func NewFixer() *Fixer {
	return NewFixerWithExecutor(&RealExecutor{})
}

// NewFixerWithExecutor creates a new Fixer with a custom executor.
func NewFixerWithExecutor(exec CommandExecutor) *Fixer {
	return &Fixer{
		executor: exec,
		copy:     clipboard.WriteAll,
	}
}

// WithClipboard replaces the clipboard writer.
func (f *Fixer) WithClipboard(write func(string) error) *Fixer {
	f.copy = write
	return f
}

// RunFix executes a fix command through the shell.
func (f *Fixer) RunFix(fix *FixCommand) error {
	if fix == nil {
		return fmt.Errorf("no fix command available")
	}

	output, err := f.executor.CombinedOutput("sh", "-c", fix.Command)
	if err != nil {
		return fmt.Errorf("fix failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// CopyToClipboard copies the fix command to the clipboard.
func (f *Fixer) CopyToClipboard(fix *FixCommand) error {
	if fix == nil {
		return fmt.Errorf("no fix command available")
	}
	if err := f.copy(fix.Command); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
