package app

import (
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

// pauseSuffix keeps a command's output on screen until the user presses
// Enter, then exits with the command's status.
const pauseSuffix = `
status=$?
printf '\nPress Enter to continue...'
read -r _
exit $status`

// ExecDoneMsg reports the end of a foreground command started with Exec.
type ExecDoneMsg struct {
	Tag string
	Err error
}

// Script returns a bash process running script followed by a pause.
func Script(script string) *exec.Cmd {
	return exec.Command("bash", "-c", script+pauseSuffix)
}

// Exec suspends the program, runs cmd attached to the terminal and reports
// completion as an ExecDoneMsg carrying tag.
func Exec(tag string, cmd *exec.Cmd) tea.Cmd {
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return ExecDoneMsg{Tag: tag, Err: err}
	})
}
