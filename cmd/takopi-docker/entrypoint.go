package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/zorro/takopi-docker/pkg/doctor"
)

// Replaced in tests.
var (
	execProcess = unix.Exec
	isTerminal  = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	}
	configure = runConfigure
)

// userDirs are created under the home directory on container start. Mounted
// volumes may hide the ones created at build time.
var userDirs = []string{
	filepath.Join(".local", "bin"),
	filepath.Join(".local", "share"),
	".config",
	".takopi",
}

func newEntrypointCmd(opts *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "entrypoint [command [args...]]",
		Short: "Container entrypoint",
		Long: `Prepare the user's directories, print the agent status banner and replace
this process with the given command. Without a command the configurator is
launched when a terminal is attached; otherwise the entrypoint exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := opts.load()
			if err != nil {
				return err
			}
			home := homeDir(rc.manifest.Image.Home)

			for _, dir := range append(userDirs, rc.manifest.Image.MarkerDir) {
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(home, dir)
				}
				if err := os.MkdirAll(dir, 0755); err != nil {
					rc.log.Warn().Err(err).Str("dir", dir).Msg("failed to create directory")
				}
			}

			if !quiet {
				checker := doctor.NewChecker(home, rc.markers())
				printBanner(cmd.ErrOrStderr(), rc, checker.CheckAgentsAsync())
			}

			if len(args) > 0 {
				path, err := exec.LookPath(args[0])
				if err != nil {
					return fmt.Errorf("command not found: %s", args[0])
				}
				rc.log.Debug().Str("path", path).Strs("args", args).Msg("exec")
				return execProcess(path, args, os.Environ())
			}

			if isTerminal() {
				return configure(rc)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "No command given and no terminal attached; exiting.")
			return nil
		},
	}

	// Everything after the first positional argument belongs to the command.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip the status banner")
	return cmd
}

func printBanner(w io.Writer, rc *runContext, statuses []doctor.AgentStatus) {
	fmt.Fprintf(w, "%s (takopi-docker %s, AGENT=%s)\n", rc.manifest.Image.Name, version, rc.selector)
	printAgents(w, statuses)
	fmt.Fprintln(w)
}
