// Package main provides the takopi-docker CLI, which provisions and starts
// the takopi Java development image.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set via -ldflags during build
var version = "dev"

func main() {
	rootCmd := newRootCmd()

	// Cobra handles error printing
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for takopi-docker
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "takopi-docker",
		Short: "Provisioning-plan executor for the takopi Java image",
		Long: `takopi-docker builds and starts the takopi Java development image.

It supports:
  - Evaluating the provisioning manifest for an AGENT selector and architecture
  - Running the plan phase by phase during docker build
  - Printing the composed runtime environment
  - Rendering the Dockerfile that drives the build
  - Reporting agent and toolchain status inside the container
  - An interactive configurator for agents, takopi, plugins and packages`,
		Version: version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.configureLogging()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.manifest, "manifest", "", "Path to a provisioning manifest (default: embedded Java recipe)")
	flags.StringVar(&opts.config, "config", "", "Path to the settings file (default: ~/.config/takopi-docker/config.yaml)")
	flags.StringArrayVar(&opts.buildArgs, "build-arg", nil, "Build argument as KEY=VALUE (repeatable)")
	flags.StringVar(&opts.argsFile, "args-file", "", "File of KEY=VALUE build arguments")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, off")

	rootCmd.AddCommand(
		newPlanCmd(opts),
		newProvisionCmd(opts),
		newEnvCmd(opts),
		newValidateCmd(opts),
		newStatusCmd(opts),
		newDockerfileCmd(opts),
		newConfigureCmd(opts),
		newEntrypointCmd(opts),
	)

	return rootCmd
}
