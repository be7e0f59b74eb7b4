package main

import (
	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/app"
	"github.com/zorro/takopi-docker/pkg/app/views/agents"
	"github.com/zorro/takopi-docker/pkg/app/views/packages"
	"github.com/zorro/takopi-docker/pkg/app/views/plugins"
	"github.com/zorro/takopi-docker/pkg/app/views/takopi"
)

func newConfigureCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Launch the interactive configurator",
		Long: `Launch the terminal UI for managing the container:
  1. Agents    install, update and start coding agents
  2. Takopi    inspect takopi.toml, run the setup wizard, test the connection
  3. Plugins   install takopi plugins from PyPI or git
  4. Packages  install and search apt packages`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rc, err := opts.load()
			if err != nil {
				return err
			}
			return runConfigure(rc)
		},
	}
}

// runConfigure runs the configurator until the user quits.
func runConfigure(rc *runContext) error {
	home := homeDir(rc.manifest.Image.Home)
	markers := rc.markers()

	model := app.New(home).WithTabs(
		agents.New(home, markers),
		takopi.New(home),
		plugins.New(),
		packages.New(),
	)
	return app.Run(model)
}
