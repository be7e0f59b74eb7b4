package main

import (
	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/environment"
)

func newEnvCmd(opts *globalOptions) *cobra.Command {
	var (
		flags    planFlags
		format   string
		basePath string
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the composed runtime environment",
		Long: `Compose the environment variables and PATH contributed by every step the
plan runs, without executing anything.

Formats: dotenv, shell (export lines), json, dockerfile (ENV instruction).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := environment.ParseFormat(format)
			if err != nil {
				return err
			}
			rc, p, err := flags.evaluate(opts)
			if err != nil {
				return err
			}
			d := environment.FromPlan(p, rc.seeds(), basePath)
			return d.Render(cmd.OutOrStdout(), f)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(environment.FormatDotenv), "Output format: dotenv, shell, json, dockerfile")
	cmd.Flags().StringVar(&basePath, "base-path", environment.DefaultBasePath, "Search path placed after every contributed entry")
	return cmd
}
