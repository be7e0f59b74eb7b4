package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/environment"
	"github.com/zorro/takopi-docker/pkg/logging"
	"github.com/zorro/takopi-docker/pkg/metrics"
	"github.com/zorro/takopi-docker/pkg/provision"
	"github.com/zorro/takopi-docker/pkg/state"
)

func newProvisionCmd(opts *globalOptions) *cobra.Command {
	var (
		flags       planFlags
		dryRun      bool
		metricsFile string
		stateFile   string
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Execute the provisioning plan",
		Long: `Run every applicable step in declared order, stopping at the first failure.
On success the composed environment is printed in dotenv format.

During docker build this runs once per phase:
  takopi-docker provision --phase system --agent ${AGENT}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, p, err := flags.evaluate(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pm := metrics.New(nil)
			exec := provision.NewExecutor(rc.markers())
			exec.Logger = logging.Logger("provision")
			exec.Metrics = pm
			exec.DryRun = dryRun
			exec.Seeds = rc.seeds()

			report, runErr := exec.Run(ctx, p)

			if report != nil && !dryRun {
				store := rc.stateStore(stateFile)
				if exec.Root {
					if uid, gid, err := exec.LookupOwner(rc.manifest.Image.User); err == nil {
						store.SetOwner(uid, gid)
					} else {
						rc.log.Warn().Err(err).Str("user", rc.manifest.Image.User).Msg("state file stays owned by root")
					}
				}
				if err := store.Record(state.FromReport(report)); err != nil {
					rc.log.Warn().Err(err).Str("path", store.Path()).Msg("failed to record run")
				}
			}

			if metricsFile == "" {
				metricsFile = rc.settings.MetricsFile
			}
			if metricsFile != "" {
				if err := pm.WriteTextfile(metricsFile); err != nil {
					rc.log.Warn().Err(err).Str("path", metricsFile).Msg("failed to write metrics")
				}
			}

			if runErr != nil {
				return describeFailure(runErr)
			}

			return report.Env.Render(cmd.OutOrStdout(), environment.FormatDotenv)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log every action without executing it")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "Run record path (default: <marker_dir>/provision.json)")
	return cmd
}

// describeFailure adds a hint for the failure kind.
func describeFailure(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("provisioning interrupted: %w", err)
	case errors.Is(err, provision.ErrNetwork):
		return fmt.Errorf("%w (check network access and the download URL)", err)
	case errors.Is(err, provision.ErrExtract):
		return fmt.Errorf("%w (check the archive layout and the strip directory)", err)
	}
	return err
}
