package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/doctor"
	"github.com/zorro/takopi-docker/pkg/state"
	"github.com/zorro/takopi-docker/pkg/utils"
)

// statusReport is the JSON form of the status command.
type statusReport struct {
	Agents    []doctor.AgentStatus `json:"agents"`
	Toolchain []doctor.Check       `json:"toolchain"`
	LastRun   *state.Run           `json:"last_run,omitempty"`
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON    bool
		stateFile string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show installed agents, toolchains and the last provisioning run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := opts.load()
			if err != nil {
				return err
			}

			checker := doctor.NewChecker(homeDir(rc.manifest.Image.Home), rc.markers())
			report := statusReport{
				Agents:    checker.CheckAgentsAsync(),
				Toolchain: checker.CheckToolchain(),
			}
			report.LastRun, err = rc.stateStore(stateFile).Last()
			if err != nil && !errors.Is(err, state.ErrNoRecord) {
				rc.log.Warn().Err(err).Msg("failed to read run record")
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "Run record path (default: <marker_dir>/provision.json)")
	return cmd
}

func printStatus(w io.Writer, r statusReport) {
	fmt.Fprintln(w, "Agents")
	printAgents(w, r.Agents)

	fmt.Fprintln(w, "\nToolchain")
	for _, c := range r.Toolchain {
		fmt.Fprintf(w, "  %-9s %-8s %s\n", statusTag(c.Status), c.ID, c.Message)
	}

	fmt.Fprintln(w)
	printLastRun(w, r.LastRun)
}

func printAgents(w io.Writer, statuses []doctor.AgentStatus) {
	for _, s := range statuses {
		c := s.Check()
		updated := "never updated"
		if !s.LastUpdated.IsZero() {
			updated = "updated " + utils.FormatTimeAgo(s.LastUpdated)
		}
		fmt.Fprintf(w, "  %-9s %-9s %-28s %s\n", statusTag(c.Status), s.Agent, c.Message, updated)
	}
}

func printLastRun(w io.Writer, run *state.Run) {
	if run == nil {
		fmt.Fprintln(w, "No provisioning run recorded.")
		return
	}
	outcome := "succeeded"
	if !run.Succeeded {
		outcome = "failed at " + run.FailedStep
	}
	fmt.Fprintf(w, "Last provisioned %s (%s, agent=%s, arch=%s)\n",
		utils.FormatTimeAgo(run.FinishedAt), outcome, run.Selector, run.Arch)
}

func statusTag(s doctor.CheckStatus) string {
	switch s {
	case doctor.StatusOK:
		return "[OK]"
	case doctor.StatusMissing:
		return "[MISSING]"
	case doctor.StatusWarning:
		return "[WARN]"
	default:
		return "[ERROR]"
	}
}
