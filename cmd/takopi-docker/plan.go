package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/arch"
	"github.com/zorro/takopi-docker/pkg/plan"
)

// planFlags are shared by plan, provision and env.
type planFlags struct {
	agent  string
	arch   string
	phases []string
	only   []string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.agent, "agent", "", "Agent selector: all, claude, codex, opencode, pi (overrides AGENT)")
	cmd.Flags().StringVar(&f.arch, "arch", "", "Machine architecture (default: detected with uname)")
	cmd.Flags().StringSliceVar(&f.phases, "phase", nil, "Limit to these phases")
	cmd.Flags().StringSliceVar(&f.only, "only", nil, "Limit to these step names")
}

// evaluate loads the manifest and evaluates it for the flags.
func (f *planFlags) evaluate(opts *globalOptions) (*runContext, *plan.Plan, error) {
	rc, err := opts.load(agentArg(f.agent)...)
	if err != nil {
		return nil, nil, err
	}
	phases, err := parsePhases(f.phases)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range f.only {
		if rc.manifest.Step(name) == nil {
			return nil, nil, fmt.Errorf("unknown step %q", name)
		}
	}

	machine := arch.Resolve(f.arch)
	p := plan.Evaluate(rc.manifest, rc.selector, machine, plan.Options{Phases: phases, Only: f.only})
	for _, w := range p.Warnings() {
		rc.log.Warn().Msg(w)
	}
	return rc, p, nil
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	var (
		flags  planFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which steps run for the selected agent and architecture",
		Long: `Evaluate the manifest against the AGENT selector and the machine architecture
and print every step with its action. Nothing is executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := flags.evaluate(opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writePlanJSON(cmd.OutOrStdout(), p)
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

func writePlanJSON(w io.Writer, p *plan.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*plan.Plan
		Summary plan.Summary `json:"summary"`
	}{p, p.Summary()})
}

func printPlan(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "Agent: %s  Arch: %s\n\n", p.Selector, p.Arch)
	fmt.Fprintf(w, "  %-3s %-12s %-18s %-9s %s\n", "#", "PHASE", "STEP", "METHOD", "ACTION")
	for i, e := range p.Entries {
		action := string(e.Action)
		if e.Reason != "" {
			action += " (" + string(e.Reason) + ")"
		}
		fmt.Fprintf(w, "  %-3d %-12s %-18s %-9s %s\n", i+1, e.Step.Phase, e.Step.Name, e.Step.Method, action)
	}

	s := p.Summary()
	fmt.Fprintf(w, "\n%d to run, %d skipped", s.Run, s.Skipped)
	if s.Warnings > 0 {
		fmt.Fprintf(w, ", %d warning(s)", s.Warnings)
	}
	fmt.Fprintln(w)
	for _, warn := range p.Warnings() {
		fmt.Fprintf(w, "  WARNING: %s\n", warn)
	}
}
