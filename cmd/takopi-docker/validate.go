package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/config"
	"github.com/zorro/takopi-docker/pkg/manifest"
)

func newValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the provisioning manifest",
		Long: `Check the manifest structure, step fields, predicates and build argument
references. Errors exit non-zero; warnings are reported only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}
}

// runValidate validates the manifest and the resolved build arguments.
func runValidate(cmd *cobra.Command, opts *globalOptions) error {
	out := cmd.OutOrStdout()

	settings, m, err := opts.loadManifest()
	if err != nil {
		return err
	}

	result := m.Validate()

	// Build arguments are only checked once the structure is sound, since
	// expansion reports every undefined reference.
	if !result.HasErrors() {
		args, err := config.ResolveArgs(m, config.Sources{
			Settings: settings.Args,
			ArgsFile: opts.argsFile,
			Flags:    opts.buildArgs,
		})
		if err != nil {
			result.Issues = append(result.Issues, manifest.Issue{
				Field: "args", Message: err.Error(), Severity: manifest.SeverityError,
			})
		} else if _, err := m.Expand(m.TemplateVars(args.Vars())); err != nil {
			result.Issues = append(result.Issues, manifest.Issue{
				Field: "args", Message: err.Error(), Severity: manifest.SeverityError,
			})
		}
	}

	for _, issue := range result.Issues {
		fmt.Fprintln(out, issue.String())
	}

	if result.HasErrors() {
		return fmt.Errorf("validation failed with %d error(s)", result.ErrorCount())
	}

	if len(result.Issues) == 0 {
		fmt.Fprintf(out, "Manifest %s is valid (%d steps).\n", m.Image.Name, len(m.Steps))
	} else {
		fmt.Fprintf(out, "\nValidation passed with %d warning(s).\n", result.WarningCount())
	}
	return nil
}
