package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zorro/takopi-docker/pkg/dockerfile"
)

func newDockerfileCmd(opts *globalOptions) *cobra.Command {
	var (
		dfOpts       dockerfile.Options
		copyManifest bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "dockerfile",
		Short: "Render the Dockerfile that builds the image",
		Long: `Render a Dockerfile with the manifest's base image, labels and build
arguments, and one RUN layer per phase. Each agent gets its own layer so that
changing one agent does not rebuild the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := opts.load()
			if err != nil {
				return err
			}
			if copyManifest {
				if opts.manifest == "" {
					return fmt.Errorf("--copy-manifest requires --manifest")
				}
				dfOpts.Manifest = opts.manifest
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := dockerfile.Render(w, rc.raw, dfOpts); err != nil {
				return fmt.Errorf("failed to write Dockerfile: %w", err)
			}
			if output != "" && output != "-" {
				rc.log.Info().Str("path", output).Msg("dockerfile written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dfOpts.Source, "source", dockerfile.DefaultSource, "Build-context path of the takopi-docker binary")
	cmd.Flags().StringVar(&dfOpts.Arch, "arch", dockerfile.DefaultArch, "Architecture the image ENV is evaluated for")
	cmd.Flags().BoolVar(&copyManifest, "copy-manifest", false, "COPY the --manifest file into the image")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
