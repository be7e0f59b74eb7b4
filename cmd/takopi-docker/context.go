package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/config"
	"github.com/zorro/takopi-docker/pkg/logging"
	"github.com/zorro/takopi-docker/pkg/manifest"
	"github.com/zorro/takopi-docker/pkg/marker"
	"github.com/zorro/takopi-docker/pkg/state"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	manifest  string
	config    string
	buildArgs []string
	argsFile  string
	logLevel  string
}

func (o *globalOptions) configureLogging() error {
	logging.ConfigureRuntime()

	level := o.logLevel
	if level == "" {
		// The settings file may not be readable yet; a bad file is reported
		// by the command that loads it.
		if s, err := config.Load(o.config); err == nil {
			level = s.LogLevel
		}
	}
	if level != "" && !logging.SetLevel(level) {
		return fmt.Errorf("invalid log level %q", level)
	}
	return nil
}

// runContext is everything a subcommand needs to evaluate the manifest.
type runContext struct {
	settings *config.Settings
	// raw keeps ${ARG} placeholders, for rendering the Dockerfile.
	raw *manifest.Manifest
	// manifest has every build-time placeholder resolved.
	manifest *manifest.Manifest
	args     config.BuildArgs
	selector agent.Selector
	log      zerolog.Logger
}

// loadManifest reads settings and the manifest without validating it.
func (o *globalOptions) loadManifest() (*config.Settings, *manifest.Manifest, error) {
	settings, err := config.Load(o.config)
	if err != nil {
		return nil, nil, err
	}

	path := o.manifest
	if path == "" {
		path = settings.Manifest
	}
	raw, err := manifest.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	if settings.MarkerDir != "" {
		raw.Image.MarkerDir = settings.MarkerDir
	}
	return settings, raw, nil
}

// load reads settings, the manifest and the build arguments. extraArgs are
// KEY=VALUE pairs with the highest precedence, e.g. from --agent.
func (o *globalOptions) load(extraArgs ...string) (*runContext, error) {
	settings, raw, err := o.loadManifest()
	if err != nil {
		return nil, err
	}
	if err := raw.Validate().Err(); err != nil {
		return nil, err
	}

	args, err := config.ResolveArgs(raw, config.Sources{
		Settings: settings.Args,
		ArgsFile: o.argsFile,
		Flags:    append(append([]string(nil), o.buildArgs...), extraArgs...),
	})
	if err != nil {
		return nil, err
	}
	sel, err := args.Selector()
	if err != nil {
		return nil, err
	}

	expanded, err := raw.Expand(raw.TemplateVars(args.Vars()))
	if err != nil {
		return nil, err
	}

	return &runContext{
		settings: settings,
		raw:      raw,
		manifest: expanded,
		args:     args,
		selector: sel,
		log:      logging.Logger("cli"),
	}, nil
}

// seeds are the variables env and path contributions resolve against.
func (rc *runContext) seeds() map[string]string {
	return rc.manifest.TemplateVars(rc.args.Vars())
}

func (rc *runContext) markers() *marker.Store {
	return marker.NewStore(rc.manifest.Image.MarkerDir)
}

// stateStore returns the run record store. flag wins over settings.
func (rc *runContext) stateStore(flag string) *state.Store {
	if flag != "" {
		return state.NewStore(flag)
	}
	if rc.settings.StateFile != "" {
		return state.NewStore(rc.settings.StateFile)
	}
	return state.NewStoreInDir(rc.manifest.Image.MarkerDir)
}

// agentArg turns an --agent flag into a build argument pair.
func agentArg(value string) []string {
	if value == "" {
		return nil
	}
	return []string{config.ArgAgent + "=" + value}
}

// parsePhases validates --phase values.
func parsePhases(values []string) ([]manifest.Phase, error) {
	phases := make([]manifest.Phase, 0, len(values))
	for _, v := range values {
		p := manifest.Phase(strings.TrimSpace(v))
		if p.Rank() < 0 {
			names := make([]string, 0, len(manifest.Phases()))
			for _, known := range manifest.Phases() {
				names = append(names, string(known))
			}
			return nil, fmt.Errorf("unknown phase %q (valid: %s)", v, strings.Join(names, ", "))
		}
		phases = append(phases, p)
	}
	return phases, nil
}

// homeDir returns the current user's home, falling back to the image home.
func homeDir(fallback string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return filepath.Clean(fallback)
}
