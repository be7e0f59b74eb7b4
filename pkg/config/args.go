package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/envfile"
	"github.com/zorro/takopi-docker/pkg/manifest"
	"github.com/zorro/takopi-docker/pkg/utils"
)

// Well-known build argument names.
const (
	ArgAgent         = "AGENT"
	ArgNodeMajor     = "NODE_MAJOR"
	ArgJavaVersion   = "JAVA_VERSION"
	ArgMavenVersion  = "MAVEN_VERSION"
	ArgGradleVersion = "GRADLE_VERSION"
)

// ErrInvalidArg is returned for build arguments with malformed values.
var ErrInvalidArg = errors.New("invalid build argument")

// BuildArgs are the resolved build-time parameters.
type BuildArgs struct {
	Agent         string
	NodeMajor     string
	JavaVersion   string
	MavenVersion  string
	GradleVersion string

	// Extra holds any other argument, declared by the manifest or passed
	// explicitly.
	Extra map[string]string
}

// Sources lists every layer build arguments are read from, lowest precedence
// first: manifest defaults, settings, args file, environment, flags.
type Sources struct {
	Settings map[string]string
	ArgsFile string
	// LookupEnv reads the environment; only manifest-declared names are read.
	LookupEnv func(string) (string, bool)
	// Flags are KEY=VALUE pairs from --build-arg.
	Flags []string
}

// ResolveArgs merges every source over the manifest defaults.
func ResolveArgs(m *manifest.Manifest, src Sources) (BuildArgs, error) {
	vars := m.Args.Map()

	for k, v := range src.Settings {
		vars[k] = v
	}

	if src.ArgsFile != "" {
		fileArgs, err := envfile.Parse(src.ArgsFile)
		if err != nil {
			return BuildArgs{}, fmt.Errorf("failed to read args file: %w", err)
		}
		for k, v := range fileArgs {
			vars[k] = v
		}
	}

	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range m.Args.Names() {
		if v, ok := lookup(name); ok && v != "" {
			vars[name] = v
		}
	}

	for _, pair := range src.Flags {
		k, v, err := envfile.ParsePair(pair)
		if err != nil {
			return BuildArgs{}, fmt.Errorf("--build-arg: %w", err)
		}
		vars[k] = v
	}

	args := FromMap(vars)
	if err := args.Validate(); err != nil {
		return BuildArgs{}, err
	}
	return args, nil
}

// FromMap builds BuildArgs from a name to value map.
func FromMap(vars map[string]string) BuildArgs {
	args := BuildArgs{Extra: map[string]string{}}
	for k, v := range vars {
		switch k {
		case ArgAgent:
			args.Agent = v
		case ArgNodeMajor:
			args.NodeMajor = v
		case ArgJavaVersion:
			args.JavaVersion = v
		case ArgMavenVersion:
			args.MavenVersion = v
		case ArgGradleVersion:
			args.GradleVersion = v
		default:
			args.Extra[k] = v
		}
	}
	return args
}

// Vars returns every set argument as a map for template expansion.
func (a BuildArgs) Vars() map[string]string {
	vars := make(map[string]string, len(a.Extra)+5)
	for k, v := range a.Extra {
		vars[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			vars[k] = v
		}
	}
	set(ArgAgent, a.Agent)
	set(ArgNodeMajor, a.NodeMajor)
	set(ArgJavaVersion, a.JavaVersion)
	set(ArgMavenVersion, a.MavenVersion)
	set(ArgGradleVersion, a.GradleVersion)
	return vars
}

// Names returns the set argument names, sorted.
func (a BuildArgs) Names() []string {
	vars := a.Vars()
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Selector parses the AGENT argument. An unset AGENT selects every agent.
func (a BuildArgs) Selector() (agent.Selector, error) {
	if a.Agent == "" {
		return agent.SelectorAll, nil
	}
	return agent.ParseSelector(a.Agent)
}

// Validate checks the well-known arguments.
func (a BuildArgs) Validate() error {
	if _, err := a.Selector(); err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalidArg, ArgAgent, err)
	}
	versions := []struct{ name, value string }{
		{ArgNodeMajor, a.NodeMajor},
		{ArgJavaVersion, a.JavaVersion},
		{ArgMavenVersion, a.MavenVersion},
		{ArgGradleVersion, a.GradleVersion},
	}
	for _, v := range versions {
		if v.value == "" {
			continue
		}
		if err := utils.ValidateVersion(v.value); err != nil {
			return fmt.Errorf("%w %s: %v", ErrInvalidArg, v.name, err)
		}
	}
	return nil
}
