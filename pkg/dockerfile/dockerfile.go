// Package dockerfile renders a Dockerfile that builds an image by running
// the provisioner once per manifest phase.
package dockerfile

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/environment"
	"github.com/zorro/takopi-docker/pkg/manifest"
	"github.com/zorro/takopi-docker/pkg/plan"
)

// Defaults used when the manifest or Options leave a field empty.
const (
	DefaultBinary       = "/usr/local/bin/takopi-docker"
	DefaultSource       = "takopi-docker"
	DefaultArch         = "x86_64"
	ManifestDest        = "/etc/takopi-docker/manifest.yaml"
	basePathPlaceholder = "${PATH}"
)

// Options controls rendering.
type Options struct {
	// Source is the build-context path of the takopi-docker binary.
	Source string
	// Manifest is the build-context path of a custom manifest. When empty the
	// embedded manifest is used and nothing is copied.
	Manifest string
	// Arch is the machine the image ENV is evaluated for.
	Arch string
}

// Render writes the Dockerfile for m to w.
func Render(w io.Writer, m *manifest.Manifest, opts Options) error {
	_, err := io.WriteString(w, Build(m, opts))
	return err
}

// Build returns the Dockerfile for m.
func Build(m *manifest.Manifest, opts Options) string {
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if opts.Arch == "" {
		opts.Arch = DefaultArch
	}
	binary := m.Image.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	bin := path.Base(binary)

	var b strings.Builder
	b.WriteString("# syntax=docker/dockerfile:1\n")
	b.WriteString("# Generated by takopi-docker dockerfile. Do not edit.\n\n")
	fmt.Fprintf(&b, "FROM %s\n", m.Image.Base)

	if labels := labelBlock(m.Image.Labels); labels != "" {
		b.WriteString("\n")
		b.WriteString(labels)
	}

	if len(m.Args) > 0 {
		b.WriteString("\n")
		for _, arg := range m.Args {
			fmt.Fprintf(&b, "ARG %s=%s\n", arg.Name, quote(arg.Default))
		}
	}

	if env := imageEnv(m, opts.Arch); env != "" {
		b.WriteString("\n")
		b.WriteString(env)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "COPY %s %s\n", opts.Source, binary)
	provision := bin + " provision"
	if opts.Manifest != "" {
		fmt.Fprintf(&b, "COPY %s %s\n", opts.Manifest, ManifestDest)
		provision += " --manifest " + ManifestDest
	}

	for _, layer := range Layers(m) {
		fmt.Fprintf(&b, "\n# %s\n", layer.Comment)
		fmt.Fprintf(&b, "RUN %s %s --agent ${%s}\n", provision, strings.Join(layer.Flags, " "), argAgent)
	}

	b.WriteString("\n")
	if m.Image.User != "" {
		fmt.Fprintf(&b, "USER %s\n", m.Image.User)
	}
	workdir := m.Image.Workdir
	if workdir == "" {
		workdir = m.Image.Home
	}
	if workdir != "" {
		fmt.Fprintf(&b, "WORKDIR %s\n", workdir)
	}
	fmt.Fprintf(&b, "ENTRYPOINT [%q, \"entrypoint\"]\n", bin)
	b.WriteString("CMD []\n")

	return b.String()
}

const argAgent = "AGENT"

// Layer is one RUN instruction of the rendered Dockerfile.
type Layer struct {
	Phase   manifest.Phase
	Step    string // set when the layer installs a single agent step
	Comment string
	Flags   []string
}

// Layers returns the RUN layers for m in execution order: one per phase
// that has steps, except the agents phase which gets one layer per step so
// that updating one agent does not invalidate the others.
func Layers(m *manifest.Manifest) []Layer {
	var layers []Layer
	for _, phase := range manifest.Phases() {
		steps := m.StepsInPhase(phase)
		if len(steps) == 0 {
			continue
		}

		if phase != manifest.PhaseAgents {
			layers = append(layers, Layer{
				Phase:   phase,
				Comment: fmt.Sprintf("%s: %s", phase, strings.Join(stepNames(steps), ", ")),
				Flags:   []string{"--phase", string(phase)},
			})
			continue
		}

		for _, s := range steps {
			comment := s.Name
			if s.Description != "" {
				comment = s.Description
			}
			layers = append(layers, Layer{
				Phase:   phase,
				Step:    s.Name,
				Comment: fmt.Sprintf("%s: %s", phase, comment),
				Flags:   []string{"--phase", string(phase), "--only", s.Name},
			})
		}
	}
	return layers
}

func stepNames(steps []manifest.Step) []string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	return names
}

// imageEnv renders the ENV instruction for a full build. Build argument
// references stay as ${NAME} so Docker substitutes the ARG value, and the
// base image PATH is kept at the end of PATH.
func imageEnv(m *manifest.Manifest, machine string) string {
	refs := make(map[string]string, len(m.Args))
	for _, arg := range m.Args {
		refs[arg.Name] = "${" + arg.Name + "}"
	}
	seeds := m.TemplateVars(refs)

	p := plan.Evaluate(m, agent.SelectorAll, machine, plan.Options{})
	d := environment.FromPlan(p, seeds, basePathPlaceholder)

	if len(d.Vars) == 0 && inheritsPathOnly(d.Path) {
		return ""
	}
	entries := d.Entries()
	var b strings.Builder
	b.WriteString("ENV")
	for i, e := range entries {
		if i > 0 {
			b.WriteString(" \\\n   ")
		}
		fmt.Fprintf(&b, " %s=%s", e.Key, quote(e.Value))
	}
	b.WriteString("\n")
	return b.String()
}

// inheritsPathOnly reports whether path adds nothing to the base image PATH.
func inheritsPathOnly(path []string) bool {
	for _, dir := range path {
		if dir != basePathPlaceholder {
			return false
		}
	}
	return true
}

func labelBlock(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("LABEL")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" \\\n     ")
		}
		fmt.Fprintf(&b, " %s=%q", k, labels[k])
	}
	b.WriteString("\n")
	return b.String()
}

// quote double-quotes values containing whitespace or quotes. Dollar signs
// are left alone so Docker expands ${ARG} references.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\"'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
