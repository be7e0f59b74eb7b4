package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUndefinedVariable is returned when a template references a variable
// that is neither a build argument nor an image builtin.
var ErrUndefinedVariable = errors.New("undefined variable")

// varRe matches ${VARIABLE} placeholders.
var varRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Builtin variable names derived from the image section.
const (
	VarHome      = "HOME"
	VarUser      = "USER"
	VarMarkerDir = "MARKER_DIR"
)

// TemplateVars merges the image builtins with build argument values.
// Build arguments win over builtins.
func (m *Manifest) TemplateVars(args map[string]string) map[string]string {
	vars := map[string]string{
		VarHome:      m.Image.Home,
		VarUser:      m.Image.User,
		VarMarkerDir: m.Image.MarkerDir,
	}
	for k, v := range args {
		vars[k] = v
	}
	return vars
}

// References returns the sorted, de-duplicated variable names used in s.
func References(s string) []string {
	seen := make(map[string]bool)
	for _, match := range varRe.FindAllStringSubmatch(s, -1) {
		seen[match[1]] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Substitute replaces ${VAR} placeholders in s. It returns an error naming
// the first undefined variable.
func Substitute(s string, vars map[string]string) (string, error) {
	var missing string
	out := varRe.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		v, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("%w ${%s}", ErrUndefinedVariable, missing)
	}
	return out, nil
}

// Expand returns a copy of the manifest with build-time placeholders resolved
// in every templated step field. Env values and path entries are left for the
// environment composer, which resolves them against earlier declarations.
func (m *Manifest) Expand(vars map[string]string) (*Manifest, error) {
	out := *m
	out.Args = append(Args(nil), m.Args...)
	out.Steps = make([]Step, len(m.Steps))

	var errs []string
	for i, step := range m.Steps {
		expanded, err := expandStep(step, vars)
		if err != nil {
			errs = append(errs, fmt.Sprintf("step %q: %v", step.Name, err))
			continue
		}
		out.Steps[i] = expanded
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to expand manifest: %s", strings.Join(errs, "; "))
	}
	return &out, nil
}

func expandStep(s Step, vars map[string]string) (Step, error) {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"version", &s.Version},
		{"url", &s.URL},
		{"dest", &s.Dest},
		{"strip", &s.Strip},
		{"key_url", &s.KeyURL},
		{"keyring", &s.Keyring},
		{"repo", &s.Repo},
		{"suite", &s.Suite},
	}
	for _, f := range fields {
		v, err := Substitute(*f.ptr, vars)
		if err != nil {
			return s, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = v
	}

	var err error
	if s.Packages, err = substituteAll(s.Packages, vars); err != nil {
		return s, fmt.Errorf("packages: %w", err)
	}
	if s.Commands, err = substituteAll(s.Commands, vars); err != nil {
		return s, fmt.Errorf("commands: %w", err)
	}

	s.Env = append([]EnvVar(nil), s.Env...)
	s.Path = append([]string(nil), s.Path...)
	s.When.Arch = append([]string(nil), s.When.Arch...)
	return s, nil
}

func substituteAll(in []string, vars map[string]string) ([]string, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		v, err := Substitute(s, vars)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
