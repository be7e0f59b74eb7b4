package manifest

import (
	"fmt"
	"strings"

	"github.com/zorro/takopi-docker/pkg/agent"
)

// Severity represents the severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue represents a problem found in a manifest.
type Issue struct {
	Step     string   `json:"step,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// String formats the issue for display.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(string(i.Severity)) + "] ")
	if i.Step != "" {
		b.WriteString(i.Step + ": ")
	}
	b.WriteString(i.Message)
	if i.Field != "" {
		b.WriteString(" (" + i.Field + ")")
	}
	return b.String()
}

// Result holds all validation results.
type Result struct {
	Issues []Issue `json:"issues"`
}

// HasErrors returns true if there are any error-level issues.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

// Err returns an error summarising error-level issues, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	var msgs []string
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			msgs = append(msgs, issue.String())
		}
	}
	return fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
}

func (r *Result) count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

func (r *Result) add(step, field string, sev Severity, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{
		Step:     step,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// Validate checks structural rules that parsing alone cannot enforce.
func (m *Manifest) Validate() *Result {
	result := &Result{Issues: []Issue{}}

	if strings.TrimSpace(m.Image.Base) == "" {
		result.add("", "image.base", SeverityError, "base image is required")
	}
	if strings.TrimSpace(m.Image.User) == "" {
		result.add("", "image.user", SeverityError, "image user is required")
	}
	if strings.TrimSpace(m.Image.MarkerDir) == "" {
		result.add("", "image.marker_dir", SeverityError, "marker directory is required")
	}
	if _, ok := m.Args.Get("AGENT"); !ok {
		result.add("", "args.AGENT", SeverityWarning, "no AGENT default; builds must pass --agent")
	}
	if len(m.Steps) == 0 {
		result.add("", "steps", SeverityError, "manifest declares no steps")
	}

	names := make(map[string]bool)
	agents := make(map[string]string)
	lastRank := -1
	lastPhase := Phase("")

	for _, s := range m.Steps {
		if s.Name == "" {
			result.add("", "name", SeverityError, "step without a name")
			continue
		}
		if names[s.Name] {
			result.add(s.Name, "name", SeverityError, "duplicate step name")
		}
		names[s.Name] = true

		rank := s.Phase.Rank()
		switch {
		case rank < 0:
			result.add(s.Name, "phase", SeverityError, "unknown phase %q", s.Phase)
		case rank < lastRank:
			result.add(s.Name, "phase", SeverityError,
				"phase %q declared after %q; steps must follow %s", s.Phase, lastPhase, phaseOrder())
		default:
			lastRank, lastPhase = rank, s.Phase
		}

		validateMethod(result, s)
		validatePredicate(result, s, agents)
	}

	return result
}

func validateMethod(result *Result, s Step) {
	if !s.Method.Valid() {
		result.add(s.Name, "method", SeverityError, "unknown method %q", s.Method)
		return
	}

	switch s.Method {
	case MethodApt, MethodNpm, MethodPip:
		if len(s.Packages) == 0 {
			result.add(s.Name, "packages", SeverityError, "%s step needs at least one package", s.Method)
		}
	case MethodAptRepo:
		if s.KeyURL == "" {
			result.add(s.Name, "key_url", SeverityError, "apt-repo step needs a signing key URL")
		}
		if s.Repo == "" {
			result.add(s.Name, "repo", SeverityError, "apt-repo step needs a repository URL")
		}
		if s.Suite == "" {
			result.add(s.Name, "suite", SeverityError, "apt-repo step needs a suite")
		}
		if len(s.Packages) == 0 {
			result.add(s.Name, "packages", SeverityError, "apt-repo step needs at least one package")
		}
	case MethodTarball, MethodZip:
		if s.URL == "" {
			result.add(s.Name, "url", SeverityError, "%s step needs a url", s.Method)
		}
		if s.Dest == "" {
			result.add(s.Name, "dest", SeverityError, "%s step needs a dest", s.Method)
		}
		if s.Strip == "" {
			result.add(s.Name, "strip", SeverityWarning, "no strip directory; archive is extracted into dest as-is")
		}
	case MethodScript:
		if s.URL == "" {
			result.add(s.Name, "url", SeverityError, "script step needs a url")
		}
	case MethodCommand:
		if len(s.Commands) == 0 {
			result.add(s.Name, "commands", SeverityError, "command step needs at least one command")
		}
	case MethodEnv:
		if len(s.Env) == 0 && len(s.Path) == 0 {
			result.add(s.Name, "env", SeverityWarning, "env step contributes nothing")
		}
	}

	if s.SHA256 != "" && !s.Method.Downloads() {
		result.add(s.Name, "sha256", SeverityWarning, "sha256 is ignored for %s steps", s.Method)
	}
	for _, v := range s.Env {
		if v.Name == "" {
			result.add(s.Name, "env", SeverityError, "env entry without a name")
		}
	}
}

func validatePredicate(result *Result, s Step, agents map[string]string) {
	if s.When.Agent == "" {
		if s.Marker {
			result.add(s.Name, "marker", SeverityError, "marker is only written for agent steps")
		}
		return
	}

	if !agent.IsKnown(s.When.Agent) {
		result.add(s.Name, "when.agent", SeverityError,
			"unknown agent %q (valid: %s)", s.When.Agent, strings.Join(agent.IDs(), ", "))
	}
	if prev, ok := agents[s.When.Agent]; ok {
		result.add(s.Name, "when.agent", SeverityError, "agent %q already installed by step %q", s.When.Agent, prev)
	}
	agents[s.When.Agent] = s.Name

	if s.Phase != PhaseAgents {
		result.add(s.Name, "phase", SeverityWarning, "agent step outside the %q phase", PhaseAgents)
	}
	if !s.Marker {
		result.add(s.Name, "marker", SeverityWarning, "agent step without a last-update marker")
	}
}

func phaseOrder() string {
	parts := make([]string, 0, len(Phases()))
	for _, p := range Phases() {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, " -> ")
}
