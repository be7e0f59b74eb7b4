package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() *Manifest {
	return &Manifest{
		Version: SupportedVersion,
		Image:   Image{Base: "debian", User: "dev", Home: "/home/dev", MarkerDir: "/home/dev/.m"},
		Args:    Args{{Name: "AGENT", Default: "all"}},
		Steps: []Step{
			{Name: "tools", Phase: PhaseSystem, Method: MethodApt, Packages: []string{"curl"}},
			{Name: "pi", Phase: PhaseAgents, Method: MethodNpm, Packages: []string{"pi"},
				When: Predicate{Agent: "pi"}, Marker: true},
		},
	}
}

func findIssue(r *Result, step, field string) *Issue {
	for i := range r.Issues {
		if r.Issues[i].Step == step && r.Issues[i].Field == field {
			return &r.Issues[i]
		}
	}
	return nil
}

func TestValidate_Valid(t *testing.T) {
	result := validManifest().Validate()
	assert.Empty(t, result.Issues)
	assert.NoError(t, result.Err())
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *Manifest)
		step     string
		field    string
		severity Severity
	}{
		{
			name:     "duplicate name",
			mutate:   func(m *Manifest) { m.Steps[1].Name = "tools"; m.Steps[1].When.Agent = ""; m.Steps[1].Marker = false },
			step:     "tools",
			field:    "name",
			severity: SeverityError,
		},
		{
			name:     "unknown method",
			mutate:   func(m *Manifest) { m.Steps[0].Method = "brew" },
			step:     "tools",
			field:    "method",
			severity: SeverityError,
		},
		{
			name:     "unknown phase",
			mutate:   func(m *Manifest) { m.Steps[0].Phase = "late" },
			step:     "tools",
			field:    "phase",
			severity: SeverityError,
		},
		{
			name: "phase out of order",
			mutate: func(m *Manifest) {
				m.Steps = append(m.Steps, Step{Name: "jdk", Phase: PhaseJava, Method: MethodEnv, Path: []string{"/opt/jdk/bin"}})
			},
			step:     "jdk",
			field:    "phase",
			severity: SeverityError,
		},
		{
			name:     "unknown agent",
			mutate:   func(m *Manifest) { m.Steps[1].When.Agent = "gemini" },
			step:     "pi",
			field:    "when.agent",
			severity: SeverityError,
		},
		{
			name:     "marker on non-agent step",
			mutate:   func(m *Manifest) { m.Steps[0].Marker = true },
			step:     "tools",
			field:    "marker",
			severity: SeverityError,
		},
		{
			name:     "agent without marker",
			mutate:   func(m *Manifest) { m.Steps[1].Marker = false },
			step:     "pi",
			field:    "marker",
			severity: SeverityWarning,
		},
		{
			name:     "apt without packages",
			mutate:   func(m *Manifest) { m.Steps[0].Packages = nil },
			step:     "tools",
			field:    "packages",
			severity: SeverityError,
		},
		{
			name: "tarball without dest",
			mutate: func(m *Manifest) {
				m.Steps[0] = Step{Name: "tools", Phase: PhaseSystem, Method: MethodTarball, URL: "https://x/y.tgz", Strip: "y"}
			},
			step:     "tools",
			field:    "dest",
			severity: SeverityError,
		},
		{
			name:     "missing base",
			mutate:   func(m *Manifest) { m.Image.Base = "" },
			step:     "",
			field:    "image.base",
			severity: SeverityError,
		},
		{
			name:     "sha256 on non-download",
			mutate:   func(m *Manifest) { m.Steps[0].SHA256 = "abc" },
			step:     "tools",
			field:    "sha256",
			severity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)

			result := m.Validate()
			issue := findIssue(result, tt.step, tt.field)
			require.NotNil(t, issue, "expected issue on %s/%s, got %v", tt.step, tt.field, result.Issues)
			assert.Equal(t, tt.severity, issue.Severity)
		})
	}
}

func TestValidate_DuplicateAgent(t *testing.T) {
	m := validManifest()
	m.Steps = append(m.Steps, Step{
		Name: "pi-again", Phase: PhaseAgents, Method: MethodNpm, Packages: []string{"pi"},
		When: Predicate{Agent: "pi"}, Marker: true,
	})

	result := m.Validate()
	assert.NotNil(t, findIssue(result, "pi-again", "when.agent"))
	assert.Error(t, result.Err())
}

func TestIssue_String(t *testing.T) {
	issue := Issue{Step: "java", Field: "url", Message: "tarball step needs a url", Severity: SeverityError}
	assert.Equal(t, "[ERROR] java: tarball step needs a url (url)", issue.String())
}
