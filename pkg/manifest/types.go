// Package manifest loads the declarative provisioning manifest: the ordered
// list of steps an image build executes, their install methods and their
// applicability predicates.
package manifest

// Phase groups steps into the layers of an image build. Steps must be declared
// in non-decreasing phase order.
type Phase string

const (
	PhaseSystem     Phase = "system"
	PhaseJava       Phase = "java"
	PhaseBuildTools Phase = "build-tools"
	PhaseNode       Phase = "node"
	PhaseUser       Phase = "user"
	PhaseAgents     Phase = "agents"
)

// Phases returns all phases in execution order.
func Phases() []Phase {
	return []Phase{PhaseSystem, PhaseJava, PhaseBuildTools, PhaseNode, PhaseUser, PhaseAgents}
}

// Rank returns the position of the phase in execution order, or -1 if unknown.
func (p Phase) Rank() int {
	for i, ph := range Phases() {
		if ph == p {
			return i
		}
	}
	return -1
}

// Method is the install mechanism of a step.
type Method string

const (
	MethodApt     Method = "apt"      // apt-get install of Packages
	MethodAptRepo Method = "apt-repo" // add a signed apt repository, then install Packages
	MethodTarball Method = "tarball"  // download URL, extract .tar.gz, move Strip to Dest
	MethodZip     Method = "zip"      // download URL, extract .zip, move Strip to Dest
	MethodScript  Method = "script"   // download URL and run it with bash
	MethodNpm     Method = "npm"      // npm install -g Packages
	MethodPip     Method = "pip"      // pip install --user Packages
	MethodCommand Method = "command"  // run Commands with sh -c
	MethodEnv     Method = "env"      // no side effect; contributes Env and Path only
)

// Methods returns all known install methods.
func Methods() []Method {
	return []Method{
		MethodApt, MethodAptRepo, MethodTarball, MethodZip, MethodScript,
		MethodNpm, MethodPip, MethodCommand, MethodEnv,
	}
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	for _, v := range Methods() {
		if v == m {
			return true
		}
	}
	return false
}

// Downloads reports whether the method fetches URL.
func (m Method) Downloads() bool {
	return m == MethodTarball || m == MethodZip || m == MethodScript
}

// EnvVar is a single environment variable contribution.
type EnvVar struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Predicate decides whether a step applies to a build.
type Predicate struct {
	// Agent restricts the step to builds whose selector is "all" or this agent.
	Agent string `yaml:"agent,omitempty" json:"agent,omitempty"`

	// Arch restricts the step to these machine strings. A mismatch skips the
	// step with a warning instead of failing the build.
	Arch []string `yaml:"arch,omitempty" json:"arch,omitempty"`
}

// Step is a single provisioning action. Identity is Name.
type Step struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Phase       Phase  `yaml:"phase" json:"phase"`
	Method      Method `yaml:"method" json:"method"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`

	// Download sources
	URL    string `yaml:"url,omitempty" json:"url,omitempty"`
	SHA256 string `yaml:"sha256,omitempty" json:"sha256,omitempty"`

	// Archive placement
	Dest  string `yaml:"dest,omitempty" json:"dest,omitempty"`
	Strip string `yaml:"strip,omitempty" json:"strip,omitempty"`

	// Package and command lists
	Packages []string `yaml:"packages,omitempty" json:"packages,omitempty"`
	Commands []string `yaml:"commands,omitempty" json:"commands,omitempty"`

	// User runs the step as the image user instead of root.
	User bool `yaml:"user,omitempty" json:"user,omitempty"`

	// apt-repo fields
	KeyURL  string `yaml:"key_url,omitempty" json:"key_url,omitempty"`
	Keyring string `yaml:"keyring,omitempty" json:"keyring,omitempty"`
	Repo    string `yaml:"repo,omitempty" json:"repo,omitempty"`
	Suite   string `yaml:"suite,omitempty" json:"suite,omitempty"`

	When   Predicate `yaml:"when,omitempty" json:"when,omitempty"`
	Marker bool      `yaml:"marker,omitempty" json:"marker,omitempty"`

	// Environment contributions, applied only when the step runs.
	Env  []EnvVar `yaml:"env,omitempty" json:"env,omitempty"`
	Path []string `yaml:"path,omitempty" json:"path,omitempty"`
}

// IsAgent reports whether the step installs an agent selected by the AGENT argument.
func (s Step) IsAgent() bool {
	return s.When.Agent != ""
}

// SourceURL returns the URL the step fetches its artifact or repository from.
func (s Step) SourceURL() string {
	if s.Method == MethodAptRepo {
		return s.Repo
	}
	return s.URL
}

// Image describes the container image the manifest provisions.
type Image struct {
	Name      string            `yaml:"name" json:"name"`
	Base      string            `yaml:"base" json:"base"`
	User      string            `yaml:"user" json:"user"`
	Home      string            `yaml:"home" json:"home"`
	Workdir   string            `yaml:"workdir,omitempty" json:"workdir,omitempty"`
	MarkerDir string            `yaml:"marker_dir" json:"marker_dir"`
	Binary    string            `yaml:"binary,omitempty" json:"binary,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Manifest is a full provisioning recipe.
type Manifest struct {
	Version string `yaml:"version" json:"version"`
	Image   Image  `yaml:"image" json:"image"`
	Args    Args   `yaml:"args" json:"args"`
	Steps   []Step `yaml:"steps" json:"steps"`
}

// Step returns the step with the given name, or nil.
func (m *Manifest) Step(name string) *Step {
	for i := range m.Steps {
		if m.Steps[i].Name == name {
			return &m.Steps[i]
		}
	}
	return nil
}

// Names returns step names in declared order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Steps))
	for _, s := range m.Steps {
		names = append(names, s.Name)
	}
	return names
}

// StepsInPhase returns the steps of a phase in declared order.
func (m *Manifest) StepsInPhase(p Phase) []Step {
	var out []Step
	for _, s := range m.Steps {
		if s.Phase == p {
			out = append(out, s)
		}
	}
	return out
}
