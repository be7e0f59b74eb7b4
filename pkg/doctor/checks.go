package doctor

import (
	"bytes"
	"os"
	"os/exec"
	"regexp"
)

// CommandExecutor is an interface for executing commands, allowing for testing.
type CommandExecutor interface {
	LookPath(file string) (string, error)
	Run(name string, args ...string) (string, error)
	CombinedOutput(name string, args ...string) ([]byte, error)
	FileExists(path string) bool
}

// RealExecutor is the default command executor that uses the real system.
type RealExecutor struct{}

// LookPath finds the path to an executable.
func (e *RealExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its output. Tools that print their
// version on stderr (java) are handled by falling back to stderr.
func (e *RealExecutor) Run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return stderr.String(), err
		}
		return stdout.String(), err
	}
	output := stdout.String()
	if output == "" {
		output = stderr.String()
	}
	return output, nil
}

// CombinedOutput runs a command and returns combined stdout and stderr.
func (e *RealExecutor) CombinedOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// FileExists checks if a file or directory exists.
func (e *RealExecutor) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var defaultVersionRegex = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:-[a-zA-Z0-9]+)?)`)

// tool describes how to probe one toolchain executable.
type tool struct {
	id          string
	name        string
	description string
	versionArgs []string
	versionRe   *regexp.Regexp
}

var toolchain = []tool{
	{IDJava, "Java", "Eclipse Temurin JDK", []string{"-version"}, regexp.MustCompile(`version "([^"]+)"`)},
	{IDMaven, "Maven", "Apache Maven build tool", []string{"--version"}, regexp.MustCompile(`Apache Maven (\d+\.\d+\.\d+)`)},
	{IDGradle, "Gradle", "Gradle build tool", []string{"--version"}, regexp.MustCompile(`Gradle (\d+\.\d+(?:\.\d+)?)`)},
	{IDNode, "Node.js", "JavaScript runtime", []string{"--version"}, nil},
	{IDNpm, "npm", "Node.js package manager", []string{"--version"}, nil},
	{IDUv, "uv", "Python package manager", []string{"--version"}, regexp.MustCompile(`uv (\d+\.\d+\.\d+)`)},
}

func findTool(id string) (tool, bool) {
	for _, t := range toolchain {
		if t.id == id {
			return t, true
		}
	}
	return tool{}, false
}

// checkTool checks if a tool is installed and gets its version.
func checkTool(exec CommandExecutor, command string, versionArgs []string, versionRegex *regexp.Regexp) (found bool, version string) {
	path, err := exec.LookPath(command)
	if err != nil {
		return false, ""
	}

	output, err := exec.Run(path, versionArgs...)
	if err != nil {
		// Present but the version probe failed; still counts as installed.
		return true, ""
	}
	return true, extractVersion(output, versionRegex)
}

// extractVersion extracts a version string from command output.
func extractVersion(output string, regex *regexp.Regexp) string {
	if regex == nil {
		regex = defaultVersionRegex
	}
	matches := regex.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CheckTool runs the toolchain check with the given ID.
func CheckTool(exec CommandExecutor, id string) Check {
	t, ok := findTool(id)
	if !ok {
		return Check{ID: id, Name: id, Status: StatusError, Message: "unknown check"}
	}

	check := Check{
		ID:          t.id,
		Name:        t.name,
		Description: t.description,
		FixCommand:  GetFixCommand(t.id),
	}

	found, version := checkTool(exec, t.id, t.versionArgs, t.versionRe)
	switch {
	case !found:
		check.Status = StatusMissing
		check.Message = "not installed"
	case version == "":
		check.Status = StatusOK
		check.Message = "installed (version unknown)"
	default:
		check.Status = StatusOK
		check.Message = version
	}
	return check
}

// ToolIDs returns the toolchain check IDs in display order.
func ToolIDs() []string {
	ids := make([]string, 0, len(toolchain))
	for _, t := range toolchain {
		ids = append(ids, t.id)
	}
	return ids
}
