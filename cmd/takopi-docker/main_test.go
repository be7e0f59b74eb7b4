package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorro/takopi-docker/pkg/state"
)

// testEnv isolates a command run from the user's settings and home.
type testEnv struct {
	dir       string
	config    string
	markerDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("AGENT", "")

	env := &testEnv{
		dir:       dir,
		config:    filepath.Join(dir, "config.yaml"),
		markerDir: filepath.Join(dir, "markers"),
	}
	require.NoError(t, os.WriteFile(env.config, []byte("version: \"1.0\"\nmarker_dir: "+env.markerDir+"\n"), 0600))
	return env
}

func (e *testEnv) run(args ...string) (string, string, error) {
	rootCmd := newRootCmd()
	rootCmd.SilenceUsage = true
	rootCmd.SetArgs(append([]string{"--config", e.config, "--log-level", "error"}, args...))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCmd(t *testing.T) {
	rootCmd := newRootCmd()

	assert.Equal(t, "takopi-docker", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	for _, name := range []string{"manifest", "config", "build-arg", "args-file", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmdHelp(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--help"})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	require.NoError(t, rootCmd.Execute())

	output := buf.String()
	for _, sub := range []string{"plan", "provision", "env", "validate", "status", "dockerfile", "configure", "entrypoint"} {
		assert.Contains(t, output, sub)
	}
}

func TestRootCmdVersion(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--version"})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "takopi-docker version")
}

func TestInvalidLogLevel(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("--log-level", "loud", "validate")
	assert.Error(t, err)
}

func TestPlanCmd_JSON(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("plan", "--agent", "codex", "--arch", "x86_64", "--json")
	require.NoError(t, err)

	var got struct {
		Selector string `json:"selector"`
		Arch     string `json:"arch"`
		Entries  []struct {
			Step struct {
				Name string `json:"name"`
			} `json:"step"`
			Action string `json:"action"`
			Reason string `json:"reason"`
		} `json:"entries"`
		Summary struct {
			Run     int `json:"run"`
			Skipped int `json:"skipped"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "codex", got.Selector)
	assert.Equal(t, "x86_64", got.Arch)

	actions := map[string]string{}
	for _, e := range got.Entries {
		actions[e.Step.Name] = e.Action + "/" + e.Reason
	}
	assert.Equal(t, "run/", actions["codex"])
	assert.Equal(t, "run/", actions["java"])
	assert.Equal(t, "skip/selector", actions["claude"])
	assert.Equal(t, "skip/selector", actions["opencode"])
	assert.Equal(t, "skip/selector", actions["pi"])
	assert.Equal(t, 3, got.Summary.Skipped)
}

func TestPlanCmd_ArchitectureWarning(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("plan", "--agent", "opencode", "--arch", "aarch64")
	require.NoError(t, err)
	assert.Contains(t, out, "skip (architecture)")
	assert.Contains(t, out, "WARNING")
}

func TestPlanCmd_AgentFromBuildArg(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("--build-arg", "AGENT=pi", "plan", "--arch", "x86_64")
	require.NoError(t, err)
	assert.Contains(t, out, "Agent: pi")
}

func TestPlanCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown agent", []string{"plan", "--agent", "cursor"}},
		{"unknown phase", []string{"plan", "--phase", "desktop"}},
		{"unknown step", []string{"plan", "--only", "emacs"}},
		{"bad version", []string{"--build-arg", "JAVA_VERSION=latest", "plan"}},
		{"malformed build arg", []string{"--build-arg", "JAVA_VERSION", "plan"}},
		{"missing manifest", []string{"--manifest", "/nonexistent/manifest.yaml", "plan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, _, err := env.run(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestEnvCmd(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("env", "--arch", "x86_64", "--format", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "export JAVA_HOME=/opt/java/temurin\n")
	assert.Contains(t, out, "export UV_LINK_MODE=copy\n")
	assert.Contains(t, out, "export PATH=")
	assert.Contains(t, out, "/opt/java/temurin/bin")
}

func TestEnvCmd_UnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("env", "--format", "xml")
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("validate")
	assert.NoError(t, err)
}

func TestValidateCmd_Invalid(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: "1"
image:
  name: broken
  user: takopi
  home: /home/takopi
  marker_dir: /home/takopi/.takopi-docker
steps:
  - name: tools
    phase: system
    method: apt
    packages: [curl]
`), 0644))

	out, _, err := env.run("--manifest", path, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "image.base")
}

func TestDockerfileCmd(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("dockerfile")
	require.NoError(t, err)
	assert.Contains(t, out, "FROM python:3.14-trixie\n")
	assert.Contains(t, out, "RUN takopi-docker provision --phase system --agent ${AGENT}\n")
	assert.Contains(t, out, `ENTRYPOINT ["takopi-docker", "entrypoint"]`)
}

func TestDockerfileCmd_Output(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "Dockerfile")

	out, _, err := env.run("dockerfile", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FROM python:3.14-trixie")
}

func TestDockerfileCmd_CopyManifestNeedsManifest(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("dockerfile", "--copy-manifest")
	assert.Error(t, err)
}

func TestProvisionCmd_EnvStep(t *testing.T) {
	env := newTestEnv(t)
	stateFile := filepath.Join(env.dir, "provision.json")
	metricsFile := filepath.Join(env.dir, "takopi.prom")

	out, _, err := env.run("provision", "--only", "base-env",
		"--state-file", stateFile, "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "UV_LINK_MODE=copy\n")

	run, err := state.NewStore(stateFile).Last()
	require.NoError(t, err)
	assert.True(t, run.Succeeded)
	assert.Equal(t, "all", run.Selector)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "takopi_provision_steps_total")
}

func TestProvisionCmd_DryRunRecordsNothing(t *testing.T) {
	env := newTestEnv(t)
	stateFile := filepath.Join(env.dir, "provision.json")

	_, _, err := env.run("provision", "--dry-run", "--only", "base-env", "--state-file", stateFile)
	require.NoError(t, err)
	assert.NoFileExists(t, stateFile)
}

func TestStatusCmd_JSON(t *testing.T) {
	env := newTestEnv(t)
	stateFile := filepath.Join(env.dir, "provision.json")

	_, _, err := env.run("provision", "--only", "base-env", "--state-file", stateFile)
	require.NoError(t, err)

	out, _, err := env.run("status", "--json", "--state-file", stateFile)
	require.NoError(t, err)

	var got statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Agents, 4)
	assert.Len(t, got.Toolchain, 6)
	require.NotNil(t, got.LastRun)
	assert.True(t, got.LastRun.Succeeded)
}

func TestStatusCmd_NoRecord(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Agents")
	assert.Contains(t, out, "Toolchain")
	assert.Contains(t, out, "No provisioning run recorded.")
}

func stubEntrypoint(t *testing.T, tty bool) (*[]string, *bool) {
	t.Helper()
	var argv []string
	configured := false

	oldExec, oldTerm, oldConfigure := execProcess, isTerminal, configure
	t.Cleanup(func() { execProcess, isTerminal, configure = oldExec, oldTerm, oldConfigure })

	execProcess = func(_ string, args []string, _ []string) error {
		argv = args
		return nil
	}
	isTerminal = func() bool { return tty }
	configure = func(*runContext) error {
		configured = true
		return nil
	}
	return &argv, &configured
}

func TestEntrypointCmd_ExecsCommand(t *testing.T) {
	env := newTestEnv(t)
	argv, configured := stubEntrypoint(t, true)

	_, stderr, err := env.run("entrypoint", "sh", "-c", "true")
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-c", "true"}, *argv)
	assert.False(t, *configured)
	assert.Contains(t, stderr, "takopi-docker-java")

	home := os.Getenv("HOME")
	assert.DirExists(t, filepath.Join(home, ".local", "bin"))
	assert.DirExists(t, filepath.Join(home, ".takopi"))
	assert.DirExists(t, env.markerDir)
}

func TestEntrypointCmd_Quiet(t *testing.T) {
	env := newTestEnv(t)
	stubEntrypoint(t, false)

	_, stderr, err := env.run("entrypoint", "-q", "sh")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "takopi-docker-java")
}

func TestEntrypointCmd_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	stubEntrypoint(t, false)

	_, _, err := env.run("entrypoint", "definitely-not-a-command-xyz")
	assert.Error(t, err)
}

func TestEntrypointCmd_NoCommand(t *testing.T) {
	t.Run("terminal launches configurator", func(t *testing.T) {
		env := newTestEnv(t)
		_, configured := stubEntrypoint(t, true)

		_, _, err := env.run("entrypoint")
		require.NoError(t, err)
		assert.True(t, *configured)
	})

	t.Run("no terminal exits", func(t *testing.T) {
		env := newTestEnv(t)
		_, configured := stubEntrypoint(t, false)

		_, stderr, err := env.run("entrypoint")
		require.NoError(t, err)
		assert.False(t, *configured)
		assert.Contains(t, stderr, "exiting")
	})
}
