package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalManifest = `version: "1"
image:
  base: debian:trixie
  user: dev
  home: /home/dev
  marker_dir: /home/dev/.markers
args:
  AGENT: all
  NODE_MAJOR: "22"
steps:
  - name: node
    phase: node
    method: apt-repo
    key_url: https://deb.example.com/key.gpg
    keyring: /etc/apt/keyrings/example.gpg
    repo: https://deb.example.com/node_${NODE_MAJOR}.x
    suite: nodistro main
    packages: [nodejs]
  - name: codex
    phase: agents
    method: npm
    packages: ["@openai/codex"]
    when:
      agent: codex
    marker: true
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(minimalManifest))
	require.NoError(t, err)

	assert.Equal(t, "debian:trixie", m.Image.Base)
	assert.Equal(t, []string{"node", "codex"}, m.Names())
	assert.Equal(t, []string{"AGENT", "NODE_MAJOR"}, m.Args.Names())

	codex := m.Step("codex")
	require.NotNil(t, codex)
	assert.True(t, codex.IsAgent())
	assert.True(t, codex.Marker)
	assert.Equal(t, MethodNpm, codex.Method)

	assert.Nil(t, m.Step("missing"))
}

func TestParse_UnknownField(t *testing.T) {
	data := strings.Replace(minimalManifest, "marker: true", "markr: true", 1)

	_, err := Parse([]byte(data))
	assert.Error(t, err)
}

func TestParse_UnsupportedVersion(t *testing.T) {
	data := strings.Replace(minimalManifest, `version: "1"`, `version: "9"`, 1)

	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestArgs_DuplicateKey(t *testing.T) {
	data := strings.Replace(minimalManifest, `  NODE_MAJOR: "22"`, "  NODE_MAJOR: \"22\"\n  AGENT: pi", 1)

	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate arg")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalManifest), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Steps, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	result := m.Validate()
	assert.False(t, result.HasErrors(), "embedded manifest has errors: %v", result.Err())
	assert.Zero(t, result.WarningCount(), "embedded manifest has warnings: %v", result.Issues)

	for _, name := range []string{"java", "maven", "gradle", "node", "claude", "codex", "opencode", "pi"} {
		assert.NotNil(t, m.Step(name), "default manifest should declare %s", name)
	}

	opencode := m.Step("opencode")
	require.NotNil(t, opencode)
	assert.Equal(t, []string{"x86_64", "amd64"}, opencode.When.Arch)
}

func TestDefault_PhaseOrder(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	// Java runtime -> build tools -> Node runtime -> user/agent installers.
	idx := func(name string) int {
		for i, n := range m.Names() {
			if n == name {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx("java"), idx("maven"))
	assert.Less(t, idx("maven"), idx("node"))
	assert.Less(t, idx("gradle"), idx("node"))
	assert.Less(t, idx("node"), idx("user"))
	assert.Less(t, idx("user"), idx("claude"))
}

func TestMarshal_RoundTrip(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	data, err := m.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, m.Names(), again.Names())
	assert.Equal(t, m.Args, again.Args)
}
