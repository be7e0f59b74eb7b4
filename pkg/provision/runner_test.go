package provision

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestExecRunner(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), Command{
		Name:  "sh",
		Args:  []string{"-c", `read line; echo "out:$line:$GREETING"; echo err >&2`},
		Env:   []string{"GREETING=hi"},
		Stdin: bytesReader("input\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "out:input:hi\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := &ExecRunner{Stdout: io.Discard, Stderr: io.Discard}

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExit))
	assert.Contains(t, err.Error(), "status 3")
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := &ExecRunner{Stdout: io.Discard, Stderr: io.Discard}

	err := r.Run(context.Background(), Command{Name: "takopi-no-such-binary"})
	assert.True(t, errors.Is(err, ErrExit))
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Name: "apt-get", Args: []string{"install", "-y", "curl"}}, "apt-get install -y curl"},
		{Command{Name: "sh", Args: []string{"-c", "rm -rf /var/lib/apt/lists/*"}}, "sh -c 'rm -rf /var/lib/apt/lists/*'"},
		{Command{Name: "sh", Args: []string{"-c", "echo 'hi'"}}, `sh -c 'echo '\''hi'\'''`},
		{Command{Name: "env", Args: []string{""}}, "env ''"},
		{Command{Name: "uv", Args: []string{"tool", "install", "-U", "takopi-slack[all]>=0.2"}}, "uv tool install -U 'takopi-slack[all]>=0.2'"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}
