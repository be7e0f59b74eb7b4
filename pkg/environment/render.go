package environment

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zorro/takopi-docker/pkg/envfile"
)

// Format selects a renderer.
type Format string

const (
	FormatDotenv     Format = "dotenv"
	FormatShell      Format = "shell"
	FormatJSON       Format = "json"
	FormatDockerfile Format = "dockerfile"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatDotenv, FormatShell, FormatJSON, FormatDockerfile}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (valid: dotenv, shell, json, dockerfile)", s)
}

// Render writes the descriptor in the given format.
func (d Descriptor) Render(w io.Writer, format Format) error {
	switch format {
	case FormatDotenv:
		return envfile.Write(w, d.Entries())
	case FormatShell:
		for _, e := range d.Entries() {
			if _, err := fmt.Fprintf(w, "export %s=%s\n", e.Key, envfile.Quote(e.Value)); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatDockerfile:
		_, err := io.WriteString(w, d.DockerfileENV())
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// DockerfileENV returns a single ENV instruction, or "" when empty.
func (d Descriptor) DockerfileENV() string {
	entries := d.Entries()
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("ENV")
	for i, e := range entries {
		if i > 0 {
			b.WriteString(" \\\n   ")
		}
		fmt.Fprintf(&b, " %s=%s", e.Key, dockerQuote(e.Value))
	}
	b.WriteString("\n")
	return b.String()
}

func dockerQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\"'\\$") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`)
	return `"` + r.Replace(v) + `"`
}
