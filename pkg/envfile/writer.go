package envfile

import (
	"fmt"
	"io"
	"strings"
)

// Entry is a single KEY=VALUE line.
type Entry struct {
	Key   string
	Value string
}

// Write writes entries in order, double-quoting values that need it.
// Output can be read back with Parse.
func Write(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s=%s\n", e.Key, Quote(e.Value)); err != nil {
			return err
		}
	}
	return nil
}

// Quote double-quotes v when it contains whitespace, quotes or shell
// metacharacters.
func Quote(v string) string {
	if v == "" {
		return `""`
	}
	if !strings.ContainsAny(v, " \t\"'$`\\#;&|<>()*?") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(v) + `"`
}
