package environment

import (
	"os"
	"strings"

	"github.com/zorro/takopi-docker/pkg/envfile"
)

// PathVar is the name of the composed search path variable.
const PathVar = "PATH"

// Descriptor is the final environment handed to the running container.
type Descriptor struct {
	Vars []Var    `json:"vars"`
	Path []string `json:"path"`
}

// PathString joins the search path.
func (d Descriptor) PathString() string {
	return strings.Join(d.Path, string(os.PathListSeparator))
}

// Lookup returns the value of name. PATH is the composed search path.
func (d Descriptor) Lookup(name string) (string, bool) {
	if name == PathVar && len(d.Path) > 0 {
		return d.PathString(), true
	}
	for _, v := range d.Vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Entries returns the variables followed by PATH.
func (d Descriptor) Entries() []envfile.Entry {
	entries := make([]envfile.Entry, 0, len(d.Vars)+1)
	for _, v := range d.Vars {
		if v.Name == PathVar {
			continue
		}
		entries = append(entries, envfile.Entry{Key: v.Name, Value: v.Value})
	}
	if len(d.Path) > 0 {
		entries = append(entries, envfile.Entry{Key: PathVar, Value: d.PathString()})
	}
	return entries
}

// Environ returns the descriptor as KEY=VALUE strings.
func (d Descriptor) Environ() []string {
	entries := d.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key+"="+e.Value)
	}
	return out
}

// Overlay returns base (KEY=VALUE strings, as from os.Environ) with the
// descriptor's variables replacing or appended to it.
func (d Descriptor) Overlay(base []string) []string {
	entries := d.Entries()
	set := make(map[string]string, len(entries))
	for _, e := range entries {
		set[e.Key] = e.Value
	}

	out := make([]string, 0, len(base)+len(entries))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := set[key]; ok {
			continue
		}
		out = append(out, kv)
	}
	return append(out, d.Environ()...)
}
