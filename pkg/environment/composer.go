// Package environment composes the runtime environment of the image from the
// variable and search-path contributions of executed steps.
package environment

import (
	"os"
	"regexp"
	"strings"
)

var refRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Var is a single environment variable.
type Var struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Composer accumulates contributions in a single linear pass.
type Composer struct {
	seeds  map[string]string
	vars   []Var
	index  map[string]int
	groups [][]string
}

// NewComposer returns a composer whose references may resolve against seeds.
// Seeds are build arguments and image builtins; they are never emitted.
func NewComposer(seeds map[string]string) *Composer {
	c := &Composer{
		seeds: make(map[string]string, len(seeds)),
		index: make(map[string]int),
	}
	for k, v := range seeds {
		c.seeds[k] = v
	}
	return c
}

// AddVar declares a variable. References in value are resolved against
// variables declared earlier, then seeds. Unresolvable references expand to
// the empty string. Redeclaring a variable keeps its position and overrides
// its value.
func (c *Composer) AddVar(name, value string) {
	value = c.Resolve(value)
	if i, ok := c.index[name]; ok {
		c.vars[i].Value = value
		return
	}
	c.index[name] = len(c.vars)
	c.vars = append(c.vars, Var{Name: name, Value: value})
}

// AddPath adds a group of search-path entries. Groups added later take
// precedence over earlier groups; entries keep their order within a group.
func (c *Composer) AddPath(entries ...string) {
	group := make([]string, 0, len(entries))
	for _, e := range entries {
		if e = c.Resolve(e); e != "" {
			group = append(group, e)
		}
	}
	if len(group) > 0 {
		c.groups = append(c.groups, group)
	}
}

// Resolve expands ${NAME} references in s.
func (c *Composer) Resolve(s string) string {
	return refRe.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if i, ok := c.index[name]; ok {
			return c.vars[i].Value
		}
		return c.seeds[name]
	})
}

// Compose returns the descriptor. basePath is a colon-separated list placed
// after every contributed entry.
func (c *Composer) Compose(basePath string) Descriptor {
	d := Descriptor{
		Vars: append([]Var(nil), c.vars...),
	}

	seen := make(map[string]bool)
	add := func(entry string) {
		if entry == "" || seen[entry] {
			return
		}
		seen[entry] = true
		d.Path = append(d.Path, entry)
	}

	for i := len(c.groups) - 1; i >= 0; i-- {
		for _, entry := range c.groups[i] {
			add(entry)
		}
	}
	for _, entry := range strings.Split(basePath, string(os.PathListSeparator)) {
		add(entry)
	}
	return d
}

// DefaultBasePath is the search path of the base image.
const DefaultBasePath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"
