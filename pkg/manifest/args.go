package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Arg is a build argument with its default value.
type Arg struct {
	Name    string `json:"name"`
	Default string `json:"default"`
}

// Args is an ordered list of build arguments. In YAML it is written as a
// mapping; declaration order is preserved.
type Args []Arg

// UnmarshalYAML decodes a mapping while keeping key order.
func (a *Args) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: args must be a mapping", node.Line)
	}

	out := make(Args, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: arg %q must be a scalar", v.Line, k.Value)
		}
		if seen[k.Value] {
			return fmt.Errorf("line %d: duplicate arg %q", k.Line, k.Value)
		}
		seen[k.Value] = true
		out = append(out, Arg{Name: k.Value, Default: v.Value})
	}

	*a = out
	return nil
}

// MarshalYAML encodes the args as an ordered mapping.
func (a Args) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, arg := range a {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: arg.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: arg.Default, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// Get returns the default of the named arg.
func (a Args) Get(name string) (string, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Default, true
		}
	}
	return "", false
}

// Map returns the args as a name to default map.
func (a Args) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, arg := range a {
		m[arg.Name] = arg.Default
	}
	return m
}

// Names returns arg names in declaration order.
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for _, arg := range a {
		names = append(names, arg.Name)
	}
	return names
}
