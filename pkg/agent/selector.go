// Package agent defines the coding-agent selector and the registry of
// supported agent CLIs.
package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Selector chooses which optional agent tooling is included in an image.
type Selector string

const (
	SelectorAll      Selector = "all"
	SelectorClaude   Selector = "claude"
	SelectorCodex    Selector = "codex"
	SelectorOpenCode Selector = "opencode"
	SelectorPi       Selector = "pi"
)

// ErrUnknownSelector is returned when a selector value is not one of the known agents.
var ErrUnknownSelector = errors.New("unknown agent selector")

// Selectors returns every valid selector value in declaration order.
func Selectors() []Selector {
	return []Selector{SelectorAll, SelectorClaude, SelectorCodex, SelectorOpenCode, SelectorPi}
}

// ParseSelector parses a selector value. Matching is case-insensitive and
// surrounding whitespace is ignored. Unknown values are rejected rather than
// selecting nothing.
func ParseSelector(s string) (Selector, error) {
	v := Selector(strings.ToLower(strings.TrimSpace(s)))
	for _, sel := range Selectors() {
		if v == sel {
			return sel, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownSelector, s, validList())
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the selector value.
func (s Selector) String() string {
	return string(s)
}

// IsAll reports whether the selector includes every agent.
func (s Selector) IsAll() bool {
	return s == SelectorAll
}

// Matches reports whether the agent with the given ID is selected.
func (s Selector) Matches(agentID string) bool {
	return s == SelectorAll || string(s) == agentID
}

// Set implements pflag.Value so a Selector can be bound to a flag directly.
func (s *Selector) Set(v string) error {
	sel, err := ParseSelector(v)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// Type implements pflag.Value.
func (s *Selector) Type() string {
	return "agent"
}

func validList() string {
	names := make([]string, 0, len(Selectors()))
	for _, sel := range Selectors() {
		names = append(names, string(sel))
	}
	return strings.Join(names, ", ")
}
