// Package plan decides which manifest steps apply to a build.
package plan

import (
	"github.com/zorro/takopi-docker/pkg/agent"
	"github.com/zorro/takopi-docker/pkg/arch"
	"github.com/zorro/takopi-docker/pkg/manifest"
)

// Action is what the executor does with a step.
type Action string

const (
	ActionRun  Action = "run"
	ActionSkip Action = "skip"
)

// Reason explains a skip.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonSelector     Reason = "selector"
	ReasonArchitecture Reason = "architecture"
	ReasonFiltered     Reason = "filtered"
)

// Entry is one evaluated step.
type Entry struct {
	Step    manifest.Step `json:"step"`
	Action  Action        `json:"action"`
	Reason  Reason        `json:"reason,omitempty"`
	Warning string        `json:"warning,omitempty"`
}

// Runs reports whether the entry executes.
func (e Entry) Runs() bool {
	return e.Action == ActionRun
}

// Options restricts evaluation to a subset of the manifest.
type Options struct {
	// Phases limits execution to these phases. Empty means all phases.
	Phases []manifest.Phase
	// Only limits execution to these step names. Empty means all steps.
	Only []string
}

// Plan is the evaluated manifest, in declared order.
type Plan struct {
	Manifest *manifest.Manifest `json:"-"`
	Selector agent.Selector     `json:"selector"`
	Arch     string             `json:"arch"`
	Entries  []Entry            `json:"entries"`
}

// Evaluate resolves each step against the selector and architecture.
//
// A step runs when its agent predicate matches (non-agent steps always match)
// and its architecture list is empty or contains arch. An architecture
// mismatch is a skip with a warning, never an error.
func Evaluate(m *manifest.Manifest, sel agent.Selector, machine string, opts Options) *Plan {
	p := &Plan{
		Manifest: m,
		Selector: sel,
		Arch:     machine,
		Entries:  make([]Entry, 0, len(m.Steps)),
	}

	phases := make(map[manifest.Phase]bool, len(opts.Phases))
	for _, ph := range opts.Phases {
		phases[ph] = true
	}
	only := make(map[string]bool, len(opts.Only))
	for _, name := range opts.Only {
		only[name] = true
	}

	for _, step := range m.Steps {
		p.Entries = append(p.Entries, evaluate(step, sel, machine, phases, only))
	}
	return p
}

func evaluate(step manifest.Step, sel agent.Selector, machine string, phases map[manifest.Phase]bool, only map[string]bool) Entry {
	e := Entry{Step: step, Action: ActionSkip}

	switch {
	case len(phases) > 0 && !phases[step.Phase]:
		e.Reason = ReasonFiltered
	case len(only) > 0 && !only[step.Name]:
		e.Reason = ReasonFiltered
	case step.IsAgent() && !sel.Matches(step.When.Agent):
		e.Reason = ReasonSelector
	case !arch.OneOf(machine, step.When.Arch):
		e.Reason = ReasonArchitecture
		e.Warning = "skipping " + step.Name + ": architecture " + machine + " is not supported"
	default:
		e.Action = ActionRun
	}
	return e
}

// Runnable returns the entries that execute, in order.
func (p *Plan) Runnable() []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Runs() {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns the warnings raised during evaluation.
func (p *Plan) Warnings() []string {
	var out []string
	for _, e := range p.Entries {
		if e.Warning != "" {
			out = append(out, e.Warning)
		}
	}
	return out
}

// StepNames returns the names of the steps that execute.
func (p *Plan) StepNames() []string {
	var names []string
	for _, e := range p.Runnable() {
		names = append(names, e.Step.Name)
	}
	return names
}

// Agents returns the agent IDs installed by the plan.
func (p *Plan) Agents() []string {
	var ids []string
	for _, e := range p.Runnable() {
		if e.Step.IsAgent() {
			ids = append(ids, e.Step.When.Agent)
		}
	}
	return ids
}

// Entry returns the entry for the named step, or nil.
func (p *Plan) Entry(name string) *Entry {
	for i := range p.Entries {
		if p.Entries[i].Step.Name == name {
			return &p.Entries[i]
		}
	}
	return nil
}

// Summary counts entries by outcome.
type Summary struct {
	Run      int `json:"run"`
	Skipped  int `json:"skipped"`
	Warnings int `json:"warnings"`
}

// Summary returns entry counts.
func (p *Plan) Summary() Summary {
	var s Summary
	for _, e := range p.Entries {
		if e.Runs() {
			s.Run++
		} else {
			s.Skipped++
		}
		if e.Warning != "" {
			s.Warnings++
		}
	}
	return s
}
