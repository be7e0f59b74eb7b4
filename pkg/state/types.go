// Package state persists a record of provisioning runs next to the agent
// markers so the running container can report when it was last provisioned.
package state

import (
	"time"

	"github.com/zorro/takopi-docker/pkg/provision"
)

// Version is the current state file schema version.
const Version = "1.0"

// State is the content of the state file.
type State struct {
	Version string `json:"version"`
	Runs    []Run  `json:"runs"` // Most recent first
}

// Run summarises one provisioning run.
type Run struct {
	RunID      string        `json:"run_id"`
	Selector   string        `json:"selector"`
	Arch       string        `json:"arch"`
	DryRun     bool          `json:"dry_run,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Succeeded  bool          `json:"succeeded"`
	FailedStep string        `json:"failed_step,omitempty"`
	Error      string        `json:"error,omitempty"`
	Steps      []StepSummary `json:"steps"`
	Markers    []string      `json:"markers,omitempty"`
}

// StepSummary is the persisted outcome of a step.
type StepSummary struct {
	Name     string           `json:"name"`
	Status   provision.Status `json:"status"`
	Reason   string           `json:"reason,omitempty"`
	Duration time.Duration    `json:"duration"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{Version: Version, Runs: []Run{}}
}

// FromReport summarises an executor report.
func FromReport(r *provision.Report) Run {
	run := Run{
		RunID:      r.RunID,
		Selector:   r.Selector,
		Arch:       r.Arch,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Succeeded:  r.Succeeded(),
		Markers:    r.Markers(),
		Steps:      make([]StepSummary, 0, len(r.Steps)),
	}
	if failed := r.Failed(); failed != nil {
		run.FailedStep = failed.Name
		run.Error = failed.Error
	}
	for _, s := range r.Steps {
		run.Steps = append(run.Steps, StepSummary{
			Name:     s.Name,
			Status:   s.Status,
			Reason:   string(s.Reason),
			Duration: s.Duration,
		})
	}
	return run
}

// Last returns the most recent run, or nil.
func (s *State) Last() *Run {
	if len(s.Runs) == 0 {
		return nil
	}
	return &s.Runs[0]
}

// LastSuccessful returns the most recent successful, non-dry run, or nil.
func (s *State) LastSuccessful() *Run {
	for i := range s.Runs {
		if s.Runs[i].Succeeded && !s.Runs[i].DryRun {
			return &s.Runs[i]
		}
	}
	return nil
}

// Add records run as the most recent one, replacing any run with the same ID.
func (s *State) Add(run Run) {
	runs := []Run{run}
	for _, r := range s.Runs {
		if r.RunID != run.RunID {
			runs = append(runs, r)
		}
	}
	s.Runs = runs
}
