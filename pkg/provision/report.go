package provision

import (
	"time"

	"github.com/zorro/takopi-docker/pkg/environment"
	"github.com/zorro/takopi-docker/pkg/plan"
)

// Status is the outcome of a step within a run.
type Status string

const (
	StatusRan     Status = "ran"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	// StatusPending marks steps never reached because an earlier step failed.
	StatusPending Status = "pending"
)

// StepResult records what happened to one step.
type StepResult struct {
	Name      string        `json:"name"`
	Phase     string        `json:"phase"`
	Method    string        `json:"method"`
	Agent     string        `json:"agent,omitempty"`
	Status    Status        `json:"status"`
	Reason    plan.Reason   `json:"reason,omitempty"`
	Warning   string        `json:"warning,omitempty"`
	Commands  []string      `json:"commands,omitempty"`
	Marker    string        `json:"marker,omitempty"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	ErrorKind Kind          `json:"error_kind,omitempty"`
}

// Report is the outcome of a provisioning run.
type Report struct {
	RunID      string                 `json:"run_id"`
	Selector   string                 `json:"selector"`
	Arch       string                 `json:"arch"`
	DryRun     bool                   `json:"dry_run,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Steps      []StepResult           `json:"steps"`
	Env        environment.Descriptor `json:"env"`
}

// Result returns the result for the named step, or nil.
func (r *Report) Result(name string) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// Count returns the number of steps with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the failed step, or nil.
func (r *Report) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Succeeded reports whether no step failed.
func (r *Report) Succeeded() bool {
	return r.Failed() == nil
}

// Markers returns the marker files written during the run.
func (r *Report) Markers() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Marker != "" {
			out = append(out, s.Marker)
		}
	}
	return out
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
