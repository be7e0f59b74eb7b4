package provision

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal step failure.
type Kind string

const (
	KindNetwork Kind = "network"
	KindExtract Kind = "extract"
	KindExit    Kind = "exit"
	KindConfig  Kind = "config"
)

var (
	// ErrNetwork is returned when an artifact cannot be fetched.
	ErrNetwork = errors.New("network failure")
	// ErrExtract is returned for corrupt or unexpected archives.
	ErrExtract = errors.New("extraction failure")
	// ErrExit is returned when a command exits non-zero or cannot start.
	ErrExit = errors.New("command failed")
	// ErrConfig is returned for steps that cannot be executed as declared.
	ErrConfig = errors.New("invalid step")
	// ErrChecksum is returned when a download does not match its declared SHA256.
	ErrChecksum = errors.New("checksum mismatch")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindExtract:
		return ErrExtract
	case KindExit:
		return ErrExit
	default:
		return ErrConfig
	}
}

// StepError is the error that aborts a run.
type StepError struct {
	Step string
	Kind Kind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed (%s): %v", e.Step, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is.
func (e *StepError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

// classify wraps err for step, inferring the kind from sentinels in the chain.
// Errors without a known sentinel are exit failures.
func classify(step string, err error) *StepError {
	var se *StepError
	if errors.As(err, &se) {
		return se
	}

	kind := KindExit
	switch {
	case errors.Is(err, ErrConfig):
		kind = KindConfig
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrChecksum):
		kind = KindNetwork
	case errors.Is(err, ErrExtract):
		kind = KindExtract
	}
	return &StepError{Step: step, Kind: kind, Err: err}
}
