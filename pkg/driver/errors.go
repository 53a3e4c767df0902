package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineStepFailure wraps an error returned by the engine while stepping
	ErrEngineStepFailure = errors.New("engine step failed")

	// ErrExportFailure wraps an error returned while writing measurements
	ErrExportFailure = errors.New("data export failed")
)

// StepError reports the step at which the engine failed
type StepError struct {
	Step    int
	Elapsed float64
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s at step %d (t=%.2f): %v", ErrEngineStepFailure, e.Step, e.Elapsed, e.Err)
}

func (e *StepError) Is(target error) bool { return target == ErrEngineStepFailure }

func (e *StepError) Unwrap() error { return e.Err }

// ExportError reports the artifact that could not be written
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrExportFailure, e.Path, e.Err)
}

func (e *ExportError) Is(target error) bool { return target == ErrExportFailure }

func (e *ExportError) Unwrap() error { return e.Err }
