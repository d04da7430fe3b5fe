package cloth

import (
	"errors"
	"fmt"
)

// Precondition errors returned by New and Step.
var (
	ErrInvalidDimensions = errors.New("cloth: width and height must be positive")
	ErrInvalidResolution = errors.New("cloth: resolution must be at least 1x1")
	ErrInvalidThickness  = errors.New("cloth: thickness must be positive")
	ErrInvalidTimestep   = errors.New("cloth: frames per second and substeps must be positive")
	ErrInvalidParams     = errors.New("cloth: parameter out of valid bounds")
	ErrPinOutOfRange     = errors.New("cloth: pinned coordinate outside the grid")

	// ErrUnstable indicates a point mass left the finite range after a step.
	ErrUnstable = errors.New("cloth: simulation unstable (NaN or Inf position)")
)

// StepError wraps an error with the index of the step that produced it.
type StepError struct {
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
