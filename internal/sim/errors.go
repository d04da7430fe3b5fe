package sim

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid sim config")

// FrameError reports the frame on which a step failed.
type FrameError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *FrameError) Unwrap() error { return e.Wrapped }
