package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates NaN or Inf in a live body after a step.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a configuration the engine cannot run.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrNilBody indicates a nil entry in the body list.
	ErrNilBody = errors.New("sim: nil body")
)

// SimulationError wraps an error with the step that produced it.
type SimulationError struct {
	Step    int64
	Time    float64
	Body    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Body >= 0 {
		return fmt.Sprintf("step %d (t=%g) body %d: %v", e.Step, e.Time, e.Body, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
