package physics

import "errors"

var (
	// ErrNegativeMass indicates a body constructed with a negative mass.
	ErrNegativeMass = errors.New("physics: mass must not be negative")

	// ErrNonFinite indicates NaN or Inf in a body's initial values.
	ErrNonFinite = errors.New("physics: non-finite position, velocity or mass")

	// ErrMasslessMerge indicates a merge whose combined mass is not positive.
	ErrMasslessMerge = errors.New("physics: cannot merge bodies with zero combined mass")

	// ErrAbsorbed indicates an operation on a body that was already absorbed.
	ErrAbsorbed = errors.New("physics: body already absorbed")
)
