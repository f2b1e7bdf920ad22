package drift

import (
	"errors"
	"fmt"
)

// Domain errors for the particle-tracking core.
var (
	// ErrInvalidInput indicates mismatched or empty particle seed arrays.
	ErrInvalidInput = errors.New("drift: invalid particle input arrays")

	// ErrOutsideDomain indicates a seed batch with no usable particle inside
	// the horizontal domain.
	ErrOutsideDomain = errors.New("drift: seed particle outside the model domain")

	// ErrBoundsViolation indicates a vertical position beyond the sea floor
	// or free surface under the configured datum.
	ErrBoundsViolation = errors.New("drift: particle vertical position out of bounds")

	// ErrNoConvergence indicates an adaptive step exhausted its refinement
	// budget without meeting tolerance.
	ErrNoConvergence = errors.New("drift: adaptive step failed to converge")

	// ErrUnsupportedSource indicates an unrecognized data source name.
	ErrUnsupportedSource = errors.New("drift: unsupported data source")

	// ErrUnsupportedScheme indicates an unrecognized numerical method name.
	ErrUnsupportedScheme = errors.New("drift: unsupported numerical method")
)

// SeedError reports which particle made a seed batch fail.
type SeedError struct {
	Particle int
	X, Y, Z  float64
	Wrapped  error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("particle %d at (%g, %g, %g): %v", e.Particle, e.X, e.Y, e.Z, e.Wrapped)
}

func (e *SeedError) Unwrap() error {
	return e.Wrapped
}

// StepError wraps an integration failure with enough context to diagnose it.
type StepError struct {
	Particle int
	Time     float64
	Dt       float64
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("particle %d (t=%.4f, dt=%.4f): %v", e.Particle, e.Time, e.Dt, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
