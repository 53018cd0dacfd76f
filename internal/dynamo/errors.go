package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration and vector operations.
var (
	// ErrInvalidConfig indicates a solver configuration that failed validation.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNonConvergence indicates the adaptive controller exhausted its retries.
	ErrNonConvergence = errors.New("dynamo: adaptive step did not converge")

	// ErrStepTooSmall indicates a step that no longer advances time, or a step
	// count too large to represent.
	ErrStepTooSmall = errors.New("dynamo: timestep too small for the integration interval")

	// ErrInvalidTime indicates a NaN or infinite start or target time.
	ErrInvalidTime = errors.New("dynamo: time must be finite")

	// ErrDimensionMismatch indicates an elementwise operation on vectors of different lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between vectors")

	// ErrIndexOutOfRange indicates a vector index outside [0, n).
	ErrIndexOutOfRange = errors.New("dynamo: index out of range")

	// ErrImmutable indicates an attempt to modify an immutable vector.
	ErrImmutable = errors.New("dynamo: vector is immutable and cannot be modified")

	// ErrEmptyVector indicates a reduction over a vector of length zero.
	ErrEmptyVector = errors.New("dynamo: reduction over empty vector")

	// ErrUnknownProblem indicates a problem name missing from the registry.
	ErrUnknownProblem = errors.New("dynamo: unknown problem")
)

// ConfigError reports which configuration field was rejected.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dynamo: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ConvergenceError wraps ErrNonConvergence with the time at which the
// adaptive controller gave up.
type ConvergenceError struct {
	Time     float64
	Tries    int
	StepSize float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("dynamo: adaptive Runge-Kutta failed at ti = %f after %d tries (tau=%g)", e.Time, e.Tries, e.StepSize)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNonConvergence
}
