package integrators

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/memo"
)

// Option customizes a Fixed or Adaptive solver.
type Option[S any] func(*options[S])

type options[S any] struct {
	logger  *slog.Logger
	stepper Stepper[S]
}

func newOptions[S any](space dynamo.Space[S], opts []Option[S]) options[S] {
	o := options[S]{
		logger:  slog.New(slog.DiscardHandler),
		stepper: NewRK4(space),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for solve summaries and failures.
func WithLogger[S any](l *slog.Logger) Option[S] {
	return func(o *options[S]) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStepper replaces the default RK4 stepper.
func WithStepper[S any](s Stepper[S]) Option[S] {
	return func(o *options[S]) {
		if s != nil {
			o.stepper = s
		}
	}
}

// WithCache makes a scalar solver memoize its RK4 steps in c.
func WithCache(c memo.Cache) Option[float64] {
	return WithStepper[float64](NewCachedRK4(c))
}

// recoverShape converts a vector shape panic raised inside a solve into an
// error. Other panics propagate.
func recoverShape(err *error) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok || !(errors.Is(e, dynamo.ErrDimensionMismatch) ||
		errors.Is(e, dynamo.ErrEmptyVector) ||
		errors.Is(e, dynamo.ErrIndexOutOfRange)) {
		panic(r)
	}
	*err = e
}

func checkTimes(ti, t float64) error {
	if math.IsNaN(ti) || math.IsInf(ti, 0) || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: ti=%g t=%g", dynamo.ErrInvalidTime, ti, t)
	}
	return nil
}
