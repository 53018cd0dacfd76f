package integrators

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/vector"
)

// Fixed marches a state with constant-size RK4 steps and finishes with one
// shorter step that lands exactly on the target time.
type Fixed[S any] struct {
	space   dynamo.Space[S]
	stepper Stepper[S]
	step    float64
	logger  *slog.Logger
}

func NewFixed[S any](space dynamo.Space[S], cfg config.Fixed, opts ...Option[S]) (*Fixed[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(space, opts)
	return &Fixed[S]{
		space:   space,
		stepper: o.stepper,
		step:    cfg.Normalized().StepSize,
		logger:  o.logger,
	}, nil
}

func NewScalarFixed(cfg config.Fixed, opts ...Option[float64]) (*Fixed[float64], error) {
	return NewFixed[float64](Scalars{}, cfg, opts...)
}

func NewVectorFixed(cfg config.Fixed, opts ...Option[*vector.Vector]) (*Fixed[*vector.Vector], error) {
	return NewFixed[*vector.Vector](Vectors{}, cfg, opts...)
}

func (f *Fixed[S]) Space() dynamo.Space[S] { return f.space }

func (f *Fixed[S]) Solve(sys dynamo.System[S], xi S, ti, t float64) (S, error) {
	x, _, err := f.SolveStats(sys, xi, ti, t)
	return x, err
}

func (f *Fixed[S]) SolveStats(sys dynamo.System[S], xi S, ti, t float64) (x S, st dynamo.Stats, err error) {
	defer recoverShape(&err)

	xi = f.space.Freeze(xi)
	st.Time = ti
	if err := checkTimes(ti, t); err != nil {
		return x, st, err
	}
	if t == ti {
		return xi, st, nil
	}

	c := &counted[S]{sys: sys}
	dt := f.step
	if t < ti {
		dt = -dt
	}

	steps := math.Floor((t - ti) / dt)
	if steps >= math.MaxInt64 {
		return xi, st, fmt.Errorf("%w: %g steps of %g from %g to %g", dynamo.ErrStepTooSmall, steps, dt, ti, t)
	}
	for range int(steps) {
		xi = f.space.Freeze(f.stepper.Step(c, xi, ti, dt))
		ti += dt
		st.Steps++
		st.LastStepSize = dt
	}
	if t != ti {
		xi = f.stepper.Step(c, xi, ti, t-ti)
		st.Steps++
		st.LastStepSize = t - ti
	}

	st.Time = t
	st.Evaluations = c.n
	f.logger.Debug("fixed solve", "t", t, "steps", st.Steps, "evaluations", st.Evaluations)
	return xi, st, nil
}
