package integrators

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/vector"
)

// Adaptive chooses step sizes by step doubling: each trial compares one full
// RK4 step against two half steps and accepts when their error ratio is
// below one. The accepted state is the two-half-step result.
type Adaptive[S any] struct {
	space   dynamo.Space[S]
	stepper Stepper[S]
	cfg     config.Adaptive
	logger  *slog.Logger
}

func NewAdaptive[S any](space dynamo.Space[S], cfg config.Adaptive, opts ...Option[S]) (*Adaptive[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(space, opts)
	return &Adaptive[S]{
		space:   space,
		stepper: o.stepper,
		cfg:     cfg.Normalized(),
		logger:  o.logger,
	}, nil
}

func NewScalarAdaptive(cfg config.Adaptive, opts ...Option[float64]) (*Adaptive[float64], error) {
	return NewAdaptive[float64](Scalars{}, cfg, opts...)
}

func NewVectorAdaptive(cfg config.Adaptive, opts ...Option[*vector.Vector]) (*Adaptive[*vector.Vector], error) {
	return NewAdaptive[*vector.Vector](Vectors{}, cfg, opts...)
}

func (a *Adaptive[S]) Space() dynamo.Space[S] { return a.space }

func (a *Adaptive[S]) Solve(sys dynamo.System[S], xi S, ti, t float64) (S, error) {
	x, _, err := a.SolveStats(sys, xi, ti, t)
	return x, err
}

func (a *Adaptive[S]) SolveStats(sys dynamo.System[S], xi S, ti, t float64) (x S, st dynamo.Stats, err error) {
	defer recoverShape(&err)

	xi = a.space.Freeze(xi)
	st.Time = ti
	if err := checkTimes(ti, t); err != nil {
		return x, st, err
	}
	if t == ti {
		return xi, st, nil
	}

	c := &counted[S]{sys: sys}
	xi, ti, err = a.advance(c, xi, ti, t, &st)
	st.Evaluations = c.n
	if err != nil {
		st.Time = ti
		a.logger.Warn("adaptive solve failed", "ti", ti, "t", t, "steps", st.Steps, "rejected", st.Rejected, "err", err)
		return x, st, err
	}

	if t != ti {
		xi = a.stepper.Step(c, xi, ti, t-ti)
		st.Steps++
		st.LastStepSize = t - ti
		st.Evaluations = c.n
	}

	st.Time = t
	a.logger.Debug("adaptive solve", "t", t, "steps", st.Steps, "rejected", st.Rejected, "evaluations", st.Evaluations)
	return xi, st, nil
}

// advance commits accepted steps until the next one would pass t or a step
// lands on t exactly. It returns the last committed state and time; the
// caller closes any remaining gap.
func (a *Adaptive[S]) advance(sys dynamo.System[S], xi S, ti, t float64, st *dynamo.Stats) (S, float64, error) {
	sign := 1.0
	if t < ti {
		sign = -1.0
	}
	tau := sign * a.cfg.InitialStepSize

	for {
		accepted := false
		for try := 0; try < a.cfg.MaxTries; try++ {
			half := 0.5 * tau
			small := a.space.Freeze(a.stepper.Step(sys, a.stepper.Step(sys, xi, ti, half), ti+half, half))
			big := a.space.Freeze(a.stepper.Step(sys, xi, ti, tau))
			ratio := a.space.ErrorRatio(small, big, a.cfg.LocalTruncationError)

			tauOld := tau
			tau = nextStepSize(sign, tau, ratio, a.cfg.SafetyFactor1, a.cfg.SafetyFactor2)
			if !(ratio < 1.0) {
				st.Rejected++
				continue
			}

			accepted = true
			next := ti + tauOld
			tDiff := sign * (t - next)
			if tDiff < 0 {
				return xi, ti, nil
			}
			if next == ti {
				return xi, ti, fmt.Errorf("%w: tau=%g at ti=%g", dynamo.ErrStepTooSmall, tauOld, ti)
			}
			xi, ti = small, next
			st.Steps++
			st.LastStepSize = tauOld
			if tDiff == 0 {
				return xi, ti, nil
			}
			break
		}
		if !accepted {
			return xi, ti, &dynamo.ConvergenceError{Time: ti, Tries: a.cfg.MaxTries, StepSize: tau}
		}
	}
}

// nextStepSize proposes the step after a trial with the given error ratio.
// The proposal is clamped to within a factor of safe2 of tau in magnitude,
// keeping the sign of the integration direction.
func nextStepSize(sign, tau, ratio, safe1, safe2 float64) float64 {
	lo, hi := tau/safe2, safe2*tau
	candidate := safe1 * tau * math.Pow(ratio, -0.2)
	if math.IsNaN(candidate) {
		return lo
	}
	if sign > 0 {
		return math.Min(math.Max(candidate, lo), hi)
	}
	return math.Max(math.Min(candidate, lo), hi)
}
