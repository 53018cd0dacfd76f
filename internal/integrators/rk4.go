package integrators

import "github.com/san-kum/odesolve/internal/dynamo"

// Stepper advances x by a single signed step h.
type Stepper[S any] interface {
	Step(sys dynamo.System[S], x S, t, h float64) S
}

// RK4 is the classical fourth-order Runge-Kutta step over any state space.
type RK4[S any] struct {
	space dynamo.Space[S]
}

func NewRK4[S any](space dynamo.Space[S]) *RK4[S] {
	return &RK4[S]{space: space}
}

// Step makes four derivative evaluations. Each slope is frozen before it is
// combined so later arithmetic cannot overwrite a consumed intermediate.
func (r *RK4[S]) Step(sys dynamo.System[S], x S, t, h float64) S {
	sp := r.space
	half := 0.5 * h
	tHalf := t + half

	k1 := sp.Freeze(sys.Derive(x, t))
	k2 := sp.Freeze(sys.Derive(sp.AddScaled(x, half, k1), tHalf))
	k3 := sp.Freeze(sys.Derive(sp.AddScaled(x, half, k2), tHalf))
	k4 := sp.Freeze(sys.Derive(sp.AddScaled(x, h, k3), t+h))

	return sp.Combine(x, h, k1, k2, k3, k4)
}

// counted wraps a system and counts Derive calls for Stats.
type counted[S any] struct {
	sys dynamo.System[S]
	n   int
}

func (c *counted[S]) Derive(x S, t float64) S {
	c.n++
	return c.sys.Derive(x, t)
}

// identity strips the counting wrapper so caches see the caller's system.
func identity[S any](sys dynamo.System[S]) dynamo.System[S] {
	if c, ok := sys.(*counted[S]); ok {
		return c.sys
	}
	return sys
}
