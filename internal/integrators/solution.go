package integrators

import "github.com/san-kum/odesolve/internal/dynamo"

// Solution returns x(t) for the initial value problem (sys, xi, ti). Every
// call is an independent solve from (xi, ti); nothing is carried between
// calls, so repeated calls with the same t agree exactly.
//
// When the solver exposes its state space, xi is snapshotted once so later
// changes to a mutable initial state do not leak into the solution.
func Solution[S any](solver dynamo.Solver[S], sys dynamo.System[S], xi S, ti float64) func(t float64) (S, error) {
	if sp, ok := solver.(interface{ Space() dynamo.Space[S] }); ok {
		xi = sp.Space().Freeze(xi)
	}
	return func(t float64) (S, error) {
		return solver.Solve(sys, xi, ti, t)
	}
}
