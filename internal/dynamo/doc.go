// Package dynamo provides the core types shared by the integrators.
//
// The package defines the vocabulary used to integrate first-order ordinary
// differential equations dx/dt = f(x, t):
//
//   - [System]: the right-hand side f, implemented by models or by [Func]
//   - [Space]: the arithmetic a state type offers the Runge-Kutta stepper
//   - [Solver]: advances a known state (xi, ti) to a requested time t
//   - [Stats]: per-solve bookkeeping returned next to a result
//
// # Example
//
//	ramp := dynamo.Func[float64](func(x, t float64) float64 { return t })
//	solver, _ := integrators.NewScalarAdaptive(config.DefaultAdaptive())
//	x, err := solver.Solve(ramp, 8, -4, 2)
//
// # Thread Safety
//
// Solvers hold no state across calls and may be shared between goroutines.
// A shared step cache (see package memo) serializes its own access.
package dynamo
