// Package problems provides reference initial value problems.
//
// Scalar problems implement [dynamo.System] over float64 and vector
// problems over [*vector.Vector]:
//
//   - [Ramp]: dx/dt = t
//   - [Growth]: dx/dt = x·t/10
//   - [Root]: dx/dt = √x·t
//   - [ConstantAcceleration]: dv/dt = a
//   - [Oscillator]: harmonic oscillator with state (v, x)
//   - [Projectile]: 3-D motion under constant acceleration
//   - [Lorenz]: butterfly attractor
//
// All but Lorenz implement [Closed], so numerical results can be checked
// against the exact solution. Parameterized problems implement
// [Configurable].
package problems
