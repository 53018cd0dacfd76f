package dynamo

// System is the right-hand side of dx/dt = f(x, t).
//
// Implementations are assumed pure: the integrators call Derive several
// times per step, sometimes with identical arguments from different trial
// branches.
type System[S any] interface {
	Derive(x S, t float64) S
}

// Func adapts an ordinary function to a System.
type Func[S any] func(x S, t float64) S

func (f Func[S]) Derive(x S, t float64) S {
	return f(x, t)
}

// Space is the arithmetic a state type offers the Runge-Kutta stepper and
// the adaptive controller. Scalars and vectors each provide one.
type Space[S any] interface {
	// Freeze returns a snapshot of x that later arithmetic cannot mutate.
	Freeze(x S) S
	// AddScaled returns x + h*k.
	AddScaled(x S, h float64, k S) S
	// Combine returns x + h/6*(k1 + 2*k2 + 2*k3 + k4).
	Combine(x S, h float64, k1, k2, k3, k4 S) S
	// ErrorRatio compares a two-half-step result against a full-step result
	// relative to the target truncation error. Values below 1 are acceptable.
	ErrorRatio(small, big S, err float64) float64
}

// Solver advances a known state (xi, ti) to time t.
type Solver[S any] interface {
	Solve(sys System[S], xi S, ti, t float64) (S, error)
}

// Stats summarizes a single solve. A fresh value is produced per call.
type Stats struct {
	// Steps is the number of committed steps, including the final tail step.
	Steps int
	// Rejected is the number of adaptive trials whose error ratio was >= 1.
	Rejected int
	// Evaluations is the number of calls made to System.Derive.
	Evaluations int
	// LastStepSize is the signed size of the last committed step.
	LastStepSize float64
	// Time is the time the solve finished at.
	Time float64
}
