package integrators

import (
	"math"

	"github.com/san-kum/odesolve/internal/vector"
)

// eps is the gap between 1.0 and the next float64. It keeps the error ratio
// finite when both trial states are zero.
var eps = math.Nextafter(1, 2) - 1

// Scalars is the state space of float64 values.
type Scalars struct{}

func (Scalars) Freeze(x float64) float64 { return x }

func (Scalars) AddScaled(x, h, k float64) float64 { return x + h*k }

func (Scalars) Combine(x, h, k1, k2, k3, k4 float64) float64 {
	return x + h/6.0*(k1+k4+2.0*(k2+k3))
}

func (Scalars) ErrorRatio(small, big, err float64) float64 {
	return math.Abs(small-big) / (err*(math.Abs(small)+math.Abs(big))/2.0 + eps)
}

// Vectors is the state space of fixed-length vectors. Every intermediate is
// written into a freshly allocated buffer so a trial never aliases the
// caller's state or another trial.
type Vectors struct{}

func (Vectors) Freeze(x *vector.Vector) *vector.Vector { return x.ToImmutable() }

func (Vectors) AddScaled(x *vector.Vector, h float64, k *vector.Vector) *vector.Vector {
	return k.MultScalar(h, vector.Mutable).Add(x)
}

func (Vectors) Combine(x *vector.Vector, h float64, k1, k2, k3, k4 *vector.Vector) *vector.Vector {
	return k2.Add(k3, vector.Mutable).MultScalar(2.0).Add(k1).Add(k4).MultScalar(h / 6.0).Add(x)
}

// ErrorRatio is the largest componentwise ratio. Any NaN component makes the
// whole ratio NaN so the trial is rejected.
func (Vectors) ErrorRatio(small, big *vector.Vector, err float64) float64 {
	diff := small.Sub(big, vector.Mutable).Abs()
	scale := small.Abs(vector.Mutable).Add(big.Abs(vector.Immutable)).MultScalar(err / 2.0).AddScalar(eps)
	ratio := diff.Div(scale)
	if ratio.HasNaN() {
		return math.NaN()
	}
	m, e := ratio.Max()
	if e != nil {
		panic(e)
	}
	return m
}
