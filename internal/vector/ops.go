package vector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/odesolve/internal/dynamo"
)

// target picks the output of a transforming operation. An explicit
// mutability always allocates; otherwise a mutable receiver is reused and an
// immutable one is copied into a fresh mutable vector.
func (v *Vector) target(out []Mutability) *Vector {
	if len(out) > 0 {
		return New(len(v.data), out[0])
	}
	if v.mut == Mutable {
		return v
	}
	return New(len(v.data), Mutable)
}

func (v *Vector) mustMatch(w *Vector) {
	if len(v.data) != len(w.data) {
		panic(fmt.Errorf("%w: %d != %d", dynamo.ErrDimensionMismatch, len(v.data), len(w.data)))
	}
}

func (v *Vector) Add(w *Vector, out ...Mutability) *Vector {
	v.mustMatch(w)
	dst := v.target(out)
	floats.AddTo(dst.data, v.data, w.data)
	return dst
}

func (v *Vector) Sub(w *Vector, out ...Mutability) *Vector {
	v.mustMatch(w)
	dst := v.target(out)
	floats.SubTo(dst.data, v.data, w.data)
	return dst
}

func (v *Vector) Mult(w *Vector, out ...Mutability) *Vector {
	v.mustMatch(w)
	dst := v.target(out)
	floats.MulTo(dst.data, v.data, w.data)
	return dst
}

func (v *Vector) Div(w *Vector, out ...Mutability) *Vector {
	v.mustMatch(w)
	dst := v.target(out)
	floats.DivTo(dst.data, v.data, w.data)
	return dst
}

func (v *Vector) AddScalar(s float64, out ...Mutability) *Vector {
	dst := v.target(out)
	copy(dst.data, v.data)
	floats.AddConst(s, dst.data)
	return dst
}

func (v *Vector) SubScalar(s float64, out ...Mutability) *Vector {
	return v.Apply(func(x float64) float64 { return x - s }, out...)
}

func (v *Vector) MultScalar(s float64, out ...Mutability) *Vector {
	dst := v.target(out)
	floats.ScaleTo(dst.data, s, v.data)
	return dst
}

// DivScalar divides every element by s. It does not multiply by 1/s, which
// would round differently.
func (v *Vector) DivScalar(s float64, out ...Mutability) *Vector {
	return v.Apply(func(x float64) float64 { return x / s }, out...)
}

// Apply maps fn over every element.
func (v *Vector) Apply(fn func(float64) float64, out ...Mutability) *Vector {
	dst := v.target(out)
	for i, x := range v.data {
		dst.data[i] = fn(x)
	}
	return dst
}

func (v *Vector) Negate(out ...Mutability) *Vector {
	return v.Apply(func(x float64) float64 { return -x }, out...)
}

func (v *Vector) Inverse(out ...Mutability) *Vector {
	return v.Apply(func(x float64) float64 { return 1 / x }, out...)
}

func (v *Vector) Abs(out ...Mutability) *Vector { return v.Apply(math.Abs, out...) }
func (v *Vector) Signum(out ...Mutability) *Vector { return v.Apply(signum, out...) }
func (v *Vector) Sqrt(out ...Mutability) *Vector { return v.Apply(math.Sqrt, out...) }
func (v *Vector) Cbrt(out ...Mutability) *Vector { return v.Apply(math.Cbrt, out...) }
func (v *Vector) Exp(out ...Mutability) *Vector { return v.Apply(math.Exp, out...) }
func (v *Vector) Expm1(out ...Mutability) *Vector { return v.Apply(math.Expm1, out...) }
func (v *Vector) Log(out ...Mutability) *Vector { return v.Apply(math.Log, out...) }
func (v *Vector) Log1p(out ...Mutability) *Vector { return v.Apply(math.Log1p, out...) }
func (v *Vector) Log10(out ...Mutability) *Vector { return v.Apply(math.Log10, out...) }
func (v *Vector) Sin(out ...Mutability) *Vector { return v.Apply(math.Sin, out...) }
func (v *Vector) Cos(out ...Mutability) *Vector { return v.Apply(math.Cos, out...) }
func (v *Vector) Tan(out ...Mutability) *Vector { return v.Apply(math.Tan, out...) }
func (v *Vector) Asin(out ...Mutability) *Vector { return v.Apply(math.Asin, out...) }
func (v *Vector) Acos(out ...Mutability) *Vector { return v.Apply(math.Acos, out...) }
func (v *Vector) Atan(out ...Mutability) *Vector { return v.Apply(math.Atan, out...) }
func (v *Vector) Sinh(out ...Mutability) *Vector { return v.Apply(math.Sinh, out...) }
func (v *Vector) Cosh(out ...Mutability) *Vector { return v.Apply(math.Cosh, out...) }
func (v *Vector) Tanh(out ...Mutability) *Vector { return v.Apply(math.Tanh, out...) }

func (v *Vector) Pow(exponent float64, out ...Mutability) *Vector {
	return v.Apply(func(x float64) float64 { return math.Pow(x, exponent) }, out...)
}

// Scalb multiplies every element by 2^exp.
func (v *Vector) Scalb(exp int, out ...Mutability) *Vector {
	return v.Apply(func(x float64) float64 { return math.Ldexp(x, exp) }, out...)
}

// signum keeps signed zeros and NaN, and maps everything else to ±1.
func signum(x float64) float64 {
	if x == 0 || math.IsNaN(x) {
		return x
	}
	return math.Copysign(1, x)
}

// Dot returns the inner product of v and w.
func (v *Vector) Dot(w *Vector) (float64, error) {
	if len(v.data) != len(w.data) {
		return 0, fmt.Errorf("%w: %d != %d", dynamo.ErrDimensionMismatch, len(v.data), len(w.data))
	}
	if len(v.data) == 0 {
		return 0, dynamo.ErrEmptyVector
	}
	return floats.Dot(v.data, w.data), nil
}

func (v *Vector) Max() (float64, error) {
	if len(v.data) == 0 {
		return 0, dynamo.ErrEmptyVector
	}
	return floats.Max(v.data), nil
}

func (v *Vector) Min() (float64, error) {
	if len(v.data) == 0 {
		return 0, dynamo.ErrEmptyVector
	}
	return floats.Min(v.data), nil
}

// HasNaN reports whether any element is NaN.
func (v *Vector) HasNaN() bool {
	return floats.HasNaN(v.data)
}
