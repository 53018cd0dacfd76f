package vector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odesolve/internal/dynamo"
)

func TestFactories(t *testing.T) {
	tests := []struct {
		name string
		v    *Vector
		want []float64
		mut  Mutability
	}{
		{"zero mutable", New(3, Mutable), []float64{0, 0, 0}, Mutable},
		{"zero immutable", New(2, Immutable), []float64{0, 0}, Immutable},
		{"filled", Filled(3, 2.5, Mutable), []float64{2.5, 2.5, 2.5}, Mutable},
		{"of", Of(Immutable, 1, 2, 3), []float64{1, 2, 3}, Immutable},
		{"mutable of", MutableOf(4, 5), []float64{4, 5}, Mutable},
		{"immutable of", ImmutableOf(6), []float64{6}, Immutable},
		{"empty", New(0, Mutable), []float64{}, Mutable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Values())
			assert.Equal(t, tt.mut, tt.v.Mutability())
			assert.Equal(t, len(tt.want), tt.v.Len())
		})
	}
}

func TestOfCopiesInput(t *testing.T) {
	src := []float64{1, 2, 3}
	v := ImmutableOf(src...)
	src[0] = 99

	assert.Equal(t, 1.0, v.At(0))
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(94789234))
	v := Random(64, Immutable, rng)

	require.Equal(t, 64, v.Len())
	for _, x := range v.Values() {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 1.0)
	}

	again := Random(64, Immutable, rand.New(rand.NewSource(94789234)))
	assert.Equal(t, v.Values(), again.Values(), "same seed should reproduce the vector")

	global := Random(8, Mutable, nil)
	assert.Equal(t, 8, global.Len())
}

func TestConversions(t *testing.T) {
	m := MutableOf(1, 2)
	assert.Same(t, m, m.ToMutable(), "already mutable should be a no-op")

	im := m.ToImmutable()
	assert.NotSame(t, m, im)
	assert.Equal(t, Immutable, im.Mutability())
	assert.Same(t, im, im.ToImmutable(), "already immutable should be a no-op")

	require.NoError(t, m.Set(0, 42))
	assert.Equal(t, 1.0, im.At(0), "conversion must copy the buffer")

	back := im.ToMutable()
	assert.NotSame(t, im, back)
	require.NoError(t, back.Set(1, -1))
	assert.Equal(t, 2.0, im.At(1))
}

func TestGetSet(t *testing.T) {
	m := MutableOf(1, 2, 3)

	require.NoError(t, m.Set(2, 7))
	x, err := m.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 7.0, x)

	_, err = m.Get(3)
	assert.ErrorIs(t, err, dynamo.ErrIndexOutOfRange)
	_, err = m.Get(-1)
	assert.ErrorIs(t, err, dynamo.ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Set(5, 1), dynamo.ErrIndexOutOfRange)

	im := ImmutableOf(1, 2, 3)
	assert.ErrorIs(t, im.Set(0, 5), dynamo.ErrImmutable)
	assert.Equal(t, 1.0, im.At(0))

	assert.Panics(t, func() { im.At(3) })
}

func TestOutputTargetRule(t *testing.T) {
	t.Run("mutable receiver is reused", func(t *testing.T) {
		m := MutableOf(1, 2)
		out := m.AddScalar(1)
		assert.Same(t, m, out)
		assert.Equal(t, []float64{2, 3}, m.Values())
	})

	t.Run("immutable receiver allocates mutable", func(t *testing.T) {
		im := ImmutableOf(1, 2)
		out := im.AddScalar(1)
		assert.NotSame(t, im, out)
		assert.Equal(t, Mutable, out.Mutability())
		assert.Equal(t, []float64{1, 2}, im.Values())
		assert.Equal(t, []float64{2, 3}, out.Values())
	})

	t.Run("explicit immutable always allocates", func(t *testing.T) {
		m := MutableOf(1, 2)
		out := m.MultScalar(2, Immutable)
		assert.NotSame(t, m, out)
		assert.Equal(t, Immutable, out.Mutability())
		assert.Equal(t, []float64{1, 2}, m.Values())
	})

	t.Run("explicit mutable always allocates", func(t *testing.T) {
		m := MutableOf(1, 2)
		out := m.Negate(Mutable)
		assert.NotSame(t, m, out)
		assert.Equal(t, []float64{1, 2}, m.Values())
		assert.Equal(t, []float64{-1, -2}, out.Values())
	})
}

func TestImmutableOperandsUnchanged(t *testing.T) {
	ops := map[string]func(v *Vector) *Vector{
		"add":     func(v *Vector) *Vector { return v.Add(ImmutableOf(1, 1, 1)) },
		"sub":     func(v *Vector) *Vector { return v.Sub(ImmutableOf(1, 1, 1)) },
		"mult":    func(v *Vector) *Vector { return v.Mult(ImmutableOf(2, 2, 2)) },
		"div":     func(v *Vector) *Vector { return v.Div(ImmutableOf(2, 2, 2)) },
		"negate":  func(v *Vector) *Vector { return v.Negate() },
		"inverse": func(v *Vector) *Vector { return v.Inverse() },
		"sqrt":    func(v *Vector) *Vector { return v.Sqrt() },
		"exp":     func(v *Vector) *Vector { return v.Exp() },
		"pow":     func(v *Vector) *Vector { return v.Pow(3) },
		"scalb":   func(v *Vector) *Vector { return v.Scalb(2) },
		"apply":   func(v *Vector) *Vector { return v.Apply(func(x float64) float64 { return x + 10 }) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			im := ImmutableOf(1, 4, 9)
			out := op(im)
			assert.NotSame(t, im, out)
			assert.Equal(t, []float64{1, 4, 9}, im.Values())
		})
	}
}

func TestBinaryOps(t *testing.T) {
	a := ImmutableOf(1, 2, 3)
	b := ImmutableOf(4, 5, 6)

	assert.Equal(t, []float64{5, 7, 9}, a.Add(b).Values())
	assert.Equal(t, []float64{-3, -3, -3}, a.Sub(b).Values())
	assert.Equal(t, []float64{4, 10, 18}, a.Mult(b).Values())
	assert.Equal(t, []float64{0.25, 0.4, 0.5}, a.Div(b).Values())

	assert.Equal(t, []float64{3, 4, 5}, a.AddScalar(2).Values())
	assert.Equal(t, []float64{0, 1, 2}, a.SubScalar(1).Values())
	assert.Equal(t, []float64{2, 4, 6}, a.MultScalar(2).Values())
	assert.Equal(t, []float64{0.5, 1, 1.5}, a.DivScalar(2).Values())
}

func TestSelfAliasing(t *testing.T) {
	m := MutableOf(1, 2, 3)
	out := m.Add(m)
	assert.Same(t, m, out)
	assert.Equal(t, []float64{2, 4, 6}, m.Values())
}

func TestDimensionMismatchPanics(t *testing.T) {
	a := MutableOf(1, 2)
	b := MutableOf(1, 2, 3)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
		assert.Equal(t, []float64{1, 2}, a.Values(), "receiver must not be touched")
	}()
	a.Add(b)
}

func TestUnaryOps(t *testing.T) {
	v := ImmutableOf(-2, 0, 0.5)

	assert.Equal(t, []float64{2, -0, -0.5}, v.Negate().Values())
	assert.Equal(t, []float64{2, 0, 0.5}, v.Abs().Values())
	assert.Equal(t, []float64{-1, 0, 1}, v.Signum().Values())
	assert.Equal(t, []float64{-0.5, math.Inf(1), 2}, v.Inverse().Values())
	assert.Equal(t, []float64{-8, 0, 2}, v.Scalb(2).Values())
	assert.Equal(t, []float64{4, 0, 0.25}, v.Pow(2).Values())

	w := ImmutableOf(0.25, 1, 4)
	assert.InDeltaSlice(t, []float64{0.5, 1, 2}, w.Sqrt().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{math.Cbrt(0.25), 1, math.Cbrt(4)}, w.Cbrt().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{math.Log(0.25), 0, math.Log(4)}, w.Log().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{math.Log10(0.25), 0, math.Log10(4)}, w.Log10().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{math.Log1p(0.25), math.Log1p(1), math.Log1p(4)}, w.Log1p().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{math.Exp(0.25), math.E, math.Exp(4)}, w.Exp().Values(), 1e-12)
	assert.InDeltaSlice(t, []float64{math.Expm1(0.25), math.Expm1(1), math.Expm1(4)}, w.Expm1().Values(), 1e-12)

	angles := ImmutableOf(0, math.Pi/6, math.Pi/4)
	assert.InDeltaSlice(t, []float64{0, 0.5, math.Sqrt2 / 2}, angles.Sin().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{1, math.Sqrt(3) / 2, math.Sqrt2 / 2}, angles.Cos().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{0, 1 / math.Sqrt(3), 1}, angles.Tan().Values(), 1e-15)

	unit := ImmutableOf(0, 0.5, 1)
	assert.InDeltaSlice(t, []float64{0, math.Pi / 6, math.Pi / 2}, unit.Asin().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{math.Pi / 2, math.Pi / 3, 0}, unit.Acos().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{0, math.Atan(0.5), math.Pi / 4}, unit.Atan().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{0, math.Sinh(0.5), math.Sinh(1)}, unit.Sinh().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{1, math.Cosh(0.5), math.Cosh(1)}, unit.Cosh().Values(), 1e-15)
	assert.InDeltaSlice(t, []float64{0, math.Tanh(0.5), math.Tanh(1)}, unit.Tanh().Values(), 1e-15)
}

func TestSignumEdgeCases(t *testing.T) {
	got := ImmutableOf(math.Copysign(0, -1), math.NaN(), math.Inf(-1)).Signum().Values()

	assert.True(t, math.Signbit(got[0]), "negative zero keeps its sign")
	assert.Equal(t, 0.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, -1.0, got[2])
}

func TestReductions(t *testing.T) {
	v := ImmutableOf(3, -1, 7, 2)

	hi, err := v.Max()
	require.NoError(t, err)
	assert.Equal(t, 7.0, hi)

	lo, err := v.Min()
	require.NoError(t, err)
	assert.Equal(t, -1.0, lo)

	dot, err := v.Dot(ImmutableOf(1, 1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 11.0, dot)

	_, err = v.Dot(ImmutableOf(1))
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestReductionsOnEmpty(t *testing.T) {
	empty := New(0, Immutable)

	_, err := empty.Max()
	assert.ErrorIs(t, err, dynamo.ErrEmptyVector)
	_, err = empty.Min()
	assert.ErrorIs(t, err, dynamo.ErrEmptyVector)
	_, err = empty.Dot(New(0, Mutable))
	assert.ErrorIs(t, err, dynamo.ErrEmptyVector)
}

func TestHasNaN(t *testing.T) {
	assert.False(t, ImmutableOf(1, 2).HasNaN())
	assert.True(t, ImmutableOf(1, math.NaN()).HasNaN())
}

func TestString(t *testing.T) {
	assert.Equal(t, "immutable[1 2]", ImmutableOf(1, 2).String())
	assert.Equal(t, "mutable[]", New(0, Mutable).String())
	assert.Equal(t, "Mutability(7)", Mutability(7).String())
}
