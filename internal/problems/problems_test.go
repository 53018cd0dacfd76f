package problems

import (
	"testing"

	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/integrators"
	"github.com/san-kum/odesolve/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"growth", "lorenz", "oscillator", "projectile", "ramp", "root", "velocity"}, Names())
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.NotEmpty(t, p.X0)
		assert.NotEqual(t, p.Scalar == nil, p.Vector == nil, "%s must set exactly one system", name)
		if p.IsScalar() {
			assert.Equal(t, 1, p.Dim())
		}
	}

	_, err := Lookup("pendulum")
	assert.ErrorIs(t, err, dynamo.ErrUnknownProblem)
}

func TestLookupReturnsFreshInstances(t *testing.T) {
	a, err := Lookup("lorenz")
	require.NoError(t, err)
	require.NoError(t, a.SetParam("rho", 14))

	b, err := Lookup("lorenz")
	require.NoError(t, err)
	assert.Equal(t, 28.0, b.Params()["rho"])
}

func TestExactMatchesInitialState(t *testing.T) {
	for _, name := range Names() {
		p, _ := Lookup(name)
		x, ok := p.Exact(p.X0, p.T0, p.T0)
		if !ok {
			continue
		}
		assert.InDeltaSlice(t, p.X0, x, 1e-12, name)
	}
}

// The closed forms satisfy their equations, checked with central differences.
func TestExactSatisfiesDerivative(t *testing.T) {
	const h = 1e-5

	for _, name := range Names() {
		p, _ := Lookup(name)
		for _, tt := range []float64{p.T0 - 0.7, p.T0 + 0.3, p.T0 + 1.9} {
			x, ok := p.Exact(p.X0, p.T0, tt)
			if !ok {
				continue
			}
			plus, _ := p.Exact(p.X0, p.T0, tt+h)
			minus, _ := p.Exact(p.X0, p.T0, tt-h)

			var want []float64
			if p.IsScalar() {
				want = []float64{p.Scalar.Derive(x[0], tt)}
			} else {
				want = p.Vector.Derive(vector.ImmutableOf(x...), tt).Values()
			}
			for i := range x {
				fd := (plus[i] - minus[i]) / (2 * h)
				assert.InDelta(t, want[i], fd, 1e-5, "%s component %d at t=%v", name, i, tt)
			}
		}
	}
}

func TestSolversAgreeWithExact(t *testing.T) {
	scalar, err := integrators.NewScalarAdaptive(config.DefaultAdaptive())
	require.NoError(t, err)
	vec, err := integrators.NewVectorAdaptive(config.DefaultAdaptive())
	require.NoError(t, err)

	for _, name := range Names() {
		p, _ := Lookup(name)
		for _, tt := range []float64{p.T0 - 2, p.T0 + 3} {
			want, ok := p.Exact(p.X0, p.T0, tt)
			if !ok {
				continue
			}
			var got []float64
			if p.IsScalar() {
				x, err := scalar.Solve(p.Scalar, p.X0[0], p.T0, tt)
				require.NoError(t, err)
				got = []float64{x}
			} else {
				x, err := vec.Solve(p.Vector, vector.ImmutableOf(p.X0...), p.T0, tt)
				require.NoError(t, err)
				got = x.Values()
			}
			assert.InDeltaSlice(t, want, got, 1e-6, "%s at t=%v", name, tt)
		}
	}
}

func TestSetParam(t *testing.T) {
	p, err := Lookup("oscillator")
	require.NoError(t, err)

	require.NoError(t, p.SetParam("omega", 3))
	assert.Equal(t, map[string]float64{"omega": 3}, p.Params())

	assert.Error(t, p.SetParam("omega", 0))
	assert.Error(t, p.SetParam("mass", 1))

	ramp, err := Lookup("ramp")
	require.NoError(t, err)
	assert.Nil(t, ramp.Params())
	assert.Error(t, ramp.SetParam("a", 1))
}

func TestOscillatorEnergy(t *testing.T) {
	o := NewOscillator()
	x0 := []float64{0.5, 1}
	e0 := o.Energy(x0)
	for _, tt := range []float64{0.1, 1, 10} {
		assert.InDelta(t, e0, o.Energy(o.Exact(x0, 0, tt)), 1e-12)
	}
}
