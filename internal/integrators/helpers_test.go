package integrators

import (
	"math"

	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/vector"
)

// precise is the controller setting the reference problems are checked with.
var precise = config.Adaptive{
	LocalTruncationError: 1e-12,
	InitialStepSize:      0.03,
	MaxTries:             100,
	SafetyFactor1:        0.9,
	SafetyFactor2:        4.0,
}

type accel struct{ a float64 }

func (s *accel) Derive(v, t float64) float64 { return s.a }

// position integrates a velocity solution; each evaluation is a full solve.
type position struct {
	v func(t float64) (float64, error)
}

func (p *position) Derive(x, t float64) float64 {
	v, err := p.v(t)
	if err != nil {
		panic(err)
	}
	return v
}

type ramp struct{}

func (*ramp) Derive(x, t float64) float64 { return t }

type growth struct{}

func (*growth) Derive(x, t float64) float64 { return x * t / 10 }

type root struct{}

func (*root) Derive(x, t float64) float64 { return math.Sqrt(x) * t }

// oscillator has state (v, x).
type oscillator struct{ omega float64 }

func (o *oscillator) Derive(s *vector.Vector, t float64) *vector.Vector {
	return vector.MutableOf(-o.omega*o.omega*s.At(1), s.At(0))
}

// motion has state (x, v) under constant acceleration a.
type motion struct{ a float64 }

func (m *motion) Derive(s *vector.Vector, t float64) *vector.Vector {
	return vector.MutableOf(s.At(1), m.a)
}

type counter struct {
	sys dynamo.System[float64]
	n   int
}

func (c *counter) Derive(x, t float64) float64 {
	c.n++
	return c.sys.Derive(x, t)
}

func grid(from, to, step float64) []float64 {
	var ts []float64
	for t := from; t <= to; t += step {
		ts = append(ts, t)
	}
	return ts
}
