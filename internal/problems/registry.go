package problems

import (
	"fmt"
	"sort"

	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/vector"
)

// Problem is a named initial value problem. Exactly one of Scalar and
// Vector is set.
type Problem struct {
	Name        string
	Description string
	T0          float64
	X0          []float64
	Scalar      dynamo.System[float64]
	Vector      dynamo.System[*vector.Vector]
}

func (p *Problem) IsScalar() bool { return p.Scalar != nil }

func (p *Problem) Dim() int { return len(p.X0) }

func (p *Problem) system() any {
	if p.IsScalar() {
		return p.Scalar
	}
	return p.Vector
}

// Exact returns the closed-form state at t from (x0, t0), if known.
func (p *Problem) Exact(x0 []float64, t0, t float64) ([]float64, bool) {
	c, ok := p.system().(Closed)
	if !ok {
		return nil, false
	}
	return c.Exact(x0, t0, t), true
}

// Params returns the problem's tunable parameters, or nil.
func (p *Problem) Params() map[string]float64 {
	if c, ok := p.system().(Configurable); ok {
		return c.Params()
	}
	return nil
}

func (p *Problem) SetParam(name string, v float64) error {
	c, ok := p.system().(Configurable)
	if !ok || !c.SetParam(name, v) {
		return fmt.Errorf("problem %s has no parameter %q", p.Name, name)
	}
	return nil
}

var registry = map[string]func() *Problem{
	"ramp": func() *Problem {
		return &Problem{Name: "ramp", Description: "dx/dt = t", T0: -4, X0: []float64{8}, Scalar: NewRamp()}
	},
	"growth": func() *Problem {
		return &Problem{Name: "growth", Description: "dx/dt = x*t/10", T0: 0, X0: []float64{-20}, Scalar: NewGrowth()}
	},
	"root": func() *Problem {
		return &Problem{Name: "root", Description: "dx/dt = sqrt(x)*t", T0: 4, X0: []float64{25}, Scalar: NewRoot()}
	},
	"velocity": func() *Problem {
		return &Problem{Name: "velocity", Description: "dv/dt = a", T0: 0, X0: []float64{0}, Scalar: NewConstantAcceleration(DefaultGravity)}
	},
	"oscillator": func() *Problem {
		return &Problem{Name: "oscillator", Description: "harmonic oscillator (v, x)", T0: 0, X0: []float64{0, 1}, Vector: NewOscillator()}
	},
	"projectile": func() *Problem {
		return &Problem{Name: "projectile", Description: "3-D projectile (x, y, z, vx, vy, vz)", T0: 0, X0: []float64{0, 0, 0, 10, 0, 20}, Vector: NewProjectile()}
	},
	"lorenz": func() *Problem {
		return &Problem{Name: "lorenz", Description: "Lorenz attractor", T0: 0, X0: []float64{1, 1, 1}, Vector: NewLorenz()}
	},
}

// Lookup returns a fresh instance of the named problem.
func Lookup(name string) (*Problem, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownProblem, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
