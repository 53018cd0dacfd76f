package problems

import (
	"math"

	"github.com/san-kum/odesolve/internal/vector"
)

const DefaultGravity = -9.81

// Oscillator is a unit-mass spring with state (v, x).
type Oscillator struct{ omega float64 }

func NewOscillator() *Oscillator { return &Oscillator{omega: 1.0} }

func (o *Oscillator) Derive(s *vector.Vector, _ float64) *vector.Vector {
	return vector.MutableOf(-o.omega*o.omega*s.At(1), s.At(0))
}

func (o *Oscillator) Exact(x0 []float64, t0, t float64) []float64 {
	v0, p0 := x0[0], x0[1]
	sin, cos := math.Sincos(o.omega * (t - t0))
	return []float64{
		-p0*o.omega*sin + v0*cos,
		p0*cos + v0/o.omega*sin,
	}
}

// Energy is twice the mechanical energy per unit mass.
func (o *Oscillator) Energy(s []float64) float64 {
	return s[0]*s[0] + o.omega*o.omega*s[1]*s[1]
}

func (o *Oscillator) Params() map[string]float64 { return map[string]float64{"omega": o.omega} }

func (o *Oscillator) SetParam(n string, v float64) bool {
	if n != "omega" || v == 0 {
		return false
	}
	o.omega = v
	return true
}

// Projectile has state (x, y, z, vx, vy, vz) and constant acceleration g
// along z.
type Projectile struct{ g float64 }

func NewProjectile() *Projectile { return &Projectile{g: DefaultGravity} }

func (p *Projectile) Derive(s *vector.Vector, _ float64) *vector.Vector {
	return vector.MutableOf(s.At(3), s.At(4), s.At(5), 0, 0, p.g)
}

func (p *Projectile) Exact(x0 []float64, t0, t float64) []float64 {
	dt := t - t0
	acc := [3]float64{0, 0, p.g}
	out := make([]float64, 6)
	for i := 0; i < 3; i++ {
		out[i] = x0[i] + x0[i+3]*dt + 0.5*acc[i]*dt*dt
		out[i+3] = x0[i+3] + acc[i]*dt
	}
	return out
}

func (p *Projectile) Params() map[string]float64 { return map[string]float64{"g": p.g} }

func (p *Projectile) SetParam(n string, v float64) bool {
	if n != "g" {
		return false
	}
	p.g = v
	return true
}

type Lorenz struct{ sigma, rho, beta float64 }

func NewLorenz() *Lorenz { return &Lorenz{10.0, 28.0, 8.0 / 3.0} }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(s *vector.Vector, _ float64) *vector.Vector {
	x, y, z := s.At(0), s.At(1), s.At(2)
	return vector.MutableOf(l.sigma*(y-x), x*(l.rho-z)-y, x*y-l.beta*z)
}

func (l *Lorenz) Params() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "rho": l.rho, "beta": l.beta}
}

func (l *Lorenz) SetParam(n string, v float64) bool {
	switch n {
	case "sigma":
		l.sigma = v
	case "rho":
		l.rho = v
	case "beta":
		l.beta = v
	default:
		return false
	}
	return true
}
