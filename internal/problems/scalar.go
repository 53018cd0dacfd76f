package problems

import "math"

// Closed is implemented by systems with a known exact solution.
type Closed interface {
	Exact(x0 []float64, t0, t float64) []float64
}

// Configurable exposes named parameters for runtime adjustment.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, v float64) bool
}

type Ramp struct{}

func NewRamp() *Ramp { return &Ramp{} }

func (*Ramp) Derive(x, t float64) float64 { return t }

func (*Ramp) Exact(x0 []float64, t0, t float64) []float64 {
	return []float64{x0[0] + (t*t-t0*t0)/2}
}

type Growth struct{ rate float64 }

func NewGrowth() *Growth { return &Growth{rate: 0.1} }

func (g *Growth) Derive(x, t float64) float64 { return g.rate * x * t }

func (g *Growth) Exact(x0 []float64, t0, t float64) []float64 {
	return []float64{x0[0] * math.Exp(g.rate*(t*t-t0*t0)/2)}
}

func (g *Growth) Params() map[string]float64 { return map[string]float64{"rate": g.rate} }

func (g *Growth) SetParam(n string, v float64) bool {
	if n != "rate" {
		return false
	}
	g.rate = v
	return true
}

// Root has x(t) = (√x0 + (t²-t0²)/4)² while the bracket stays non-negative.
type Root struct{}

func NewRoot() *Root { return &Root{} }

func (*Root) Derive(x, t float64) float64 { return math.Sqrt(x) * t }

func (*Root) Exact(x0 []float64, t0, t float64) []float64 {
	r := math.Sqrt(x0[0]) + (t*t-t0*t0)/4
	return []float64{r * r}
}

// ConstantAcceleration is the velocity equation dv/dt = a.
type ConstantAcceleration struct{ a float64 }

func NewConstantAcceleration(a float64) *ConstantAcceleration {
	return &ConstantAcceleration{a: a}
}

func (c *ConstantAcceleration) Derive(v, t float64) float64 { return c.a }

func (c *ConstantAcceleration) Exact(x0 []float64, t0, t float64) []float64 {
	return []float64{x0[0] + c.a*(t-t0)}
}

func (c *ConstantAcceleration) Params() map[string]float64 { return map[string]float64{"a": c.a} }

func (c *ConstantAcceleration) SetParam(n string, v float64) bool {
	if n != "a" {
		return false
	}
	c.a = v
	return true
}
