// Package sampler evaluates a problem's solution on an evenly spaced time
// grid.
package sampler

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/integrators"
	"github.com/san-kum/odesolve/internal/memo"
	"github.com/san-kum/odesolve/internal/problems"
	"github.com/san-kum/odesolve/internal/vector"
)

// Sample is the solution at one grid time.
type Sample struct {
	T     float64
	X     []float64
	Exact []float64
	Stats dynamo.Stats
}

// Error is the largest absolute deviation from the exact solution, or 0
// when no closed form is known.
func (s Sample) Error() float64 {
	e := 0.0
	for i := range s.Exact {
		e = math.Max(e, math.Abs(s.X[i]-s.Exact[i]))
	}
	return e
}

type Trajectory struct {
	Problem  string
	Method   string
	T0       float64
	X0       []float64
	Samples  []Sample
	HasExact bool
	MaxError float64
	Totals   dynamo.Stats
}

func (tr *Trajectory) Times() []float64 {
	ts := make([]float64, len(tr.Samples))
	for i, s := range tr.Samples {
		ts[i] = s.T
	}
	return ts
}

// Component returns the i-th state component across all samples.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.Samples))
	for j, s := range tr.Samples {
		out[j] = s.X[i]
	}
	return out
}

func (tr *Trajectory) States() [][]float64 {
	out := make([][]float64, len(tr.Samples))
	for i, s := range tr.Samples {
		out[i] = s.X
	}
	return out
}

func (tr *Trajectory) add(s Sample) {
	tr.Samples = append(tr.Samples, s)
	tr.MaxError = math.Max(tr.MaxError, s.Error())
	tr.Totals.Steps += s.Stats.Steps
	tr.Totals.Rejected += s.Stats.Rejected
	tr.Totals.Evaluations += s.Stats.Evaluations
	tr.Totals.LastStepSize = s.Stats.LastStepSize
	tr.Totals.Time = s.T
}

// Grid returns n evenly spaced times from from to to inclusive.
func Grid(from, to float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{from}
	}
	ts := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range ts {
		ts[i] = from + float64(i)*step
	}
	ts[n-1] = to
	return ts
}

type Options struct {
	Logger *slog.Logger
	// Cache memoizes scalar steps across samples. Ignored for vector problems.
	Cache memo.Cache
}

type evalFunc func(t float64) ([]float64, dynamo.Stats, error)

type statsSolver[S any] interface {
	SolveStats(sys dynamo.System[S], xi S, ti, t float64) (S, dynamo.Stats, error)
}

// Session samples a problem one grid point at a time.
type Session struct {
	problem *problems.Problem
	method  string
	t0      float64
	x0      []float64
	grid    []float64
	next    int
	eval    evalFunc
	traj    *Trajectory
	logger  *slog.Logger
}

func NewSession(p *problems.Problem, cfg *config.File, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t0, x0 := p.T0, p.X0
	if cfg.Initial != nil {
		t0, x0 = cfg.Initial.T0, cfg.Initial.X0
	}
	if len(x0) != p.Dim() {
		return nil, fmt.Errorf("%w: problem %s has %d components, initial state has %d",
			dynamo.ErrDimensionMismatch, p.Name, p.Dim(), len(x0))
	}

	eval, err := newEval(p, cfg, t0, x0, logger, opts.Cache)
	if err != nil {
		return nil, err
	}

	s := &Session{
		problem: p,
		method:  cfg.Method,
		t0:      t0,
		x0:      append([]float64(nil), x0...),
		grid:    Grid(cfg.From, cfg.To, cfg.Samples),
		eval:    eval,
		logger:  logger,
	}
	s.traj = &Trajectory{Problem: p.Name, Method: cfg.Method, T0: t0, X0: s.x0}
	_, s.traj.HasExact = p.Exact(s.x0, t0, t0)
	return s, nil
}

func (s *Session) Len() int { return len(s.grid) }

func (s *Session) Done() bool { return s.next >= len(s.grid) }

// Next evaluates the next grid point. It reports false once the grid is
// exhausted.
func (s *Session) Next() (Sample, bool, error) {
	if s.Done() {
		return Sample{}, false, nil
	}
	t := s.grid[s.next]
	x, st, err := s.eval(t)
	if err != nil {
		return Sample{}, false, fmt.Errorf("%s at t=%g: %w", s.problem.Name, t, err)
	}
	s.next++

	sample := Sample{T: t, X: x, Stats: st}
	if exact, ok := s.problem.Exact(s.x0, s.t0, t); ok {
		sample.Exact = exact
	}
	s.traj.add(sample)
	s.logger.Debug("sample", "problem", s.problem.Name, "t", t, "steps", st.Steps, "err", sample.Error())
	return sample, true, nil
}

// Trajectory returns the samples taken so far.
func (s *Session) Trajectory() *Trajectory { return s.traj }

// Run samples the remaining grid points.
func (s *Session) Run() (*Trajectory, error) {
	for {
		_, ok, err := s.Next()
		if err != nil {
			return s.traj, err
		}
		if !ok {
			break
		}
	}
	s.logger.Info("sampled trajectory",
		"problem", s.problem.Name,
		"method", s.method,
		"samples", len(s.traj.Samples),
		"steps", s.traj.Totals.Steps,
		"max_error", s.traj.MaxError,
	)
	return s.traj, nil
}

// Run samples p on the grid described by cfg.
func Run(p *problems.Problem, cfg *config.File, opts Options) (*Trajectory, error) {
	s, err := NewSession(p, cfg, opts)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

func newEval(p *problems.Problem, cfg *config.File, t0 float64, x0 []float64, logger *slog.Logger, cache memo.Cache) (evalFunc, error) {
	if p.IsScalar() {
		opts := []integrators.Option[float64]{integrators.WithLogger[float64](logger)}
		if cfg.Cache {
			opts = append(opts, integrators.WithCache(cache))
		}
		solver, err := scalarSolver(cfg, opts)
		if err != nil {
			return nil, err
		}
		xi := x0[0]
		return func(t float64) ([]float64, dynamo.Stats, error) {
			x, st, err := solver.SolveStats(p.Scalar, xi, t0, t)
			return []float64{x}, st, err
		}, nil
	}

	solver, err := vectorSolver(cfg, []integrators.Option[*vector.Vector]{integrators.WithLogger[*vector.Vector](logger)})
	if err != nil {
		return nil, err
	}
	xi := vector.ImmutableOf(x0...)
	return func(t float64) ([]float64, dynamo.Stats, error) {
		x, st, err := solver.SolveStats(p.Vector, xi, t0, t)
		if err != nil {
			return nil, st, err
		}
		return x.Values(), st, nil
	}, nil
}

func scalarSolver(cfg *config.File, opts []integrators.Option[float64]) (statsSolver[float64], error) {
	if cfg.Method == config.MethodFixed {
		return integrators.NewScalarFixed(cfg.Fixed, opts...)
	}
	return integrators.NewScalarAdaptive(cfg.Adaptive, opts...)
}

func vectorSolver(cfg *config.File, opts []integrators.Option[*vector.Vector]) (statsSolver[*vector.Vector], error) {
	if cfg.Method == config.MethodFixed {
		return integrators.NewVectorFixed(cfg.Fixed, opts...)
	}
	return integrators.NewVectorAdaptive(cfg.Adaptive, opts...)
}
