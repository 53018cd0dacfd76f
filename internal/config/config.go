package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/odesolve/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStepSize             = 0.1
	DefaultLocalTruncationError = 1e-12
	DefaultInitialStepSize      = 0.1
	DefaultMaxTries             = 100
	DefaultSafetyFactor1        = 0.9
	DefaultSafetyFactor2        = 4.0
	DefaultSamples              = 21
	DefaultFrom                 = -10.0
	DefaultTo                   = 10.0
)

const (
	MethodFixed    = "rk4"
	MethodAdaptive = "adaptive"
)

// Fixed configures the fixed-step driver. The sign of StepSize is ignored;
// direction comes from the integration interval.
type Fixed struct {
	StepSize float64 `yaml:"step_size" json:"step_size"`
}

func DefaultFixed() Fixed {
	return Fixed{StepSize: DefaultStepSize}
}

func (f Fixed) Validate() error {
	if f.StepSize == 0 || math.IsNaN(f.StepSize) || math.IsInf(f.StepSize, 0) {
		return &dynamo.ConfigError{Field: "step_size", Value: f.StepSize, Reason: "must be finite and nonzero"}
	}
	return nil
}

func (f Fixed) Normalized() Fixed {
	f.StepSize = math.Abs(f.StepSize)
	return f
}

// Adaptive configures the step-doubling controller.
type Adaptive struct {
	LocalTruncationError float64 `yaml:"local_truncation_error" json:"local_truncation_error"`
	InitialStepSize      float64 `yaml:"initial_step_size" json:"initial_step_size"`
	MaxTries             int     `yaml:"max_tries" json:"max_tries"`
	SafetyFactor1        float64 `yaml:"safety_factor_1" json:"safety_factor_1"`
	SafetyFactor2        float64 `yaml:"safety_factor_2" json:"safety_factor_2"`
}

func DefaultAdaptive() Adaptive {
	return Adaptive{
		LocalTruncationError: DefaultLocalTruncationError,
		InitialStepSize:      DefaultInitialStepSize,
		MaxTries:             DefaultMaxTries,
		SafetyFactor1:        DefaultSafetyFactor1,
		SafetyFactor2:        DefaultSafetyFactor2,
	}
}

func (a Adaptive) Validate() error {
	switch {
	case a.InitialStepSize == 0 || math.IsNaN(a.InitialStepSize) || math.IsInf(a.InitialStepSize, 0):
		return &dynamo.ConfigError{Field: "initial_step_size", Value: a.InitialStepSize, Reason: "must be finite and nonzero"}
	case !(a.LocalTruncationError >= 0):
		return &dynamo.ConfigError{Field: "local_truncation_error", Value: a.LocalTruncationError, Reason: "must be non-negative"}
	case a.MaxTries < 0:
		return &dynamo.ConfigError{Field: "max_tries", Value: float64(a.MaxTries), Reason: "must be non-negative"}
	case !(a.SafetyFactor1 >= 0 && a.SafetyFactor1 < 1):
		return &dynamo.ConfigError{Field: "safety_factor_1", Value: a.SafetyFactor1, Reason: "must be in [0, 1)"}
	case !(a.SafetyFactor2 > 1) || math.IsInf(a.SafetyFactor2, 0):
		return &dynamo.ConfigError{Field: "safety_factor_2", Value: a.SafetyFactor2, Reason: "must be finite and greater than 1"}
	}
	return nil
}

func (a Adaptive) Normalized() Adaptive {
	a.InitialStepSize = math.Abs(a.InitialStepSize)
	return a
}

// File is a run description for the command line tool.
type File struct {
	Problem  string   `yaml:"problem"`
	Method   string   `yaml:"method"`
	Initial  *Initial `yaml:"initial,omitempty"`
	From     float64  `yaml:"from"`
	To       float64  `yaml:"to"`
	Samples  int      `yaml:"samples"`
	Cache    bool     `yaml:"cache,omitempty"`
	Fixed    Fixed    `yaml:"fixed"`
	Adaptive Adaptive `yaml:"adaptive"`
}

// Initial overrides a problem's built-in initial condition.
type Initial struct {
	T0 float64   `yaml:"t0"`
	X0 []float64 `yaml:"x0"`
}

func DefaultFile() *File {
	return &File{
		Problem:  "ramp",
		Method:   MethodAdaptive,
		From:     DefaultFrom,
		To:       DefaultTo,
		Samples:  DefaultSamples,
		Fixed:    DefaultFixed(),
		Adaptive: DefaultAdaptive(),
	}
}

func (f *File) Validate() error {
	switch f.Method {
	case MethodFixed:
		if err := f.Fixed.Validate(); err != nil {
			return err
		}
	case MethodAdaptive:
		if err := f.Adaptive.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown method %q", dynamo.ErrInvalidConfig, f.Method)
	}
	if f.Samples < 1 {
		return &dynamo.ConfigError{Field: "samples", Value: float64(f.Samples), Reason: "must be at least 1"}
	}
	if math.IsNaN(f.From) || math.IsNaN(f.To) {
		return fmt.Errorf("%w: sample range must not be NaN", dynamo.ErrInvalidConfig)
	}
	if f.Initial != nil && len(f.Initial.X0) == 0 {
		return fmt.Errorf("%w: initial.x0 must not be empty", dynamo.ErrInvalidConfig)
	}
	return nil
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultFile()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *File) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
