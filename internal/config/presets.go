package config

import "sort"

// Presets are named solver settings. "precise" matches the tolerances the
// reference problems are checked against.
var Presets = map[string]*File{
	"precise": {
		Method: MethodAdaptive, From: DefaultFrom, To: DefaultTo, Samples: 21,
		Fixed:    DefaultFixed(),
		Adaptive: Adaptive{LocalTruncationError: 1e-12, InitialStepSize: 0.03, MaxTries: 100, SafetyFactor1: 0.9, SafetyFactor2: 4.0},
	},
	"fast": {
		Method: MethodAdaptive, From: DefaultFrom, To: DefaultTo, Samples: 21,
		Fixed:    DefaultFixed(),
		Adaptive: Adaptive{LocalTruncationError: 1e-8, InitialStepSize: 0.1, MaxTries: 50, SafetyFactor1: 0.9, SafetyFactor2: 4.0},
	},
	"coarse": {
		Method: MethodFixed, From: DefaultFrom, To: DefaultTo, Samples: 21,
		Fixed:    Fixed{StepSize: 0.1},
		Adaptive: DefaultAdaptive(),
	},
	"fine": {
		Method: MethodFixed, From: DefaultFrom, To: DefaultTo, Samples: 201,
		Fixed:    Fixed{StepSize: 0.001},
		Adaptive: DefaultAdaptive(),
	},
}

// GetPreset returns a copy of the named preset applied to problem, or nil.
func GetPreset(name, problem string) *File {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Problem = problem
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
