package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/memo"
	"github.com/san-kum/odesolve/internal/problems"
	"github.com/san-kum/odesolve/internal/sampler"
	"github.com/san-kum/odesolve/internal/storage"
	"github.com/san-kum/odesolve/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string

	preset      string
	method      string
	stepSize    float64
	tolerance   float64
	initialStep float64
	maxTries    int
	safety1     float64
	safety2     float64
	t0          float64
	x0          []float64
	params      []string
	useCache    bool

	target  float64
	from    float64
	to      float64
	samples int

	plotAfter bool
	interval  time.Duration
	theme     string

	logger = slog.New(slog.DiscardHandler)
)

// main registers the odesolve commands and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "odesolve",
		Short:         "runge-kutta initial value problem solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odesolve", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "run description file (yaml)")

	solveCmd := &cobra.Command{
		Use:   "solve [problem]",
		Short: "solve a problem at a single time",
		Args:  cobra.ExactArgs(1),
		RunE:  solveProblem,
	}
	solverFlags(solveCmd)
	solveCmd.Flags().Float64Var(&target, "t", 1.0, "target time")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "sample a solution and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runProblem,
	}
	solverFlags(runCmd)
	gridFlags(runCmd)
	runCmd.Flags().BoolVar(&plotAfter, "plot", false, "plot the trajectory after saving")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [problem]",
		Short: "compare fixed-step and adaptive solutions",
		Args:  cobra.ExactArgs(1),
		RunE:  compareMethods,
	}
	solverFlags(compareCmd)
	gridFlags(compareCmd)

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list reference problems",
		RunE:  listProblems,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list solver presets",
		RunE:  listPresets,
	}

	watchCmd := &cobra.Command{
		Use:   "watch [problem]",
		Short: "sample a solution with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  watchProblem,
	}
	solverFlags(watchCmd)
	gridFlags(watchCmd)
	watchCmd.Flags().DurationVar(&interval, "interval", 50*time.Millisecond, "time between samples")
	watchCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	rootCmd.AddCommand(solveCmd, runCmd, listCmd, plotCmd, exportJSONCmd, compareCmd, problemsCmd, presetsCmd, watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "err", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
	})), nil
}

func solverFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "solver preset ("+strings.Join(config.ListPresets(), ", ")+")")
	f.StringVar(&method, "method", config.MethodAdaptive, "integration method (rk4, adaptive)")
	f.Float64Var(&stepSize, "step", config.DefaultStepSize, "fixed step size")
	f.Float64Var(&tolerance, "tol", config.DefaultLocalTruncationError, "local truncation error target")
	f.Float64Var(&initialStep, "initial-step", config.DefaultInitialStepSize, "initial adaptive step size")
	f.IntVar(&maxTries, "max-tries", config.DefaultMaxTries, "adaptive retries per step")
	f.Float64Var(&safety1, "safety1", config.DefaultSafetyFactor1, "step proposal safety factor")
	f.Float64Var(&safety2, "safety2", config.DefaultSafetyFactor2, "step change bound")
	f.Float64Var(&t0, "t0", 0, "initial time (overrides the problem's)")
	f.Float64SliceVar(&x0, "x0", nil, "initial state (overrides the problem's)")
	f.StringSliceVar(&params, "param", nil, "problem parameter as name=value")
	f.BoolVar(&useCache, "cache", false, "memoize scalar steps")
}

func gridFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&from, "from", config.DefaultFrom, "first sample time")
	f.Float64Var(&to, "to", config.DefaultTo, "last sample time")
	f.IntVar(&samples, "samples", config.DefaultSamples, "number of samples")
}

// resolveConfig layers defaults, the config file, a preset and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command, p *problems.Problem) (*config.File, error) {
	cfg := config.DefaultFile()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if preset != "" {
		pc := config.GetPreset(preset, p.Name)
		if pc == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		pc.Initial, pc.Cache = cfg.Initial, cfg.Cache
		cfg = pc
	}
	cfg.Problem = p.Name

	f := cmd.Flags()
	if f.Changed("method") {
		cfg.Method = method
	}
	if f.Changed("step") {
		cfg.Fixed.StepSize = stepSize
	}
	if f.Changed("tol") {
		cfg.Adaptive.LocalTruncationError = tolerance
	}
	if f.Changed("initial-step") {
		cfg.Adaptive.InitialStepSize = initialStep
	}
	if f.Changed("max-tries") {
		cfg.Adaptive.MaxTries = maxTries
	}
	if f.Changed("safety1") {
		cfg.Adaptive.SafetyFactor1 = safety1
	}
	if f.Changed("safety2") {
		cfg.Adaptive.SafetyFactor2 = safety2
	}
	if f.Changed("cache") {
		cfg.Cache = useCache
	}
	if f.Changed("x0") || f.Changed("t0") {
		ic := &config.Initial{T0: p.T0, X0: p.X0}
		if cfg.Initial != nil {
			ic.T0, ic.X0 = cfg.Initial.T0, cfg.Initial.X0
		}
		if f.Changed("t0") {
			ic.T0 = t0
		}
		if f.Changed("x0") {
			ic.X0 = x0
		}
		cfg.Initial = ic
	}
	if f.Lookup("from") != nil {
		if f.Changed("from") {
			cfg.From = from
		}
		if f.Changed("to") {
			cfg.To = to
		}
		if f.Changed("samples") {
			cfg.Samples = samples
		}
	}

	return cfg, cfg.Validate()
}

// loadProblem looks up name and applies --param overrides.
func loadProblem(name string) (*problems.Problem, error) {
	p, err := problems.Lookup(name)
	if err != nil {
		return nil, err
	}
	for _, kv := range params {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q: want name=value", kv)
		}
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", kv, err)
		}
		if err := p.SetParam(k, val); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func sampleOptions(cfg *config.File) sampler.Options {
	opts := sampler.Options{Logger: logger}
	if cfg.Cache {
		opts.Cache = memo.NewStore()
	}
	return opts
}

func solveProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, p)
	if err != nil {
		return err
	}
	cfg.From, cfg.To, cfg.Samples = target, target, 1

	start := time.Now()
	tr, err := sampler.Run(p, cfg, sampleOptions(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	s := tr.Samples[0]
	st := viz.NewStyles(viz.Themes[0])
	fmt.Println(st.Title.Render(fmt.Sprintf("%s: %s", p.Name, p.Description)))
	fmt.Println(st.Field("method", tr.Method))
	fmt.Println(st.Field("t0", tr.T0))
	fmt.Println(st.Field("x0", fmt.Sprint(tr.X0)))
	fmt.Println(st.Field("t", s.T))
	fmt.Println(st.Field("x(t)", formatState(s.X)))
	if s.Exact != nil {
		fmt.Println(st.Field("exact", formatState(s.Exact)))
		fmt.Println(st.Label.Render("error") + st.ErrorLevel(s.Error(), 1e-6).Render(fmt.Sprintf("%.3e", s.Error())))
	}
	fmt.Println(st.Field("steps", s.Stats.Steps))
	fmt.Println(st.Field("rejected", s.Stats.Rejected))
	fmt.Println(st.Field("evaluations", s.Stats.Evaluations))
	fmt.Println(st.Field("elapsed", elapsed.Round(time.Microsecond)))
	return nil
}

func runProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, p)
	if err != nil {
		return err
	}

	tr, err := sampler.Run(p, cfg, sampleOptions(cfg))
	if err != nil {
		return err
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, p.Params(), tr)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("problem: %s\n", p.Name)
	fmt.Printf("samples: %d\n", len(tr.Samples))
	fmt.Printf("steps: %d (rejected %d, evaluations %d)\n", tr.Totals.Steps, tr.Totals.Rejected, tr.Totals.Evaluations)
	if tr.HasExact {
		fmt.Printf("max error: %.3e\n", tr.MaxError)
	}

	if plotAfter {
		graph, err := viz.Plot(tr, viz.PlotOptions{Height: 10, Width: 80, Exact: true})
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, logger)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tMETHOD\tTIME\tRANGE\tSAMPLES\tMAX_ERR")

	for _, run := range runs {
		maxErr := "-"
		if v, ok := run.Metrics["max_error"]; ok {
			maxErr = fmt.Sprintf("%.2e", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%g, %g]\t%d\t%s\n",
			run.ID,
			run.Problem,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.From,
			run.To,
			run.Samples,
			maxErr,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, logger)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	tr := &sampler.Trajectory{Problem: meta.Problem, Method: meta.Method, T0: meta.T0, X0: meta.X0}
	for i := range states {
		tr.Samples = append(tr.Samples, sampler.Sample{T: times[i], X: states[i]})
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("samples: %d\n\n", len(states))

	numVars := min(len(states[0]), 6)
	for i := 0; i < numVars; i++ {
		graph, err := viz.Plot(tr, viz.PlotOptions{Height: 10, Width: 80, Components: []int{i}})
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}

	if len(states[0]) >= 2 {
		fmt.Println("x1 vs x0")
		fmt.Println(viz.Portrait(tr, 0, 1, 40, 10))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, logger)
	return st.ExportJSON(os.Stdout, args[0])
}

func compareMethods(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd, p)
	if err != nil {
		return err
	}

	fmt.Printf("comparing methods for %s on [%g, %g] (%d samples)\n\n", p.Name, base.From, base.To, base.Samples)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSETTING\tMAX_ERR\tSTEPS\tREJECTED\tEVALS\tTIME_MS")

	for _, m := range []string{config.MethodFixed, config.MethodAdaptive} {
		cfg := *base
		cfg.Method = m

		setting := fmt.Sprintf("step=%g", cfg.Fixed.StepSize)
		if m == config.MethodAdaptive {
			setting = fmt.Sprintf("tol=%g", cfg.Adaptive.LocalTruncationError)
		}

		start := time.Now()
		tr, err := sampler.Run(p, &cfg, sampleOptions(&cfg))
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\terror: %v\n", m, setting, err)
			continue
		}

		maxErr := "-"
		if tr.HasExact {
			maxErr = fmt.Sprintf("%.2e", tr.MaxError)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\n",
			m, setting, maxErr, tr.Totals.Steps, tr.Totals.Rejected, tr.Totals.Evaluations,
			float64(elapsed.Microseconds())/1000)
	}

	return w.Flush()
}

func listProblems(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tT0\tX0\tDESCRIPTION")
	for _, name := range problems.Names() {
		p, err := problems.Lookup(name)
		if err != nil {
			return err
		}
		kind := "vector"
		if p.IsScalar() {
			kind = "scalar"
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%v\t%s\n", p.Name, kind, p.T0, p.X0, p.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		switch p.Method {
		case config.MethodFixed:
			fmt.Printf("  %-8s rk4 step=%g\n", name, p.Fixed.StepSize)
		default:
			a := p.Adaptive
			fmt.Printf("  %-8s adaptive tol=%g initial=%g tries=%d safety=(%g, %g)\n",
				name, a.LocalTruncationError, a.InitialStepSize, a.MaxTries, a.SafetyFactor1, a.SafetyFactor2)
		}
	}
	return nil
}

func watchProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, p)
	if err != nil {
		return err
	}

	// Logs would corrupt the alternate screen.
	opts := sampleOptions(cfg)
	opts.Logger = slog.New(slog.DiscardHandler)

	session, err := sampler.NewSession(p, cfg, opts)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(viz.NewWatch(p.Name, session, interval, viz.GetTheme(theme)), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if w, ok := final.(viz.Watch); ok && w.Err() != nil {
		return w.Err()
	}
	return nil
}

func formatState(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', 10, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
