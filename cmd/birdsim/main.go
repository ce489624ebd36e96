package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/birdsim/internal/analysis"
	"github.com/san-kum/birdsim/internal/automation"
	"github.com/san-kum/birdsim/internal/compute"
	"github.com/san-kum/birdsim/internal/config"
	"github.com/san-kum/birdsim/internal/experiment"
	"github.com/san-kum/birdsim/internal/export"
	"github.com/san-kum/birdsim/internal/gui"
	"github.com/san-kum/birdsim/internal/optim"
	"github.com/san-kum/birdsim/internal/sim"
	"github.com/san-kum/birdsim/internal/storage"
	"github.com/san-kum/birdsim/internal/surface"
	"github.com/san-kum/birdsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	preset     string

	backend  string
	surf     string
	clock    string
	initial  int
	capacity int
	frames   int
	seed     int64
	subSteps int
	bounce   string
	target   float64

	// live view grid in terminal cells
	cols int
	rows int

	snapshot string

	sizes     []int
	particles int
	tolerance float64
	outFile   string

	ranges       []string
	metricName   string
	maximize     bool
	trials       int
	perturbation float64

	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "birdsim",
		Short: "particle kinematics with frame-rate driven population control",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".birdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&surf, "surface", "discard", "render surface ("+strings.Join(surface.Kinds(), "|")+")")
	runCmd.Flags().StringVar(&clock, "clock", "virtual", "frame clock (virtual|wall)")
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "write the final canvas as svg to this path")
	runCmd.Flags().IntVar(&cols, "cols", 60, "snapshot canvas width in cells")
	runCmd.Flags().IntVar(&rows, "rows", 16, "snapshot canvas height in cells")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&cols, "cols", 60, "canvas width in cells")
	liveCmd.Flags().IntVar(&rows, "rows", 16, "canvas height in cells")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a raylib window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(guiCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark integrator backends",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	benchCmd.Flags().IntSliceVar(&sizes, "sizes", []int{1000, 10000, 100000}, "population sizes")
	benchCmd.Flags().IntVar(&frames, "frames", 60, "frames per size")
	benchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare backends on identical input",
		Args:  cobra.NoArgs,
		RunE:  compareBackends,
	}
	compareCmd.Flags().IntVar(&particles, "particles", 1000, "population size")
	compareCmd.Flags().IntVar(&frames, "frames", 60, "frames to advance")
	compareCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-3, "max deviation relative to the boundary")
	compareCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot fps and population of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frame timing statistics and spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export measured fps of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over config knobs",
		Args:  cobra.NoArgs,
		RunE:  sweepGrid,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per run")
	sweepCmd.Flags().StringArrayVar(&ranges, "param", nil, "knob values as name=v1,v2 (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "in_band", "metric to optimise")
	sweepCmd.Flags().BoolVar(&maximize, "max", true, "maximise the metric instead of minimising it")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario (yaml)",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb frame cost and initial population across trials",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per trial")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.5, "relative perturbation")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE:  listPresets,
	}

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "show cpu features and available backends",
		RunE:  listBackends,
	}

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, benchCmd, compareCmd, listCmd, plotCmd,
		analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, sweepCmd, scenarioCmd,
		monteCarloCmd, presetsCmd, backendsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&backend, "backend", compute.Auto, "integrator backend ("+strings.Join(compute.Names(), "|")+"|auto)")
	cmd.Flags().IntVar(&initial, "initial", config.DefaultInitial, "initial population")
	cmd.Flags().IntVar(&capacity, "capacity", config.DefaultCapacity, "store capacity")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&subSteps, "sub-steps", 11, "sub-steps per frame (0 derives from the profile)")
	cmd.Flags().StringVar(&bounce, "bounce", "keep", "bounce mode (keep|revert)")
	cmd.Flags().Float64Var(&target, "target", 30, "target frame rate")
}

func setupLogger() error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig resolves the preset, then the config file, then any flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("surface") {
		cfg.Surface = surf
	}
	if flags.Changed("clock") {
		cfg.Clock.Kind = clock
	}
	if flags.Changed("initial") {
		cfg.Initial = initial
	}
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("sub-steps") {
		cfg.Integrator.SubSteps = subSteps
	}
	if flags.Changed("bounce") {
		cfg.Integrator.Bounce = bounce
	}
	if flags.Changed("target") {
		if err := cfg.Set("target_fps", target); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupExperiment(cfg *config.Config, s surface.Surface) (*experiment.Experiment, error) {
	exp := experiment.New(cfg).WithLogger(logger)
	if err := exp.Setup(s); err != nil {
		return nil, err
	}
	return exp, nil
}

func presetName() string {
	if preset == "" {
		return "run"
	}
	return preset
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var canvas *surface.Canvas
	var s surface.Surface
	if snapshot != "" {
		canvas = surface.NewCanvas(cols, rows)
		s = canvas
	}
	exp, err := setupExperiment(cfg, s)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d frames on %s (%s clock, %d initial)\n",
		cfg.Frames, exp.Flock().Integrator().Name(), cfg.Clock.Kind, cfg.Initial)

	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}

	store := storage.New(dataDir)
	runID, err := store.Save(exp.Metadata(presetName(), result), result.Frames)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	if canvas != nil {
		if err := os.WriteFile(snapshot, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}

	fmt.Printf("run %s: %d frames in %v, final population %d\n",
		runID, len(result.Frames), result.Elapsed.Round(time.Millisecond), result.Population)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.3f\n", name, result.Metrics[name])
	}
	return w.Flush()
}

func refreshInterval(cfg *config.Config) time.Duration {
	ms := cfg.RefreshMs()
	if ms <= 0 {
		ms = 1000.0 / config.DefaultRefreshHz
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	canvas := surface.NewCanvas(cols, rows)
	exp, err := setupExperiment(cfg, canvas)
	if err != nil {
		return err
	}
	return viz.Run(exp.Flock(), canvas, refreshInterval(cfg))
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	win := gui.NewWindow(cfg.Display.Width, cfg.Display.Height)
	exp, err := setupExperiment(cfg, win)
	if err != nil {
		return err
	}
	gui.Run(exp.Flock(), win)
	return nil
}

func sweepGrid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(ranges) == 0 {
		return fmt.Errorf("sweep needs at least one --param (knobs: %s)", strings.Join(config.Knobs(), ", "))
	}

	names := make([]string, 0, len(ranges))
	values := make([][]float64, 0, len(ranges))
	for _, r := range ranges {
		name, vals, err := config.ParseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		values = append(values, vals)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(names, values)
	best, bestVal, err := g.Search(ctx, cfg, metricName, maximize)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	for _, p := range g.Points() {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", p.Params[name])
		}
		fmt.Fprintf(w, "%.3f\n", p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.3f at", metricName, bestVal)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best[name])
	}
	fmt.Println()
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, storage.New(dataDir))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tFRAMES\tPOPULATION\tMEAN FPS\tIN BAND\tRUN")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.2f\t%s\n", i+1, len(r.Result.Frames), r.Result.Population,
			r.Result.Metrics["mean_fps"], r.Result.Metrics["in_band"], r.RunID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tUS/PARTICLE\tINITIAL\tFINAL\tFPS\tSETTLED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.2f\t%d\t%d\t%.1f\t%t\n", r.TrialID, r.PerParticleUs, r.Initial, r.Final, r.FinalFPS, r.Settled)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	settled, unsettled := automation.MonteCarloStats(results)
	fmt.Printf("\nsettled: %d, unsettled: %d\n", settled, unsettled)
	return nil
}

func benchBackends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	avail := map[string]bool{}
	for _, name := range compute.Available(compute.Probe()) {
		avail[name] = true
	}

	fmt.Printf("benchmarking %d frames per size\n\n", frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tPARTICLES\tTOTAL\tNS/PARTICLE\tPREFERRED")
	for _, name := range compute.Names() {
		for _, n := range sizes {
			wl := compute.DefaultWorkload()
			wl.Particles = n
			wl.Frames = frames
			wl.Boundary = cfg.Boundary
			wl.Velocity = cfg.Velocity
			wl.Seed = cfg.Seed
			r, err := compute.Run(name, params, wl)
			if err != nil {
				return fmt.Errorf("bench %s n=%d: %w", name, n, err)
			}
			fmt.Fprintf(w, "%s\t%d\t%v\t%.2f\t%t\n", name, n, r.Elapsed.Round(time.Microsecond), r.NsPerParticle(wl), avail[name])
		}
	}
	return w.Flush()
}

func compareBackends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	// scalar is the reference every other backend is measured against
	names := []string{"scalar"}
	for _, name := range compute.Names() {
		if name != "scalar" {
			names = append(names, name)
		}
	}

	wl := compute.DefaultWorkload()
	wl.Particles = particles
	wl.Frames = frames
	wl.Boundary = cfg.Boundary
	wl.Velocity = cfg.Velocity
	wl.Seed = cfg.Seed

	results, err := compute.Compare(names, params, wl)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tTIME\tMAX DEVIATION")
	var failed []string
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%v\t%.3e\n", r.Backend, r.Elapsed.Round(time.Microsecond), r.Deviation)
		if r.Deviation > tolerance {
			failed = append(failed, r.Backend)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("deviation above %g: %s", tolerance, strings.Join(failed, ", "))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tBACKEND\tFRAMES\tPOPULATION\tMEAN FPS\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1f\t%s\n",
			run.ID, run.Preset, run.Backend, run.Frames, run.Population,
			run.Metrics["mean_fps"], run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", runID, err)
	}
	fr, err := store.LoadFrames(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", runID, err)
	}
	return meta, fr, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, fr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(fr) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	var fps []float64
	pop := make([]float64, 0, len(fr))
	for _, f := range fr {
		if f.Measured {
			fps = append(fps, f.FPS)
		}
		pop = append(pop, float64(f.Population))
	}

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Preset, meta.Backend)
	if len(fps) > 0 {
		fmt.Println(asciigraph.Plot(fps, asciigraph.Height(10), asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("measured fps (target %.0f)", meta.TargetFPS))))
		fmt.Println()
	}
	fmt.Println(asciigraph.Plot(pop, asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("population")))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, fr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	sum := analysis.SummarizeRun(fr)
	fmt.Printf("run: %s (%d frames, final population %d)\n\n", meta.ID, len(fr), meta.Population)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tN\tMEAN\tSTDDEV\tMIN\tP50\tP90\tP99\tMAX")
	for _, row := range []struct {
		name string
		s    analysis.Summary
	}{
		{"interval_ms", sum.Interval},
		{"fps", sum.FPS},
		{"population", sum.Population},
	} {
		s := row.s
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			row.name, s.N, s.Mean, s.StdDev, s.Min, s.P50, s.P90, s.P99, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nadjustments: %d grow, %d shrink", sum.Grows, sum.Shrinks)
	if sum.SettleFrame >= 0 {
		fmt.Printf(", last at frame %d", sum.SettleFrame)
	}
	fmt.Println()

	intervals := analysis.FrameIntervals(fr)
	if len(intervals) < 4 {
		return nil
	}
	spectrum := analysis.PowerSpectrum(intervals)
	bin, period := analysis.DominantPeriod(intervals)
	if bin == 0 {
		fmt.Println("\nframe intervals are flat")
		return nil
	}
	fmt.Printf("\ndominant interval period: %.1f frames (bin %d)\n\n", period, bin)
	fmt.Println(asciigraph.Plot(spectrum[1:], asciigraph.Height(8), asciigraph.Width(80),
		asciigraph.Caption("frame interval spectrum")))
	return nil
}

func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, fr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(out, fr); err != nil {
		closeFn()
		return fmt.Errorf("export %s: %w", args[0], err)
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, fr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, *meta, fr); err != nil {
		closeFn()
		return fmt.Errorf("export %s: %w", args[0], err)
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, fr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var fps []float64
	for _, f := range fr {
		if f.Measured {
			fps = append(fps, f.FPS)
		}
	}
	if len(fps) < 2 {
		return fmt.Errorf("run %s has fewer than two measured windows", args[0])
	}
	half := 2.0
	if cfg := config.GetPreset(meta.Preset); cfg != nil {
		half = (cfg.Controller.Max - cfg.Controller.Min) / 2
	}
	band := &export.Band{Min: meta.TargetFPS - half, Max: meta.TargetFPS + half, Color: "#3366ff"}
	svg := export.SeriesToSVG(fps, 800, 300, "#00ff00", band)

	out, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, svg); err != nil {
		closeFn()
		return fmt.Errorf("export %s: %w", args[0], err)
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINITIAL\tSUB-STEPS\tBOUNCE\tTARGET\tCLOCK")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		steps := fmt.Sprint(cfg.Integrator.SubSteps)
		if cfg.Integrator.SubSteps == 0 {
			steps = "derived"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.0f\t%s %.0fHz\n",
			name, cfg.Initial, steps, cfg.Integrator.Bounce, cfg.Controller.Target,
			cfg.Clock.Kind, cfg.Clock.RefreshHz)
	}
	return w.Flush()
}

func listBackends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	caps := compute.Probe()
	fmt.Printf("cpu: %s\n", caps)
	fmt.Printf("auto: %s\n\n", compute.AutoSelect(params, caps).Name())

	avail := map[string]bool{}
	for _, name := range compute.Available(caps) {
		avail[name] = true
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tPREFERRED")
	for _, name := range compute.Names() {
		fmt.Fprintf(w, "%s\t%t\n", name, avail[name])
	}
	return w.Flush()
}
