package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tearsim/internal/analysis"
	"github.com/san-kum/tearsim/internal/automation"
	"github.com/san-kum/tearsim/internal/config"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/experiment"
	"github.com/san-kum/tearsim/internal/export"
	"github.com/san-kum/tearsim/internal/gui"
	"github.com/san-kum/tearsim/internal/optim"
	"github.com/san-kum/tearsim/internal/sim"
	"github.com/san-kum/tearsim/internal/storage"
	"github.com/san-kum/tearsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	envFile    string
	seed       int64
	preset     string
	frameRate  int
	overrides  []string

	noSave     bool
	plotColumn string
	fftColumn  string
	outPath    string
	svgScale   float64
	numRuns    int
	tuneMetric string
	tuneRanges []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tearsim",
		Short:        "tearable soft-body lattice",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "run data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&envFile, "env", ".env", "environment file")
	pf.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	pf.StringVar(&preset, "preset", "", "material preset")
	pf.IntVar(&frameRate, "fps", config.DefaultFPS, "frames per second")
	pf.StringArrayVar(&overrides, "set", nil, "parameter override name=value (repeatable)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "interactive window viewer",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scripted scenario headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stats column of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "constraints", "stats column")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stats column",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&fftColumn, "column", "mean_strain", "stats column")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run stats as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final lattice of a run as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 1, "pixels per domain unit")
	for _, c := range []*cobra.Command{exportCSVCmd, exportJSONCmd, exportSVGCmd} {
		c.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list material presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "run a scenario over many seeds concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	benchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid search parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneScenario,
	}
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tears", "metric to minimize")
	tuneCmd.Flags().StringArrayVar(&tuneRanges, "param", nil, "parameter range name=lo:hi:n (repeatable)")

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, scenariosCmd, benchCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and finally
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("preset") {
		if err := config.ApplyPreset(&cfg.Params, preset); err != nil {
			return nil, err
		}
		cfg.Preset = preset
	}
	for _, kv := range overrides {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		if err := cfg.Params.SetParam(name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulation(cmd *cobra.Command) (*sim.Simulation, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := sim.New(cfg.Params, cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSimulation(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(s, cfg.FPS)
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSimulation(cmd)
	if err != nil {
		return err
	}
	gui.Run(s, cfg.FPS)
	return nil
}

func scenarioArg(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Scenario
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	exp, err := registry.Build(experiment.Config{
		Scenario: scenarioArg(cfg, args),
		Preset:   cfg.Preset,
		Seed:     cfg.Seed,
		Params:   cfg.Params,
	})
	if err != nil {
		return err
	}

	sc := exp.Scenario()
	fmt.Printf("running %s (%d frames, seed %d)\n", sc.Name, sc.Frames, cfg.Seed)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	fmt.Printf("%d frames, %d steps in %v\n\n", len(result.Frames), result.StepsTaken, time.Since(start).Round(time.Millisecond))

	if err := printMetrics(result.Metrics); err != nil {
		return err
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if !noSave {
		st := storage.New(cfg.DataDir)
		runID, err := st.Save(storage.RunInfo{
			Scenario: sc.Name,
			Preset:   cfg.Preset,
			Seed:     cfg.Seed,
			Params:   exp.Simulation().Params(),
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", runID)
	}
	return runErr
}

func printMetrics(m map[string]float64) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.4f\n", name, m[name])
	}
	return w.Flush()
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

// runArg returns the requested run id, or the newest run.
func runArg(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 && args[0] != "latest" {
		return args[0], nil
	}
	return st.Latest()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSEED\tFRAMES\tSTEPS\tTEARS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.0f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Frames,
			run.Steps,
			run.Metrics["tears"],
		)
	}

	return w.Flush()
}

// statsColumn extracts one named column from recorded frames.
func statsColumn(frames []dynamo.Stats, name string) ([]float64, error) {
	if !slices.Contains(dynamo.StatsColumns, name) {
		return nil, fmt.Errorf("unknown column %q (have %s)", name, strings.Join(dynamo.StatsColumns, ", "))
	}
	return dynamo.StatsColumn(frames, name), nil
}

func loadColumn(cmd *cobra.Command, args []string, column string) (*storage.RunMetadata, []dynamo.Stats, []float64, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	runID, err := runArg(st, args)
	if err != nil {
		return nil, nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, err := st.LoadStats(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: run %s has no frames", dynamo.ErrNoData, runID)
	}
	data, err := statsColumn(frames, column)
	if err != nil {
		return nil, nil, nil, err
	}
	return meta, frames, data, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, _, data, err := loadColumn(cmd, args, plotColumn)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(plotColumn+" vs frame"),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, data, err := loadColumn(cmd, args, fftColumn)
	if err != nil {
		return err
	}

	span := frames[len(frames)-1].Time - frames[0].Time
	if span <= 0 {
		return fmt.Errorf("%w: run %s spans no time", dynamo.ErrNoData, meta.ID)
	}
	rate := float64(len(frames)-1) / span

	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, fftColumn)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 1 {
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+fftColumn+")"),
		))
		fmt.Println()
	}

	sum := analysis.Describe(data)
	fmt.Printf("mean %.4f  std %.4f  min %.4f  max %.4f\n", sum.Mean, sum.StdDev, sum.Min, sum.Max)
	if t, ok := analysis.TearOnset(frames); ok {
		fmt.Printf("first tear: %.3f s\n", t)
	}

	freq, _, err := analysis.DominantFrequency(data, rate)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func output() (*os.File, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := runArg(st, args)
	if err != nil {
		return err
	}
	frames, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := storage.ExportCSVFile(outPath, frames); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d frames to %s\n", len(frames), outPath)
		return nil
	}
	return storage.WriteStats(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := runArg(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadSnapshot(runID)
	if err != nil && !errors.Is(err, dynamo.ErrNoData) {
		return err
	}
	if outPath != "" {
		return storage.ExportJSONFile(outPath, meta, frames, final)
	}
	return storage.ExportJSON(os.Stdout, meta, frames, final)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := runArg(st, args)
	if err != nil {
		return err
	}
	snap, err := st.LoadSnapshot(runID)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.Scale = svgScale
	opts.MaxStrain = meta.Params.BreakThreshold

	out, closeOut, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(out, export.SnapshotToSVG(snap, opts)); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARAMS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%g", k, p[k])
		}
		fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(parts, " "))
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tFRAMES\tEVENTS\tDESCRIPTION")
	for _, name := range registry.ListScenarios() {
		sc, err := registry.GetScenario(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", sc.Name, sc.Frames, len(sc.Events), sc.Description)
	}
	return w.Flush()
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	sc, err := registry.Resolve(scenarioArg(cfg, args))
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s over %d seeds from %d\n\n", sc.Name, numRuns, cfg.Seed)

	ens := sim.NewEnsemble(cfg.Params, numRuns, cfg.Seed).WithMetrics(registry.DefaultMetrics)
	start := time.Now()
	results, err := ens.Run(ctx, func(ctx context.Context, s *sim.Simulation) (*dynamo.Result, error) {
		return automation.Run(ctx, sc.Clone(), s)
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	steps := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tTEARS\tINTEGRITY\tPEAK")
	for i, r := range results {
		steps += r.StepsTaken
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%.3f\t%.3f\n",
			cfg.Seed+int64(i), r.StepsTaken, r.Metrics["tears"], r.Metrics["integrity"], r.Metrics["peak_strain"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d steps in %v (%.0f steps/sec)\n\n", steps, elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds())
	fmt.Println("mean over seeds:")
	return printMetrics(sim.Summary(results))
}

// parseRange parses name=lo:hi:n into a parameter name and its grid values.
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	parts := strings.Split(spec, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("--param %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("--param %s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("--param %s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("--param %s: point count must be a positive integer", name)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(tuneRanges) == 0 {
		return fmt.Errorf("at least one --param range is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var names []string
	var ranges [][]float64
	for _, r := range tuneRanges {
		name, values, err := parseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	registry := experiment.NewRegistry()
	sc, err := registry.Resolve(scenarioArg(cfg, args))
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		p := cfg.Params
		for name, v := range params {
			if err := p.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(experiment.Config{
			Scenario: sc.Name,
			Preset:   cfg.Preset,
			Seed:     cfg.Seed,
			Params:   p,
			Metrics:  registry.DefaultMetrics(),
		}, sc.Clone())
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp, nil
	}

	fmt.Printf("tuning %s against %s\n\n", sc.Name, tuneMetric)
	best, value, trials, err := optim.NewGridSearch(names, ranges).Search(ctx, build, tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(tuneMetric))
	for _, t := range trials {
		row := make([]string, len(names))
		for i, name := range names {
			row[i] = fmt.Sprintf("%g", t.Params[name])
		}
		result := fmt.Sprintf("%.4f", t.Value)
		if t.Err != nil {
			result = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(row, "\t"), result)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.4f at", tuneMetric, value)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best[name])
	}
	fmt.Println()
	return nil
}
