package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/soilsim/internal/analysis"
	"github.com/san-kum/soilsim/internal/automation"
	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/experiment"
	"github.com/san-kum/soilsim/internal/integrators"
	"github.com/san-kum/soilsim/internal/metrics"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/storage"
	"github.com/san-kum/soilsim/internal/sweep"
	"github.com/san-kum/soilsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	// Run overrides; applied only when set on the command line.
	scheme      string
	precision   string
	maxIters    int
	backend     string
	workers     int
	days        int
	seed        uint64
	initial     []float64
	forcingPath string
	// Output
	runName    string
	noSave     bool
	metricsOut string
	outFile    string
	// Sweep
	axes      []string
	objective string
	// Plot
	plotMembers int
	bandQ       float64
	// Live
	theme string
	// Monte Carlo
	trials       int
	perturbation float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(22)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "soilsim",
		Short:        "daily bucket soil-moisture simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".soilsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its path",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (default: preset name or \"run\")")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write solver counters in Prometheus text format to this file")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare the implicit and rk2 schemes on the same forcing",
		Args:  cobra.NoArgs,
		RunE:  compareSchemes,
	}
	addRunFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter grid as one ensemble",
		Long: "Each --axis is name=v1,v2,... or name=lo:hi:n. Every grid point becomes one\n" +
			"ensemble member; unswept parameters come from the first member of the config.",
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "axis", nil, "swept parameter (repeatable)")
	sweepCmd.Flags().StringVar(&objective, "objective", "std_dev", "member score to minimise ("+strings.Join(objectiveNames(), ", ")+")")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the sweep")
	sweepCmd.Flags().StringVar(&runName, "name", "", "run name (default: preset name or \"run\")")
	_ = sweepCmd.MarkFlagRequired("axis")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored moisture paths",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotMembers, "members", 4, "maximum number of members to plot")
	plotCmd.Flags().Float64Var(&bandQ, "band", 0.1, "quantile of the ensemble band (0 disables)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and spectrum of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the moisture path of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeLoam.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run when it completes")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "ensemble over perturbed initial storage",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of ensemble members")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.2, "relative spread of initial storage")

	rootCmd.AddCommand(runCmd, compareCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd, batchCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&scheme, "scheme", config.DefaultScheme, "time-stepping scheme (implicit, rk2)")
	cmd.Flags().StringVar(&precision, "precision", config.DefaultPrecision, "implicit tolerance (standard, precise)")
	cmd.Flags().IntVar(&maxIters, "max-iters", integrators.DefaultMaxIters, "iteration cap per day and member")
	cmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "member fan-out (local, parallel, auto)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0: GOMAXPROCS)")
	cmd.Flags().IntVar(&days, "days", config.DefaultDays, "number of days")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "synthetic forcing seed")
	cmd.Flags().Float64SliceVar(&initial, "initial", nil, "initial storage, one value or one per member")
	cmd.Flags().StringVar(&forcingPath, "forcing", "", "forcing CSV (precip,et[,temp])")
}

// setupExperiment resolves the configuration and builds a ready experiment.
func setupExperiment(cmd *cobra.Command, log logrus.FieldLogger, extra ...sim.Option) (*experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd.Flags().Changed)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), log, extra...); err != nil {
		return nil, err
	}
	return exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("soilsim", reg)

	exp, err := setupExperiment(cmd, log, sim.WithObserver(collector))
	if err != nil {
		return err
	}
	cfg, s := exp.Config(), exp.GetSimulator()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithFields(logrus.Fields{
		"scheme":  cfg.Scheme,
		"days":    exp.Series().Days(),
		"members": s.Members(),
		"kernel":  s.Kernel(),
		"backend": s.Backend().Name(),
	}).Info("run started")
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	log.WithField("elapsed", elapsed).Info("run finished")

	runID := ""
	if !noSave {
		runID, err = saveRun(cfg, s, exp, result)
		if err != nil {
			return err
		}
	}

	printSummary(os.Stdout, runID, result, elapsed)

	if metricsOut != "" {
		if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func saveRun(cfg *config.Config, s *sim.Simulator, exp *experiment.Experiment, result *sim.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunInfo{
		Name:      runLabel(),
		Precision: cfg.Precision,
		Backend:   s.Backend().Name(),
		Seed:      cfg.Seed,
		Params:    s.Parameters(),
		Initial:   exp.Initial(),
	}, result)
}

func printSummary(w io.Writer, runID string, result *sim.Result, elapsed time.Duration) {
	row := func(label, value string) {
		fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(value))
	}

	fmt.Fprintln(w, titleStyle.Render("soilsim run"))
	if runID != "" {
		row("run id", runID)
	}
	row("scheme", string(result.Scheme))
	row("kernel", result.Kernel+" ("+result.Layout.String()+")")
	row("members x days", fmt.Sprintf("%d x %d", result.Members(), result.Days()))
	row("elapsed", elapsed.String())
	row("newton iterations", fmt.Sprint(result.Diagnostics.NewtonIterations))
	row("bisection iterations", fmt.Sprint(result.Diagnostics.BisectionIterations))
	row("fallbacks", fmt.Sprint(result.Diagnostics.Fallbacks()))
	if n := result.Diagnostics.Unconverged(); n > 0 {
		fmt.Fprintln(w, labelStyle.Render("unconverged")+warnStyle.Render(fmt.Sprint(n)))
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\n"+titleStyle.Render("metrics"))
	for _, name := range names {
		row(name, fmt.Sprintf("%.6f", result.Metrics[name]))
	}
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd.Flags().Changed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	schemes := []sim.Scheme{sim.SchemeImplicit, sim.SchemeRK2}
	results := make([]*sim.Result, len(schemes))

	fmt.Printf("comparing schemes (%d days, precision %s)\n\n", cfg.Days, cfg.Precision)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tNEWTON\tBISECTION\tFALLBACKS\tFINAL_MEAN\tTIME_MS")

	for i, sc := range schemes {
		c := cfg.Clone()
		c.Scheme = string(sc)

		exp := experiment.New(c)
		if err := exp.Setup(experiment.NewRegistry(), log.WithField("compare", sc)); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", sc, err)
		}
		elapsed := time.Since(start)
		results[i] = result

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4f\t%.2f\n",
			sc,
			result.Diagnostics.NewtonIterations,
			result.Diagnostics.BisectionIterations,
			result.Diagnostics.Fallbacks(),
			stat.Mean(result.Final(), nil),
			float64(elapsed.Microseconds())/1000,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	diff, err := analysis.MaxRelativeDifference(results[1].Path, results[0].Path)
	if err != nil {
		return err
	}
	fmt.Printf("\nmax relative difference: %.3e (member %d, day %d)\n", diff.Relative, diff.Member, diff.Day)
	fmt.Printf("rmse: %.4f\n", diff.RMSE)
	return nil
}

// objectives score one member of a sweep; lower is better.
var objectives = map[string]func(s analysis.Summary, capacity float64) float64{
	"std_dev":        func(s analysis.Summary, _ float64) float64 { return s.StdDev },
	"dry_days":       func(s analysis.Summary, _ float64) float64 { return float64(s.DryDays) },
	"saturated_days": func(s analysis.Summary, _ float64) float64 { return float64(s.SaturatedDays) },
	"deficit":        func(s analysis.Summary, capacity float64) float64 { return 1 - s.Mean/capacity },
}

func objectiveNames() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runSweep(cmd *cobra.Command, args []string) error {
	score, ok := objectives[objective]
	if !ok {
		return fmt.Errorf("unknown objective %q (available: %v)", objective, objectiveNames())
	}

	names := make([]string, 0, len(axes))
	ranges := make([][]float64, 0, len(axes))
	for _, a := range axes {
		name, values, err := sweep.ParseAxis(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	grid, err := sweep.NewGrid(names, ranges)
	if err != nil {
		return err
	}

	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd.Flags().Changed)
	if err != nil {
		return err
	}

	params, points := grid.Parameters(cfg.Params.Parameters().Member(0))
	cfg.Params = config.FromParameters(params)
	if !cmd.Flags().Changed("backend") {
		cfg.Backend = "auto"
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithFields(logrus.Fields{"points": grid.Size(), "backend": exp.GetSimulator().Backend().Name()}).Info("sweep started")
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	summaries := analysis.Summarize(result.Path, params.Capacity)
	scores := make([]float64, len(summaries))
	for i, s := range summaries {
		scores[i] = score(s, params.Capacity.At(i))
	}
	best := sweep.Best(scores)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := append([]string{""}, names...)
	header = append(header, "MEAN", "STD_DEV", "DRY", "SATURATED", strings.ToUpper(objective))
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for i, point := range points {
		mark := " "
		if i == best {
			mark = "*"
		}
		cols := []string{mark}
		for _, name := range names {
			cols = append(cols, fmt.Sprintf("%g", point[name]))
		}
		s := summaries[i]
		cols = append(cols,
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.StdDev),
			fmt.Sprint(s.DryDays),
			fmt.Sprint(s.SaturatedDays),
			fmt.Sprintf("%.4f", scores[i]),
		)
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best >= 0 {
		fmt.Printf("\nbest %s: %v\n", objective, points[best])
	}
	if !noSave {
		runID, err := saveRun(cfg, exp.GetSimulator(), exp, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSCHEME\tPRECISION\tMEMBERS\tDAYS\tNEWTON\tFALLBACKS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Scheme,
			run.Precision,
			run.Members,
			run.Days,
			run.Totals.NewtonIterations,
			run.Totals.Fallbacks,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	path, err := st.LoadPath(runID)
	if err != nil {
		return err
	}
	if len(path) == 0 || len(path[0]) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scheme: %s, kernel: %s\n", meta.Scheme, meta.Kernel)
	fmt.Printf("members: %d, days: %d\n\n", len(path), len(path[0]))

	if len(path) > 1 && bandQ > 0 && bandQ < 0.5 {
		env := analysis.Band(path, bandQ)
		graph := asciigraph.PlotMany([][]float64{env.Lower, env.Mean, env.Upper},
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green, asciigraph.Blue),
			asciigraph.Caption(fmt.Sprintf("ensemble mean with %g-%g band (mm)", bandQ, 1-bandQ)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	n := min(plotMembers, len(path))
	for i := 0; i < n; i++ {
		graph := asciigraph.Plot(path[i],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("member %d storage (mm)", i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	if n < len(path) {
		fmt.Printf("(%d more members not shown)\n", len(path)-n)
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	result, meta, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if result.Members() == 0 || result.Days() == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scheme: %s, newton: %d, bisection: %d, fallbacks: %d, unconverged: %d\n\n",
		meta.Scheme,
		meta.Totals.NewtonIterations,
		meta.Totals.BisectionIterations,
		result.Diagnostics.Fallbacks(),
		result.Diagnostics.Unconverged(),
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tMIN\tMAX\tMEAN\tSTD_DEV\tMEDIAN\tSATURATED\tDRY\tPERIOD_D")
	for _, s := range analysis.Summarize(result.Path, meta.Params.Capacity) {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%d\t%d\t%.1f\n",
			s.Member, s.Min, s.Max, s.Mean, s.StdDev, s.Median,
			s.SaturatedDays, s.DryDays,
			analysis.DominantPeriod(result.Path[s.Member]),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	data := result.Path[0]
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	ps := analysis.PowerSpectrum(padded)
	plotData := ps[:max(2, len(ps)/4)]

	fmt.Println()
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (member 0)"),
	)
	fmt.Println(graph)

	return nil
}

// output returns the writer for --out and a function closing it.
func output() (io.Writer, func() error, error) {
	if outFile == "" || outFile == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, _, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if result.Members() == 0 {
		return fmt.Errorf("no data to export")
	}

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteMoistureCSV(w, result); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, _, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, result); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCHEME\tPRECISION\tBACKEND\tMEMBERS\tDAYS\tFORCING")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		_, members, err := cfg.Params.Parameters().Resolve()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			name, cfg.Scheme, cfg.Precision, cfg.Backend, members, cfg.Days, cfg.Forcing.Source)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	log, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	exp, err := setupExperiment(cmd, log)
	if err != nil {
		return err
	}
	stepper, err := exp.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := exp.Config()
	title := fmt.Sprintf("%s / %s", runLabel(), cfg.Scheme)
	model := viz.NewModel(ctx, stepper, cfg.Params.Parameters().Capacity, title).
		WithTheme(viz.GetTheme(theme))

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		return m.Err()
	}

	if noSave || !stepper.Done() {
		return nil
	}
	runID, err := saveRun(cfg, exp.GetSimulator(), exp, stepper.Result())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), log, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCHEME\tMEMBERS\tDAYS\tNEWTON\tFALLBACKS\tFINAL_MEAN\tRUN_ID")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%.4f\t%s\n",
			r.Step,
			r.Result.Scheme,
			r.Result.Members(),
			r.Result.Days(),
			r.Result.Diagnostics.NewtonIterations,
			r.Result.Diagnostics.Fallbacks(),
			stat.Mean(r.Result.Final(), nil),
			r.RunID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd.Flags().Changed)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("backend") {
		cfg.Backend = "auto"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := &automation.MonteCarloConfig{
		Base:         cfg,
		Trials:       trials,
		Perturbation: perturbation,
		Seed:         cfg.Seed,
	}
	res, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
	}
	fmt.Println(titleStyle.Render("monte carlo"))
	row("trials", fmt.Sprint(len(res.Final)))
	row("initial spread", fmt.Sprintf("%.3f .. %.3f", floats.Min(res.Initial), floats.Max(res.Initial)))
	row("final mean", fmt.Sprintf("%.4f", res.Mean))
	row("final std dev", fmt.Sprintf("%.4f", res.StdDev))
	row("saturated", fmt.Sprint(res.Saturated))
	row("dry", fmt.Sprint(res.Dry))
	row("fallbacks", fmt.Sprint(res.Result.Diagnostics.Fallbacks()))

	if len(res.Final) > 1 {
		env := analysis.Band(res.Result.Path, 0.05)
		fmt.Println()
		fmt.Println(asciigraph.PlotMany([][]float64{env.Lower, env.Mean, env.Upper},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green, asciigraph.Blue),
			asciigraph.Caption("ensemble mean with 5-95% band (mm)"),
		))
	}
	return nil
}
