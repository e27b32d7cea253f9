package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kmadler/bayesode/internal/chain"
	"github.com/kmadler/bayesode/internal/config"
	"github.com/kmadler/bayesode/internal/dyn"
	"github.com/kmadler/bayesode/internal/infer"
	"github.com/kmadler/bayesode/internal/integrators"
	"github.com/kmadler/bayesode/internal/model"
	"github.com/kmadler/bayesode/internal/optim"
	"github.com/kmadler/bayesode/internal/prior"
	"github.com/kmadler/bayesode/internal/sim"
	"github.com/kmadler/bayesode/internal/storage"
	"github.com/kmadler/bayesode/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	integrator string
	backend    string
	samples    int
	warmup     int
	chains     int
	seed       uint64
	stepSize   float64
	leapfrog   int
	sigma      float64
	t1         float64
	obsCount   int
	trueParams []float64
	initState  []float64
	command    string
	cmdArgs    []string
	outFile    string
	gridPoints int
	bins       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bayesode",
		Short: "bayesian parameter estimation for dynamical systems",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bayesode", "data directory")

	simulateCmd := &cobra.Command{
		Use:   "simulate [model]",
		Short: "solve the forward model and generate synthetic observations",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulate,
	}
	addDataFlags(simulateCmd)
	simulateCmd.Flags().StringVar(&outFile, "out", "", "write observations to CSV file")

	inferCmd := &cobra.Command{
		Use:   "infer [model]",
		Short: "sample the posterior over model parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfer,
	}
	addDataFlags(inferCmd)
	addSamplerFlags(inferCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [run_id]",
		Short: "posterior summary of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  summarizeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	traceCmd := &cobra.Command{
		Use:   "trace [run_id]",
		Short: "trace and marginal plots of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}
	traceCmd.Flags().IntVar(&bins, "bins", 30, "histogram bins")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [backend1] [backend2] ...",
		Short: "run several backends on the same data and compare posteriors",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareBackends,
	}
	addDataFlags(compareCmd)
	addSamplerFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "sample the posterior with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addDataFlags(liveCmd)
	addSamplerFlags(liveCmd)

	mapCmd := &cobra.Command{
		Use:   "map [model]",
		Short: "maximum a posteriori estimate by grid search",
		Args:  cobra.ExactArgs(1),
		RunE:  runMAP,
	}
	addDataFlags(mapCmd)
	mapCmd.Flags().IntVar(&gridPoints, "grid", 40, "grid points per dimension")

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "list available backends, models, and integrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("backends:")
			for _, name := range infer.ListBackends() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("models:")
			for _, name := range model.List() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("integrators:")
			for _, name := range integrators.List() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(simulateCmd, inferCmd, listCmd, summaryCmd, exportCmd, traceCmd, compareCmd, liveCmd, mapCmd, backendsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "observation noise stddev")
	cmd.Flags().Float64Var(&t1, "time", config.DefaultT1, "end of time span")
	cmd.Flags().IntVar(&obsCount, "obs", config.DefaultObsCount, "number of observations")
	cmd.Flags().Float64SliceVar(&trueParams, "params", nil, "true parameter values")
	cmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state")
}

func addSamplerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&backend, "backend", "metropolis", "sampling backend")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "post-warmup samples")
	cmd.Flags().IntVar(&warmup, "warmup", config.DefaultWarmup, "warmup iterations")
	cmd.Flags().IntVar(&chains, "chains", 1, "parallel chains")
	cmd.Flags().Float64Var(&stepSize, "step-size", config.DefaultStepSize, "proposal / leapfrog step size")
	cmd.Flags().IntVar(&leapfrog, "leapfrog", config.DefaultLeapfrog, "leapfrog steps per proposal (hmc)")
	cmd.Flags().StringVar(&command, "command", "", "external sampler executable")
	cmd.Flags().StringSliceVar(&cmdArgs, "arg", nil, "extra argument for the external sampler")
}

// resolveConfig layers preset, config file, and changed flags, in that
// order of increasing precedence.
func resolveConfig(cmd *cobra.Command, modelName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = modelName

	if preset != "" {
		p := config.GetPreset(modelName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(modelName))
		}
		*cfg = *p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Model = modelName
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("sigma") {
		cfg.Data.Sigma = sigma
	}
	if flags.Changed("time") {
		cfg.Data.T1 = t1
	}
	if flags.Changed("obs") {
		cfg.Data.ObsCount = obsCount
	}
	if flags.Changed("params") {
		cfg.Data.TrueParams = trueParams
	}
	if flags.Changed("init") {
		cfg.Data.InitState = initState
	}
	if flags.Lookup("backend") != nil {
		if flags.Changed("backend") {
			cfg.Backend = backend
		}
		if flags.Changed("samples") {
			cfg.Samples = samples
		}
		if flags.Changed("warmup") {
			cfg.Warmup = warmup
		}
		if flags.Changed("chains") {
			cfg.Chains = chains
		}
		if flags.Changed("step-size") {
			cfg.StepSize = stepSize
		}
		if flags.Changed("leapfrog") {
			cfg.Leapfrog = leapfrog
		}
		if flags.Changed("command") {
			cfg.Command = command
		}
		if flags.Changed("arg") {
			cfg.Args = cmdArgs
		}
	}
	return cfg, nil
}

// makeData builds the problem at the true parameters, solves it, and
// draws noisy observations from the solution.
func makeData(ctx context.Context, cfg *config.Config) (*dyn.Problem, *sim.Trajectory, *sim.Observations, error) {
	sys, err := model.Get(cfg.Model)
	if err != nil {
		return nil, nil, nil, err
	}

	prob, err := dyn.NewProblem(sys, cfg.Data.InitState, cfg.Data.T0, cfg.Data.T1, cfg.Data.TrueParams)
	if err != nil {
		return nil, nil, nil, err
	}

	tr, err := sim.Solve(ctx, prob, solverOptions(cfg))
	if err != nil {
		return nil, nil, nil, err
	}

	times := sim.UniformTimes(cfg.Data.T0, cfg.Data.T1, cfg.Data.ObsCount)
	obs, err := sim.Observe(tr, times, cfg.Data.Sigma, rand.NewPCG(cfg.Seed, 0xda7a))
	if err != nil {
		return nil, nil, nil, err
	}
	return prob, tr, obs, nil
}

func solverOptions(cfg *config.Config) sim.Options {
	opts := sim.DefaultOptions()
	opts.Integrator = cfg.Integrator
	return opts
}

func samplerOptions(cfg *config.Config) infer.Options {
	opts := infer.DefaultOptions()
	opts.Samples = cfg.Samples
	opts.Warmup = cfg.Warmup
	opts.Seed = cfg.Seed
	opts.StepSize = cfg.StepSize
	opts.Leapfrog = cfg.Leapfrog
	opts.Command = cfg.Command
	opts.Args = cfg.Args
	opts.PriorSpecs = cfg.Priors
	opts.Solver = solverOptions(cfg)
	return opts
}

func buildPriors(cfg *config.Config) (prior.Set, error) {
	return prior.BuildSet(cfg.Priors, rand.NewPCG(cfg.Seed, 0x7072))
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	_, tr, obs, err := makeData(context.Background(), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s\n", cfg.Model)
	fmt.Printf("params: %v\n", cfg.Data.TrueParams)
	fmt.Printf("steps: %d\n\n", tr.Steps())

	plot, err := viz.TrajectoryPlot(tr, 200)
	if err != nil {
		return err
	}
	fmt.Println(plot)
	fmt.Println()

	obsPlot, err := viz.ObservationPlot(tr, obs)
	if err != nil {
		return err
	}
	fmt.Println(obsPlot)

	if outFile != "" {
		if err := writeObservationsCSV(outFile, obs); err != nil {
			return err
		}
		fmt.Printf("observations written to %s\n", outFile)
	}
	return nil
}

func writeObservationsCSV(path string, obs *sim.Observations) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dim := 0
	if len(obs.Values) > 0 {
		dim = len(obs.Values[0])
	}
	header := []string{"time"}
	for j := 0; j < dim; j++ {
		header = append(header, fmt.Sprintf("x%d", j))
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, t := range obs.Times {
		row := make([]string, 0, dim+1)
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for j := 0; j < dim; j++ {
			row = append(row, strconv.FormatFloat(obs.Values[i][j], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runInfer(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	prob, _, obs, err := makeData(ctx, cfg)
	if err != nil {
		return err
	}
	priors, err := buildPriors(cfg)
	if err != nil {
		return err
	}

	be, err := infer.GetBackend(cfg.Backend)
	if err != nil {
		return err
	}
	opts := samplerOptions(cfg)

	fmt.Printf("sampling %s posterior with %s (%d samples, %d warmup, %d chains)...\n",
		cfg.Model, cfg.Backend, cfg.Samples, cfg.Warmup, cfg.Chains)
	start := time.Now()

	var ch *chain.Chain
	if cfg.Chains > 1 {
		ens := infer.NewEnsemble(be, opts, cfg.Chains)
		perChain, merged, err := ens.Run(ctx, prob, obs, priors)
		if err != nil {
			return err
		}
		ch = merged
		for i, name := range ch.Names {
			fmt.Printf("r-hat %s: %.4f\n", name, chain.RHat(perChain, i))
		}
	} else {
		driver := infer.NewDriver(be, opts)
		ch, err = driver.Run(ctx, prob, obs, priors)
		if err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))
	fmt.Println(ch.Summary())
	fmt.Printf("accept rate: %.1f%%\n", 100*ch.AcceptRate())

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Model:      cfg.Model,
		Backend:    cfg.Backend,
		Integrator: cfg.Integrator,
		Warmup:     cfg.Warmup,
		Seed:       cfg.Seed,
		Sigma:      cfg.Data.Sigma,
		TrueParams: cfg.Data.TrueParams,
	}, ch)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
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
	fmt.Fprintln(w, "ID\tMODEL\tBACKEND\tTIME\tSAMPLES\tACCEPT\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f%%\t%.2fs\n",
			run.ID,
			run.Model,
			run.Backend,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			100*run.AcceptRate,
			run.ElapsedSec,
		)
	}
	return w.Flush()
}

func summarizeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	ch, err := st.LoadChain(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("backend: %s\n", meta.Backend)
	if len(meta.TrueParams) > 0 {
		fmt.Printf("true params: %v\n", meta.TrueParams)
	}
	fmt.Println()
	fmt.Println(ch.Summary())
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ch, err := st.LoadChain(args[0])
	if err != nil {
		return err
	}
	return ch.WriteJSON(os.Stdout)
}

func traceRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ch, err := st.LoadChain(args[0])
	if err != nil {
		return err
	}

	for i := range ch.Names {
		fmt.Println(viz.TracePlot(ch, i))
		fmt.Println()
		fmt.Println(viz.HistogramPlot(ch, i, bins))
		fmt.Println()
	}
	return nil
}

func compareBackends(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	prob, _, obs, err := makeData(ctx, cfg)
	if err != nil {
		return err
	}
	priors, err := buildPriors(cfg)
	if err != nil {
		return err
	}
	opts := samplerOptions(cfg)

	var results []*chain.Chain
	for _, name := range args[1:] {
		be, err := infer.GetBackend(name)
		if err != nil {
			return err
		}
		fmt.Printf("sampling with %s...\n", name)
		ch, err := infer.NewDriver(be, opts).Run(ctx, prob, obs, priors)
		if err != nil {
			return err
		}
		results = append(results, ch)
	}

	fmt.Println()
	fmt.Print(viz.CompareTable(results...))
	fmt.Println()
	for _, ch := range results {
		fmt.Printf("%s: accept %.1f%%, elapsed %v\n", ch.Backend, 100*ch.AcceptRate(), ch.Elapsed.Round(time.Millisecond))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	prob, _, obs, err := makeData(ctx, cfg)
	if err != nil {
		return err
	}
	priors, err := buildPriors(cfg)
	if err != nil {
		return err
	}
	be, err := infer.GetBackend(cfg.Backend)
	if err != nil {
		return err
	}

	updates := make(chan tea.Msg, 256)
	opts := samplerOptions(cfg)
	opts.Progress = func(iter, total int, point []float64, logp float64, accepted bool) {
		p := make([]float64, len(point))
		copy(p, point)
		select {
		case updates <- viz.SampleMsg{Iter: iter, Total: total, Point: p, LogP: logp, Accepted: accepted}:
		default: // drop frames rather than stall the sampler
		}
	}

	go func() {
		ch, err := infer.NewDriver(be, opts).Run(ctx, prob, obs, priors)
		updates <- viz.DoneMsg{Chain: ch, Err: err}
	}()

	m := viz.NewLiveModel(cfg.Model, cfg.Backend, prob.System.ParamNames(), updates)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}

	ch, sampleErr := final.(viz.LiveModel).Result()
	if sampleErr != nil {
		return sampleErr
	}
	if ch != nil {
		fmt.Println(ch.Summary())
	}
	return nil
}

func runMAP(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	prob, _, obs, err := makeData(ctx, cfg)
	if err != nil {
		return err
	}
	priors, err := buildPriors(cfg)
	if err != nil {
		return err
	}

	target := infer.NewTarget(ctx, prob, obs, priors, solverOptions(cfg))

	fmt.Printf("grid search over %d^%d points...\n", gridPoints, target.Dim)
	start := time.Now()
	best, logp, err := optim.NewGridSearch(gridPoints).Search(ctx, target, priors)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tMAP\tTRUE")
	for i, name := range target.Names {
		truth := "-"
		if i < len(cfg.Data.TrueParams) {
			truth = fmt.Sprintf("%.4f", cfg.Data.TrueParams[i])
		}
		fmt.Fprintf(w, "%s\t%.4f\t%s\n", name, best[i], truth)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nlog posterior at mode: %.3f\n", logp)
	return nil
}
