package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/tui"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir string
	verbose bool
	// scene selection
	preset     string
	configFile string
	// scene overrides
	fps         float64
	substeps    int
	frames      int
	workers     int
	ks          float64
	density     float64
	damping     float64
	seed        int64
	resolution  int
	orientation string
	// output
	watch     bool
	frameRate int
	noSave    bool
	metric    string
	tolerance float64
	outPath   string
	gifPath   string
	svgPath   string
	full      bool
	ksValues  []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clothsim",
		Short:        "mass-spring cloth simulation",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "per-frame debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw frames to the terminal while running")
	runCmd.Flags().IntVar(&frameRate, "rate", 30, "redraw rate for --watch")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metric, "metric", "", "plot only this metric")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the --metric series to this svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and settling analysis of a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metric, "metric", "sag", "metric to analyze")
	analyzeCmd.Flags().Float64Var(&tolerance, "tol", 1e-3, "settling band around the final value")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata, or the whole run with --full",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&full, "full", false, "include series and final positions")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scene presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	meshCmd := &cobra.Command{
		Use:   "mesh",
		Short: "print the half-edge mesh and rest pose of a scene's cloth as JSON",
		Args:  cobra.NoArgs,
		RunE:  exportMesh,
	}
	addSceneFlags(meshCmd)

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "run a scene and write a snapshot of the final frame",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	addSceneFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "cloth.svg", "svg output path")
	svgCmd.Flags().StringVar(&gifPath, "gif", "", "also record every frame to this gif")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run one scene at several stiffness values",
		Args:  cobra.NoArgs,
		RunE:  compareStiffness,
	}
	addSceneFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&ksValues, "ks-values", []float64{1000, 5000, 20000}, "spring constants to compare")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput by resolution and worker count",
		Args:  cobra.NoArgs,
		RunE:  benchSteps,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd, meshCmd, svgCmd, compareCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset scene")
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml or toml)")
	cmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frames per second")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "steps per frame")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "goroutines per step phase")
	cmd.Flags().Float64Var(&ks, "ks", 5000, "spring constant")
	cmd.Flags().Float64Var(&density, "density", 15, "area density")
	cmd.Flags().Float64Var(&damping, "damping", 0.2, "damping percentage")
	cmd.Flags().Int64Var(&seed, "seed", 0, "jitter seed")
	cmd.Flags().IntVar(&resolution, "res", config.DefaultPoints, "point masses per side")
	cmd.Flags().StringVar(&orientation, "orientation", "", "horizontal or vertical")
}

// loadScene resolves preset, then config file, then explicitly set flags.
func loadScene(cmd *cobra.Command) (*config.Scene, error) {
	scene := config.DefaultScene()
	if preset != "" {
		scene = config.GetPreset(preset)
		if scene == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		scene = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		scene.Sim.FPS = fps
	}
	if flags.Changed("substeps") {
		scene.Sim.Substeps = substeps
	}
	if flags.Changed("frames") {
		scene.Sim.Frames = frames
	}
	if flags.Changed("workers") || scene.Sim.Workers == 0 {
		scene.Sim.Workers = workers
	}
	if flags.Changed("ks") {
		scene.Params.Ks = ks
	}
	if flags.Changed("density") {
		scene.Params.Density = density
	}
	if flags.Changed("damping") {
		scene.Params.Damping = damping
	}
	if flags.Changed("seed") {
		scene.Cloth.Seed = seed
	}
	if flags.Changed("orientation") {
		scene.Cloth.Orientation = orientation
	}
	if flags.Changed("res") {
		scene.Resize(resolution, resolution)
	}
	return scene, scene.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func defaultMetrics(scene *config.Scene) []sim.Metric {
	dt := 1 / (scene.Sim.FPS * float64(scene.Sim.Substeps))
	return []sim.Metric{
		metrics.NewKineticEnergy(scene.Params.Density, dt),
		metrics.NewMaxStretch(),
		metrics.NewSag(),
	}
}

func buildSim(scene *config.Scene) (*sim.Simulator, sim.Config, error) {
	s, cfg, err := sim.FromScene(scene)
	if err != nil {
		return nil, cfg, err
	}
	for _, m := range defaultMetrics(scene) {
		s.AddMetric(m)
	}
	s.SetLogger(newLogger())
	return s, cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}
	s, cfg, err := buildSim(scene)
	if err != nil {
		return err
	}

	if watch {
		r := tui.NewRenderer(os.Stdout, scene.Name, frameRate, cfg.Frames, s.Colliders())
		r.Start()
		defer r.Stop()
		s.AddObserver(r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %dx%d, %d frames x %d substeps\n",
		scene.Name, scene.Cloth.NumWidthPoints, scene.Cloth.NumHeightPoints, cfg.Frames, cfg.Substeps)
	start := time.Now()

	result, err := s.Run(ctx, cfg)
	if err != nil {
		if result == nil || result.Frames == 0 {
			return err
		}
		fmt.Printf("stopped after %d frames: %v\n", result.Frames, err)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Printf("steps: %d\n", s.Cloth().Steps())
	fmt.Println("\nmetrics:")
	for _, name := range storage.SeriesNames(result) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if noSave {
		return err
	}
	st := storage.New(dataDir)
	if initErr := st.Init(); initErr != nil {
		return initErr
	}
	runID, saveErr := st.Save(scene, result)
	if saveErr != nil {
		return saveErr
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}
	s, cfg, err := sim.FromScene(scene)
	if err != nil {
		return err
	}
	return tui.Run(s, cfg, scene.Name)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tGRID\tFRAMES\tFPS\tSUBSTEPS\tKS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%.0f\t%d\t%.0f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Cols, run.Rows,
			run.Frames,
			run.FPS,
			run.Substeps,
			run.Params.Ks,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []float64, map[string][]float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(times) == 0 {
		return nil, nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, times, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, times, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if svgPath != "" {
		data, ok := series[metric]
		if !ok {
			return fmt.Errorf("--svg needs --metric naming a series of run %s", meta.ID)
		}
		if err := os.WriteFile(svgPath, []byte(viz.SeriesToSVG(times, data, 640, 240, "#00ccff")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", len(times))

	for _, name := range storage.SeriesNames(&sim.Result{Series: series}) {
		if metric != "" && name != metric {
			continue
		}
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(name, "_", " ")+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, times, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	data, ok := series[metric]
	if !ok {
		return fmt.Errorf("run %s has no metric %q", meta.ID, metric)
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("metric: %s\n\n", metric)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 2 {
		plotData := ps[:max(len(ps)/4, 2)]
		fmt.Println(asciigraph.Plot(plotData,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+metric+")"),
		))
		fmt.Println()
	}

	sum := analysis.Summarize(data)
	fmt.Printf("min: %.6f  max: %.6f  mean: %.6f  final: %.6f\n", sum.Min, sum.Max, sum.Mean, sum.Final)

	freq := analysis.DominantFrequency(data, meta.FPS)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	if t, ok := analysis.SettleTime(data, times, tolerance); ok {
		fmt.Printf("settles within %g after: %.3f s\n", tolerance, t)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if !full {
		return writeIndented(meta)
	}

	scene, err := st.LoadScene(runID)
	if err != nil {
		return err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadPositions(runID)
	if err != nil {
		return err
	}
	result := &sim.Result{Times: times, Series: series, Metrics: meta.Metrics, Frames: meta.Frames, Final: final}
	return storage.ExportJSON(os.Stdout, scene, result)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tORIENTATION\tGRID\tPINS\tCOLLIDERS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		kinds := make([]string, 0, len(p.Colliders))
		for _, c := range p.Colliders {
			kinds = append(kinds, c.Type)
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\n",
			name, p.Cloth.Orientation, p.Cloth.NumWidthPoints, p.Cloth.NumHeightPoints,
			len(p.Cloth.Pinned), strings.Join(kinds, ","))
	}
	return w.Flush()
}

func exportMesh(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}
	c, err := scene.NewCloth()
	if err != nil {
		return err
	}
	return storage.ExportMesh(os.Stdout, c.Mesh(), c.Positions())
}

func snapshot(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}
	s, cfg, err := buildSim(scene)
	if err != nil {
		return err
	}

	cam := viz.NewCamera()
	cam.Frame(s.Cloth().Positions())

	var rec *viz.Recorder
	if gifPath != "" {
		rec = viz.NewRecorder(max(1, int(100/cfg.FPS)))
		s.AddObserver(sim.ObserverFunc(func(c *cloth.Cloth, frame int, t float64) {
			rec.Capture(viz.Snapshot(c, s.Colliders(), cam, 60, 24))
		}))
	}

	if _, err := s.Run(context.Background(), cfg); err != nil {
		return err
	}

	canvas := viz.Snapshot(s.Cloth(), s.Colliders(), cam, 80, 32)
	if err := os.WriteFile(outPath, []byte(viz.CanvasToSVG(canvas, 4)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)

	if rec != nil {
		f, err := os.Create(gifPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := rec.Encode(f); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d frames)\n", gifPath, rec.Len())
	}
	return nil
}

func compareStiffness(cmd *cobra.Command, args []string) error {
	base, err := loadScene(cmd)
	if err != nil {
		return err
	}
	if len(ksValues) == 0 {
		return fmt.Errorf("no ks values given")
	}

	scenes := make([]*config.Scene, len(ksValues))
	for i, k := range ksValues {
		scenes[i] = base.Clone()
		scenes[i].Params.Ks = k
		scenes[i].Sim.Workers = 1
	}

	fmt.Printf("comparing %d stiffness values on %s\n\n", len(scenes), base.Name)
	start := time.Now()
	sweep := sim.NewSweep(scenes, defaultMetrics)
	sweep.SetLimit(runtime.NumCPU())
	results, err := sweep.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KS\tSAG\tMAX STRETCH\tKINETIC\tSWING HZ")
	for i, res := range results {
		fmt.Fprintf(w, "%.0f\t%.4f\t%.4f\t%.6f\t%.3f\n",
			ksValues[i],
			res.Metrics["sag"],
			res.Metrics["max_stretch"],
			res.Metrics["kinetic_energy"],
			analysis.DominantFrequency(res.Series["sag"], base.Sim.FPS),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func benchSteps(cmd *cobra.Command, args []string) error {
	sizes := []int{16, 32, 64}
	workerCounts := []int{1, runtime.NumCPU()}
	const steps = 50
	gravity := []mgl64.Vec3{{0, config.DefaultGravity, 0}}

	fmt.Printf("pipeline: %s\n\n", strings.Join(cloth.PhaseNames(), " -> "))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tWORKERS\tSPRINGS\tTIME\tSTEPS/SEC")
	for _, n := range sizes {
		for _, wk := range workerCounts {
			c, err := cloth.New(cloth.Options{
				Width: 1, Height: 1, NumWidthPoints: n, NumHeightPoints: n,
				Thickness: 0.01, Orientation: cloth.Vertical,
				Pinned: [][2]int{{0, n - 1}, {n - 1, n - 1}}, Workers: wk,
			})
			if err != nil {
				return err
			}
			start := time.Now()
			for i := 0; i < steps; i++ {
				if err := c.Step(config.DefaultFPS, config.DefaultSubsteps, cloth.DefaultParams(), gravity, nil); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%.0f\n",
				n, n, wk, len(c.Springs()), elapsed, float64(steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func writeIndented(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
