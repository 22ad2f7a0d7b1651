package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/san-kum/heatmc/internal/analysis"
	"github.com/san-kum/heatmc/internal/automation"
	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/experiment"
	"github.com/san-kum/heatmc/internal/export"
	"github.com/san-kum/heatmc/internal/grid"
	"github.com/san-kum/heatmc/internal/metrics"
	"github.com/san-kum/heatmc/internal/optim"
	"github.com/san-kum/heatmc/internal/sim"
	"github.com/san-kum/heatmc/internal/storage"
	"github.com/san-kum/heatmc/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	dt         float64
	simTime    float64
	dx         float64
	lx         float64
	ly         float64
	packets    int
	q          int
	alpha      float64
	radius     int
	convection float64
	boundary   string
	engineName string
	interval   int
	seed       int64
	// Config file
	configFile string
	// Preset name
	preset string
	// Ensemble size for studies
	runs int
	// SVG output path
	svgOut string
	// Emit the full run as JSON instead of the summary
	jsonOut bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "heatmc",
		Short: "monte carlo heat diffusion lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatmc", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [material]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the full run as JSON")

	liveCmd := &cobra.Command{
		Use:   "live [material]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [material1] [material2] ...",
		Short: "compare materials under identical conditions",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareMaterials,
	}
	addConfigFlags(compareCmd)
	compareCmd.Flags().IntVar(&runs, "runs", 8, "realizations per material")

	sweepCmd := &cobra.Command{
		Use:   "sweep [field] [value1] [value2] ...",
		Short: "sweep one parameter across values",
		Args:  cobra.MinimumNArgs(2),
		RunE:  sweepParameter,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&runs, "runs", 8, "realizations per value")

	convergeCmd := &cobra.Command{
		Use:   "converge [count1] [count2] ...",
		Short: "study statistical convergence with packet count",
		Args:  cobra.MinimumNArgs(2),
		RunE:  convergenceStudy,
	}
	addConfigFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&runs, "runs", 16, "realizations per count")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list material properties",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [material]",
		Short: "list available presets for a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for material: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write SVG plot to file")

	fieldCmd := &cobra.Command{
		Use:   "field [run_id]",
		Short: "render the temperature field",
		Args:  cobra.ExactArgs(1),
		RunE:  showField,
	}
	fieldCmd.Flags().StringVar(&svgOut, "svg", "", "write SVG heatmap to file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "series diagnostics for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [target_loss]",
		Short: "calibrate convection probability against a target loss fraction",
		Args:  cobra.ExactArgs(1),
		RunE:  calibrateConvection,
	}
	addConfigFlags(calibrateCmd)
	calibrateCmd.Flags().IntVar(&runs, "runs", 4, "realizations per candidate")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, sweepCmd, convergeCmd,
		materialsCmd, presetsCmd, listCmd, plotCmd, fieldCmd,
		exportCmd, exportCSVCmd, exportJSONCmd,
		analyzeCmd, calibrateCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().Float64Var(&simTime, "time", config.DefaultTMax, "simulated duration (s)")
	cmd.Flags().Float64Var(&dx, "dx", config.DefaultDx, "cell size (m)")
	cmd.Flags().Float64Var(&lx, "lx", config.DefaultLx, "plate width (m)")
	cmd.Flags().Float64Var(&ly, "ly", config.DefaultLy, "plate height (m)")
	cmd.Flags().IntVar(&packets, "packets", config.DefaultPackets, "packet budget")
	cmd.Flags().IntVar(&q, "q", config.DefaultQ, "packets injected per step")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "thermal diffusivity override (m^2/s)")
	cmd.Flags().IntVar(&radius, "radius", config.DefaultRadius, "hotspot radius (cells)")
	cmd.Flags().Float64Var(&convection, "convection", config.DefaultConvection, "per-step convection loss probability")
	cmd.Flags().StringVar(&boundary, "boundary", config.BoundaryAbsorbing, "boundary condition (absorbing|reflecting)")
	cmd.Flags().StringVar(&engineName, "engine", config.EnginePacket, "simulation engine (packet|batch)")
	cmd.Flags().IntVar(&interval, "interval", config.DefaultOutputInterval, "snapshot interval (steps)")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig assembles the effective configuration: material defaults,
// then preset, then config file, then explicit flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	material := ""
	if len(args) > 0 {
		material = args[0]
	}

	var cfg *config.Config
	switch {
	case preset != "":
		if material == "" {
			return nil, fmt.Errorf("preset requires a material argument")
		}
		cfg = config.GetPreset(material, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)",
				preset, config.ListPresets(material))
		}
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case material != "":
		built, err := config.MaterialConfig(material, q)
		if err != nil {
			return nil, err
		}
		cfg = built
	default:
		cfg = config.DefaultConfig()
	}

	// Explicit flags override anything the preset or file set.
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.TMax = simTime
	}
	if cmd.Flags().Changed("dx") {
		cfg.Dx = dx
	}
	if cmd.Flags().Changed("lx") {
		cfg.Lx = lx
	}
	if cmd.Flags().Changed("ly") {
		cfg.Ly = ly
	}
	if cmd.Flags().Changed("packets") {
		cfg.NPackets = packets
	}
	if cmd.Flags().Changed("q") {
		cfg.Q = q
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Alpha = alpha
	}
	if cmd.Flags().Changed("radius") {
		cfg.HotspotRadius = radius
	}
	if cmd.Flags().Changed("convection") {
		cfg.Convection = convection
	}
	if cmd.Flags().Changed("boundary") {
		cfg.Boundary = boundary
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineName
	}
	if cmd.Flags().Changed("interval") {
		cfg.OutputInterval = interval
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	engine, err := sim.New(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(cfg.Steps()) {
		engine.AddMetric(m)
	}

	fmt.Printf("running %s simulation (%d steps, engine=%s)...\n",
		config.MaterialName(cfg.Alpha), cfg.Steps(), cfg.Engine)
	start := time.Now()

	result, err := engine.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(result)
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.ExportJSONStdout(result)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("injected: %d  convected: %d  boundary: %d  alive: %d\n",
		result.Injected, result.Convected, result.BoundaryLost, result.FinalPackets())
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	fmt.Println("\ntemperature field:")
	fmt.Print(viz.RenderField(result.NormalizedField()))

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(cfg)
}

func compareMaterials(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	runner, err := experiment.NewRunner(cfg, runs)
	if err != nil {
		return err
	}

	fmt.Printf("comparing %d materials (%d runs each)...\n\n", len(args), runs)
	points, err := runner.CompareMaterials(context.Background(), args)
	if err != nil {
		return err
	}

	return printPoints("MATERIAL\tALPHA\tMEAN_TEMP\tSTD\tSEM", points, func(w *tabwriter.Writer, p experiment.Point) {
		fmt.Fprintf(w, "%s\t%.3g\t%.6f\t%.6f\t%.6f\n",
			p.Label, p.Value, p.Summary.Mean, p.Summary.Std, p.Summary.SEM)
	})
}

func sweepParameter(cmd *cobra.Command, args []string) error {
	field := args[0]
	values := make([]float64, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid sweep value %q: %w", arg, err)
		}
		values = append(values, v)
	}

	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	runner, err := experiment.NewRunner(cfg, runs)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s over %d values (%d runs each)...\n\n", field, len(values), runs)
	points, err := runner.Sweep(context.Background(), field, values)
	if err != nil {
		return err
	}

	return printPoints("POINT\tMEAN_TEMP\tSTD\tSEM", points, func(w *tabwriter.Writer, p experiment.Point) {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\n",
			p.Label, p.Summary.Mean, p.Summary.Std, p.Summary.SEM)
	})
}

func convergenceStudy(cmd *cobra.Command, args []string) error {
	counts := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid packet count %q: %w", arg, err)
		}
		counts = append(counts, n)
	}

	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	runner, err := experiment.NewRunner(cfg, runs)
	if err != nil {
		return err
	}

	fmt.Printf("convergence study over %d packet counts (%d runs each)...\n\n", len(counts), runs)
	points, err := runner.ConvergenceStudy(context.Background(), counts)
	if err != nil {
		return err
	}

	err = printPoints("PACKETS\tMEAN_RESIDENCE\tSTD\tSEM", points, func(w *tabwriter.Writer, p experiment.Point) {
		fmt.Fprintf(w, "%.0f\t%.6f\t%.6f\t%.6f\n",
			p.Value, p.Summary.Mean, p.Summary.Std, p.Summary.SEM)
	})
	if err != nil {
		return err
	}

	if len(points) > 1 {
		first, last := points[0], points[len(points)-1]
		if last.Summary.SEM > 0 {
			fmt.Printf("\nSEM ratio %s/%s: %.3f (1/sqrt(N) predicts %.3f)\n",
				first.Label, last.Label,
				first.Summary.SEM/last.Summary.SEM,
				math.Sqrt(last.Value/first.Value))
		}
	}
	return nil
}

func printPoints(header string, points []experiment.Point, row func(*tabwriter.Writer, experiment.Point)) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	for _, p := range points {
		row(w, p)
	}
	return w.Flush()
}

func listMaterials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATERIAL\tDIFFUSIVITY\tCONDUCTIVITY")
	for _, name := range config.ListMaterials() {
		m := config.Materials[name]
		fmt.Fprintf(w, "%s\t%.3g\t%.1f\n", name, m.Alpha, m.Conductivity)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runsList, err := st.List()
	if err != nil {
		return err
	}

	if len(runsList) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tTIME\tENGINE\tSTEPS\tINJECTED\tSEED")
	for _, run := range runsList {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Material,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Engine,
			run.Steps,
			run.Injected,
			run.Seed,
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

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if svgOut != "" {
		svg := export.SeriesToSVG(series.Times, series.HotspotTemps, 800, 300, "#ff4444")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("material: %s\n", meta.Material)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	counts := make([]float64, len(series.PacketCounts))
	for i, c := range series.PacketCounts {
		counts[i] = float64(c)
	}

	fmt.Println(viz.PlotSeries(series.HotspotTemps, "hotspot temperature"))
	fmt.Println()
	fmt.Println(viz.PlotSeries(counts, "live packets"))
	return nil
}

func showField(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rows, err := st.LoadField(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("no field data")
	}

	field := grid.NewField(len(rows), len(rows[0]))
	for x := range rows {
		for y := range rows[x] {
			field.Add(x, y, rows[x][y])
		}
	}

	if svgOut != "" {
		svg := export.FieldToSVG(field, 16)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
		return nil
	}

	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Material)
	fmt.Print(viz.RenderField(field))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"step", "time", "packets", "hotspot_temp"}); err != nil {
		return err
	}
	for i := range series.Times {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(series.Times[i], 'f', 6, 64),
			strconv.Itoa(series.PacketCounts[i]),
			strconv.FormatFloat(series.HotspotTemps[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	field, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	data := storage.ExportData{
		Material:     meta.Material,
		Engine:       meta.Engine,
		Seed:         meta.Seed,
		Alpha:        meta.Alpha,
		Dt:           meta.Dt,
		TMax:         meta.TMax,
		Steps:        meta.Steps,
		Injected:     meta.Injected,
		BoundaryLost: meta.BoundaryLost,
		Convected:    meta.Convected,
		Times:        series.Times,
		PacketCounts: series.PacketCounts,
		HotspotTemps: series.HotspotTemps,
		Field:        field,
		Metrics:      meta.Metrics,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.HotspotTemps) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("series diagnostics: %s\n", meta.ID)
	fmt.Printf("material: %s\n\n", meta.Material)

	temps := series.HotspotTemps
	tau := analysis.IntegratedAutocorrTime(temps)
	nEff := float64(len(temps)) / tau
	eq := analysis.EquilibrationStep(temps, 0.05*maxAbs(temps))

	fmt.Printf("samples: %d\n", len(temps))
	fmt.Printf("autocorrelation time: %.2f steps\n", tau)
	fmt.Printf("effective samples: %.0f\n", nEff)
	fmt.Printf("equilibration: step %d (t=%.3fs)\n\n", eq, float64(eq)*meta.Dt)

	ps := analysis.PowerSpectrum(temps)
	if len(ps) > 4 {
		fmt.Println(viz.PlotSeries(ps[:len(ps)/4], "fluctuation spectrum (hotspot temp)"))
	}
	return nil
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if math.Abs(x) > m {
			m = math.Abs(x)
		}
	}
	return m
}

func calibrateConvection(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid target loss fraction %q: %w", args[0], err)
	}

	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	candidates := []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.032}
	fmt.Printf("calibrating convection against target loss %.3f (%d candidates, %d runs each)...\n",
		target, len(candidates), runs)

	prob, loss, err := optim.CalibrateConvection(context.Background(), cfg, target, candidates, runs)
	if err != nil {
		return err
	}

	fmt.Printf("best probability: %g (achieved loss %.3f)\n", prob, loss)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.Load(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	results, err := sc.Run(context.Background(), st)
	for _, res := range results {
		fmt.Printf("step %d (%s):", res.Step, res.Kind)
		if res.RunID != "" {
			fmt.Printf(" run id %s", res.RunID)
		}
		fmt.Println()
		for _, p := range res.Points {
			fmt.Printf("  %-24s mean=%.6f sem=%.6f\n", p.Label, p.Summary.Mean, p.Summary.SEM)
		}
	}
	return err
}
