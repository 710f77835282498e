package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/analysis"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/experiment"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/store"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/tui"
)

var (
	dataDir     string
	configFile  string
	presetName  string
	steps       int
	stepSize    float64
	recordEvery int
	ensemble    int
	noSave      bool
	window      int
	seriesName  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lowebm",
		Short: "low-dimensional energy balance climate models",
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: open the interactive preset browser.
			return tui.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lowebm", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a model to equilibrium",
		RunE:  runModel,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&presetName, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override step count")
	runCmd.Flags().Float64Var(&stepSize, "step-size", 0, "override step size in seconds")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 0, "override sampling interval")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 0, "override ensemble size")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or show one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&seriesName, "series", "", "plot a recorded flux series instead of temperature")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "equilibrium statistics for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&window, "window", 100, "trailing window length")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a model with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&presetName, "preset", "", "use preset configuration")
	liveCmd.Flags().IntVar(&steps, "steps", 0, "override step count")

	rootCmd.AddCommand(runCmd, presetsCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the run configuration from --preset or --config and
// applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case presetName != "":
		cfg, err = config.Preset(presetName)
		if err != nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.PresetNames())
		}
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("either --config or --preset is required")
	}

	if cmd.Flags().Changed("steps") {
		cfg.Integration.Steps = steps
	}
	if cmd.Flags().Changed("step-size") {
		cfg.Integration.StepSize = stepSize
	}
	if cmd.Flags().Changed("record-every") {
		cfg.Integration.RecordEvery = recordEvery
	}
	if cmd.Flags().Changed("ensemble") {
		cfg.Ensemble = ensemble
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", cfg.Name)
	start := time.Now()

	results, err := exp.RunEnsemble(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)

	st := store.New(dataDir)
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	for i, res := range results {
		label := cfg.Name
		if len(results) > 1 {
			label = fmt.Sprintf("%s member %d", cfg.Name, i)
		}
		printSummary(label, res)

		if !noSave {
			saveCfg := *cfg
			if len(results) > 1 {
				saveCfg.Name = fmt.Sprintf("%s_m%d", cfg.Name, i)
			}
			runID, err := st.Save(&saveCfg, res)
			if err != nil {
				return err
			}
			fmt.Printf("  run id: %s\n", runID)
		}
	}

	if len(results) > 1 {
		mean := analysis.EnsembleMean(results)
		if n := len(mean); n > 0 {
			fmt.Printf("\nensemble mean final gmt: %.4f K\n", mean[n-1])
		}
	}
	return nil
}

func printSummary(label string, res *ebm.Result) {
	fmt.Printf("\n%s:\n", label)
	fmt.Printf("  steps: %d\n", res.Steps)
	fmt.Printf("  samples: %d\n", len(res.GlobalMean))
	if n := len(res.GlobalMean); n > 0 {
		fmt.Printf("  final gmt: %.4f K\n", res.GlobalMean[n-1])
	}
	if res.Converged {
		fmt.Println("  converged: yes")
	} else {
		fmt.Println("  converged: no")
	}
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, name := range config.PresetNames() {
			fmt.Println(name)
		}
		return nil
	}

	cfg, err := config.Preset(args[0])
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tSAMPLES\tCONVERGED\tFINAL GMT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\t%.3f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Samples,
			run.Converged,
			run.FinalGMT,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var data []float64
	caption := "global mean temperature (K)"
	if seriesName != "" {
		series, err := st.LoadSeries(runID, seriesName)
		if err != nil {
			return err
		}
		data = make([]float64, len(series))
		for i, f := range series {
			data[i], _ = analysis.MeanStd(f)
		}
		caption = seriesName + " (field mean)"
	} else {
		_, gmt, _, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		data = gmt
	}

	if len(data) < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, gmt, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	mean, std, err := analysis.Equilibrium(gmt, window)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("converged: %t\n", meta.Converged)
	fmt.Printf("trailing %d samples:\n", window)
	fmt.Printf("  mean gmt: %.4f K\n", mean)
	fmt.Printf("  std: %.6f K\n", std)
	if n := len(gmt); n > 0 {
		fmt.Printf("drift over run: %.4f K\n", gmt[n-1]-gmt[0])
	}

	sampleInterval := meta.StepSize * float64(meta.RecordEvery)
	if period := analysis.DominantPeriod(gmt, sampleInterval); period > 0 {
		fmt.Printf("dominant period: %.2f days\n", period/86400)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	times, gmt, temps, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time", "gmt"}
	for i := range temps[0] {
		header = append(header, fmt.Sprintf("t%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range times {
		row := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(gmt[i], 'g', -1, 64),
		}
		for _, v := range temps[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, gmt, temps, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	res := &ebm.Result{
		Time:       times,
		GlobalMean: gmt,
		Temp:       make([]ebm.Field, len(temps)),
		Converged:  meta.Converged,
		Steps:      meta.Steps,
	}
	for i, t := range temps {
		res.Temp[i] = t
	}
	if len(meta.Series) > 0 {
		res.Series = make(map[string][]ebm.Field, len(meta.Series))
		for _, name := range meta.Series {
			rows, err := st.LoadSeries(runID, name)
			if err != nil {
				return err
			}
			fields := make([]ebm.Field, len(rows))
			for i, r := range rows {
				fields[i] = r
			}
			res.Series[name] = fields
		}
	}

	cfg := config.DefaultConfig()
	cfg.Name = meta.Name
	cfg.Integration.Steps = meta.Steps
	cfg.Integration.StepSize = meta.StepSize
	cfg.Integration.RecordEvery = meta.RecordEvery
	cfg.Grid.Resolution = meta.Resolution

	return store.ExportJSON(os.Stdout, cfg, res)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := tui.RunLive(cfg)
	if err != nil {
		return err
	}
	printSummary(cfg.Name, res)
	return nil
}
