package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/opercjy/CPNR-modular-sim/internal/capture"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/material"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/run"
	"github.com/opercjy/CPNR-modular-sim/internal/storage"
	"github.com/opercjy/CPNR-modular-sim/internal/viz"
)

var (
	dataDir     string
	nucDataDir  string
	configFile  string
	preset      string
	seed        int64
	events      int
	workers     int
	energy      float64
	temperature float64
	captureMode string
	cascadeMode string
	verbose     int
	noScale     bool
	useTUI      bool
	metricsAddr string
	settings    []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "capsim",
		Short:         "isotope-resolved neutron capture on gadolinium",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".capsim", "run storage directory")
	rootCmd.PersistentFlags().StringVar(&nucDataDir, "nucdata", "", "nuclear data directory (default $"+nucdata.EnvDataDir+")")

	runCmd := &cobra.Command{
		Use:   "run [material]",
		Short: "run captures in a material",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCaptures,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().IntVar(&events, "events", config.DefaultEvents, "number of captures")
	runCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "worker goroutines")
	runCmd.Flags().Float64Var(&energy, "energy", config.DefaultEnergy, "neutron kinetic energy (MeV)")
	runCmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "material temperature (K)")
	runCmd.Flags().StringVar(&captureMode, "capture-mode", "natural", "natural, enriched157 or enriched155")
	runCmd.Flags().StringVar(&cascadeMode, "cascade-mode", "all", "all, discrete or continuum")
	runCmd.Flags().IntVar(&verbose, "verbose", config.DefaultVerbose, "verbosity 0-3")
	runCmd.Flags().BoolVar(&noScale, "no-scale", false, "do not rescale photons onto the recoil mass shell")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "show live progress")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringArrayVar(&settings, "set", nil, "mode setting key=value (repeatable)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the summed-energy spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "nuclear data tools",
	}
	dataInitCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "write the built-in cross sections and cascade tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := nucdata.WriteDefaults(args[0]); err != nil {
				return err
			}
			fmt.Printf("wrote nuclear data to %s\nexport %s=%s\n", args[0], nucdata.EnvDataDir, args[0])
			return nil
		},
	}
	dataCmd.AddCommand(dataInitCmd)

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list available materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := material.NewCatalogue()
			table := material.NewElementTable()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDENSITY\tELEMENTS")
			for _, name := range cat.List() {
				m, err := cat.Build(name, table, 0)
				if err != nil {
					return err
				}
				syms := make([]string, len(m.Components))
				for i, c := range m.Components {
					syms[i], _ = nuclide.Symbol(c.Z)
				}
				fmt.Fprintf(w, "%s\t%.3f g/cm3\t%s\n", name, m.Density, strings.Join(syms, " "))
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-16s %-6s capture=%s cascade=%s\n", name, p.Material, p.Mode.CaptureMode, p.Mode.CascadeMode)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, dataCmd, materialsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if capture.IsFatal(err) {
			fmt.Fprintln(os.Stderr, "fatal: the capture model cannot run with this configuration")
		}
		os.Exit(1)
	}
}

// buildConfig layers defaults, preset, config file and changed flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Material = args[0]
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("events") {
		cfg.Events = events
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("energy") {
		cfg.Energy = energy
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("no-scale") {
		cfg.ScaleGammas = !noScale
	}
	if flags.Changed("capture-mode") {
		if err := cfg.Mode.Set("captureMode", captureMode); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cascade-mode") {
		if err := cfg.Mode.Set("cascadeMode", cascadeMode); err != nil {
			return nil, err
		}
	}
	if flags.Changed("verbose") {
		if err := cfg.Mode.Set("verbose", strconv.Itoa(verbose)); err != nil {
			return nil, err
		}
	}
	for _, kv := range settings {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set expects key=value, got %q", kv)
		}
		if err := cfg.Mode.Set(key, value); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

func runCaptures(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Mode.LogLevel()}))
	slog.SetDefault(logger)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "err", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	elements := material.NewElementTable()
	mat, err := material.NewCatalogue().Build(cfg.Material, elements, cfg.Temperature)
	if err != nil {
		return err
	}

	opts := capture.DefaultOptions()
	opts.Assembler.ScaleToRecoilShell = cfg.ScaleGammas
	opts.DataDir = nucDataDir
	opts.Registerer = reg
	opts.Logger = logger
	model := capture.New(elements, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runOpts := []run.Option{run.WithLogger(logger)}
	if nucDataDir != "" {
		runOpts = append(runOpts, run.WithDataDir(nucDataDir))
	}

	var result *run.Result
	if useTUI {
		result, err = runWithTUI(ctx, model, mat, cfg, runOpts)
	} else {
		result, err = run.NewRunner(model, mat, cfg, runOpts...).Run(ctx)
	}
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Println(viz.SummaryTable(result.Summary))
	fmt.Println(viz.Spectrum(result.Histogram, 80, 12, "visible energy (MeV)"))
	fmt.Printf("\nrun: %s (%.2fs)\n", runID, result.Elapsed.Seconds())
	return nil
}

func runWithTUI(ctx context.Context, model *capture.Model, mat *material.Material, cfg *config.Config, opts []run.Option) (*run.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(viz.NewProgressModel(mat.Name, cfg.Events))
	opts = append(opts, run.WithProgress(func(done, total int) {
		if done%100 == 0 || done == total {
			p.Send(viz.ProgressMsg{Done: done, Total: total})
		}
	}))

	go func() {
		res, err := run.NewRunner(model, mat, cfg, opts...).Run(ctx)
		p.Send(viz.DoneMsg{Result: res, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	pm := final.(viz.ProgressModel)
	if pm.Interrupted() {
		return nil, context.Canceled
	}
	return pm.Result()
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
	fmt.Fprintln(w, "ID\tMATERIAL\tTIME\tEVENTS\tCAPTURE\tCASCADE\tVISIBLE")

	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%.3f MeV\n",
			r.ID,
			r.Material,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Events,
			r.CaptureMode,
			r.CascadeMode,
			r.Summary.MeanVisible,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Histogram == nil || meta.Histogram.Entries() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("material: %s\n", meta.Material)
	fmt.Printf("events: %d\n\n", meta.Events)
	fmt.Println(viz.Spectrum(meta.Histogram, 80, 15, "visible energy (MeV)"))
	fmt.Println()
	fmt.Println(viz.SummaryTable(meta.Summary))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.WriteJSON(args[0], os.Stdout)
}
