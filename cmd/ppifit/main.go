package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/ppifit/internal/config"
	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/fit"
	"github.com/ja7ad/ppifit/pkg/render"
)

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:   "ppifit",
		Short: "Fit the pulsational pair-instability mass-loss model",
		Long: `The ppifit tool reads a table of stellar-evolution runs, fits

  dM_PPI = (a*log10(Z) + b)*(M_CO - c)^3 + d*(M_CO - c)^2

to every run with a CO core mass in the PPISN window, and draws the fit over
the data in one panel per metallicity.

Settings come from ppifit.yaml (or --config), PPIFIT_* environment variables
and flags, the later overriding the earlier.

Examples:
  ppifit --data data/datafile1.txt
  ppifit --window-lo 36 --window-hi 62 --output out/fit.png --report out/fit.yaml
  PPIFIT_FIT__MAX_ITERATIONS=5000 ppifit --seed ones`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(cfg.Verbose)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}

	def := dataset.DefaultLayout()
	settings := fit.DefaultSettings()

	root.Flags().StringVarP(&cfgFile, "config", "c", "", "configuration file (default ppifit.yaml when present)")
	root.Flags().StringP("data", "d", config.DefaultDataPath, "input table")
	root.Flags().StringP("output", "o", config.DefaultOutput, "figure path (PNG)")
	root.Flags().String("report", "", "write the fit report to this YAML file")
	root.Flags().Int("header-lines", def.HeaderLines, "lines skipped before the first data line")
	root.Flags().Int("data-lines", def.DataLines, "number of data lines read after the header")
	root.Flags().Float64("window-lo", settings.Window.Lo, "lower CO core mass of the fit window (Msun)")
	root.Flags().Float64("window-hi", settings.Window.Hi, "upper CO core mass of the fit window (Msun)")
	root.Flags().Int("max-iter", settings.MaxIterations, "Levenberg-Marquardt iteration limit")
	root.Flags().String("seed", string(settings.Seed), "starting point: profile or ones")
	root.Flags().BoolP("verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// run loads, fits, prints, draws and reports, stopping at the first error.
// Nothing is written to disk unless the fit succeeded.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	fmt.Fprintf(stdout, _console, cfg.Data.Path, configSource(cfg), time.Now().Format("2006-01-02 15:04:05"))

	layout := cfg.Layout()
	slog.Debug("loading table",
		"path", cfg.Data.Path,
		"header_lines", layout.HeaderLines,
		"data_lines", layout.DataLines,
		"columns", layout.Columns)

	tbl, err := dataset.Load(cfg.Data.Path, layout)
	if err != nil {
		return err
	}
	slog.Info("table loaded", "rows", tbl.Len())

	settings := cfg.FitSettings()
	res, err := fit.Fit(tbl, settings)
	if err != nil {
		return err
	}
	slog.Info("fit converged",
		"points", res.N,
		"iterations", res.Iterations,
		"seed", res.Seed,
		"rms", res.RMS)

	printSummary(stdout, res)

	opts := cfg.RenderOptions()
	panels, err := render.Plan(tbl, res.Params, opts)
	if err != nil {
		return err
	}
	if err := render.WriteFile(ctx, cfg.Plot.Output, panels, res.Params, opts); err != nil {
		return err
	}
	slog.Info("figure written", "path", cfg.Plot.Output, "panels", len(panels))

	if cfg.Report != "" {
		rep := newReport(cfg, res, len(panels))
		if err := writeReport(cfg.Report, rep); err != nil {
			return err
		}
		slog.Info("report written", "path", cfg.Report)
	}
	return nil
}

func configSource(cfg *config.Config) string {
	if cfg.File == "" {
		return "defaults, env, flags"
	}
	return cfg.File
}

const _console = `ppifit - PPI mass-loss fit

       Data:   %s
       Config: %s

Fit report as of %s:

`
