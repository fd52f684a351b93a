// Package config loads ppifit settings from defaults, an optional YAML file,
// PPIFIT_ environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/fit"
	"github.com/ja7ad/ppifit/pkg/render"
)

const (
	// EnvPrefix marks the environment variables read by Load. A double
	// underscore descends one level: PPIFIT_FIT__MAX_ITERATIONS.
	EnvPrefix = "PPIFIT_"

	DefaultDataPath = "data/datafile1.txt"
	DefaultOutput   = "fit_DM_PPI.png"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// configNames are probed in the working directory when no file is given.
var configNames = []string{"ppifit.yaml", "ppifit.yml"}

type Config struct {
	Data    DataConfig `koanf:"data"`
	Fit     FitConfig  `koanf:"fit"`
	Plot    PlotConfig `koanf:"plot"`
	Report  string     `koanf:"report"`
	Verbose bool       `koanf:"verbose"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

type DataConfig struct {
	Path        string   `koanf:"path"`
	HeaderLines int      `koanf:"header_lines"`
	DataLines   int      `koanf:"data_lines"`
	Columns     []string `koanf:"columns"`
}

type FitConfig struct {
	WindowLo      float64 `koanf:"window_lo"`
	WindowHi      float64 `koanf:"window_hi"`
	MaxIterations int     `koanf:"max_iterations"`
	FTol          float64 `koanf:"ftol"`
	XTol          float64 `koanf:"xtol"`
	Seed          string  `koanf:"seed"`
}

type PlotConfig struct {
	Output      string `koanf:"output"`
	Width       int    `koanf:"width"`
	PanelHeight int    `koanf:"panel_height"`
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"data":         "data.path",
	"header-lines": "data.header_lines",
	"data-lines":   "data.data_lines",
	"window-lo":    "fit.window_lo",
	"window-hi":    "fit.window_hi",
	"max-iter":     "fit.max_iterations",
	"seed":         "fit.seed",
	"output":       "plot.output",
	"report":       "report",
	"verbose":      "verbose",
}

func defaults() map[string]any {
	layout := dataset.DefaultLayout()
	s := fit.DefaultSettings()
	o := render.DefaultOptions()
	return map[string]any{
		"data.path":          DefaultDataPath,
		"data.header_lines":  layout.HeaderLines,
		"data.data_lines":    layout.DataLines,
		"data.columns":       layout.Columns,
		"fit.window_lo":      s.Window.Lo,
		"fit.window_hi":      s.Window.Hi,
		"fit.max_iterations": s.MaxIterations,
		"fit.ftol":           s.FTol,
		"fit.xtol":           s.XTol,
		"fit.seed":           string(s.Seed),
		"plot.output":        DefaultOutput,
		"plot.width":         o.Width,
		"plot.panel_height":  o.PanelHeight,
		"report":             "",
		"verbose":            false,
	}
}

// Load resolves the configuration. cfgFile may be empty, in which case
// ppifit.yaml or ppifit.yml in the working directory is used when present.
// flags may be nil; only flags that were set on the command line override.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", used, err)
		}
	}

	// PPIFIT_FIT__MAX_ITERATIONS -> fit.max_iterations
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate checks the values that the pipeline cannot recover from.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("%w: data.path is empty", ErrInvalid)
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Fit.WindowLo > c.Fit.WindowHi {
		return fmt.Errorf("%w: fit window [%g, %g]", ErrInvalid, c.Fit.WindowLo, c.Fit.WindowHi)
	}
	switch fit.SeedMode(c.Fit.Seed) {
	case fit.SeedProfile, fit.SeedOnes:
	default:
		return fmt.Errorf("%w: fit.seed %q (want %s or %s)", ErrInvalid, c.Fit.Seed, fit.SeedProfile, fit.SeedOnes)
	}
	if c.Fit.MaxIterations <= 0 {
		return fmt.Errorf("%w: fit.max_iterations must be > 0", ErrInvalid)
	}
	if c.Plot.Output == "" {
		return fmt.Errorf("%w: plot.output is empty", ErrInvalid)
	}
	return nil
}

// Layout returns the line band and column names of the input file.
func (c *Config) Layout() dataset.Layout {
	return dataset.Layout{
		HeaderLines: c.Data.HeaderLines,
		DataLines:   c.Data.DataLines,
		Columns:     c.Data.Columns,
	}
}

// FitSettings returns the fitter settings. Unset numeric values fall back to
// the fitter's own defaults.
func (c *Config) FitSettings() fit.Settings {
	return fit.Settings{
		Window:        fit.Window{Lo: c.Fit.WindowLo, Hi: c.Fit.WindowHi},
		MaxIterations: c.Fit.MaxIterations,
		FTol:          c.Fit.FTol,
		XTol:          c.Fit.XTol,
		Seed:          fit.SeedMode(c.Fit.Seed),
	}
}

// RenderOptions returns the figure options; the overlay window follows the
// fit window.
func (c *Config) RenderOptions() render.Options {
	o := render.DefaultOptions()
	o.Window = fit.Window{Lo: c.Fit.WindowLo, Hi: c.Fit.WindowHi}
	if c.Plot.Width > 0 {
		o.Width = c.Plot.Width
	}
	if c.Plot.PanelHeight > 0 {
		o.PanelHeight = c.Plot.PanelHeight
	}
	return o
}
