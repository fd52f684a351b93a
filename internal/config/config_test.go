package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/fit"
)

// newFlags mirrors the flag set registered by the ppifit command.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ppifit", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("data", DefaultDataPath, "")
	fs.String("output", DefaultOutput, "")
	fs.String("report", "", "")
	fs.Int("header-lines", 43, "")
	fs.Int("data-lines", 225, "")
	fs.Float64("window-lo", 38, "")
	fs.Float64("window-hi", 60, "")
	fs.Int("max-iter", 1000, "")
	fs.String("seed", "profile", "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ppifit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDataPath, cfg.Data.Path)
	if diff := cmp.Diff(dataset.DefaultLayout(), cfg.Layout()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, DefaultOutput, cfg.Plot.Output)
	assert.Empty(t, cfg.Report)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.File)

	s := cfg.FitSettings()
	def := fit.DefaultSettings()
	assert.Equal(t, def.Window, s.Window)
	assert.Equal(t, def.MaxIterations, s.MaxIterations)
	assert.Equal(t, def.Seed, s.Seed)
	assert.Equal(t, def.FTol, s.FTol)

	o := cfg.RenderOptions()
	assert.Equal(t, fit.PPISNWindow(), o.Window)
	assert.Equal(t, 1200, o.Width)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeYAML(t, `
data:
  path: runs/sweep.txt
  header_lines: 2
  columns: [Z, Mco, dMpulse]
fit:
  max_iterations: 200
  seed: ones
plot:
  output: file.png
  width: 900
`)
	t.Setenv("PPIFIT_FIT__MAX_ITERATIONS", "300")
	t.Setenv("PPIFIT_PLOT__OUTPUT", "env.png")
	t.Setenv("PPIFIT_REPORT", "fit.yaml")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--output", "flag.png", "--window-hi", "55"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	// file over defaults
	want := DataConfig{
		Path:        "runs/sweep.txt",
		HeaderLines: 2,
		DataLines:   225,
		Columns:     []string{"Z", "Mco", "dMpulse"},
	}
	if diff := cmp.Diff(want, cfg.Data); diff != "" {
		t.Errorf("data section mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "ones", cfg.Fit.Seed)
	assert.Equal(t, 900, cfg.Plot.Width)
	// env over file
	assert.Equal(t, 300, cfg.Fit.MaxIterations)
	assert.Equal(t, "fit.yaml", cfg.Report)
	// flags over env; untouched flags do not reset anything
	assert.Equal(t, "flag.png", cfg.Plot.Output)
	assert.Equal(t, 55.0, cfg.Fit.WindowHi)
	assert.Equal(t, 38.0, cfg.Fit.WindowLo)

	assert.Equal(t, fit.Window{Lo: 38, Hi: 55}, cfg.RenderOptions().Window)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown seed", args: []string{"--seed", "random"}},
		{name: "reversed window", args: []string{"--window-lo", "70"}},
		{name: "no data lines", args: []string{"--data-lines", "0"}},
		{name: "negative header", args: []string{"--header-lines", "-1"}},
		{name: "zero iterations", args: []string{"--max-iter", "0"}},
		{name: "empty output", args: []string{"--output", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFlags()
			require.NoError(t, fs.Parse(tt.args))
			_, err := Load("", fs)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	path := writeYAML(t, "data:\n  columns: [Z, Z]\n")
	_, err := Load(path, nil)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, dataset.ErrInvalidLayout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}
