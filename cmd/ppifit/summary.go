package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/ja7ad/ppifit/internal/config"
	"github.com/ja7ad/ppifit/pkg/fit"
	"github.com/ja7ad/ppifit/pkg/types"
)

var paramNames = []string{"a", "b", "c", "d"}

func printSummary(w io.Writer, res *fit.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"PARAM", "VALUE", "STD ERR"})

	values, errs := res.Params.Slice(), res.StdErr.Slice()
	for i, name := range paramNames {
		t.AppendRow(table.Row{name, fmt.Sprintf("%.6g", values[i]), fmt.Sprintf("%.3g", errs[i])})
	}
	t.Render()

	fmt.Fprintf(w, "\n%s\n\n", res.Params.Formula())
	fmt.Fprintf(w, "- points:      %d in %s\n", res.N, res.Window)
	fmt.Fprintf(w, "- ssr:         %.6g\n", res.SSR)
	fmt.Fprintf(w, "- rms:         %s\n", types.SolarMass(res.RMS))
	fmt.Fprintf(w, "- r squared:   %.6f\n", res.RSquared)
	fmt.Fprintf(w, "- iterations:  %d (seed %s)\n", res.Iterations, res.Seed)
	fmt.Fprintln(w)
}

type report struct {
	Data    string      `yaml:"data"`
	Figure  string      `yaml:"figure"`
	Panels  int         `yaml:"panels"`
	Formula string      `yaml:"formula"`
	Fit     *fit.Result `yaml:"fit"`
}

func newReport(cfg *config.Config, res *fit.Result, panels int) report {
	return report{
		Data:    cfg.Data.Path,
		Figure:  cfg.Plot.Output,
		Panels:  panels,
		Formula: res.Params.Formula(),
		Fit:     res,
	}
}

func writeReport(path string, rep report) error {
	b, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
