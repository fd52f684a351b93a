// Package render draws the fitted PPI mass-loss model over the data, one panel
// per metallicity, stacked into a single PNG.
//
// Rendering is split in two steps. Plan turns the table and the fitted
// parameters into a list of Panel values, each carrying everything its chart
// needs; Figure then draws every panel independently and stacks them. Panels
// share no mutable state, so their order only decides their position.
package render

import (
	"fmt"
	"slices"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/model"
	"github.com/ja7ad/ppifit/pkg/types"
	"github.com/ja7ad/ppifit/pkg/util"
)

// Panel is the complete description of one metallicity panel.
type Panel struct {
	Index int
	Z     float64
	Label string
	Color drawing.Color

	// observed points inside the display ranges
	DataX []float64
	DataY []float64
	// model at the observed core masses inside the fit window
	FitX []float64
	FitY []float64
	// model over the extended range
	ExtX []float64
	ExtY []float64

	XRange Range
	YRange Range

	XAxisTitle string
	YAxisTitle string
}

// Axis titles, drawn on the bottom and middle panel respectively.
const (
	XAxisTitle = "M_CO [Msun]"
	YAxisTitle = "dM_PPI [Msun]"
)

// Plan builds one Panel per distinct metallicity, in ascending order of Z.
func Plan(tbl *dataset.Table, params model.Params, opts Options) ([]Panel, error) {
	opts = opts.withDefaults()
	if err := validate(opts); err != nil {
		return nil, err
	}

	zs, err := tbl.Unique(opts.MetallicityColumn)
	if err != nil {
		return nil, fmt.Errorf("render: plan: %w", err)
	}
	if len(zs) == 0 {
		return nil, ErrNoPanels
	}

	colors := Rainbow(len(zs))
	extX := floats.Span(make([]float64, opts.Samples), opts.Extended.Min, opts.Extended.Max)

	panels := make([]Panel, 0, len(zs))
	for i, z := range zs {
		sub, err := tbl.Where(opts.MetallicityColumn, func(v float64) bool { return v == z })
		if err != nil {
			return nil, fmt.Errorf("render: plan: %w", err)
		}
		p, err := planPanel(sub, params, opts, z, extX)
		if err != nil {
			return nil, err
		}
		p.Index = i
		p.Color = colors[i]
		if i == len(zs)-1 {
			p.XAxisTitle = XAxisTitle
		}
		if i == len(zs)/2 {
			p.YAxisTitle = YAxisTitle
		}
		panels = append(panels, p)
	}
	return panels, nil
}

func planPanel(sub *dataset.Table, params model.Params, opts Options, z float64, extX []float64) (Panel, error) {
	x, err := sub.Column(opts.MassColumn)
	if err != nil {
		return Panel{}, fmt.Errorf("render: plan: %w", err)
	}
	y, err := sub.Column(opts.TargetColumn)
	if err != nil {
		return Panel{}, fmt.Errorf("render: plan: %w", err)
	}

	p := Panel{
		Z:      z,
		Label:  types.Metallicity(z).Label(),
		XRange: opts.XRange,
		YRange: opts.YRange,
	}

	for i := range x {
		if inRange(x[i], opts.XRange) && inRange(y[i], opts.YRange) {
			p.DataX = append(p.DataX, x[i])
			p.DataY = append(p.DataY, y[i])
		}
	}

	// the mask is recomputed on this metallicity's subset
	for i, keep := range opts.Window.Mask(x) {
		if keep {
			p.FitX = append(p.FitX, x[i])
		}
	}
	slices.Sort(p.FitX)
	p.FitY = util.ClampAll(params.Curve(p.FitX, z), opts.YRange.Min, opts.YRange.Max)

	p.ExtX = slices.Clone(extX)
	p.ExtY = util.ClampAll(params.Curve(extX, z), opts.YRange.Min, opts.YRange.Max)
	return p, nil
}

func inRange(v float64, r Range) bool { return v >= r.Min && v <= r.Max }

func validate(o Options) error {
	switch {
	case !(o.XRange.Min < o.XRange.Max):
		return fmt.Errorf("%w: x range [%g, %g]", ErrInvalidOptions, o.XRange.Min, o.XRange.Max)
	case !(o.YRange.Min < o.YRange.Max):
		return fmt.Errorf("%w: y range [%g, %g]", ErrInvalidOptions, o.YRange.Min, o.YRange.Max)
	case !(o.Extended.Min < o.Extended.Max):
		return fmt.Errorf("%w: extended range [%g, %g]", ErrInvalidOptions, o.Extended.Min, o.Extended.Max)
	case o.Window.Lo > o.Window.Hi:
		return fmt.Errorf("%w: window %s", ErrInvalidOptions, o.Window)
	}
	return nil
}
