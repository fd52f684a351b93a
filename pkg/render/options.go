package render

import (
	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/fit"
)

// Range is a closed display interval.
type Range struct {
	Min float64
	Max float64
}

// Options describe the figure geometry and display ranges.
//   - XRange/YRange: axes limits shared by every panel (Msun)
//   - Window: core-mass interval of the faithful overlay
//   - Extended: interval of the dashed overlay shown for continuity
//   - Samples: points on the extended overlay
//   - Width/PanelHeight/HeaderHeight: pixels
type Options struct {
	XRange       Range
	YRange       Range
	Window       fit.Window
	Extended     Range
	Samples      int
	Width        int
	PanelHeight  int
	HeaderHeight int

	MassColumn        string
	MetallicityColumn string
	TargetColumn      string
}

// DefaultOptions returns the layout of the published figure.
func DefaultOptions() Options {
	return Options{
		XRange:            Range{Min: 30, Max: 75},
		YRange:            Range{Min: -5, Max: 55},
		Window:            fit.PPISNWindow(),
		Extended:          Range{Min: 30, Max: 60},
		Samples:           1000,
		Width:             1200,
		PanelHeight:       280,
		HeaderHeight:      40,
		MassColumn:        dataset.ColMco,
		MetallicityColumn: dataset.ColZ,
		TargetColumn:      dataset.ColDMPulse,
	}
}

// withDefaults fills unset fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.XRange == (Range{}) {
		o.XRange = def.XRange
	}
	if o.YRange == (Range{}) {
		o.YRange = def.YRange
	}
	if o.Window == (fit.Window{}) {
		o.Window = def.Window
	}
	if o.Extended == (Range{}) {
		o.Extended = def.Extended
	}
	if o.Samples < 2 {
		o.Samples = def.Samples
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = def.PanelHeight
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = def.HeaderHeight
	}
	if o.MassColumn == "" {
		o.MassColumn = def.MassColumn
	}
	if o.MetallicityColumn == "" {
		o.MetallicityColumn = def.MetallicityColumn
	}
	if o.TargetColumn == "" {
		o.TargetColumn = def.TargetColumn
	}
	return o
}
