package render

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ja7ad/ppifit/pkg/util"
)

// Rainbow returns n opaque colours spread evenly over the rainbow colormap
// (purple through red), using the gnuplot formulae r=|2x-0.5|, g=sin(πx),
// b=cos(πx/2).
func Rainbow(n int) []drawing.Color {
	out := make([]drawing.Color, n)
	for i := range out {
		var x float64
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		out[i] = drawing.Color{
			R: channel(math.Abs(2*x - 0.5)),
			G: channel(math.Sin(math.Pi * x)),
			B: channel(math.Cos(math.Pi * x / 2)),
			A: 255,
		}
	}
	return out
}

func channel(v float64) uint8 { return uint8(math.Round(util.Clamp01(v) * 255)) }

// translucent returns c with alpha scaled to a.
func translucent(c drawing.Color, a float64) drawing.Color {
	c.A = channel(a)
	return c
}
