package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/ppifit/pkg/model"
)

const (
	xTickStep = 5.0
	yTickStep = 10.0
)

// Figure draws every panel, stacks them under a header carrying the fitted
// formula and writes the result to w as PNG. Panels are drawn concurrently;
// their order in panels fixes their position.
func Figure(ctx context.Context, w io.Writer, panels []Panel, params model.Params, opts Options) error {
	if len(panels) == 0 {
		return ErrNoPanels
	}
	opts = opts.withDefaults()

	imgs := make([]image.Image, len(panels))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range panels {
		i, p := i, p
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			img, err := renderPanel(p, opts)
			if err != nil {
				return fmt.Errorf("render: panel %d (%s): %w", p.Index, p.Label, err)
			}
			imgs[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	canvas := compose(params.Formula(), imgs, opts)
	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("render: encode: %w", err)
	}
	return nil
}

// WriteFile renders the figure into path. The image is written to a temporary
// file in the same directory and renamed into place, so a failed render leaves
// no partial output behind.
func WriteFile(ctx context.Context, path string, panels []Panel, params model.Params, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ppifit-*.png")
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	name := tmp.Name()

	if err := Figure(ctx, tmp, panels, params, opts); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("render: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func renderPanel(p Panel, opts Options) (image.Image, error) {
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "dM=0",
			XValues: []float64{p.XRange.Min, p.XRange.Max},
			YValues: []float64{0, 0},
			Style: chart.Style{
				StrokeColor:     drawing.ColorBlack,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		},
		chart.ContinuousSeries{
			Name:    "fit (extended)",
			XValues: p.ExtX,
			YValues: p.ExtY,
			Style: chart.Style{
				StrokeColor:     translucent(p.Color, 0.5),
				StrokeWidth:     8,
				StrokeDashArray: []float64{12, 8},
			},
		},
	}
	if len(p.FitX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "fit",
			XValues: p.FitX,
			YValues: p.FitY,
			Style:   chart.Style{StrokeColor: p.Color, StrokeWidth: 2},
		})
	}
	if len(p.DataX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    p.Label,
			XValues: p.DataX,
			YValues: p.DataY,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    p.Color,
			},
		})
	}

	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.PanelHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 10, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  p.XAxisTitle,
			Style: chart.Style{FontSize: 10},
			Range: &chart.ContinuousRange{Min: p.XRange.Min, Max: p.XRange.Max},
			Ticks: ticks(p.XRange, xTickStep, p.XAxisTitle != ""),
		},
		YAxis: chart.YAxis{
			Name:  p.YAxisTitle,
			Style: chart.Style{FontSize: 10},
			Range: &chart.ContinuousRange{Min: p.YRange.Min, Max: p.YRange.Max},
			Ticks: ticks(p.YRange, yTickStep, true),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// ticks places a tick at every multiple of step inside r. Labels are blank
// unless labelled is set, which keeps stacked panels free of repeated x labels.
func ticks(r Range, step float64, labelled bool) []chart.Tick {
	var out []chart.Tick
	for v := math.Ceil(r.Min/step) * step; v <= r.Max; v += step {
		label := ""
		if labelled {
			label = fmt.Sprintf("%.0f", v)
		}
		out = append(out, chart.Tick{Value: v, Label: label})
	}
	return out
}

// compose stacks the panel images below a header strip with the formula text.
func compose(header string, imgs []image.Image, opts Options) *image.RGBA {
	height := opts.HeaderHeight
	width := opts.Width
	for _, img := range imgs {
		b := img.Bounds()
		height += b.Dy()
		if b.Dx() > width {
			width = b.Dx()
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	drawHeader(canvas, header, width, opts.HeaderHeight)

	y := opts.HeaderHeight
	for _, img := range imgs {
		b := img.Bounds()
		dst := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, dst, img, b.Min, draw.Over)
		y += b.Dy()
	}
	return canvas
}

func drawHeader(dst draw.Image, text string, width, height int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	x := (width - d.MeasureString(text).Round()) / 2
	if x < 0 {
		x = 0
	}
	// basicfont glyphs are 13px tall with an ascent of 11
	d.Dot = fixed.P(x, (height+11)/2)
	d.DrawString(text)
}
