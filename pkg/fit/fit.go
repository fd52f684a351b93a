// Package fit performs the single global nonlinear least-squares fit of the
// PPI mass-loss model to the observations inside the PPISN core-mass window.
//
// All metallicities are pooled into one fit; Z only acts through the model's
// log10(Z) term. The solver is Levenberg–Marquardt. Failures never yield
// parameters: the caller gets a *ConvergenceError instead.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/model"
	"github.com/ja7ad/ppifit/pkg/types"
	"github.com/ja7ad/ppifit/pkg/util"
)

// Points are the observations selected for fitting.
type Points struct {
	Mco []float64
	Z   []float64
	DM  []float64
}

// Len returns the number of selected points.
func (p Points) Len() int { return len(p.Mco) }

// Result is the outcome of a successful fit.
type Result struct {
	Params     model.Params                              `yaml:"params"`
	StdErr     model.Params                              `yaml:"stderr"`
	Covariance [model.NumParams][model.NumParams]float64 `yaml:"covariance"`
	N          int                                       `yaml:"n"`
	SSR        float64                                   `yaml:"ssr"`
	RMS        float64                                   `yaml:"rms"`
	RSquared   float64                                   `yaml:"r_squared"`
	Iterations int                                       `yaml:"iterations"`
	Seed       SeedMode                                  `yaml:"seed"`
	Start      model.Params                              `yaml:"start"`
	Window     Window                                    `yaml:"window"`
}

// Select returns the rows of tbl whose core mass lies in s.Window, across all
// metallicities. Unset fields of s take their defaults.
func Select(tbl *dataset.Table, s Settings) (Points, error) {
	s = merge(s)
	mco, err := tbl.Column(s.MassColumn)
	if err != nil {
		return Points{}, fmt.Errorf("fit: select: %w", err)
	}
	z, err := tbl.Column(s.MetallicityColumn)
	if err != nil {
		return Points{}, fmt.Errorf("fit: select: %w", err)
	}
	dm, err := tbl.Column(s.TargetColumn)
	if err != nil {
		return Points{}, fmt.Errorf("fit: select: %w", err)
	}

	var pts Points
	for i, keep := range s.Window.Mask(mco) {
		if !keep {
			continue
		}
		pts.Mco = append(pts.Mco, mco[i])
		pts.Z = append(pts.Z, z[i])
		pts.DM = append(pts.DM, dm[i])
	}
	return pts, nil
}

// Fit selects the window of tbl and fits the model to it.
func Fit(tbl *dataset.Table, s Settings) (*Result, error) {
	s = merge(s)
	if err := s.validate(); err != nil {
		return nil, err
	}
	pts, err := Select(tbl, s)
	if err != nil {
		return nil, err
	}
	return FitPoints(pts, s)
}

// FitPoints fits the model to already selected points.
func FitPoints(pts Points, s Settings) (*Result, error) {
	s = merge(s)
	if err := s.validate(); err != nil {
		return nil, err
	}

	n := pts.Len()
	if len(pts.Z) != n || len(pts.DM) != n {
		return nil, fmt.Errorf("%w: column lengths %d/%d/%d", ErrInvalidData, n, len(pts.Z), len(pts.DM))
	}
	if n < model.NumParams+1 {
		return nil, &ConvergenceError{
			Reason: fmt.Sprintf("%d points in window %s, need at least %d", n, s.Window, model.NumParams+1),
			Err:    ErrInsufficientData,
		}
	}
	for i := 0; i < n; i++ {
		if !types.Metallicity(pts.Z[i]).Valid() {
			return nil, fmt.Errorf("%w: metallicity %g at point %d", ErrInvalidData, pts.Z[i], i)
		}
		if !util.AllFinite(pts.Mco[i], pts.DM[i]) {
			return nil, fmt.Errorf("%w: non-finite value at point %d", ErrInvalidData, i)
		}
	}

	pr := &problem{x: pts.Mco, z: pts.Z, y: pts.DM}
	start, seed := startingPoint(pr, s)

	out, err := levenbergMarquardt(pr, start, s)
	if err != nil {
		return nil, err
	}
	if !out.params.Finite() || !util.AllFinite(out.ssr) {
		return nil, &ConvergenceError{Reason: "non-finite solution", Iterations: out.iterations, Err: ErrNonFinite}
	}

	cov, err := covariance(pr, out.params, out.ssr)
	if err != nil {
		return nil, &ConvergenceError{Reason: "covariance cannot be estimated", Iterations: out.iterations, Err: err}
	}

	res := &Result{
		Params:     out.params,
		N:          n,
		SSR:        out.ssr,
		RMS:        math.Sqrt(util.SafeDiv(out.ssr, float64(n))),
		Iterations: out.iterations,
		Seed:       seed,
		Start:      start,
		Window:     s.Window,
	}
	se := make([]float64, model.NumParams)
	for i := 0; i < model.NumParams; i++ {
		for j := 0; j < model.NumParams; j++ {
			res.Covariance[i][j] = cov.At(i, j)
		}
		se[i] = math.Sqrt(math.Max(cov.At(i, i), 0))
	}
	res.StdErr = model.FromSlice(se)

	est := make([]float64, n)
	for i := range est {
		est[i] = model.Eval(pts.Mco[i], pts.Z[i], out.params)
	}
	res.RSquared = stat.RSquaredFrom(est, pts.DM, nil)

	return res, nil
}

func startingPoint(pr *problem, s Settings) (model.Params, SeedMode) {
	if s.Initial != nil {
		return *s.Initial, SeedExplicit
	}
	if s.Seed == SeedProfile {
		if p, ok := profileSeed(pr); ok {
			return p, SeedProfile
		}
	}
	return model.Ones(), SeedOnes
}
