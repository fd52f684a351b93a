package fit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ja7ad/ppifit/pkg/model"
	"github.com/ja7ad/ppifit/pkg/util"
)

const (
	// maxDamping stops the inner loop once steps can no longer shrink usefully.
	maxDamping = 1e32
	// condLimit bounds the condition number of the scaled normal matrix.
	condLimit = 1e12
)

// problem is the pooled selection the model is fitted to.
type problem struct {
	x, z, y []float64
}

func (pr *problem) len() int { return len(pr.x) }

// residuals writes f(x_i; p) - y_i into r and returns the sum of squares.
func (pr *problem) residuals(p model.Params, r []float64) float64 {
	var ssr float64
	for i := range pr.x {
		d := model.Eval(pr.x[i], pr.z[i], p) - pr.y[i]
		r[i] = d
		ssr += d * d
	}
	return ssr
}

func (pr *problem) jacobian(p model.Params, jac *mat.Dense) {
	for i := range pr.x {
		g := model.Gradient(pr.x[i], pr.z[i], p)
		jac.SetRow(i, g[:])
	}
}

type lmOutcome struct {
	params     model.Params
	ssr        float64
	iterations int
}

// levenbergMarquardt minimises the residual sum of squares from p0 using
// Marquardt's diagonal scaling and Nielsen's damping update.
func levenbergMarquardt(pr *problem, p0 model.Params, s Settings) (lmOutcome, error) {
	n := pr.len()
	const k = model.NumParams

	r := make([]float64, n)
	trial := make([]float64, n)
	jac := mat.NewDense(n, k, nil)

	p := p0
	ssr := pr.residuals(p, r)
	if !util.AllFinite(ssr) {
		return lmOutcome{}, &ConvergenceError{Reason: "non-finite residuals at starting point", Err: ErrNonFinite}
	}

	mu, nu := s.InitialDamping, 2.0
	diag := make([]float64, k)

	for it := 1; it <= s.MaxIterations; it++ {
		if ssr == 0 {
			return lmOutcome{params: p, ssr: ssr, iterations: it - 1}, nil
		}

		pr.jacobian(p, jac)
		var jtj mat.SymDense
		jtj.SymOuterK(1, jac.T())
		var g mat.VecDense
		g.MulVec(jac.T(), mat.NewVecDense(n, r))

		for i := range diag {
			d := jtj.At(i, i)
			if d <= 0 {
				d = 1
			}
			diag[i] = d
		}

		for {
			aug := mat.NewSymDense(k, nil)
			aug.CopySym(&jtj)
			for i := range diag {
				aug.SetSym(i, i, jtj.At(i, i)+mu*diag[i])
			}

			var delta mat.VecDense
			var chol mat.Cholesky
			ok := chol.Factorize(aug)
			if ok {
				ok = chol.SolveVecTo(&delta, &g) == nil
			}
			if !ok {
				mu *= nu
				nu *= 2
				if mu > maxDamping {
					return lmOutcome{params: p, ssr: ssr, iterations: it}, nil
				}
				continue
			}
			delta.ScaleVec(-1, &delta)
			step := delta.RawVector().Data

			if stepConverged(step, p.Slice(), s.XTol) {
				return lmOutcome{params: p, ssr: ssr, iterations: it}, nil
			}

			cand := model.FromSlice(floats.AddTo(make([]float64, k), p.Slice(), step))
			newSSR := pr.residuals(cand, trial)

			// predicted decrease of the sum of squares: δᵀ(μ·D·δ − g)
			var predicted float64
			for i := range step {
				predicted += step[i] * (mu*diag[i]*step[i] - g.AtVec(i))
			}
			actual := ssr - newSSR

			if util.AllFinite(newSSR) && predicted > 0 && actual > 0 {
				rho := actual / predicted
				p = cand
				copy(r, trial)
				prev := ssr
				ssr = newSSR
				mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
				nu = 2

				if ssr == 0 || (actual <= s.FTol*prev && predicted <= s.FTol*prev) {
					return lmOutcome{params: p, ssr: ssr, iterations: it}, nil
				}
				break
			}

			mu *= nu
			nu *= 2
			if mu > maxDamping {
				return lmOutcome{params: p, ssr: ssr, iterations: it}, nil
			}
		}
	}

	return lmOutcome{}, &ConvergenceError{
		Reason:     "no tolerance met",
		Iterations: s.MaxIterations,
		Err:        ErrNoConvergence,
	}
}

// covariance returns (JᵀJ)⁻¹·σ² at p, with σ² = ssr/(n − k). The normal
// matrix is scaled to unit diagonal before factorisation so that the
// singularity test measures collinearity rather than column magnitude.
func covariance(pr *problem, p model.Params, ssr float64) (*mat.SymDense, error) {
	n := pr.len()
	const k = model.NumParams

	jac := mat.NewDense(n, k, nil)
	pr.jacobian(p, jac)
	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())

	scale := make([]float64, k)
	for i := range scale {
		d := jtj.At(i, i)
		if !(d > 0) || !util.AllFinite(d) {
			return nil, ErrSingular
		}
		scale[i] = 1 / math.Sqrt(d)
	}
	scaled := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			scaled.SetSym(i, j, jtj.At(i, j)*scale[i]*scale[j])
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(scaled) || chol.Cond() > condLimit {
		return nil, ErrSingular
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, ErrSingular
	}

	sigma2 := ssr / float64(n-k)
	cov := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			cov.SetSym(i, j, inv.At(i, j)*scale[i]*scale[j]*sigma2)
		}
	}
	return cov, nil
}

// stepConverged reports whether every component of step is small relative to
// the matching coefficient.
func stepConverged(step, p []float64, xtol float64) bool {
	for i := range step {
		if math.Abs(step[i]) > xtol*(math.Abs(p[i])+xtol) {
			return false
		}
	}
	return true
}
