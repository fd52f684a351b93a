package fit

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ja7ad/ppifit/pkg/model"
	"github.com/ja7ad/ppifit/pkg/types"
	"github.com/ja7ad/ppifit/pkg/util"
)

// Shift scan used by the profile seed, in Msun.
const (
	shiftScanMin  = -100.0
	shiftScanMax  = 100.0
	shiftScanStep = 0.5
)

// profileSeed exploits that the model is linear in A, B and D once C is fixed:
// for every C on the scan grid it solves that linear least-squares problem
// and keeps the candidate with the lowest residual sum of squares. It reports
// false when no grid point yields a solvable system.
func profileSeed(pr *problem) (model.Params, bool) {
	n := pr.len()
	if n < 3 {
		return model.Params{}, false
	}

	lz := make([]float64, n)
	for i, z := range pr.z {
		lz[i] = types.Metallicity(z).Log10()
	}

	design := mat.NewDense(n, 3, nil)
	target := mat.NewVecDense(n, append([]float64(nil), pr.y...))
	r := make([]float64, n)

	var (
		best  model.Params
		bestS = math.Inf(1)
		found bool
	)
	steps := int(math.Round((shiftScanMax - shiftScanMin) / shiftScanStep))
	for s := 0; s <= steps; s++ {
		c := shiftScanMin + float64(s)*shiftScanStep
		for i, x := range pr.x {
			u := x - c
			u2 := u * u
			design.Set(i, 0, lz[i]*u2*u)
			design.Set(i, 1, u2*u)
			design.Set(i, 2, u2)
		}

		var sol mat.VecDense
		if err := sol.SolveVec(design, target); err != nil {
			continue
		}
		p := model.Params{A: sol.AtVec(0), B: sol.AtVec(1), C: c, D: sol.AtVec(2)}
		if !p.Finite() {
			continue
		}
		if ssr := pr.residuals(p, r); util.AllFinite(ssr) && ssr < bestS {
			best, bestS, found = p, ssr, true
		}
	}
	return best, found
}
