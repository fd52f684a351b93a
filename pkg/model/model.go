// Package model defines the closed-form fit family for pulsational
// pair-instability mass loss:
//
//	dM_PPI(Mco, Z) = (A·log10(Z) + B)·(Mco − C)^3 + D·(Mco − C)^2
//
// The cubic coefficient is affine in log10(Z); the quadratic coefficient D and
// the shift C are shared by all metallicities. The shift is always subtracted:
// the fit, the renderer and the report all evaluate through Eval.
package model

import (
	"fmt"
	"math"

	"github.com/ja7ad/ppifit/pkg/types"
)

// NumParams is the number of free coefficients.
const NumParams = 4

// Params holds the fitted coefficients.
//   - A: slope of the cubic coefficient in log10(Z)
//   - B: intercept of the cubic coefficient
//   - C: core-mass shift, in Msun
//   - D: quadratic coefficient
type Params struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

// Ones is the all-ones starting point, the usual default of curve fitters.
func Ones() Params { return Params{A: 1, B: 1, C: 1, D: 1} }

// Slice returns the coefficients in A, B, C, D order.
func (p Params) Slice() []float64 { return []float64{p.A, p.B, p.C, p.D} }

// FromSlice is the inverse of Slice. It panics if len(v) != NumParams.
func FromSlice(v []float64) Params {
	if len(v) != NumParams {
		panic(fmt.Sprintf("model: FromSlice: got %d values, want %d", len(v), NumParams))
	}
	return Params{A: v[0], B: v[1], C: v[2], D: v[3]}
}

// Finite reports whether every coefficient is finite.
func (p Params) Finite() bool {
	for _, v := range p.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Cubic returns the cubic coefficient A·log10(Z) + B at metallicity z.
func (p Params) Cubic(z float64) float64 { return p.A*types.Metallicity(z).Log10() + p.B }

// Eval returns the modelled mass loss at core mass mco and metallicity z.
// z must be positive; otherwise the result is not finite.
func Eval(mco, z float64, p Params) float64 {
	u := mco - p.C
	u2 := u * u
	return p.Cubic(z)*u2*u + p.D*u2
}

// Gradient returns ∂f/∂(A, B, C, D) at (mco, z).
func Gradient(mco, z float64, p Params) [NumParams]float64 {
	lz := types.Metallicity(z).Log10()
	u := mco - p.C
	u2 := u * u
	u3 := u2 * u
	k := p.A*lz + p.B
	return [NumParams]float64{
		lz * u3,
		u3,
		-(3*k*u2 + 2*p.D*u),
		u2,
	}
}

// Curve evaluates the model at every x for a fixed metallicity.
func (p Params) Curve(xs []float64, z float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = Eval(x, z, p)
	}
	return ys
}

// Formula renders the fitted expression in plain ASCII, e.g.
//
//	dM_PPI = (0.0012*log10(Z) + 0.0200)*(M_CO - 34.5)^3 - 0.0123*(M_CO - 34.5)^2
func (p Params) Formula() string {
	shift := "(M_CO " + signed(-p.C, 1) + ")"
	return fmt.Sprintf("dM_PPI = (%.4f*log10(Z) %s)*%s^3 %s*%s^2",
		p.A, signed(p.B, 4), shift, signed(p.D, 4), shift)
}

// signed formats v as "+ |v|" or "- |v|".
func signed(v float64, prec int) string {
	if v < 0 || (v == 0 && math.Signbit(v)) {
		return fmt.Sprintf("- %.*f", prec, -v)
	}
	return fmt.Sprintf("+ %.*f", prec, v)
}
