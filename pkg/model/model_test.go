package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func TestEval_PinnedValue(t *testing.T) {
	p := Params{A: 0.001, B: 0.02, C: 40, D: -5}

	// (0.001·(-3) + 0.02)·5^3 + (-5)·5^2 = 2.125 - 125
	got := Eval(45, 1e-3, p)
	assert.InDelta(t, -122.875, got, 1e-9)

	want := (0.001*math.Log10(1e-3)+0.02)*math.Pow(45-40, 3) + (-5)*math.Pow(45-40, 2)
	assert.InDelta(t, want, got, 1e-12)
}

func TestEval_ShiftIsSubtracted(t *testing.T) {
	p := Params{A: 0.3, B: 1, C: 40, D: 2}
	// at Mco == C both terms vanish
	assert.Equal(t, 0.0, Eval(40, 1e-3, p))
	assert.NotEqual(t, 0.0, Eval(-40, 1e-3, p))
}

func TestEval_ZOnlyEntersCubicTerm(t *testing.T) {
	p := Params{A: 0.01, B: 0.05, C: 35, D: -0.2}
	// pure quadratic part is Z independent
	quad := Params{C: p.C, D: p.D}
	for _, z := range []float64{1e-5, 1e-4, 1e-3, 2e-3} {
		assert.InDelta(t, Eval(50, 1e-3, quad), Eval(50, z, quad), 1e-12)
	}
	// the cubic part scales with A·log10(Z) + B
	u := 50 - p.C
	for _, z := range []float64{1e-5, 1e-3} {
		want := (p.A*math.Log10(z)+p.B)*u*u*u + p.D*u*u
		assert.InDelta(t, want, Eval(50, z, p), 1e-9)
	}
}

func TestEval_NonPositiveZ(t *testing.T) {
	p := Params{A: 1, B: 1, C: 1, D: 1}
	v := Eval(45, 0, p)
	assert.True(t, math.IsInf(v, 0) || math.IsNaN(v))
	assert.True(t, math.IsNaN(Eval(45, -1e-3, p)))
}

func TestGradient_MatchesFiniteDifferences(t *testing.T) {
	cases := []struct {
		mco, z float64
		p      Params
	}{
		{45, 1e-3, Params{A: 0.001, B: 0.02, C: 40, D: -5}},
		{58, 2e-4, Params{A: -0.004, B: 0.01, C: 33.5, D: 0.07}},
		{38, 1e-5, Params{A: 1, B: 1, C: 1, D: 1}},
	}
	for i, tc := range cases {
		f := func(x []float64) float64 { return Eval(tc.mco, tc.z, FromSlice(x)) }
		num := fd.Gradient(nil, f, tc.p.Slice(), &fd.Settings{Formula: fd.Central})
		got := Gradient(tc.mco, tc.z, tc.p)

		for j := 0; j < NumParams; j++ {
			tol := 1e-5 * math.Max(1, math.Abs(num[j]))
			assert.InDelta(t, num[j], got[j], tol, "case %d param %d", i, j)
		}
		t.Logf("case %d: analytic=%v numeric=%v", i, got, num)
	}
}

func TestParams_SliceRoundTripAndFinite(t *testing.T) {
	p := Params{A: 1.5, B: -2, C: 40, D: 0.25}
	assert.Equal(t, []float64{1.5, -2, 40, 0.25}, p.Slice())
	assert.Equal(t, p, FromSlice(p.Slice()))
	assert.True(t, p.Finite())

	assert.False(t, Params{A: math.NaN()}.Finite())
	assert.False(t, Params{D: math.Inf(1)}.Finite())

	assert.Panics(t, func() { FromSlice([]float64{1, 2, 3}) })
	assert.Equal(t, Params{A: 1, B: 1, C: 1, D: 1}, Ones())
}

func TestParams_Curve(t *testing.T) {
	p := Params{A: 0.001, B: 0.02, C: 40, D: -5}
	ys := p.Curve([]float64{40, 45}, 1e-3)
	require.Len(t, ys, 2)
	assert.Equal(t, 0.0, ys[0])
	assert.InDelta(t, -122.875, ys[1], 1e-9)
	assert.Empty(t, p.Curve(nil, 1e-3))
}

func TestParams_Formula(t *testing.T) {
	p := Params{A: 0.0012, B: 0.02, C: 34.5, D: -0.0123}
	assert.Equal(t,
		"dM_PPI = (0.0012*log10(Z) + 0.0200)*(M_CO - 34.5)^3 - 0.0123*(M_CO - 34.5)^2",
		p.Formula())

	neg := Params{A: -0.5, B: -1, C: -12.3, D: 3}
	assert.Equal(t,
		"dM_PPI = (-0.5000*log10(Z) - 1.0000)*(M_CO + 12.3)^3 + 3.0000*(M_CO + 12.3)^2",
		neg.Formula())
}
