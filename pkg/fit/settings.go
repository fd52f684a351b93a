package fit

import (
	"fmt"
	"math"

	"github.com/ja7ad/ppifit/pkg/dataset"
	"github.com/ja7ad/ppifit/pkg/model"
	"github.com/ja7ad/ppifit/pkg/types"
)

// Window is a closed core-mass interval [Lo, Hi] in Msun.
type Window struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// PPISNWindow returns [38, 60], the range where pulsational pair instability
// removes mass.
func PPISNWindow() Window { return Window{Lo: 38, Hi: 60} }

// Contains reports whether x lies in [Lo, Hi].
func (w Window) Contains(x float64) bool {
	return types.SolarMass(x).Within(types.SolarMass(w.Lo), types.SolarMass(w.Hi))
}

// Mask marks the values inside the window.
func (w Window) Mask(values []float64) []bool {
	m := make([]bool, len(values))
	for i, v := range values {
		m[i] = w.Contains(v)
	}
	return m
}

func (w Window) String() string { return fmt.Sprintf("[%g, %g]", w.Lo, w.Hi) }

// SeedMode selects how the starting point is chosen when Settings.Initial is nil.
type SeedMode string

const (
	// SeedProfile scans the shift C and solves the linear sub-problem in A, B, D.
	SeedProfile SeedMode = "profile"
	// SeedOnes starts from A = B = C = D = 1.
	SeedOnes SeedMode = "ones"
	// SeedExplicit is reported when Settings.Initial was used.
	SeedExplicit SeedMode = "explicit"
)

// Settings controls selection and the Levenberg–Marquardt iteration.
// Units:
//   - Window: Msun
//   - FTol: relative decrease of the residual sum of squares
//   - XTol: relative step length
//   - InitialDamping: dimensionless, multiplies diag(JᵀJ)
type Settings struct {
	Window         Window
	MaxIterations  int
	FTol           float64
	XTol           float64
	InitialDamping float64
	Seed           SeedMode
	Initial        *model.Params

	MassColumn        string
	MetallicityColumn string
	TargetColumn      string
}

// DefaultSettings returns the settings used for the published figure.
// MaxIterations matches the usual 200·(n+1) evaluation budget for n = 4.
func DefaultSettings() Settings {
	return Settings{
		Window:            PPISNWindow(),
		MaxIterations:     1000,
		FTol:              1e-12,
		XTol:              1e-10,
		InitialDamping:    1e-3,
		Seed:              SeedProfile,
		MassColumn:        dataset.ColMco,
		MetallicityColumn: dataset.ColZ,
		TargetColumn:      dataset.ColDMPulse,
	}
}

// merge fills unset (zero or negative) fields of s from the defaults.
// A zero Window means "use the PPISN window".
func merge(s Settings) Settings {
	out := DefaultSettings()

	if s.Window != (Window{}) {
		out.Window = s.Window
	}
	if s.MaxIterations > 0 {
		out.MaxIterations = s.MaxIterations
	}
	if s.FTol > 0 {
		out.FTol = s.FTol
	}
	if s.XTol > 0 {
		out.XTol = s.XTol
	}
	if s.InitialDamping > 0 {
		out.InitialDamping = s.InitialDamping
	}
	if s.Seed != "" {
		out.Seed = s.Seed
	}
	if s.Initial != nil {
		p := *s.Initial
		out.Initial = &p
	}
	if s.MassColumn != "" {
		out.MassColumn = s.MassColumn
	}
	if s.MetallicityColumn != "" {
		out.MetallicityColumn = s.MetallicityColumn
	}
	if s.TargetColumn != "" {
		out.TargetColumn = s.TargetColumn
	}
	return out
}

func (s Settings) validate() error {
	if math.IsNaN(s.Window.Lo) || math.IsNaN(s.Window.Hi) || s.Window.Lo > s.Window.Hi {
		return fmt.Errorf("%w: window %s", ErrInvalidSettings, s.Window)
	}
	switch s.Seed {
	case SeedProfile, SeedOnes:
	default:
		return fmt.Errorf("%w: seed %q", ErrInvalidSettings, s.Seed)
	}
	if s.Initial != nil && !s.Initial.Finite() {
		return fmt.Errorf("%w: non-finite initial parameters", ErrInvalidSettings)
	}
	return nil
}
