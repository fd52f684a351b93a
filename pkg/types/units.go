package types

import (
	"fmt"
	"math"
)

// Metallicity is the heavy-element mass fraction Z of a stellar model.
type Metallicity float64

// Log10 returns log10(Z). Non-positive metallicities map to NaN.
func (z Metallicity) Log10() float64 {
	if z <= 0 {
		return math.NaN()
	}
	return math.Log10(float64(z))
}

// Valid reports whether z is a finite, strictly positive mass fraction.
func (z Metallicity) Valid() bool {
	v := float64(z)
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Label returns the short legend form, e.g. "Z=1e-03".
func (z Metallicity) Label() string { return fmt.Sprintf("Z=%.0e", float64(z)) }

// SolarMass is a mass in units of Msun.
type SolarMass float64

// String returns the mass with two decimals and unit suffix.
func (m SolarMass) String() string { return fmt.Sprintf("%.2f Msun", float64(m)) }

// Within reports whether m lies in the closed interval [lo, hi].
func (m SolarMass) Within(lo, hi SolarMass) bool { return m >= lo && m <= hi }
