// Package refraction provides the default atmospheric refraction corrector
// for the sun-angle pipeline.
package refraction

import (
	"fmt"
	"math"

	"go.ngs.io/solar-api/internal/domain"
)

// Standard conditions the base arcminute formula is calibrated for.
const (
	referencePressureHPa  = 1010.0
	referenceTemperatureK = 283.0
)

// Bennett corrects a true zenith cosine for atmospheric bending using the
// Bennett/Saemundsson arcminute formula
//
//	R (arcmin) = 1.02 / tan( h + 10.3 / (h + 5.11) )   [h in degrees]
//
// scaled by (P/1010)*(283/T) for the actual pressure and temperature.
// Refraction raises the apparent elevation, most strongly near the horizon
// (about 0.48 degrees at h = 0 under standard conditions).
//
// Below -1 degree of true elevation the formula diverges and the ray does
// not reach the observer anyway, so the cosine passes through uncorrected.
type Bennett struct{}

// New returns the default corrector.
func New() *Bennett {
	return &Bennett{}
}

// Refract implements domain.Refractor. The three arrays must have been
// reconciled to a common shape by the caller.
func (b *Bennett) Refract(mu0True, pressureHPa, temperatureK domain.Array) (domain.Array, error) {
	if mu0True.Len() != pressureHPa.Len() || mu0True.Len() != temperatureK.Len() {
		return domain.Array{}, fmt.Errorf("refraction inputs not reconciled: lengths %d, %d, %d",
			mu0True.Len(), pressureHPa.Len(), temperatureK.Len())
	}

	out := make([]float64, mu0True.Len())
	for i := range out {
		out[i] = refractCosine(mu0True.At(i), pressureHPa.At(i), temperatureK.At(i))
	}

	apparent, err := domain.NewArray(mu0True.Shape(), out)
	if err != nil {
		return domain.Array{}, err
	}
	return apparent, nil
}

func refractCosine(mu0, pressureHPa, temperatureK float64) float64 {
	if math.IsNaN(mu0) {
		return mu0
	}
	clamped := math.Max(-1, math.Min(1, mu0))
	elevDeg := domain.Rad2Deg(math.Asin(clamped))

	if elevDeg < -1.0 {
		return mu0
	}

	// Keep the tangent argument away from its pole for slightly negative
	// elevations.
	h := elevDeg
	if h < -0.5 {
		h = -0.5
	}

	argRad := domain.Deg2Rad(h + 10.3/(h+5.11))
	tan := math.Tan(argRad)
	if tan == 0 {
		return mu0
	}

	scale := (pressureHPa / referencePressureHPa) * (referenceTemperatureK / temperatureK)
	refractionDeg := (1.02 / tan) / 60.0 * scale

	apparent := math.Sin(domain.Deg2Rad(elevDeg + refractionDeg))
	if apparent > 1 {
		apparent = 1
	}
	return apparent
}
