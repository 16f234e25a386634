package domain

import "math"

// Kasten & Young (1989) revised optical airmass coefficients.
const (
	kastenYoungA = 0.50572
	kastenYoungB = 6.07995
	kastenYoungC = 1.6364
)

// RelativeAirmass computes the relative atmospheric optical path length for
// a zenith cosine using the Kasten-Young (1989) approximation
//
//	m = 1 / ( sin(h) + a*(h + b)^(-c) )
//
// with h the solar elevation in degrees. The result is normalized to 1 at
// zenith; values below 1 from numerical overshoot near the zenith are
// clamped up to exactly 1. A sun below the horizon (mu0 < 0) has no
// meaningful path length and yields NaN.
func RelativeAirmass(mu0 float64) float64 {
	if math.IsNaN(mu0) || mu0 < 0 {
		return math.NaN()
	}
	// sin(elevation) is mu0 itself; only the correction term needs the
	// elevation in degrees.
	elevDeg := Rad2Deg(math.Asin(math.Min(mu0, 1)))
	m := 1 / (mu0 + kastenYoungA*math.Pow(elevDeg+kastenYoungB, -kastenYoungC))
	if m < 1 {
		return 1
	}
	return m
}
