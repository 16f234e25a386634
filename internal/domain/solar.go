// Package domain implements the solar geometry and airmass pipeline:
// observer and sub-solar coordinates in, zenith cosine, azimuth and
// relative optical airmass out. Everything is pure and elementwise over
// strictly-broadcast arrays; concurrent calls are safe because no input is
// ever mutated and no state survives a call.
package domain

import (
	"fmt"
	"math"
)

// MaxDeclinationDeg bounds the physically possible solar declination.
const MaxDeclinationDeg = 23.6

// Atmosphere is the optional pressure/temperature pair enabling refraction
// correction. Modeling the pair as one value makes the invalid
// "one without the other" state unrepresentable here; callers assembling an
// Atmosphere from separately optional inputs must reject half-supplied
// pairs before reaching this type.
type Atmosphere struct {
	PressureHPa  Array
	TemperatureK Array
}

// NewAtmosphere validates the pair: every pressure must be > 0 hPa and
// every temperature > 0 K.
func NewAtmosphere(pressureHPa, temperatureK Array) (*Atmosphere, error) {
	for _, v := range pressureHPa.data {
		if !(v > 0) {
			return nil, NewValidationError("pressure", "must be > 0 hPa")
		}
	}
	for _, v := range temperatureK.data {
		if !(v > 0) {
			return nil, NewValidationError("temperature", "must be > 0 K")
		}
	}
	return &Atmosphere{PressureHPa: pressureHPa, TemperatureK: temperatureK}, nil
}

// Refractor maps a true zenith cosine to the apparent one under the given
// atmospheric state. Implementations must preserve the array shape and be
// defined for cosines in [-1, 1]. The pipeline treats the algorithm itself
// as a pluggable collaborator.
type Refractor interface {
	Refract(mu0True, pressureHPa, temperatureK Array) (Array, error)
}

// Options controls the optional stages of the pipeline.
type Options struct {
	// ZeroBelowHorizon clamps below-horizon cosines to 0 and invalidates
	// their azimuths. Defaults to true via DefaultOptions.
	ZeroBelowHorizon bool

	// Atmosphere, when non-nil, enables refraction correction. Requires a
	// Refractor.
	Atmosphere *Atmosphere
	Refractor  Refractor
}

// DefaultOptions returns the default pipeline configuration: horizon
// masking on, no refraction.
func DefaultOptions() Options {
	return Options{ZeroBelowHorizon: true}
}

// SunAngles is the pipeline output triple. All three arrays share the
// broadcast shape of the inputs. NaN is the uniform "no meaningful value"
// sentinel: azimuth where masked or airmass below the horizon.
type SunAngles struct {
	Mu0     Array // cosine of the solar zenith angle
	Phi0    Array // azimuth, degrees from south, counter-clockwise positive
	Airmass Array // relative optical path length, >= 1
}

// ComputeSunAngles runs the full pipeline for one instant's solar geometry.
//
// The sub-solar point (declination, subsolarLon) is treated as the point on
// the sphere where the sun is directly overhead. For each observer element:
//
//	mu0  = sin(lat)*sin(decl) + cos(lat)*cos(decl)*cos(subsolarLon - lon)
//	phi0 = 180 - atan2(sin(dlon)*cos(decl), cos(lat)*sin(decl) - sin(lat)*cos(decl)*cos(dlon))
//
// mu0 is exactly the cosine of the great-circle separation between observer
// and sub-solar point. phi0 is wrapped into (-180, 180], measured from
// south, increasing counter-clockwise: due east is +90, due west is -90.
// When the observer sits exactly under the sun both atan2 arguments vanish;
// Go's Atan2(0, 0) is 0, so phi0 is 180 there. That value is a documented
// convention, not a guarantee of geometric meaning.
//
// When opts.Atmosphere is set, the refraction-corrected (apparent) cosine
// is what gets masked, returned and fed into the airmass formula. Airmass
// is NaN wherever the (possibly corrected) mu0 is negative, independent of
// the masking flag.
//
// A *ValidationError is returned for any out-of-range input or shape
// conflict before any numeric work is done.
func ComputeSunAngles(latitude, longitude, declination, subsolarLon Array, opts Options) (SunAngles, error) {
	if err := checkRange(latitude, "latitude", 90, "|latitude| must be <= 90 degrees"); err != nil {
		return SunAngles{}, err
	}
	if err := checkRange(longitude, "longitude", 180, "|longitude| must be <= 180 degrees"); err != nil {
		return SunAngles{}, err
	}
	if err := checkRange(declination, "declination", MaxDeclinationDeg, "|declination| must be <= 23.6 degrees"); err != nil {
		return SunAngles{}, err
	}
	if err := checkRange(subsolarLon, "subsolar_lon", 180, "|subsolar_lon| must be <= 180 degrees"); err != nil {
		return SunAngles{}, err
	}

	// Observer coordinates broadcast scalar-vs-array against each other.
	lat, lon, err := Broadcast(latitude, longitude)
	if err != nil {
		return SunAngles{}, NewValidationError("latitude/longitude", err.Error())
	}

	// The solar-geometry pair is stricter: scalar, or exactly the observer
	// broadcast shape. No partial broadcasting.
	decl, ok := declination.conformTo(lat.shape, len(lat.data))
	if !ok {
		return SunAngles{}, NewValidationError("declination",
			fmt.Sprintf("shape %v must be scalar or match observer shape %v", declination.shape, lat.shape))
	}
	sslon, ok := subsolarLon.conformTo(lat.shape, len(lat.data))
	if !ok {
		return SunAngles{}, NewValidationError("subsolar_lon",
			fmt.Sprintf("shape %v must be scalar or match observer shape %v", subsolarLon.shape, lat.shape))
	}

	mu0, phi0 := sunGeometry(lat, lon, decl, sslon)

	if opts.Atmosphere != nil {
		mu0, err = applyRefraction(mu0, opts)
		if err != nil {
			return SunAngles{}, err
		}
	}

	// Airmass is derived from the (possibly corrected) cosine before any
	// masking; the sub-horizon NaN does not depend on the flag.
	airmass := mu0.mapUnary(RelativeAirmass)

	if opts.ZeroBelowHorizon {
		mu0, phi0 = maskBelowHorizon(mu0, phi0)
	}

	return SunAngles{Mu0: mu0, Phi0: phi0, Airmass: airmass}, nil
}

// sunGeometry converts observer and sub-solar coordinates into zenith
// cosine and azimuth. Both below- and above-horizon geometry pass through
// unmodified.
func sunGeometry(lat, lon, decl, sslon Array) (mu0, phi0 Array) {
	n := len(lat.data)
	mu := make([]float64, n)
	phi := make([]float64, n)
	for i := 0; i < n; i++ {
		latRad := Deg2Rad(lat.data[i])
		declRad := Deg2Rad(decl.data[i])
		dlonRad := Deg2Rad(sslon.data[i] - lon.data[i])

		sinLat, cosLat := math.Sincos(latRad)
		sinDecl, cosDecl := math.Sincos(declRad)
		cosDlon := math.Cos(dlonRad)

		mu[i] = sinLat*sinDecl + cosLat*cosDecl*cosDlon
		// Rounding can push the sum outside [-1, 1] by an ulp; callers
		// taking acos of mu0 need it inside the domain.
		if mu[i] > 1 {
			mu[i] = 1
		} else if mu[i] < -1 {
			mu[i] = -1
		}

		// Bearing of the sub-solar point, clockwise from geographic north.
		bearing := math.Atan2(
			math.Sin(dlonRad)*cosDecl,
			cosLat*sinDecl-sinLat*cosDecl*cosDlon,
		)
		phi[i] = Wrap180(180.0 - Rad2Deg(bearing))
	}
	return Array{shape: lat.shape, data: mu}, Array{shape: lat.shape, data: phi}
}

// applyRefraction conforms the atmospheric pair to the output shape and
// delegates to the configured Refractor, verifying its shape contract.
func applyRefraction(mu0 Array, opts Options) (Array, error) {
	if opts.Refractor == nil {
		return Array{}, NewValidationError("refractor", "required when an atmosphere is supplied")
	}
	pressure, ok := opts.Atmosphere.PressureHPa.conformTo(mu0.shape, len(mu0.data))
	if !ok {
		return Array{}, NewValidationError("pressure",
			fmt.Sprintf("shape %v must be scalar or match observer shape %v", opts.Atmosphere.PressureHPa.shape, mu0.shape))
	}
	temperature, ok := opts.Atmosphere.TemperatureK.conformTo(mu0.shape, len(mu0.data))
	if !ok {
		return Array{}, NewValidationError("temperature",
			fmt.Sprintf("shape %v must be scalar or match observer shape %v", opts.Atmosphere.TemperatureK.shape, mu0.shape))
	}
	apparent, err := opts.Refractor.Refract(mu0, pressure, temperature)
	if err != nil {
		return Array{}, fmt.Errorf("refraction correction failed: %w", err)
	}
	if !sameShape(apparent, mu0) {
		return Array{}, fmt.Errorf("refractor violated shape contract: got %v, want %v", apparent.shape, mu0.shape)
	}
	return apparent, nil
}

// maskBelowHorizon zeroes strictly negative cosines and invalidates their
// azimuths. The boundary is strict: mu0 of exactly 0 stays untouched.
func maskBelowHorizon(mu0, phi0 Array) (Array, Array) {
	mu := mu0.Values()
	phi := phi0.Values()
	for i, v := range mu {
		if v < 0 {
			mu[i] = 0
			phi[i] = math.NaN()
		}
	}
	return Array{shape: mu0.shape, data: mu}, Array{shape: phi0.shape, data: phi}
}

// checkRange rejects any element with |value| > limit, NaN included.
func checkRange(a Array, param string, limit float64, constraint string) *ValidationError {
	for _, v := range a.data {
		if math.IsNaN(v) || v < -limit || v > limit {
			return NewValidationError(param, constraint)
		}
	}
	return nil
}
