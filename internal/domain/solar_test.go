package domain

import (
	"errors"
	"math"
	"testing"
)

const angleTol = 1e-9

// TestComputeSunAngles_OverheadSun: observer exactly under the sun gives
// mu0 = 1, airmass = 1 and the documented phi0 = 180 convention from
// atan2(0, 0) = 0.
func TestComputeSunAngles_OverheadSun(t *testing.T) {
	res, err := ComputeSunAngles(
		Scalar(20), Scalar(45), Scalar(20), Scalar(45), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles: %v", err)
	}

	if math.Abs(res.Mu0.At(0)-1.0) > angleTol {
		t.Errorf("mu0 overhead: expected 1, got %.15f", res.Mu0.At(0))
	}
	if res.Mu0.At(0) > 1.0 {
		t.Errorf("mu0 must never exceed 1, got %.17f", res.Mu0.At(0))
	}
	if res.Airmass.At(0) != 1.0 {
		t.Errorf("airmass overhead: expected exactly 1, got %.12f", res.Airmass.At(0))
	}
	if math.IsNaN(res.Phi0.At(0)) {
		t.Error("phi0 overhead must not be NaN")
	}
	if math.Abs(res.Phi0.At(0)-180.0) > angleTol {
		t.Errorf("phi0 overhead: expected convention value 180, got %.9f", res.Phi0.At(0))
	}
}

// TestComputeSunAngles_CosineBounds: the geometric cosine stays inside
// [-1, 1] even where rounding of sin*sin + cos*cos*cos lands an ulp outside,
// so acos of any output is always defined.
func TestComputeSunAngles_CosineBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.ZeroBelowHorizon = false

	// Overhead at several latitudes; some of these produce 1 + 1ulp without
	// the clamp.
	for _, lat := range []float64{0, 10, 20, 23.6, -15} {
		decl := lat
		if decl > MaxDeclinationDeg {
			decl = MaxDeclinationDeg
		}
		res, err := ComputeSunAngles(Scalar(lat), Scalar(0), Scalar(decl), Scalar(0), opts)
		if err != nil {
			t.Fatalf("lat %.1f: %v", lat, err)
		}
		if res.Mu0.At(0) > 1 {
			t.Errorf("lat %.1f: mu0 %.17f exceeds 1", lat, res.Mu0.At(0))
		}
		if math.IsNaN(math.Acos(res.Mu0.At(0))) {
			t.Errorf("lat %.1f: acos(mu0) is NaN", lat)
		}
	}

	// Antipodal sub-solar point bounds the other end.
	res, err := ComputeSunAngles(Scalar(10), Scalar(0), Scalar(-10), Scalar(180), opts)
	if err != nil {
		t.Fatalf("antipodal: %v", err)
	}
	if res.Mu0.At(0) < -1 {
		t.Errorf("antipodal mu0 %.17f below -1", res.Mu0.At(0))
	}
	if math.IsNaN(math.Acos(res.Mu0.At(0))) {
		t.Error("antipodal acos(mu0) is NaN")
	}
}

// TestComputeSunAngles_NoonDueSouth: northern observer, sun on the same
// meridian at lower declination, so the azimuth is due south (phi0 = 0).
func TestComputeSunAngles_NoonDueSouth(t *testing.T) {
	res, err := ComputeSunAngles(
		Scalar(45), Scalar(10), Scalar(23), Scalar(10), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles: %v", err)
	}

	// Separation is 45-23 = 22 degrees.
	wantMu0 := math.Cos(Deg2Rad(22))
	if math.Abs(res.Mu0.At(0)-wantMu0) > angleTol {
		t.Errorf("mu0: expected %.12f, got %.12f", wantMu0, res.Mu0.At(0))
	}
	if math.Abs(res.Phi0.At(0)) > 1e-6 {
		t.Errorf("phi0: expected 0 (due south), got %.9f", res.Phi0.At(0))
	}
}

// TestComputeSunAngles_AzimuthSignConvention: phi0 is measured from south,
// counter-clockwise positive. A sun due east of an equatorial observer is
// +90, due west is -90.
func TestComputeSunAngles_AzimuthSignConvention(t *testing.T) {
	east, err := ComputeSunAngles(
		Scalar(0), Scalar(0), Scalar(0), Scalar(45), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles east: %v", err)
	}
	if math.Abs(east.Phi0.At(0)-90.0) > 1e-6 {
		t.Errorf("due-east sun: expected phi0 +90, got %.9f", east.Phi0.At(0))
	}

	west, err := ComputeSunAngles(
		Scalar(0), Scalar(0), Scalar(0), Scalar(-45), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles west: %v", err)
	}
	if math.Abs(west.Phi0.At(0)-(-90.0)) > 1e-6 {
		t.Errorf("due-west sun: expected phi0 -90, got %.9f", west.Phi0.At(0))
	}
}

// TestComputeSunAngles_HorizonBoundary: separation of exactly 90 degrees
// gives mu0 ~ 0 which is not strictly negative, so masking must not touch
// the element and the azimuth stays defined.
func TestComputeSunAngles_HorizonBoundary(t *testing.T) {
	res, err := ComputeSunAngles(
		Scalar(0), Scalar(0), Scalar(0), Scalar(90), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles: %v", err)
	}

	if math.Abs(res.Mu0.At(0)) > 1e-12 {
		t.Errorf("mu0 at the horizon: expected ~0, got %.15e", res.Mu0.At(0))
	}
	if math.IsNaN(res.Phi0.At(0)) {
		t.Error("phi0 must stay defined at mu0 = 0; masking is strictly < 0")
	}
	if math.Abs(res.Airmass.At(0)-37.92) > 0.5 {
		t.Errorf("airmass at the horizon: expected ~37.9, got %.3f", res.Airmass.At(0))
	}
}

// TestComputeSunAngles_BelowHorizon covers both masking modes for a sun on
// the far side of the planet.
func TestComputeSunAngles_BelowHorizon(t *testing.T) {
	// Sub-solar point 135 degrees of longitude away: well below the horizon.
	masked, err := ComputeSunAngles(
		Scalar(0), Scalar(0), Scalar(0), Scalar(135), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles masked: %v", err)
	}
	if masked.Mu0.At(0) != 0 {
		t.Errorf("masked mu0: expected exactly 0, got %.12f", masked.Mu0.At(0))
	}
	if !math.IsNaN(masked.Phi0.At(0)) {
		t.Errorf("masked phi0: expected NaN, got %.9f", masked.Phi0.At(0))
	}
	if !math.IsNaN(masked.Airmass.At(0)) {
		t.Errorf("airmass below horizon: expected NaN, got %.9f", masked.Airmass.At(0))
	}

	opts := DefaultOptions()
	opts.ZeroBelowHorizon = false
	unmasked, err := ComputeSunAngles(
		Scalar(0), Scalar(0), Scalar(0), Scalar(135), opts)
	if err != nil {
		t.Fatalf("ComputeSunAngles unmasked: %v", err)
	}
	wantMu0 := math.Cos(Deg2Rad(135))
	if math.Abs(unmasked.Mu0.At(0)-wantMu0) > angleTol {
		t.Errorf("unmasked mu0: expected %.12f, got %.12f", wantMu0, unmasked.Mu0.At(0))
	}
	if math.IsNaN(unmasked.Phi0.At(0)) {
		t.Error("unmasked phi0 must pass through")
	}
	if !math.IsNaN(unmasked.Airmass.At(0)) {
		t.Error("airmass must be NaN below the horizon regardless of masking")
	}
}

// TestComputeSunAngles_MaskingIdempotence: masked and unmasked runs differ
// only at elements whose unmasked mu0 is strictly negative.
func TestComputeSunAngles_MaskingIdempotence(t *testing.T) {
	lats := Vector([]float64{-60, -30, 0, 30, 60, 89})
	lons := Scalar(0)
	decl := Scalar(-20)
	sslon := Scalar(100)

	opts := DefaultOptions()
	opts.ZeroBelowHorizon = false
	unmasked, err := ComputeSunAngles(lats, lons, decl, sslon, opts)
	if err != nil {
		t.Fatalf("unmasked run: %v", err)
	}
	masked, err := ComputeSunAngles(lats, lons, decl, sslon, DefaultOptions())
	if err != nil {
		t.Fatalf("masked run: %v", err)
	}

	for i := 0; i < unmasked.Mu0.Len(); i++ {
		if unmasked.Mu0.At(i) < 0 {
			if masked.Mu0.At(i) != 0 {
				t.Errorf("element %d: masked mu0 expected 0, got %.12f", i, masked.Mu0.At(i))
			}
			if !math.IsNaN(masked.Phi0.At(i)) {
				t.Errorf("element %d: masked phi0 expected NaN", i)
			}
		} else {
			if masked.Mu0.At(i) != unmasked.Mu0.At(i) {
				t.Errorf("element %d: above-horizon mu0 changed by masking", i)
			}
			if masked.Phi0.At(i) != unmasked.Phi0.At(i) {
				t.Errorf("element %d: above-horizon phi0 changed by masking", i)
			}
		}
		am, au := masked.Airmass.At(i), unmasked.Airmass.At(i)
		if am != au && !(math.IsNaN(am) && math.IsNaN(au)) {
			t.Errorf("element %d: airmass must not depend on the masking flag", i)
		}
	}
}

// TestComputeSunAngles_ShapeBroadcasting: a vector of latitudes against
// scalar everything-else yields vector outputs of the same length.
func TestComputeSunAngles_ShapeBroadcasting(t *testing.T) {
	lats := Vector([]float64{-80, -40, 0, 40, 80})
	res, err := ComputeSunAngles(lats, Scalar(10), Scalar(15), Scalar(10), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeSunAngles: %v", err)
	}

	for _, out := range []Array{res.Mu0, res.Phi0, res.Airmass} {
		shape := out.Shape()
		if len(shape) != 1 || shape[0] != 5 {
			t.Fatalf("output shape: expected [5], got %v", shape)
		}
	}

	// Spot-check one element against a scalar run.
	single, err := ComputeSunAngles(Scalar(40), Scalar(10), Scalar(15), Scalar(10), DefaultOptions())
	if err != nil {
		t.Fatalf("scalar run: %v", err)
	}
	if res.Mu0.At(3) != single.Mu0.At(0) {
		t.Errorf("vector element must equal equivalent scalar run: %.12f vs %.12f",
			res.Mu0.At(3), single.Mu0.At(0))
	}
}

// TestComputeSunAngles_ShapeConflicts rejects ragged observer shapes and
// partial broadcasting of the solar-geometry pair.
func TestComputeSunAngles_ShapeConflicts(t *testing.T) {
	if _, err := ComputeSunAngles(
		Vector([]float64{0, 10, 20}), Vector([]float64{0, 10}),
		Scalar(0), Scalar(0), DefaultOptions()); err == nil {
		t.Error("expected error for mismatched lat/lon shapes")
	}

	// Declination shaped [2] against observer shape [3]: rejected even
	// though numpy-style rules might allow other combinations.
	if _, err := ComputeSunAngles(
		Vector([]float64{0, 10, 20}), Scalar(0),
		Vector([]float64{0, 5}), Scalar(0), DefaultOptions()); err == nil {
		t.Error("expected error for declination shape not matching observer shape")
	}

	var verr *ValidationError
	_, err := ComputeSunAngles(
		Vector([]float64{0, 10, 20}), Scalar(0),
		Scalar(0), Vector([]float64{0, 5}), DefaultOptions())
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if verr.Param != "subsolar_lon" {
		t.Errorf("validation error param: expected subsolar_lon, got %q", verr.Param)
	}
}

// TestComputeSunAngles_RangeValidation walks every out-of-range parameter.
func TestComputeSunAngles_RangeValidation(t *testing.T) {
	tests := []struct {
		name                  string
		lat, lon, decl, sslon Array
		wantParam             string
	}{
		{"latitude high", Scalar(90.5), Scalar(0), Scalar(0), Scalar(0), "latitude"},
		{"latitude low", Scalar(-91), Scalar(0), Scalar(0), Scalar(0), "latitude"},
		{"longitude", Scalar(0), Scalar(180.1), Scalar(0), Scalar(0), "longitude"},
		{"declination", Scalar(0), Scalar(0), Scalar(23.7), Scalar(0), "declination"},
		{"subsolar lon", Scalar(0), Scalar(0), Scalar(0), Scalar(-181), "subsolar_lon"},
		{"NaN latitude", Scalar(math.NaN()), Scalar(0), Scalar(0), Scalar(0), "latitude"},
		{"array element", Vector([]float64{0, 45, 95}), Scalar(0), Scalar(0), Scalar(0), "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSunAngles(tt.lat, tt.lon, tt.decl, tt.sslon, DefaultOptions())
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if verr.Param != tt.wantParam {
				t.Errorf("param: expected %q, got %q", tt.wantParam, verr.Param)
			}
		})
	}

	// Boundary values are valid.
	if _, err := ComputeSunAngles(Scalar(90), Scalar(-180), Scalar(-23.6), Scalar(180), DefaultOptions()); err != nil {
		t.Errorf("boundary values must validate: %v", err)
	}
}

// TestNewAtmosphere_Validation: positivity checks on the composite pair.
func TestNewAtmosphere_Validation(t *testing.T) {
	if _, err := NewAtmosphere(Scalar(0), Scalar(288)); err == nil {
		t.Error("expected error for zero pressure")
	}
	if _, err := NewAtmosphere(Scalar(1013.25), Scalar(-1)); err == nil {
		t.Error("expected error for negative temperature")
	}
	if _, err := NewAtmosphere(Vector([]float64{1013, -5}), Scalar(288)); err == nil {
		t.Error("expected error for a negative pressure element")
	}
	if _, err := NewAtmosphere(Scalar(1013.25), Scalar(288.15)); err != nil {
		t.Errorf("valid pair rejected: %v", err)
	}
}

// liftRefractor raises every cosine by a fixed amount, for pipeline tests
// that need a deterministic correction.
type liftRefractor struct{ delta float64 }

func (r liftRefractor) Refract(mu0, _, _ Array) (Array, error) {
	return mu0.mapUnary(func(v float64) float64 {
		c := v + r.delta
		if c > 1 {
			c = 1
		}
		return c
	}), nil
}

// TestComputeSunAngles_RefractionFeedsAirmass: the corrected cosine, not
// the geometric one, must drive airmass and the returned mu0.
func TestComputeSunAngles_RefractionFeedsAirmass(t *testing.T) {
	atm, err := NewAtmosphere(Scalar(1013.25), Scalar(288.15))
	if err != nil {
		t.Fatalf("NewAtmosphere: %v", err)
	}

	opts := DefaultOptions()
	opts.Atmosphere = atm
	opts.Refractor = liftRefractor{delta: 0.01}

	corrected, err := ComputeSunAngles(Scalar(0), Scalar(0), Scalar(0), Scalar(60), opts)
	if err != nil {
		t.Fatalf("corrected run: %v", err)
	}
	plain, err := ComputeSunAngles(Scalar(0), Scalar(0), Scalar(0), Scalar(60), DefaultOptions())
	if err != nil {
		t.Fatalf("plain run: %v", err)
	}

	wantMu0 := plain.Mu0.At(0) + 0.01
	if math.Abs(corrected.Mu0.At(0)-wantMu0) > angleTol {
		t.Errorf("corrected mu0: expected %.12f, got %.12f", wantMu0, corrected.Mu0.At(0))
	}
	if corrected.Airmass.At(0) != RelativeAirmass(wantMu0) {
		t.Errorf("airmass must be computed from the corrected cosine")
	}
	if corrected.Airmass.At(0) >= plain.Airmass.At(0) {
		t.Error("raising the sun must shorten the optical path")
	}
}

// TestComputeSunAngles_RefractorRequired: supplying an atmosphere without a
// refractor is a configuration error.
func TestComputeSunAngles_RefractorRequired(t *testing.T) {
	atm, err := NewAtmosphere(Scalar(1000), Scalar(280))
	if err != nil {
		t.Fatalf("NewAtmosphere: %v", err)
	}
	opts := DefaultOptions()
	opts.Atmosphere = atm

	if _, err := ComputeSunAngles(Scalar(0), Scalar(0), Scalar(0), Scalar(0), opts); err == nil {
		t.Error("expected error for atmosphere without refractor")
	}
}

// TestWrap180 pins the wrap boundaries.
func TestWrap180(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{180, 180},
		{-180, 180},
		{270, -90},
		{-270, 90},
		{360, 0},
		{540, 180},
	}
	for _, tt := range tests {
		if got := Wrap180(tt.in); math.Abs(got-tt.want) > angleTol {
			t.Errorf("Wrap180(%.0f): expected %.0f, got %.9f", tt.in, tt.want, got)
		}
	}
}
