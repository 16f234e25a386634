// Package ephemeris supplies the solar geometry (declination and sub-solar
// longitude) for an instant, so callers can ask for sun angles by timestamp
// instead of providing the geometry themselves.
package ephemeris

import (
	"math"
	"time"

	"go.ngs.io/solar-api/internal/domain"
)

// Source yields the sub-solar point for an instant: the declination is the
// latitude directly beneath the sun, the sub-solar longitude the longitude
// beneath it, both in degrees.
type Source interface {
	SolarGeometryAt(t time.Time) (declinationDeg, subsolarLonDeg float64)
}

// Approx is a low-precision solar ephemeris (Meeus-style mean elements with
// the equation of center), accurate to roughly a tenth of a degree. That is
// ample for airmass and horizon work; callers needing arcsecond geometry
// should supply their own Source.
type Approx struct{}

// NewApprox returns the built-in ephemeris.
func NewApprox() *Approx {
	return &Approx{}
}

// julianDay2451545 is the Julian Day of the J2000.0 epoch.
const julianDay2451545 = 2451545.0

// daysSinceJ2000 returns the (fractional) day count from J2000.0.
func daysSinceJ2000(t time.Time) float64 {
	jd := 2440587.5 + float64(t.UTC().UnixMilli())/86400000.0
	return jd - julianDay2451545
}

// SolarGeometryAt implements Source.
func (a *Approx) SolarGeometryAt(t time.Time) (declinationDeg, subsolarLonDeg float64) {
	d := daysSinceJ2000(t)

	// Mean anomaly and mean longitude of the sun (degrees).
	g := domain.Deg2Rad(357.529 + 0.98560028*d)
	q := 280.459 + 0.98564736*d

	// Ecliptic longitude with the equation of center.
	l := domain.Deg2Rad(q + 1.915*math.Sin(g) + 0.020*math.Sin(2*g))

	// Obliquity of the ecliptic.
	eps := domain.Deg2Rad(23.439 - 0.00000036*d)

	sinL := math.Sin(l)
	raDeg := domain.Rad2Deg(math.Atan2(math.Cos(eps)*sinL, math.Cos(l)))
	declinationDeg = domain.Rad2Deg(math.Asin(math.Sin(eps) * sinL))

	// Greenwich mean sidereal time (IAU 1982, degrees). The sub-solar
	// longitude is the negated Greenwich hour angle of the sun: RA - GMST.
	gmstDeg := 280.46061837 + 360.98564736629*d
	subsolarLonDeg = domain.Wrap180(raDeg - gmstDeg)

	return declinationDeg, subsolarLonDeg
}
