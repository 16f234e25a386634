package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/owlpinetech/healpix"

	"go.ngs.io/solar-api/internal/adapter/ephemeris"
	"go.ngs.io/solar-api/internal/adapter/pixel"
	"go.ngs.io/solar-api/internal/domain"
)

// maxObservers caps request size so a single call cannot exhaust memory.
const maxObservers = 100000

// SunAnglesRequest encapsulates one sun-angle computation request.
type SunAnglesRequest struct {
	// Observer coordinates in degrees. A single-element slice acts as a
	// scalar and broadcasts against the other coordinate.
	Latitudes  []float64
	Longitudes []float64

	// Solar geometry: either the explicit pair (mutually exclusive with
	// Time) or an instant resolved through the ephemeris.
	Declination *float64
	SubsolarLon *float64
	Time        *time.Time

	// Atmospheric state for refraction correction; both or neither.
	PressureHPa  *float64
	TemperatureK *float64

	// ZeroBelowHorizon defaults to true when nil.
	ZeroBelowHorizon *bool

	// Optional pixel annotations.
	HealpixOrder *int // equal-area pixel ids at this order
	RasterWidth  *int // equirectangular raster cell ids; pair with RasterHeight
	RasterHeight *int
}

// SunAnglesResponse contains the computed triple. NaN elements are carried
// as nulls because JSON has no NaN; a null azimuth or airmass means "no
// meaningful value there" (sun below the horizon), not an error.
type SunAnglesResponse struct {
	Count        int               `json:"count"`
	Declination  float64           `json:"declination_deg"`
	SubsolarLon  float64           `json:"subsolar_lon_deg"`
	Mu0          []*float64        `json:"mu0"`
	Phi0         []*float64        `json:"phi0_deg"`
	Airmass      []*float64        `json:"airmass"`
	HealpixPixel []int             `json:"healpix_pixel,omitempty"`
	RasterCell   []int             `json:"raster_cell,omitempty"`
	Meta         map[string]string `json:"meta"`
}

// SunAnglesUseCase orchestrates validation, geometry resolution and the
// domain pipeline.
type SunAnglesUseCase struct {
	ephemeris ephemeris.Source
	refractor domain.Refractor
}

// NewSunAnglesUseCase wires the use case. The ephemeris serves time-based
// requests; the refractor serves requests carrying an atmosphere.
func NewSunAnglesUseCase(eph ephemeris.Source, refractor domain.Refractor) *SunAnglesUseCase {
	return &SunAnglesUseCase{
		ephemeris: eph,
		refractor: refractor,
	}
}

// Validate checks the request before any numeric work.
func (r *SunAnglesRequest) Validate() error {
	if len(r.Latitudes) == 0 {
		return domain.NewValidationError("latitude", "at least one value is required")
	}
	if len(r.Longitudes) == 0 {
		return domain.NewValidationError("longitude", "at least one value is required")
	}
	if len(r.Latitudes) > maxObservers || len(r.Longitudes) > maxObservers {
		return domain.NewValidationError("latitude/longitude",
			fmt.Sprintf("too many observers - at most %d per request", maxObservers))
	}

	// Solar geometry comes either as the explicit pair or as a timestamp.
	hasDecl := r.Declination != nil
	hasSslon := r.SubsolarLon != nil
	if hasDecl != hasSslon {
		return domain.NewValidationError("declination/subsolar_lon", "must be supplied together")
	}
	hasPair := hasDecl && hasSslon
	hasTime := r.Time != nil
	if !hasPair && !hasTime {
		return domain.NewValidationError("declination/subsolar_lon",
			"either the declination/subsolar_lon pair or time must be provided")
	}
	if hasPair && hasTime {
		return domain.NewValidationError("time", "mutually exclusive with declination/subsolar_lon")
	}

	// Atmosphere is strictly both-or-neither.
	if (r.PressureHPa != nil) != (r.TemperatureK != nil) {
		return domain.NewValidationError("pressure/temperature", "must be supplied together")
	}

	if r.HealpixOrder != nil && (*r.HealpixOrder < 0 || *r.HealpixOrder > 12) {
		return domain.NewValidationError("healpix_order", "must be between 0 and 12")
	}
	if (r.RasterWidth != nil) != (r.RasterHeight != nil) {
		return domain.NewValidationError("raster_width/raster_height", "must be supplied together")
	}
	if r.RasterWidth != nil && (*r.RasterWidth < 1 || *r.RasterHeight < 1) {
		return domain.NewValidationError("raster_width/raster_height", "must be positive")
	}

	return nil
}

// Execute performs the sun-angle computation.
func (uc *SunAnglesUseCase) Execute(req SunAnglesRequest) (*SunAnglesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Resolve the solar geometry.
	var decl, sslon float64
	geometrySource := "request"
	if req.Time != nil {
		decl, sslon = uc.ephemeris.SolarGeometryAt(req.Time.UTC())
		geometrySource = "ephemeris"
	} else {
		decl, sslon = *req.Declination, *req.SubsolarLon
	}

	lat := asArray(req.Latitudes)
	lon := asArray(req.Longitudes)

	opts := domain.DefaultOptions()
	if req.ZeroBelowHorizon != nil {
		opts.ZeroBelowHorizon = *req.ZeroBelowHorizon
	}
	if req.PressureHPa != nil {
		atm, err := domain.NewAtmosphere(
			domain.Scalar(*req.PressureHPa), domain.Scalar(*req.TemperatureK))
		if err != nil {
			return nil, err
		}
		opts.Atmosphere = atm
		opts.Refractor = uc.refractor
	}

	angles, err := domain.ComputeSunAngles(lat, lon, domain.Scalar(decl), domain.Scalar(sslon), opts)
	if err != nil {
		return nil, err
	}

	response := &SunAnglesResponse{
		Count:       angles.Mu0.Len(),
		Declination: decl,
		SubsolarLon: sslon,
		Mu0:         nullableValues(angles.Mu0),
		Phi0:        nullableValues(angles.Phi0),
		Airmass:     nullableValues(angles.Airmass),
		Meta: map[string]string{
			"airmass_model":      "kasten-young-1989",
			"azimuth_convention": "degrees from south, counter-clockwise positive",
			"geometry_source":    geometrySource,
			"refraction":         refractionMeta(req),
		},
	}

	if req.HealpixOrder != nil || req.RasterWidth != nil {
		if err := uc.annotatePixels(req, lat, lon, response); err != nil {
			return nil, err
		}
	}

	return response, nil
}

// annotatePixels attaches per-observer pixel ids for joining results to
// gridded products.
func (uc *SunAnglesUseCase) annotatePixels(req SunAnglesRequest, lat, lon domain.Array, response *SunAnglesResponse) error {
	elat, elon, err := domain.Broadcast(lat, lon)
	if err != nil {
		return err
	}

	var indexers []pixel.Indexer
	var targets []*[]int
	if req.HealpixOrder != nil {
		indexers = append(indexers, pixel.NewHealpixIndexer(*req.HealpixOrder, healpix.RingScheme))
		targets = append(targets, &response.HealpixPixel)
	}
	if req.RasterWidth != nil {
		eq, err := pixel.NewEquirectangularIndexer(0, *req.RasterWidth, *req.RasterHeight)
		if err != nil {
			return err
		}
		indexers = append(indexers, eq)
		targets = append(targets, &response.RasterCell)
	}

	for k, idx := range indexers {
		cells := make([]int, elat.Len())
		for i := 0; i < elat.Len(); i++ {
			cell, err := idx.ToIndex(elat.At(i), elon.At(i))
			if err != nil {
				return fmt.Errorf("%s indexing failed: %w", idx.Name(), err)
			}
			cells[i] = cell
		}
		*targets[k] = cells
	}
	return nil
}

func refractionMeta(req SunAnglesRequest) string {
	if req.PressureHPa != nil {
		return "bennett"
	}
	return "none"
}

// asArray treats a single element as a scalar so it broadcasts against the
// other coordinate.
func asArray(values []float64) domain.Array {
	if len(values) == 1 {
		return domain.Scalar(values[0])
	}
	return domain.Vector(values)
}

// nullableValues maps NaN elements to nil for JSON encoding.
func nullableValues(a domain.Array) []*float64 {
	out := make([]*float64, a.Len())
	for i := 0; i < a.Len(); i++ {
		v := a.At(i)
		if math.IsNaN(v) {
			continue
		}
		value := v
		out[i] = &value
	}
	return out
}
