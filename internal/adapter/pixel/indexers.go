// Package pixel maps observer coordinates onto flat raster indices, so
// point results can be joined to gridded products: a cylindrical
// equirectangular raster (the layout of most bathymetry/reanalysis grids)
// or a HEALPix equal-area pixelization.
package pixel

import (
	"fmt"
	"math"

	"github.com/owlpinetech/flatsphere"
	"github.com/owlpinetech/healpix"
)

// Indexer assigns a flat pixel index to a latitude/longitude in degrees.
type Indexer interface {
	ToIndex(latDeg, lonDeg float64) (int, error)
	Size() int
	Name() string
}

// EquirectangularIndexer places coordinates into a row-major
// width-by-height raster under a cylindrical equirectangular projection
// focused at the given standard parallel. Row 0 is the southernmost row.
type EquirectangularIndexer struct {
	Width  int
	Height int
	proj   flatsphere.Equirectangular
}

// NewEquirectangularIndexer builds a raster indexer. parallelDeg is the
// latitude of true scale (0 for plate carrée).
func NewEquirectangularIndexer(parallelDeg float64, width, height int) (*EquirectangularIndexer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("raster dimensions must be positive, got %dx%d", width, height)
	}
	return &EquirectangularIndexer{
		Width:  width,
		Height: height,
		proj:   flatsphere.NewEquirectangular(deg2rad(parallelDeg)),
	}, nil
}

func (e *EquirectangularIndexer) Name() string {
	return "equirectangular"
}

func (e *EquirectangularIndexer) Size() int {
	return e.Width * e.Height
}

func (e *EquirectangularIndexer) ToIndex(latDeg, lonDeg float64) (int, error) {
	if math.IsNaN(latDeg) || latDeg < -90 || latDeg > 90 {
		return -1, fmt.Errorf("latitude %v out of raster bounds", latDeg)
	}
	if math.IsNaN(lonDeg) || lonDeg < -180 || lonDeg > 180 {
		return -1, fmt.Errorf("longitude %v out of raster bounds", lonDeg)
	}

	x, y := e.proj.Project(deg2rad(latDeg), deg2rad(lonDeg))
	bounds := e.proj.PlanarBounds()

	xPix := int(((x - bounds.XMin) / bounds.Width()) * float64(e.Width-1))
	yPix := int(((y - bounds.YMin) / bounds.Height()) * float64(e.Height-1))
	if xPix < 0 {
		xPix = 0
	} else if xPix >= e.Width {
		xPix = e.Width - 1
	}
	if yPix < 0 {
		yPix = 0
	} else if yPix >= e.Height {
		yPix = e.Height - 1
	}
	return yPix*e.Width + xPix, nil
}

// HealpixIndexer assigns equal-area HEALPix pixel ids. Every pixel of a
// given order covers the same solid angle, which makes the ids suitable
// for unbiased spatial aggregation of results.
type HealpixIndexer struct {
	Order  healpix.HealpixOrder
	Scheme healpix.HealpixScheme
}

// NewHealpixIndexer builds an indexer for the given order (resolution
// doubles per order; order k has 12*4^k pixels).
func NewHealpixIndexer(order int, scheme healpix.HealpixScheme) *HealpixIndexer {
	return &HealpixIndexer{
		Order:  healpix.HealpixOrder(order),
		Scheme: scheme,
	}
}

func (h *HealpixIndexer) Name() string {
	return "healpix"
}

func (h *HealpixIndexer) Size() int {
	return h.Order.Pixels()
}

func (h *HealpixIndexer) ToIndex(latDeg, lonDeg float64) (int, error) {
	if math.IsNaN(latDeg) || latDeg < -90 || latDeg > 90 {
		return -1, fmt.Errorf("latitude %v out of pixelization bounds", latDeg)
	}
	lon := deg2rad(lonDeg)
	return healpix.NewLatLonCoordinate(deg2rad(latDeg), lon).PixelId(h.Order, h.Scheme), nil
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
