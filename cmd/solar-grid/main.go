package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/solar-api/internal/adapter/ephemeris"
	"go.ngs.io/solar-api/internal/adapter/refraction"
	"go.ngs.io/solar-api/internal/domain"
)

// RegionalGrid defines the geographic bounds and resolution
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

func main() {
	// Command line flags
	outDir := flag.String("out", "./data/solar", "Output directory for NetCDF files")
	region := flag.String("region", "japan", "Region: japan, global, or custom")
	latMin := flag.Float64("lat-min", 20.0, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 50.0, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", 120.0, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 150.0, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 0.1, "Grid resolution in degrees (the global region always uses 0.5)")
	timeStr := flag.String("time", "", "Evaluation time (RFC 3339); geometry from the built-in ephemeris")
	declination := flag.Float64("declination", math.NaN(), "Solar declination in degrees (alternative to -time)")
	subsolarLon := flag.Float64("subsolar-lon", math.NaN(), "Subsolar longitude in degrees (alternative to -time)")
	pressure := flag.Float64("pressure", math.NaN(), "Surface pressure in hPa (enables refraction, requires -temperature)")
	temperature := flag.Float64("temperature", math.NaN(), "Surface temperature in K (enables refraction, requires -pressure)")
	noMask := flag.Bool("no-mask", false, "Keep raw night-side values instead of masking below the horizon")

	flag.Parse()

	// Define grid based on region
	var grid RegionalGrid
	switch *region {
	case "japan":
		grid = RegionalGrid{
			LatMin:     20.0,
			LatMax:     50.0,
			LonMin:     120.0,
			LonMax:     150.0,
			Resolution: *resolution,
		}
	case "global":
		grid = RegionalGrid{
			LatMin:     -90.0,
			LatMax:     90.0,
			LonMin:     -180.0,
			LonMax:     180.0,
			Resolution: 0.5, // Lower resolution for global
		}
	case "custom":
		grid = RegionalGrid{
			LatMin:     *latMin,
			LatMax:     *latMax,
			LonMin:     *lonMin,
			LonMax:     *lonMax,
			Resolution: *resolution,
		}
	default:
		log.Fatalf("Unknown region: %s (use japan, global, or custom)", *region)
	}

	decl, sslon, err := resolveGeometry(*timeStr, *declination, *subsolarLon)
	if err != nil {
		log.Fatalf("Failed to resolve solar geometry: %v", err)
	}

	log.Printf("Generating solar NetCDF files for region: %s", *region)
	log.Printf("Grid: %.1f°-%.1f°N, %.1f°-%.1f°E, resolution: %.2f°",
		grid.LatMin, grid.LatMax, grid.LonMin, grid.LonMax, grid.Resolution)
	log.Printf("Solar geometry: declination %.3f°, subsolar longitude %.3f°", decl, sslon)

	// Create output directory
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	angles, nLat, nLon, lat, lon, err := evaluateGrid(grid, decl, sslon, *pressure, *temperature, *noMask)
	if err != nil {
		log.Fatalf("Failed to evaluate grid: %v", err)
	}

	fields := []struct {
		name  string
		units string
		data  []float64
	}{
		{"mu0", "1", angles.Mu0.Values()},
		{"phi0", "degrees", angles.Phi0.Values()},
		{"airmass", "1", angles.Airmass.Values()},
	}

	for _, field := range fields {
		path := filepath.Join(*outDir, fmt.Sprintf("%s.nc", field.name))
		if err := writeNetCDF(path, lat, lon, field.data, nLat, nLon, field.name, field.units); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		log.Printf("✓ Generated %s.nc", field.name)
	}

	// Print summary
	log.Printf("\n=== Generation Complete ===")
	log.Printf("Files created in: %s", *outDir)
	log.Printf("Grid size: %d × %d points", nLat, nLon)
	totalMB := float64(nLat*nLon*8*len(fields)) / 1024 / 1024
	log.Printf("Total size: ~%.1f MB (%d fields)", totalMB, len(fields))
}

// resolveGeometry determines declination and subsolar longitude either from
// explicit flags or from the built-in ephemeris at the given time. Exactly
// one of the two sources must be supplied.
func resolveGeometry(timeStr string, declination, subsolarLon float64) (float64, float64, error) {
	havePair := !math.IsNaN(declination) && !math.IsNaN(subsolarLon)
	haveTime := timeStr != ""

	switch {
	case havePair && haveTime:
		return 0, 0, fmt.Errorf("supply either -time or both -declination and -subsolar-lon, not both")
	case havePair:
		return declination, subsolarLon, nil
	case haveTime:
		t, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid -time: %w", err)
		}
		decl, sslon := ephemeris.NewApprox().SolarGeometryAt(t)
		return decl, sslon, nil
	default:
		return 0, 0, fmt.Errorf("supply -time, or both -declination and -subsolar-lon")
	}
}

// evaluateGrid computes sun angles at every node of the grid, row-major with
// latitude as the slow dimension to match the NetCDF layout.
func evaluateGrid(grid RegionalGrid, decl, sslon, pressure, temperature float64, noMask bool) (domain.SunAngles, int, int, []float64, []float64, error) {
	nLat := int((grid.LatMax-grid.LatMin)/grid.Resolution) + 1
	nLon := int((grid.LonMax-grid.LonMin)/grid.Resolution) + 1

	lat := make([]float64, nLat)
	for i := 0; i < nLat; i++ {
		lat[i] = grid.LatMin + float64(i)*grid.Resolution
	}

	lon := make([]float64, nLon)
	for j := 0; j < nLon; j++ {
		lon[j] = grid.LonMin + float64(j)*grid.Resolution
	}

	flatLat := make([]float64, nLat*nLon)
	flatLon := make([]float64, nLat*nLon)
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			idx := i*nLon + j
			flatLat[idx] = lat[i]
			flatLon[idx] = lon[j]
		}
	}

	opts := domain.DefaultOptions()
	opts.ZeroBelowHorizon = !noMask

	havePressure := !math.IsNaN(pressure)
	haveTemperature := !math.IsNaN(temperature)
	if havePressure != haveTemperature {
		return domain.SunAngles{}, 0, 0, nil, nil, fmt.Errorf("-pressure and -temperature must be given together")
	}
	if havePressure {
		atm, err := domain.NewAtmosphere(domain.Scalar(pressure), domain.Scalar(temperature))
		if err != nil {
			return domain.SunAngles{}, 0, 0, nil, nil, err
		}
		opts.Atmosphere = atm
		opts.Refractor = refraction.New()
	}

	angles, err := domain.ComputeSunAngles(
		domain.Vector(flatLat),
		domain.Vector(flatLon),
		domain.Scalar(decl),
		domain.Scalar(sslon),
		opts,
	)
	if err != nil {
		return domain.SunAngles{}, 0, 0, nil, nil, err
	}

	return angles, nLat, nLon, lat, lon, nil
}

// writeNetCDF writes a NetCDF file with the given data
func writeNetCDF(path string, lat, lon, data []float64, nLat, nLon int, varName, units string) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	latDim, err := ds.AddDim("lat", uint64(nLat))
	if err != nil {
		return err
	}

	lonDim, err := ds.AddDim("lon", uint64(nLon))
	if err != nil {
		return err
	}

	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	latVar.WriteFloat64s(lat)

	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	lonVar.WriteFloat64s(lon)

	dataVar, err := ds.AddVar(varName, netcdf.DOUBLE, []netcdf.Dim{latDim, lonDim})
	if err != nil {
		return err
	}
	dataVar.WriteFloat64s(data)

	return nil
}
