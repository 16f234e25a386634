package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/solar-api/internal/domain"
	"go.ngs.io/solar-api/internal/usecase"
)

// Handler handles HTTP requests for sun-angle computations.
type Handler struct {
	sunAnglesUC *usecase.SunAnglesUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(sunAnglesUC *usecase.SunAnglesUseCase) *Handler {
	return &Handler{
		sunAnglesUC: sunAnglesUC,
	}
}

// GetSunAngles handles GET /v1/sun/angles - the scalar query form.
func (h *Handler) GetSunAngles(c *gin.Context) {
	req := usecase.SunAnglesRequest{}

	lat, ok := requiredFloat(c, "lat")
	if !ok {
		return
	}
	lon, ok := requiredFloat(c, "lon")
	if !ok {
		return
	}
	req.Latitudes = []float64{lat}
	req.Longitudes = []float64{lon}

	var failed bool
	req.Declination = optionalFloat(c, "declination", &failed)
	req.SubsolarLon = optionalFloat(c, "subsolar_lon", &failed)
	req.PressureHPa = optionalFloat(c, "pressure_hpa", &failed)
	req.TemperatureK = optionalFloat(c, "temperature_k", &failed)
	if failed {
		return
	}

	if timeStr := c.Query("time"); timeStr != "" {
		ts, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid time (expected RFC3339): %v", err)})
			return
		}
		utc := ts.UTC()
		req.Time = &utc
	}

	if maskStr := c.Query("zero_below_horizon"); maskStr != "" {
		mask, err := strconv.ParseBool(maskStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid zero_below_horizon: %v", err)})
			return
		}
		req.ZeroBelowHorizon = &mask
	}

	req.HealpixOrder = optionalInt(c, "healpix_order", &failed)
	req.RasterWidth = optionalInt(c, "raster_width", &failed)
	req.RasterHeight = optionalInt(c, "raster_height", &failed)
	if failed {
		return
	}

	h.execute(c, req)
}

// sunAnglesBody is the JSON body of POST /v1/sun/angles - the vector form.
type sunAnglesBody struct {
	Latitudes        []float64  `json:"lat"`
	Longitudes       []float64  `json:"lon"`
	Declination      *float64   `json:"declination,omitempty"`
	SubsolarLon      *float64   `json:"subsolar_lon,omitempty"`
	Time             *time.Time `json:"time,omitempty"`
	PressureHPa      *float64   `json:"pressure_hpa,omitempty"`
	TemperatureK     *float64   `json:"temperature_k,omitempty"`
	ZeroBelowHorizon *bool      `json:"zero_below_horizon,omitempty"`
	HealpixOrder     *int       `json:"healpix_order,omitempty"`
	RasterWidth      *int       `json:"raster_width,omitempty"`
	RasterHeight     *int       `json:"raster_height,omitempty"`
}

// PostSunAngles handles POST /v1/sun/angles.
func (h *Handler) PostSunAngles(c *gin.Context) {
	var body sunAnglesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	req := usecase.SunAnglesRequest{
		Latitudes:        body.Latitudes,
		Longitudes:       body.Longitudes,
		Declination:      body.Declination,
		SubsolarLon:      body.SubsolarLon,
		PressureHPa:      body.PressureHPa,
		TemperatureK:     body.TemperatureK,
		ZeroBelowHorizon: body.ZeroBelowHorizon,
		HealpixOrder:     body.HealpixOrder,
		RasterWidth:      body.RasterWidth,
		RasterHeight:     body.RasterHeight,
	}
	if body.Time != nil {
		utc := body.Time.UTC()
		req.Time = &utc
	}

	h.execute(c, req)
}

// execute runs the use case and maps errors to HTTP status codes.
func (h *Handler) execute(c *gin.Context, req usecase.SunAnglesRequest) {
	response, err := h.sunAnglesUC.Execute(req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "param": verr.Param})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// requiredFloat parses a mandatory float query parameter, writing the error
// response itself when missing or malformed.
func requiredFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s parameter is required", name)})
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", name, err)})
		return 0, false
	}
	return v, true
}

// optionalFloat parses an optional float query parameter; on a parse error
// it writes the response and sets *failed.
func optionalFloat(c *gin.Context, name string, failed *bool) *float64 {
	raw := c.Query(name)
	if raw == "" || *failed {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", name, err)})
		*failed = true
		return nil
	}
	return &v
}

// optionalInt parses an optional integer query parameter.
func optionalInt(c *gin.Context, name string, failed *bool) *int {
	raw := c.Query(name)
	if raw == "" || *failed {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", name, err)})
		*failed = true
		return nil
	}
	return &v
}
