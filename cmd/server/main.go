// Package main provides the solar geometry API HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"go.ngs.io/solar-api/internal/adapter/ephemeris"
	"go.ngs.io/solar-api/internal/adapter/refraction"
	"go.ngs.io/solar-api/internal/config"
	httpHandler "go.ngs.io/solar-api/internal/http"
	"go.ngs.io/solar-api/internal/logger"
	"go.ngs.io/solar-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to yaml config file (default: ./config.yaml if present)")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("solar-api version %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting solar API server",
		zap.String("version", version),
		zap.String("port", cfg.Server.Port))

	// Wire the use case: built-in ephemeris for time-based requests,
	// Bennett corrector for requests carrying an atmosphere.
	sunAnglesUC := usecase.NewSunAnglesUseCase(ephemeris.NewApprox(), refraction.New())

	router := httpHandler.SetupRouter(sunAnglesUC, cfg.CORS.AllowedOrigins, log)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server listening",
		zap.String("addr", addr),
		zap.Strings("endpoints", []string{
			"GET /health",
			"GET /v1/sun/angles",
			"POST /v1/sun/angles",
		}))

	if err := router.Run(addr); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Solar API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  solar-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -config PATH   Path to yaml config file")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               Log level: debug, info, warn, error (default: info)")
	fmt.Println("  LOG_FILE                Optional rotated log file path")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health            Health check")
	fmt.Println("  GET  /v1/sun/angles     Sun angles for one observer (query parameters)")
	fmt.Println("  POST /v1/sun/angles     Sun angles for observer arrays (JSON body)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Zenith cosine, azimuth and airmass for Tokyo right now")
	fmt.Println("  curl 'localhost:8080/v1/sun/angles?lat=35.68&lon=139.65&time=2025-06-01T03:00:00Z'")
	fmt.Println()
	fmt.Println("  # Explicit solar geometry with refraction correction")
	fmt.Println("  curl 'localhost:8080/v1/sun/angles?lat=52.5&lon=13.4&declination=23.4&subsolar_lon=0&pressure_hpa=1013.25&temperature_k=288.15'")
	fmt.Println()
}
