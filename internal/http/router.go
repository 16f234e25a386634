package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go.ngs.io/solar-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(sunAnglesUC *usecase.SunAnglesUseCase, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if log != nil {
		router.Use(requestLogger(log))
	}

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(sunAnglesUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	sun := v1.Group("/sun")
	sun.GET("/angles", handler.GetSunAngles)
	sun.POST("/angles", handler.PostSunAngles)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
