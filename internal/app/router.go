package app

import (
	"fmt"
	"net/http"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/shared/middleware/core"
	"cabinet-suite-core/internal/shared/middleware/logging"
	"cabinet-suite-core/internal/shared/middleware/security"
	"cabinet-suite-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter crée le moteur gin; les modules y déclarent leurs routes via fx.Invoke
func NewRouter(cfg *config.Config, logger *zap.Logger, probes Probes) (*gin.Engine, error) {
	configureGinMode(cfg.Environment)

	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("règles de validation: %w", err)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Ordre: identifiant de requête, recovery, logs, CORS, compression
	r.Use(core.RequestIDMiddleware())
	r.Use(core.RecoveryMiddleware(logger))
	r.Use(logging.NewGinLoggerWithDefaults(logger))
	r.Use(security.CORSMiddleware(cfg))
	r.Use(security.CompressionMiddleware())

	r.GET("/health", healthHandler)
	r.GET("/ready", readyHandler(probes))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Route introuvable",
			"details": gin.H{"code": "ROUTE_NOT_FOUND", "path": c.Request.URL.Path},
		})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Méthode non autorisée",
			"details": gin.H{"code": "METHOD_NOT_ALLOWED"},
		})
	})

	return r, nil
}

// configureGinMode configure le mode Gin selon l'environnement
func configureGinMode(environment string) {
	switch environment {
	case "production", "docker":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
