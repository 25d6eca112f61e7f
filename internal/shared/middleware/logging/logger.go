package logging

import (
	"time"

	"cabinet-suite-core/internal/shared/middleware/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinLoggerConfig configuration pour le middleware logger Gin
type GinLoggerConfig struct {
	SkipPaths []string
}

// DefaultSkipPaths chemins à ignorer par le logger
func DefaultSkipPaths() []string {
	return []string{
		"/health",
		"/ready",
		"/favicon.ico",
	}
}

// NewGinLogger journalise chaque requête via zap
func NewGinLogger(logger *zap.Logger, config *GinLoggerConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		}
		if cabinet, ok := tenant.FromContext(c); ok {
			fields = append(fields, zap.String("cabinet", cabinet.Code))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.Log(levelFor(status), "[GIN]", fields...)
	}
}

// NewGinLoggerWithDefaults retourne le middleware logger avec configuration par défaut
func NewGinLoggerWithDefaults(logger *zap.Logger) gin.HandlerFunc {
	return NewGinLogger(logger, &GinLoggerConfig{SkipPaths: DefaultSkipPaths()})
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
