package core

import (
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID header de corrélation
const HeaderRequestID = "X-Request-Id"

// RecoveryMiddleware capture les panics et retourne une réponse d'erreur propre
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)

				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("stack", string(stack[:n])),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("client_ip", c.ClientIP()),
					zap.String("request_id", c.GetString("request_id")),
				)

				c.AbortWithStatusJSON(500, gin.H{
					"error": "Une erreur interne s'est produite",
					"details": map[string]interface{}{
						"code":       "INTERNAL_ERROR",
						"request_id": c.GetString("request_id"),
					},
				})
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware propage ou génère X-Request-Id
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}
