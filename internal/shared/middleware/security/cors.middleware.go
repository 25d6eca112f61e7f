package security

import (
	"time"

	"cabinet-suite-core/internal/app/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware configure les règles CORS multi-cabinet
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	corsConfig := appConfig.GetCORS()

	allowed := make(map[string]struct{}, len(corsConfig.AllowedOrigins))
	allowAll := false
	for _, origin := range corsConfig.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowAll {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},

		AllowMethods: corsConfig.AllowedMethods,

		// Headers autorisés (inclut les headers multi-cabinet)
		AllowHeaders: append(append([]string{}, corsConfig.AllowedHeaders...),
			"X-Cabinet-Code",
			"X-Developer-Token",
			"X-Request-Id"),

		ExposeHeaders: []string{
			"Content-Length",
			"Content-Disposition",
			"X-Request-Id",
		},

		AllowCredentials: corsConfig.AllowCredentials && !allowAll,

		MaxAge: time.Duration(corsConfig.MaxAge) * time.Second,
	})
}
