package security

import (
	"crypto/subtle"
	"net/http"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// HeaderDeveloperToken header des outils développeur
const HeaderDeveloperToken = "X-Developer-Token"

// DeveloperMiddleware protège les routes développeur; désactivées (404) sans DEVELOPER_TOKEN
func DeveloperMiddleware(appConfig *config.Config) gin.HandlerFunc {
	expected := []byte(appConfig.Developer.Token)

	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		provided := []byte(c.GetHeader(HeaderDeveloperToken))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			response.Error(c, apperr.Unauthorized("DEVELOPER_TOKEN_INVALID", "Token développeur invalide"))
			return
		}

		c.Next()
	}
}
