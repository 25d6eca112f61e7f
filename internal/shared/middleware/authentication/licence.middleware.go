package authentication

import (
	"context"

	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// LicenceChecker retourne une *apperr.Error de type licence quand le cabinet n'est pas couvert
type LicenceChecker interface {
	CheckLicence(ctx context.Context, cabinet tenant.CabinetContext) (*tenant.LicenceContext, error)
}

type LicenceMiddleware struct {
	checker LicenceChecker
}

// NewLicenceMiddleware crée une nouvelle instance du middleware
func NewLicenceMiddleware(checker LicenceChecker) *LicenceMiddleware {
	return &LicenceMiddleware{checker: checker}
}

// Handler bloque les requêtes (465) des cabinets sans licence valide
func (m *LicenceMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cabinet, ok := tenant.FromContext(c)
		if !ok {
			response.Error(c, apperr.Licence("CABINET_CONTEXT_MISSING", "Contexte cabinet manquant"))
			return
		}

		licence, err := m.checker.CheckLicence(c.Request.Context(), cabinet)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(tenant.LicenceKey, *licence)
		c.Next()
	}
}
