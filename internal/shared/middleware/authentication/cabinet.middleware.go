package authentication

import (
	"context"
	"regexp"
	"strings"

	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// HeaderCabinetCode header portant le code du cabinet
const HeaderCabinetCode = "X-Cabinet-Code"

var cabinetCodeFormat = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// CabinetData données du cabinet nécessaires au middleware
type CabinetData struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Nom        string `json:"nom"`
	EmailAdmin string `json:"email_admin"`
	Statut     string `json:"statut"`
}

// CabinetLookup retourne (nil, nil) quand le code est inconnu
type CabinetLookup interface {
	FindCabinetByCode(ctx context.Context, code string) (*CabinetData, error)
}

type CabinetMiddleware struct {
	lookup CabinetLookup
}

// NewCabinetMiddleware crée une nouvelle instance du middleware
func NewCabinetMiddleware(lookup CabinetLookup) *CabinetMiddleware {
	return &CabinetMiddleware{lookup: lookup}
}

// Handler résout le cabinet de la requête et l'injecte sous la clé "cabinet"
func (m *CabinetMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderCabinetCode)))
		if code == "" {
			code = strings.ToUpper(strings.TrimSpace(c.Query("cabinet")))
		}

		cabinet, err := m.Resolve(c.Request.Context(), code)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(tenant.CabinetKey, *cabinet)
		c.Next()
	}
}

// Resolve valide le code et charge le cabinet actif
func (m *CabinetMiddleware) Resolve(ctx context.Context, code string) (*tenant.CabinetContext, error) {
	if code == "" {
		return nil, apperr.Tenant("CABINET_CODE_REQUIRED", "Code cabinet requis").
			WithDetail("header_required", HeaderCabinetCode)
	}

	if !cabinetCodeFormat.MatchString(code) {
		return nil, apperr.Tenant("CABINET_CODE_INVALID_FORMAT", "Format code cabinet invalide").
			WithDetail("format_requis", "Alphanumérique, 3-20 caractères, majuscules")
	}

	data, err := m.lookup.FindCabinetByCode(ctx, code)
	if err != nil {
		return nil, apperr.Internal("CABINET_LOOKUP_FAILED", err)
	}
	if data == nil {
		return nil, apperr.Tenant("CABINET_NOT_FOUND", "Cabinet non trouvé").
			WithDetail("cabinet_code", code)
	}
	if data.Statut != "actif" {
		return nil, apperr.Tenant("CABINET_SUSPENDED", "Cabinet suspendu").
			WithDetail("cabinet_code", code)
	}

	return &tenant.CabinetContext{
		ID:         data.ID,
		Code:       data.Code,
		Nom:        data.Nom,
		EmailAdmin: data.EmailAdmin,
	}, nil
}
