package auth

import (
	"context"
	"strings"
	"time"

	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// SessionKey clé du contexte Gin
const SessionKey = "session"

// Rôles applicatifs
const (
	RoleAdmin      = "admin"
	RoleMedecin    = "medecin"
	RoleAssistante = "assistante"
)

// SessionContext contient les informations de session injectées dans le contexte Gin
type SessionContext struct {
	Token       string    `json:"-"`
	UserID      string    `json:"user_id"`
	CabinetID   string    `json:"cabinet_id"`
	CabinetCode string    `json:"cabinet_code"`
	Identifiant string    `json:"identifiant"`
	Nom         string    `json:"nom"`
	Prenoms     string    `json:"prenoms"`
	Role        string    `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NomComplet retourne "Prénoms Nom"
func (s SessionContext) NomComplet() string {
	return strings.TrimSpace(s.Prenoms + " " + s.Nom)
}

// SessionValidator valide un token pour le cabinet de la requête
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string, cabinet tenant.CabinetContext) (*SessionContext, error)
}

type SessionMiddleware struct {
	validator SessionValidator
}

// NewSessionMiddleware crée une nouvelle instance du middleware de session
func NewSessionMiddleware(validator SessionValidator) *SessionMiddleware {
	return &SessionMiddleware{validator: validator}
}

// Handler exige un token Bearer valide pour le cabinet courant
func (m *SessionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error(c, apperr.Session("TOKEN_REQUIRED", "Token d'authentification requis").
				WithDetail("header_format", "Authorization: Bearer {token}"))
			return
		}

		cabinet, ok := tenant.FromContext(c)
		if !ok {
			response.Error(c, apperr.Internal("CABINET_CONTEXT_MISSING", nil))
			return
		}

		session, err := m.validator.ValidateSession(c.Request.Context(), token, cabinet)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(SessionKey, *session)
		c.Set("user_id", session.UserID)
		c.Next()
	}
}

// ExtractBearerToken extrait le token d'un header "Bearer xxx"
func ExtractBearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || strings.ToLower(header[:len(prefix)]) != prefix {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// SessionFromContext retourne la session de la requête
func SessionFromContext(c *gin.Context) (SessionContext, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return SessionContext{}, false
	}
	session, ok := value.(SessionContext)
	return session, ok
}

// RequireRoles refuse (403) les sessions dont le rôle n'est pas listé
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			response.Error(c, apperr.Session("SESSION_REQUIRED", "Session requise"))
			return
		}

		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, apperr.Forbidden("ROLE_NOT_ALLOWED", "Accès refusé pour ce rôle").
			WithDetail("role", session.Role).
			WithDetail("roles_autorises", roles))
	}
}
