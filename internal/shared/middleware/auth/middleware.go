package auth

import (
	"cabinet-suite-core/internal/shared/middleware/authentication"

	"github.com/gin-gonic/gin"
)

// AuthMiddlewareStack assemble les middlewares cabinet, session, licence et rôles
type AuthMiddlewareStack struct {
	Cabinet *authentication.CabinetMiddleware
	Session *SessionMiddleware
	Licence *authentication.LicenceMiddleware
}

// NewAuthMiddlewareStack crée une nouvelle pile de middlewares
func NewAuthMiddlewareStack(
	cabinet *authentication.CabinetMiddleware,
	session *SessionMiddleware,
	licence *authentication.LicenceMiddleware,
) *AuthMiddlewareStack {
	return &AuthMiddlewareStack{
		Cabinet: cabinet,
		Session: session,
		Licence: licence,
	}
}

// Tenant résout uniquement le cabinet
func (s *AuthMiddlewareStack) Tenant() []gin.HandlerFunc {
	return []gin.HandlerFunc{s.Cabinet.Handler()}
}

// Protected cabinet + session
func (s *AuthMiddlewareStack) Protected(roles ...string) []gin.HandlerFunc {
	handlers := []gin.HandlerFunc{s.Cabinet.Handler(), s.Session.Handler()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	return handlers
}

// Licensed cabinet + session + licence valide, puis rôles éventuels
func (s *AuthMiddlewareStack) Licensed(roles ...string) []gin.HandlerFunc {
	handlers := []gin.HandlerFunc{s.Cabinet.Handler(), s.Session.Handler(), s.Licence.Handler()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	return handlers
}
