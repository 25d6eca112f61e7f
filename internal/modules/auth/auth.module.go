package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/modules/auth/controllers"
	"cabinet-suite-core/internal/modules/auth/queries"
	"cabinet-suite-core/internal/modules/auth/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module regroupe tous les providers du domaine Auth
var Module = fx.Options(
	// Stockage
	fx.Provide(fx.Annotate(queries.NewUserRepository, fx.As(new(services.UserStore)))),
	fx.Provide(fx.Annotate(services.NewSessionService, fx.As(fx.Self()), fx.As(new(services.SessionStore)))),

	// Services
	fx.Provide(services.NewPermissionService),
	fx.Provide(services.NewAuthService),
	fx.Provide(func(s *services.AuthService) authMiddleware.SessionValidator { return s }),

	// Controllers
	fx.Provide(controllers.NewAuthController),

	// Configuration des routes
	fx.Invoke(RegisterAuthRoutes),
)

// RegisterAuthRoutes configure les routes Gin pour l'authentification
func RegisterAuthRoutes(
	r *gin.Engine,
	authController *controllers.AuthController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	// Login / logout: cabinet uniquement
	authAPI := r.Group("/api/v1/auth")
	authAPI.Use(authStack.Tenant()...)
	{
		authAPI.POST("/login", authController.Login)
		authAPI.POST("/logout", authController.Logout)
	}

	// Session requise, licence non exigée
	protectedAuthAPI := r.Group("/api/v1/auth")
	protectedAuthAPI.Use(authStack.Protected()...)
	{
		protectedAuthAPI.GET("/me", authController.Me)
		protectedAuthAPI.POST("/password", authController.ChangePassword)
	}
}
