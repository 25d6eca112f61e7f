package administrateur

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/infrastructure/storage"
	activationServices "cabinet-suite-core/internal/modules/activation/services"
	"cabinet-suite-core/internal/modules/administrateur/controllers"
	"cabinet-suite-core/internal/modules/administrateur/queries"
	"cabinet-suite-core/internal/modules/administrateur/services"
	authServices "cabinet-suite-core/internal/modules/auth/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/authentication"
)

// Module inscription des cabinets et gestion des comptes
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewCabinetRepository, fx.As(new(services.CabinetStore)))),
	fx.Provide(fx.Annotate(queries.NewUtilisateurRepository, fx.As(new(services.UtilisateurStore)))),

	fx.Provide(func(s *activationServices.LicenceSigner) services.TrialIssuer { return s }),
	fx.Provide(func(l *authentication.CachedCabinetLookup) services.CabinetCacheInvalidator { return l }),
	fx.Provide(func(w *storage.Workspace) services.CabinetDirectory { return w }),
	fx.Provide(func(s *authServices.SessionService) services.SessionRevoker { return s }),

	fx.Provide(services.NewCabinetService),
	fx.Provide(services.NewUtilisateurService),

	fx.Provide(controllers.NewAdministrateurController),
	fx.Invoke(RegisterAdministrateurRoutes),
)

// RegisterAdministrateurRoutes inscription publique, administration réservée au rôle admin
func RegisterAdministrateurRoutes(
	r *gin.Engine,
	controller *controllers.AdministrateurController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	r.POST("/api/v1/cabinets", controller.RegisterCabinet)

	adminAPI := r.Group("/api/v1/admin")
	adminAPI.Use(authStack.Protected(authMiddleware.RoleAdmin)...)
	{
		adminAPI.GET("/cabinet", controller.GetCabinet)
		adminAPI.PUT("/cabinet", controller.UpdateCabinet)

		adminAPI.GET("/utilisateurs", controller.ListUtilisateurs)
		adminAPI.POST("/utilisateurs", controller.CreateUtilisateur)
		adminAPI.PUT("/utilisateurs/:id", controller.UpdateUtilisateur)
		adminAPI.POST("/utilisateurs/:id/reset-password", controller.ResetPassword)

		adminAPI.GET("/journal", controller.Journal)
	}
}
