package facturation

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/infrastructure/storage"
	adminServices "cabinet-suite-core/internal/modules/administrateur/services"
	"cabinet-suite-core/internal/modules/facturation/controllers"
	"cabinet-suite-core/internal/modules/facturation/queries"
	"cabinet-suite-core/internal/modules/facturation/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module factures et encaissements
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewFactureRepository, fx.As(fx.Self()), fx.As(new(services.FactureStore)))),
	fx.Provide(func(s *adminServices.CabinetService) services.CabinetHeader { return s }),
	fx.Provide(func(w *storage.Workspace) services.FileArchive { return w }),
	fx.Provide(services.NewFactureService),

	fx.Provide(controllers.NewFactureController),
	fx.Invoke(RegisterFactureRoutes),
)

// RegisterFactureRoutes /export déclaré avant /:id
func RegisterFactureRoutes(
	r *gin.Engine,
	controller *controllers.FactureController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/factures")
	api.Use(authStack.Licensed()...)
	{
		api.POST("", controller.Create)
		api.GET("", controller.List)
		api.GET("/export", authMiddleware.RequireRoles(authMiddleware.RoleAdmin, authMiddleware.RoleMedecin), controller.Export)

		api.GET("/:id", controller.Get)
		api.GET("/:id/pdf", controller.PDF)
		api.POST("/:id/paiement", controller.Paiement)
		api.POST("/:id/annulation", authMiddleware.RequireRoles(authMiddleware.RoleAdmin), controller.Annulation)
	}
}
