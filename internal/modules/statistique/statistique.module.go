package statistique

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/statistique/controllers"
	"cabinet-suite-core/internal/modules/statistique/queries"
	"cabinet-suite-core/internal/modules/statistique/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module statistiques d'activité
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewStatistiqueRepository, fx.As(new(services.StatistiqueStore)))),
	fx.Provide(func(w *storage.Workspace) services.ExportArchive { return w }),
	fx.Provide(services.NewStatistiqueService),

	fx.Provide(controllers.NewStatistiqueController),
	fx.Invoke(RegisterStatistiqueRoutes),
)

func RegisterStatistiqueRoutes(
	r *gin.Engine,
	controller *controllers.StatistiqueController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/statistiques")
	api.Use(authStack.Licensed(authMiddleware.RoleAdmin, authMiddleware.RoleMedecin)...)
	{
		api.GET("", controller.Rapport)
		api.GET("/export", controller.Export)
	}
}
