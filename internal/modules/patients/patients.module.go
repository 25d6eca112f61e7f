package patients

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/patients/controllers"
	"cabinet-suite-core/internal/modules/patients/queries"
	"cabinet-suite-core/internal/modules/patients/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module dossiers patients
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewPatientRepository, fx.As(new(services.PatientStore)))),
	fx.Provide(fx.Annotate(services.NewRedisPatientCache, fx.As(new(services.PatientCache)))),
	fx.Provide(func(w *storage.Workspace) services.ExportArchive { return w }),
	fx.Provide(services.NewPatientService),

	fx.Provide(controllers.NewPatientController),
	fx.Invoke(RegisterPatientRoutes),
)

// RegisterPatientRoutes routes sous licence; export et import déclarés avant /:id
func RegisterPatientRoutes(
	r *gin.Engine,
	controller *controllers.PatientController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/patients")
	api.Use(authStack.Licensed()...)
	{
		api.POST("", controller.Create)
		api.GET("", controller.Search)
		api.GET("/export", authMiddleware.RequireRoles(authMiddleware.RoleAdmin, authMiddleware.RoleMedecin), controller.Export)
		api.POST("/import", authMiddleware.RequireRoles(authMiddleware.RoleAdmin), controller.Import)

		api.GET("/:id", controller.Get)
		api.GET("/:id/historique", controller.Historique)
		api.PUT("/:id", authMiddleware.RequireRoles(authMiddleware.RoleAdmin, authMiddleware.RoleMedecin), controller.Update)
		api.DELETE("/:id", authMiddleware.RequireRoles(authMiddleware.RoleAdmin, authMiddleware.RoleMedecin), controller.Delete)
	}
}
