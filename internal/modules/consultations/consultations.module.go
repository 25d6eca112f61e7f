package consultations

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/infrastructure/storage"
	adminServices "cabinet-suite-core/internal/modules/administrateur/services"
	"cabinet-suite-core/internal/modules/consultations/controllers"
	"cabinet-suite-core/internal/modules/consultations/queries"
	"cabinet-suite-core/internal/modules/consultations/services"
	rdvServices "cabinet-suite-core/internal/modules/rdv/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module consultations, ordonnances et certificats
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewConsultationRepository, fx.As(new(services.ConsultationStore)))),
	fx.Provide(func(s *adminServices.CabinetService) services.CabinetHeader { return s }),
	fx.Provide(func(w *storage.Workspace) services.DocumentArchive { return w }),
	fx.Provide(func(b *rdvServices.Broker) services.AgendaNotifier { return b }),
	fx.Provide(services.NewConsultationService),

	fx.Provide(controllers.NewConsultationController),
	fx.Invoke(RegisterConsultationRoutes),
)

// RegisterConsultationRoutes dossier médical réservé aux praticiens
func RegisterConsultationRoutes(
	r *gin.Engine,
	controller *controllers.ConsultationController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/consultations")
	api.Use(authStack.Licensed(authMiddleware.RoleAdmin, authMiddleware.RoleMedecin)...)
	{
		api.POST("", controller.Create)
		api.GET("", controller.List)
		api.GET("/:id", controller.Get)
		api.PUT("/:id", controller.Update)
		api.GET("/:id/ordonnance.pdf", controller.Ordonnance)
		api.POST("/:id/certificat", controller.Certificat)
	}
}
