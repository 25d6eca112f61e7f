package rdv

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/scheduler"
	"cabinet-suite-core/internal/modules/rdv/controllers"
	"cabinet-suite-core/internal/modules/rdv/queries"
	"cabinet-suite-core/internal/modules/rdv/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module agenda des rendez-vous
var Module = fx.Options(
	fx.Provide(queries.NewRdvRepository),
	fx.Provide(func(r *queries.RdvRepository) services.RdvStore { return r }),
	fx.Provide(services.NewBroker),
	fx.Provide(services.NewRdvService),

	fx.Provide(scheduler.AsJob(NewNoShowJob)),

	fx.Provide(controllers.NewRdvController),
	fx.Invoke(RegisterRdvRoutes),
)

// NewNoShowJob passe en absent les rendez-vous oubliés des jours précédents
func NewNoShowJob(s *services.RdvService, cfg *config.Config) scheduler.Job {
	return scheduler.Job{
		Name:     "rdv_absents",
		Interval: cfg.Scheduler.NoShowInterval,
		Run: func(ctx context.Context) error {
			_, err := s.MarkNoShows(ctx)
			return err
		},
	}
}

// RegisterRdvRoutes routes sous licence; /creneaux et /flux avant /:id
func RegisterRdvRoutes(
	r *gin.Engine,
	controller *controllers.RdvController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/rdv")
	api.Use(authStack.Licensed()...)
	{
		api.POST("", controller.Create)
		api.GET("", controller.Agenda)
		api.GET("/creneaux", controller.Creneaux)
		api.GET("/flux", controller.Flux)

		api.PUT("/:id", controller.Update)
		api.PATCH("/:id/statut", controller.ChangeStatut)
		api.DELETE("/:id", controller.Delete)
	}
}
