package activation

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/scheduler"
	"cabinet-suite-core/internal/modules/activation/controllers"
	"cabinet-suite-core/internal/modules/activation/queries"
	"cabinet-suite-core/internal/modules/activation/services"
	authServices "cabinet-suite-core/internal/modules/auth/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/authentication"
)

// Module licences, clés d'activation et contrôle d'accès par licence
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewLicenceRepository, fx.As(new(services.LicenceStore)))),
	fx.Provide(queries.NewCleRepository),
	fx.Provide(fx.Annotate(services.NewRedisLicenceCache, fx.As(new(services.LicenceCache)))),
	fx.Provide(services.NewLicenceSigner),
	fx.Provide(services.NewActivationService),

	// Contrats consommés par le middleware licence et le module auth
	fx.Provide(func(s *services.ActivationService) authentication.LicenceChecker { return s }),
	fx.Provide(func(s *services.ActivationService) authServices.LicenceReader { return s }),

	fx.Provide(scheduler.AsJob(NewLicenceExpiryJob)),

	fx.Provide(controllers.NewActivationController),
	fx.Invoke(RegisterActivationRoutes),
)

// NewLicenceExpiryJob passe en expirée les licences échues
func NewLicenceExpiryJob(s *services.ActivationService, cfg *config.Config) scheduler.Job {
	return scheduler.Job{
		Name:     "licences_expirees",
		Interval: cfg.Scheduler.LicenceInterval,
		Run: func(ctx context.Context) error {
			_, err := s.ExpireOverdue(ctx)
			return err
		},
	}
}

// RegisterActivationRoutes statut consultable sans licence valide
func RegisterActivationRoutes(
	r *gin.Engine,
	controller *controllers.ActivationController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/activation")
	api.GET("/statut", append(authStack.Tenant(), controller.Statut)...)
	api.POST("/activer", append(authStack.Protected(authMiddleware.RoleAdmin), controller.Activer)...)
}
