package developpeur

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/app/config"
	activationQueries "cabinet-suite-core/internal/modules/activation/queries"
	activationServices "cabinet-suite-core/internal/modules/activation/services"
	"cabinet-suite-core/internal/modules/developpeur/controllers"
	"cabinet-suite-core/internal/modules/developpeur/queries"
	"cabinet-suite-core/internal/modules/developpeur/services"
	"cabinet-suite-core/internal/shared/middleware/security"
)

// Module émission et suivi des clés d'activation
var Module = fx.Options(
	fx.Provide(func(r *activationQueries.CleRepository) services.KeyStore { return r }),
	fx.Provide(fx.Annotate(queries.NewDeveloppeurRepository, fx.As(new(services.CabinetLicenceStore)))),
	fx.Provide(func(s *activationServices.LicenceSigner) services.LicenceEvaluator { return s }),
	fx.Provide(services.NewCleService),

	fx.Provide(controllers.NewDeveloppeurController),
	fx.Invoke(RegisterDeveloppeurRoutes),
)

// RegisterDeveloppeurRoutes routes protégées par X-Developer-Token
func RegisterDeveloppeurRoutes(
	r *gin.Engine,
	controller *controllers.DeveloppeurController,
	appConfig *config.Config,
) {
	devAPI := r.Group("/api/v1/developpeur")
	devAPI.Use(security.DeveloperMiddleware(appConfig))
	{
		devAPI.POST("/cles", controller.Emettre)
		devAPI.GET("/cles", controller.List)
		devAPI.DELETE("/cles/:cle", controller.Revoquer)
		devAPI.GET("/cabinets", controller.Cabinets)
	}
}
