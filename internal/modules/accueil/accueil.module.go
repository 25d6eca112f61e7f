package accueil

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/modules/accueil/controllers"
	"cabinet-suite-core/internal/modules/accueil/services"
	activationServices "cabinet-suite-core/internal/modules/activation/services"
	factureQueries "cabinet-suite-core/internal/modules/facturation/queries"
	rdvQueries "cabinet-suite-core/internal/modules/rdv/queries"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module tableau de bord de l'accueil
var Module = fx.Options(
	fx.Provide(func(r *rdvQueries.RdvRepository) services.AgendaSource { return r }),
	fx.Provide(func(r *factureQueries.FactureRepository) services.FactureSource { return r }),
	fx.Provide(func(s *activationServices.ActivationService) services.LicenceSource { return s }),
	fx.Provide(services.NewAccueilService),

	fx.Provide(controllers.NewAccueilController),
	fx.Invoke(RegisterAccueilRoutes),
)

// RegisterAccueilRoutes session requise; la licence n'est que résumée
func RegisterAccueilRoutes(
	r *gin.Engine,
	controller *controllers.AccueilController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	r.GET("/api/v1/accueil", append(authStack.Protected(), controller.Tableau)...)
}
