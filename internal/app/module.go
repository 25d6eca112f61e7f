package app

import (
	"cabinet-suite-core/internal/app/bootstrap"
	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/database"
	"cabinet-suite-core/internal/infrastructure/documents/pdf"
	"cabinet-suite-core/internal/infrastructure/logger"
	"cabinet-suite-core/internal/infrastructure/scheduler"
	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/accueil"
	"cabinet-suite-core/internal/modules/activation"
	"cabinet-suite-core/internal/modules/administrateur"
	"cabinet-suite-core/internal/modules/auth"
	"cabinet-suite-core/internal/modules/consultations"
	"cabinet-suite-core/internal/modules/developpeur"
	"cabinet-suite-core/internal/modules/facturation"
	"cabinet-suite-core/internal/modules/parametres"
	"cabinet-suite-core/internal/modules/patients"
	"cabinet-suite-core/internal/modules/rdv"
	"cabinet-suite-core/internal/modules/statistique"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware"

	"go.uber.org/fx"
)

// NewPDFRenderer moteur PDF dans la devise du cabinet
func NewPDFRenderer(cfg *config.Config) *pdf.Renderer {
	return pdf.NewRenderer(cfg.Facturation.Devise)
}

// InfrastructureModule configuration, bases de données et services techniques, sans HTTP
var InfrastructureModule = fx.Options(
	fx.Provide(config.NewConfig),
	fx.Provide(config.NewPostgresConfig),
	fx.Provide(config.NewRedisConfig),
	fx.Provide(config.NewMongoConfig),

	logger.Module,
	database.Module,
	storage.Module,
	scheduler.Module,
	audit.Module,
	fx.Provide(NewPDFRenderer),
)

// DomainModule services métier et leurs routes
var DomainModule = fx.Options(
	middleware.Module,

	auth.Module,
	activation.Module,
	administrateur.Module,
	developpeur.Module,
	patients.Module,
	rdv.Module,
	consultations.Module,
	facturation.Module,
	statistique.Module,
	accueil.Module,
	parametres.Module,
)

var AppModule = fx.Options(
	InfrastructureModule,

	fx.Provide(NewProbes),
	fx.Provide(NewRouter),

	DomainModule,

	// Bootstrap avant le serveur HTTP: les hooks OnStart s'exécutent dans l'ordre d'enregistrement
	bootstrap.Module,

	fx.Provide(NewApplication),
	fx.Invoke((*Application).Start),
)
