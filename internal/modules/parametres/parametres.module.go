package parametres

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/parametres/controllers"
	"cabinet-suite-core/internal/modules/parametres/queries"
	"cabinet-suite-core/internal/modules/parametres/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Module thème du cabinet et manifeste PWA
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewThemeRepository, fx.As(new(services.ThemeStore)))),
	fx.Provide(func(w *storage.Workspace) services.ImageArchive { return w }),
	fx.Provide(services.NewThemeService),

	fx.Provide(controllers.NewThemeController),
	fx.Invoke(RegisterParametresRoutes),
)

// RegisterParametresRoutes sans contrôle de licence: un cabinet expiré garde son thème.
// theme.css, le manifeste, les icônes et l'image de fond sont chargés par le navigateur avec ?cabinet=.
func RegisterParametresRoutes(
	r *gin.Engine,
	controller *controllers.ThemeController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/parametres/theme")
	{
		api.GET("", append(authStack.Protected(), controller.Get)...)
		api.PUT("", append(authStack.Protected(authMiddleware.RoleAdmin), controller.Update)...)
		api.POST("/fond", append(authStack.Protected(authMiddleware.RoleAdmin), controller.UploadFond)...)
		api.GET("/fond", append(authStack.Tenant(), controller.Fond)...)
	}
	r.GET("/api/v1/parametres/icons/:fichier", append(authStack.Tenant(), controller.Icone)...)

	for _, prefix := range []string{"", "/api/v1"} {
		r.GET(prefix+"/theme.css", append(authStack.Tenant(), controller.CSS)...)
		r.GET(prefix+"/manifest.webmanifest", append(authStack.Tenant(), controller.Manifest)...)
	}
}
