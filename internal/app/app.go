package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cabinet-suite-core/internal/app/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Application serveur HTTP démarré par le cycle de vie fx
type Application struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApplication(cfg *config.Config, router *gin.Engine) *Application {
	return &Application{
		config: cfg,
		router: router,
	}
}

// Start enregistre le démarrage et l'arrêt gracieux (30 s) du serveur
func (a *Application) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			serverConfig := a.config.GetServer()

			a.server = &http.Server{
				Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
				Handler:           a.router,
				ReadTimeout:       serverConfig.ReadTimeout,
				ReadHeaderTimeout: 10 * time.Second,
				WriteTimeout:      serverConfig.WriteTimeout,
			}

			go func() {
				fmt.Printf("[SERVER] 🚀 Démarrage serveur HTTP sur %s\n", a.server.Addr)
				if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					fmt.Printf("[SERVER] ❌ Échec démarrage serveur: %v\n", err)
				}
			}()

			fmt.Printf("[SERVER] ✅ Serveur HTTP initialisé (env: %s)\n", a.config.Environment)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			fmt.Printf("[SERVER] 🛑 Arrêt serveur HTTP\n")

			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := a.server.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("[SERVER] ⚠️ Arrêt forcé: %v\n", err)
				return err
			}

			fmt.Printf("[SERVER] ✅ Serveur arrêté proprement\n")
			return nil
		},
	})
}
