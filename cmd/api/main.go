package main

import (
	"context"
	"log"

	"cabinet-suite-core/internal/app"
	"cabinet-suite-core/internal/infrastructure/logger"

	"go.uber.org/fx"
)

func main() {
	fx.New(
		app.AppModule,
		fx.WithLogger(logger.FxEventLogger),
		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Println("Cabinet Suite API starting...")
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Println("Cabinet Suite API stopping...")
					return nil
				},
			})
		}),
	).Run()
}
