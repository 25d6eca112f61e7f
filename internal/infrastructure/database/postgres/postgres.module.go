package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(NewTransactionManager),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.HealthCheck(timeoutCtx); err != nil {
				return fmt.Errorf("postgres indisponible: %w", err)
			}

			fmt.Printf("[POSTGRES] ✅ PostgreSQL connecté\n")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
}
