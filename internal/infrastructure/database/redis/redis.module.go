package redis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewRedisKeyGenerator),
	fx.Provide(NewClient),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.HealthCheck(timeoutCtx); err != nil {
				return fmt.Errorf("redis indisponible: %w", err)
			}

			fmt.Printf("[REDIS] ✅ Redis connecté\n")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
}
