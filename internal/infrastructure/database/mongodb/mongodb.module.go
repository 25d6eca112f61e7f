package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(NewCollectionManager),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client, collections *CollectionManager) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if client.client == nil {
				return nil
			}

			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.Ping(timeoutCtx); err != nil {
				fmt.Printf("[MONGODB] ⚠️  MongoDB non disponible - continuera sans MongoDB: %v\n", err)
				return nil // Ne bloque pas le démarrage
			}

			if err := collections.EnsureIndexes(timeoutCtx); err != nil {
				fmt.Printf("[MONGODB] ⚠️  Création des index échouée: %v\n", err)
			}

			fmt.Printf("[MONGODB] ✅ MongoDB connecté et opérationnel\n")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close(ctx)
		},
	})
}
