package audit

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewMongoStore, fx.As(new(Store))),
		NewJournal,
	),
	fx.Invoke(func(lc fx.Lifecycle, j *Journal) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				j.Wait()
				return nil
			},
		})
	}),
)
