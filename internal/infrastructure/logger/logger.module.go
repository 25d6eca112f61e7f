package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewLogger),
	fx.Invoke(RegisterLifecycle),
)

// FxEventLogger route les événements fx vers zap
func FxEventLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

func RegisterLifecycle(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync échoue sur stdout/stderr selon la plateforme; sans conséquence
			_ = log.Sync()
			return nil
		},
	})
}
