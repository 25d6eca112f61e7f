package storage

import (
	"context"
	"fmt"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/scheduler"

	"go.uber.org/fx"
)

// NewExportsCleanupJob purge les exports plus vieux que la rétention
func NewExportsCleanupJob(w *Workspace, cfg *config.Config) scheduler.Job {
	retention := cfg.Scheduler.ExportsRetention
	return scheduler.Job{
		Name:     "exports_nettoyage",
		Interval: cfg.Scheduler.CleanupInterval,
		Run: func(ctx context.Context) error {
			removed, err := w.CleanOlderThan(DirExports, retention, time.Now())
			if err != nil {
				return err
			}
			if removed > 0 {
				fmt.Printf("[STORAGE] ✅ %d export(s) supprimé(s)\n", removed)
			}
			return nil
		},
	}
}

var Module = fx.Options(
	fx.Provide(NewWorkspace),
	fx.Provide(scheduler.AsJob(NewExportsCleanupJob)),
)
