package database

import (
	"cabinet-suite-core/internal/infrastructure/database/migrations"
	"cabinet-suite-core/internal/infrastructure/database/mongodb"
	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/infrastructure/database/redis"

	"go.uber.org/fx"
)

var Module = fx.Options(
	postgres.Module,
	redis.Module,
	mongodb.Module,
	migrations.Module,
)
