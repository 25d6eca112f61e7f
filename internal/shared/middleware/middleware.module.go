package middleware

import (
	"cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/authentication"

	"go.uber.org/fx"
)

// Module regroupe tous les providers des middlewares.
// SessionValidator et LicenceChecker sont fournis par les modules auth et activation.
var Module = fx.Options(
	fx.Provide(authentication.NewCachedCabinetLookup),
	fx.Provide(func(lookup *authentication.CachedCabinetLookup) authentication.CabinetLookup {
		return lookup
	}),
	fx.Provide(authentication.NewCabinetMiddleware),
	fx.Provide(authentication.NewLicenceMiddleware),
	fx.Provide(auth.NewSessionMiddleware),
	fx.Provide(auth.NewAuthMiddlewareStack),
)
