package sourcing

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the profile and product Service and prepares its
// namespaces when the application starts.
//
// Dependencies required by this module:
// - a vectordb.Store
// - a sourcing.Config
var FXModule = fx.Module("sourcing",
	fx.Provide(NewService),
	fx.Invoke(RegisterServiceLifecycle),
)

// RegisterServiceLifecycle bootstraps the namespaces on start.
func RegisterServiceLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Bootstrap(ctx)
		},
	})
}
