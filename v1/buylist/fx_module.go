package buylist

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the buy-list Service and Migrator.
//
// Dependencies required by this module:
// - a vectordb.Store
// - a sourcing.Config
//
// A Locker, Snapshotter and Recorder are used when provided.
var FXModule = fx.Module("buylist",
	fx.Provide(
		NewService,
		NewMigrator,
	),
	fx.Invoke(RegisterServiceLifecycle),
)

// RegisterServiceLifecycle bootstraps the buy-list namespace on start.
func RegisterServiceLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Bootstrap(ctx)
		},
	})
}
