package qdrant

import (
	"context"

	"github.com/chemsource/sourcing/v1/vectordb"
	"go.uber.org/fx"
)

// FXModule provides the Qdrant client and the Adapter as a vectordb.Store.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    fx.Provide(func() *qdrant.Config { return cfg }),
//	)
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		NewAdapter,
		func(a *Adapter) vectordb.Store { return a },
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams groups the dependencies needed to create a Qdrant client.
type QdrantParams struct {
	fx.In

	Config *Config
	Logger Logger `optional:"true"`
}

// QdrantLifecycleParams groups the dependencies needed for lifecycle management.
type QdrantLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *QdrantClient
}

// RegisterQdrantLifecycle re-checks health on start and closes the
// connection on stop.
func RegisterQdrantLifecycle(p QdrantLifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Client.HealthCheck(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return p.Client.Close()
		},
	})
}
