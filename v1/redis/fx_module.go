package redis

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the Redis client and a Locker backed by it.
//
// Usage:
//
//	app := fx.New(
//	    redis.FXModule,
//	    fx.Provide(func() redis.Config { return cfg.Redis }),
//	)
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
		func(c *RedisClient) Locker { return Locker{Client: c} },
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RedisParams groups the dependencies needed to create a Redis client
type RedisParams struct {
	fx.In

	Config Config
	Logger Logger `optional:"true"`
}

// NewClientWithDI creates a Redis client from injected dependencies.
func NewClientWithDI(params RedisParams) (*RedisClient, error) {
	return NewClient(params.Config, params.Logger)
}

// RedisLifecycleParams groups the dependencies needed for Redis lifecycle management
type RedisLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RedisClient
}

// RegisterRedisLifecycle pings Redis on start and closes the client on stop.
func RegisterRedisLifecycle(params RedisLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx); err != nil {
				params.Client.logger.Error("failed to ping redis on startup", err)
				return err
			}
			params.Client.logger.Info("redis client started and healthy", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.logger.Info("shutting down redis client", nil)
			return params.Client.Close()
		},
	})
}
