package minio

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the MinIO client and a SnapshotWriter backed by it. The
// bucket is checked, and created when allowed, on start.
var FXModule = fx.Module("minio",
	fx.Provide(
		NewClientWithDI,
		func(c *MinioClient) SnapshotWriter { return SnapshotWriter{Client: c} },
	),
	fx.Invoke(RegisterLifecycle),
)

// MinioParams groups the dependencies needed to create a MinIO client.
type MinioParams struct {
	fx.In

	Config Config
	Logger Logger `optional:"true"`
}

// NewClientWithDI creates a MinIO client from injected dependencies.
func NewClientWithDI(p MinioParams) (*MinioClient, error) {
	return NewClient(p.Config, p.Logger)
}

// RegisterLifecycle bootstraps the bucket on start.
func RegisterLifecycle(lc fx.Lifecycle, c *MinioClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.Bootstrap(ctx)
		},
	})
}
