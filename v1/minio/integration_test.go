//go:build integration

package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chemsource/sourcing/v1/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func startMinio(ctx context.Context, t *testing.T) Config {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	return Config{
		Connection: ConnectionConfig{
			Endpoint:             fmt.Sprintf("%s:%s", host, port.Port()),
			AccessKeyID:          "minioadmin",
			SecretAccessKey:      "minioadmin",
			BucketName:           "snapshots-test",
			AccessBucketCreation: true,
		},
	}
}

func TestSnapshotWriter_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	cfg := startMinio(ctx, t)

	var client *MinioClient
	var writer SnapshotWriter
	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() Config { return cfg }),
		fx.Populate(&client, &writer),
	)
	app.RequireStart()
	defer app.RequireStop()

	location, err := writer.Snapshot(ctx, "buy-lists", []vectordb.Match{
		{ID: "legacy-1", Metadata: map[string]any{"email": "a@acme.example"}},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(location, "snapshots-test/snapshots/buy-lists/"))

	data, err := client.Get(ctx, strings.TrimPrefix(location, "snapshots-test/"))
	require.NoError(t, err)

	var doc Snapshot
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, "legacy-1", doc.Records[0].ID)
}
