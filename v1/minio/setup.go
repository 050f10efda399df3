package minio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chemsource/sourcing/v1/observability"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrConnectionFailed is returned when the server cannot be reached or the
// credentials are rejected.
var ErrConnectionFailed = errors.New("minio: connection failed")

// MinioClient wraps the MinIO client with the configured bucket.
type MinioClient struct {
	client *minio.Client
	cfg    Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer
	logger   Logger
}

// NewClient creates a client for cfg. It does not contact the server; call
// Bootstrap to validate the connection and create the bucket.
//
// Example:
//
//	client, err := minio.NewClient(cfg, log)
//	if err != nil {
//	    return err
//	}
//	if err := client.Bootstrap(ctx); err != nil {
//	    return err
//	}
func NewClient(cfg Config, logger Logger) (*MinioClient, error) {
	client, err := connectToMinio(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SnapshotPrefix == "" {
		cfg.SnapshotPrefix = DefaultSnapshotPrefix
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &MinioClient{client: client, cfg: cfg, logger: logger}, nil
}

func connectToMinio(cfg Config) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint cannot be empty")
	}
	if cfg.Connection.BucketName == "" {
		return nil, fmt.Errorf("minio bucket name cannot be empty")
	}

	return minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
}

// Bootstrap checks the bucket and creates it when allowed.
func (m *MinioClient) Bootstrap(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	bucket := m.cfg.Connection.BucketName
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket %s: %w", ErrConnectionFailed, bucket, err)
	}
	if exists {
		return nil
	}
	if !m.cfg.Connection.AccessBucketCreation {
		return fmt.Errorf("bucket %s does not exist, please create it manually", bucket)
	}

	m.logger.Info("bucket does not exist, creating it", nil, map[string]interface{}{
		"bucket": bucket,
		"region": m.cfg.Connection.Region,
	})
	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.cfg.Connection.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// Bucket returns the configured bucket name.
func (m *MinioClient) Bucket() string {
	return m.cfg.Connection.BucketName
}

// WithObserver attaches an observer for object operations and returns the
// client for chaining.
func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}

func (m *MinioClient) observeOperation(operation, objectKey string, err error, size int64, start time.Time) {
	if m == nil || m.observer == nil {
		return
	}
	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "minio",
		Operation:   operation,
		Resource:    m.cfg.Connection.BucketName,
		SubResource: objectKey,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
	})
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
