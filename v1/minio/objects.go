package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// Put uploads data to objectKey in the configured bucket.
func (m *MinioClient) Put(ctx context.Context, objectKey string, data []byte, contentType string) (int64, error) {
	start := time.Now()
	info, err := m.client.PutObject(ctx, m.cfg.Connection.BucketName, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	m.observeOperation("put", objectKey, err, int64(len(data)), start)
	if err != nil {
		return 0, fmt.Errorf("failed to put object %s: %w", objectKey, err)
	}
	return info.Size, nil
}

// PutJSON encodes v and uploads it to objectKey.
func (m *MinioClient) PutJSON(ctx context.Context, objectKey string, v any) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to encode object %s: %w", objectKey, err)
	}
	return m.Put(ctx, objectKey, data, "application/json")
}

// Get downloads objectKey.
func (m *MinioClient) Get(ctx context.Context, objectKey string) ([]byte, error) {
	start := time.Now()
	reader, err := m.client.GetObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		m.observeOperation("get", objectKey, err, 0, start)
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			m.logger.Error("failed to close object reader", err, map[string]interface{}{"object": objectKey})
		}
	}()

	data, err := io.ReadAll(reader)
	m.observeOperation("get", objectKey, err, int64(len(data)), start)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}
	return data, nil
}

// Delete removes objectKey.
func (m *MinioClient) Delete(ctx context.Context, objectKey string) error {
	start := time.Now()
	err := m.client.RemoveObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.RemoveObjectOptions{})
	m.observeOperation("delete", objectKey, err, 0, start)
	return err
}
