package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

//
// ──────────────────────────────────────────────────────────────
//   QDRANT CLIENT WRAPPER
// ──────────────────────────────────────────────────────────────
//
// QdrantClient owns the gRPC connection to Qdrant. Record-level access
// goes through Adapter, which implements vectordb.Store on top of it.
//

// Logger is the subset of the logger package this client needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}

// QdrantClient wraps the official Qdrant Go client.
type QdrantClient struct {
	api    *qdrant.Client
	cfg    *Config
	logger Logger
}

// NewQdrantClient constructs a new instance of QdrantClient and validates
// connectivity via a health check, failing fast if the service is unreachable.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{Config: cfg})
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := p.Logger
	if log == nil {
		log = nopLogger{}
	}

	port := cfg.Port
	if port == 0 {
		port = 6334
	}

	log.Info("connecting to qdrant", nil, map[string]interface{}{
		"endpoint": cfg.Endpoint,
		"port":     port,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   port,
		APIKey:                 cfg.ApiKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize qdrant client: %w", ErrConnection, err)
	}

	qc := &QdrantClient{api: client, cfg: cfg, logger: log}

	if err := qc.HealthCheck(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}

	return qc, nil
}

// HealthCheck verifies the availability of the Qdrant service.
func (c *QdrantClient) HealthCheck(ctx context.Context) error {
	if c.api == nil {
		return fmt.Errorf("%w: client not initialized", ErrConnection)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", TranslateError(err))
	}

	c.logger.Info("qdrant health check passed", nil, map[string]interface{}{
		"title":    resp.GetTitle(),
		"version":  resp.GetVersion(),
		"endpoint": c.cfg.Endpoint,
	})
	return nil
}

// Client returns the underlying Qdrant SDK client.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Config returns the configuration the client was built with.
func (c *QdrantClient) Config() *Config {
	return c.cfg
}

// Close shuts down the gRPC connection.
func (c *QdrantClient) Close() error {
	if c.api == nil {
		return nil
	}
	c.logger.Info("closing qdrant client", nil)
	return c.api.Close()
}

func (c *QdrantClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}
