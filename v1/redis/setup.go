package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"

	"github.com/chemsource/sourcing/v1/observability"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client for the distributed locks held by
// maintenance jobs.
type RedisClient struct {
	// client is the underlying Redis client
	client redis.UniversalClient

	cfg      Config
	logger   Logger
	observer observability.Observer

	// mu protects concurrent access to client
	mu sync.RWMutex

	closeOnce sync.Once
}

// NewClient creates a Redis client for a standalone instance. The connection
// is established lazily; use Ping to check it.
//
// Example:
//
//	client, err := redis.NewClient(redis.Config{Host: "localhost", Port: 6379}, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func NewClient(cfg Config, logger Logger) (*RedisClient, error) {
	cfg = cfg.withDefaults()

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		TLSConfig:    tlsConfig,
	})

	if logger == nil {
		logger = nopLogger{}
	}
	logger.Info("redis client initialized", nil, map[string]interface{}{
		"address": client.Options().Addr,
		"db":      cfg.DB,
	})

	return &RedisClient{client: client, cfg: cfg, logger: logger}, nil
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig, defaultServerName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ServerName:         defaultServerName,
	}
	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}

// Ping checks that the server is reachable.
func (r *RedisClient) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Ping(ctx).Err()
}

// Client returns the underlying go-redis client.
func (r *RedisClient) Client() redis.UniversalClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Close closes the connection pool. It is safe to call more than once.
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		err = r.client.Close()
		if err != nil {
			r.logger.Error("failed to close redis client", err)
		}
	})
	return err
}

// WithObserver attaches an observer for lock operations and returns the
// client for chaining.
func (r *RedisClient) WithObserver(observer observability.Observer) *RedisClient {
	r.observer = observer
	return r
}

func (r *RedisClient) key(key string) string {
	return r.cfg.KeyPrefix + key
}

type nopLogger struct{}

func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
