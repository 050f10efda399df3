package qdrant

import (
	"time"
)

// Config holds connection and behavior settings for the Qdrant client.
//
// Example (programmatic):
//
//	cfg := qdrant.DefaultConfig()
//	cfg.Endpoint = "qdrant.internal"
//	cfg.ApiKey = os.Getenv("QDRANT_API_KEY")
//
// Example (builder style):
//
//	cfg := qdrant.FromEndpoint("qdrant.internal").
//	    WithApiKey(os.Getenv("QDRANT_API_KEY")).
//	    WithCollectionPrefix("sourcing_")
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" env:"QDRANT_ENDPOINT"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port" mapstructure:"port" env:"QDRANT_PORT"`

	// Optional authentication token for secured deployments.
	ApiKey string `yaml:"api_key" mapstructure:"api_key" env:"QDRANT_API_KEY"`

	// UseTLS enables TLS on the gRPC connection. Managed clusters require it.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls" env:"QDRANT_USE_TLS"`

	// Maximum request duration before timing out.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" env:"QDRANT_TIMEOUT"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" mapstructure:"check_compatibility" env:"QDRANT_CHECK_COMPATIBILITY"`

	// CollectionPrefix is prepended to every namespace to form a collection name.
	CollectionPrefix string `yaml:"collection_prefix" mapstructure:"collection_prefix" env:"QDRANT_COLLECTION_PREFIX"`

	// VectorSize is the dimension of the placeholder vector stored with
	// records that carry none. Records here are addressed by metadata only.
	VectorSize uint64 `yaml:"vector_size" mapstructure:"vector_size" env:"QDRANT_VECTOR_SIZE"`

	// DefaultLimit caps queries that do not set TopK.
	DefaultLimit uint32 `yaml:"default_limit" mapstructure:"default_limit" env:"QDRANT_DEFAULT_LIMIT"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:           "localhost",
		Port:               6334,
		Timeout:            10 * time.Second,
		CheckCompatibility: true,
		VectorSize:         4,
		DefaultLimit:       1000,
	}
}

// FromEndpoint returns a default config pre-filled with a specific endpoint.
func FromEndpoint(host string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = host
	return cfg
}

// Builder-style helpers
func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithTLS(enabled bool) *Config {
	c.UseTLS = enabled
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}

func (c *Config) WithCollectionPrefix(prefix string) *Config {
	c.CollectionPrefix = prefix
	return c
}

// CollectionName maps a namespace onto its collection.
func (c *Config) CollectionName(namespace string) string {
	return c.CollectionPrefix + namespace
}
