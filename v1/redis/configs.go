package redis

import (
	"fmt"
	"time"
)

// Config holds the connection settings for the Redis instance that
// coordinates maintenance jobs.
type Config struct {
	// Host is the Redis server hostname or IP address.
	Host string `yaml:"host" mapstructure:"host" env:"REDIS_HOST"`

	// Port is the Redis server port.
	Port int `yaml:"port" mapstructure:"port" env:"REDIS_PORT"`

	// Username is used for ACL authentication (Redis 6.0+).
	Username string `yaml:"username" mapstructure:"username" env:"REDIS_USERNAME"`

	// Password is used for authentication. Leave empty for none.
	Password string `yaml:"password" mapstructure:"password" env:"REDIS_PASSWORD"`

	// DB is the database number.
	DB int `yaml:"db" mapstructure:"db" env:"REDIS_DB"`

	// KeyPrefix is prepended to every lock key.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix" env:"REDIS_KEY_PREFIX"`

	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`

	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig contains TLS settings.
type TLSConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// CACertPath is the CA certificate used to verify the server.
	CACertPath string `yaml:"ca_cert_path" mapstructure:"ca_cert_path"`

	// InsecureSkipVerify disables server certificate verification. Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`

	// ServerName overrides the name checked on the server certificate.
	// Defaults to Host.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
}

// Logger is the logging contract of the logger package.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultHost         = "localhost"
	DefaultPort         = 6379
	DefaultMaxRetries   = 3
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// DefaultConfig returns a Config for a local Redis.
func DefaultConfig() Config {
	return Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		MaxRetries:   DefaultMaxRetries,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Address returns host:port.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = d.DialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	return c
}
