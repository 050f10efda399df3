package httpapi

import "time"

// Config controls the HTTP listener.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address" mapstructure:"address" env:"HTTP_ADDRESS"`

	// Mode is the gin mode: "release", "debug" or "test".
	Mode string `yaml:"mode" mapstructure:"mode" env:"GIN_MODE"`

	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// RequestTimeout bounds the context of every handler.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		Mode:            "release",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  20 * time.Second,
	}
}
