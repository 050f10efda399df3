package metrics

// Config defines how the Prometheus endpoint is exposed.
type Config struct {
	// Address is where the standalone /metrics server listens, e.g. ":9090".
	// Leave empty to serve metrics only through Handler on another server.
	Address string `yaml:"address" mapstructure:"address" env:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" mapstructure:"enable_default_collectors" env:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// ServiceName is added as a constant "service" label to every metric.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" env:"METRICS_SERVICE_NAME"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Address:                 ":9090",
		EnableDefaultCollectors: true,
		ServiceName:             "sourcing",
	}
}
