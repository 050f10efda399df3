package tracer

// Config defines the configuration for the tracer.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" env:"TRACER_SERVICE_NAME"`

	// AppEnv is the deployment environment, e.g. "production".
	AppEnv string `yaml:"app_env" mapstructure:"app_env" env:"TRACER_APP_ENV"`

	// EnableExport turns on the OTLP/HTTP exporter. When false spans are
	// created but never leave the process.
	EnableExport bool `yaml:"enable_export" mapstructure:"enable_export" env:"TRACER_ENABLE_EXPORT"`

	// Endpoint is the collector host:port. Empty uses the exporter's
	// default or OTEL_EXPORTER_OTLP_ENDPOINT.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" env:"TRACER_ENDPOINT"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure" env:"TRACER_INSECURE"`
}

// DefaultConfig returns a tracer that records spans locally only.
func DefaultConfig() Config {
	return Config{
		ServiceName: "sourcing",
		AppEnv:      "development",
	}
}
