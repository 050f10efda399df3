package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config selects the minimum level and the service name stamped on every entry.
type Config struct {
	// 1. production -> INFO
	// 2. development -> DEBUG
	// else -> INFO
	Level string `yaml:"level" mapstructure:"level"`

	// ServiceName is added to every entry as the "service" field.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// DefaultConfig logs at info level for the sourcing service.
func DefaultConfig() Config {
	return Config{
		Level:       Info,
		ServiceName: "sourcing",
	}
}
