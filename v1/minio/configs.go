package minio

import "time"

// Config defines the connection and bucket used for migration snapshots.
type Config struct {
	Connection ConnectionConfig `yaml:"connection" mapstructure:"connection"`

	// SnapshotPrefix is the key prefix under which snapshots are written.
	SnapshotPrefix string `yaml:"snapshot_prefix" mapstructure:"snapshot_prefix" env:"MINIO_SNAPSHOT_PREFIX"`

	// Timeout bounds connection validation and bucket creation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" env:"MINIO_TIMEOUT"`
}

// ConnectionConfig contains MinIO server connection details.
type ConnectionConfig struct {
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint" env:"MINIO_ENDPOINT"`                     // e.g. "localhost:9000"
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id" env:"MINIO_ACCESS_KEY_ID"`      // MinIO access key
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key" env:"MINIO_SECRET_KEY"` // MinIO secret key
	UseSSL          bool   `yaml:"use_ssl" mapstructure:"use_ssl" env:"MINIO_USE_SSL"`
	BucketName      string `yaml:"bucket_name" mapstructure:"bucket_name" env:"MINIO_BUCKET"`
	Region          string `yaml:"region" mapstructure:"region" env:"MINIO_REGION"`

	// AccessBucketCreation allows creating the bucket when it is missing.
	AccessBucketCreation bool `yaml:"access_bucket_creation" mapstructure:"access_bucket_creation"`
}

// Logger is the logging contract of the logger package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

const (
	DefaultSnapshotPrefix = "snapshots"
	DefaultTimeout        = 10 * time.Second
)

// DefaultConfig returns a Config for a local MinIO.
func DefaultConfig() Config {
	return Config{
		Connection: ConnectionConfig{
			Endpoint:             "localhost:9000",
			BucketName:           "sourcing-snapshots",
			AccessBucketCreation: true,
		},
		SnapshotPrefix: DefaultSnapshotPrefix,
		Timeout:        DefaultTimeout,
	}
}
