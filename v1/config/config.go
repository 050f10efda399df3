package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/chemsource/sourcing/v1/buylist"
	"github.com/chemsource/sourcing/v1/httpapi"
	"github.com/chemsource/sourcing/v1/logger"
	"github.com/chemsource/sourcing/v1/metrics"
	"github.com/chemsource/sourcing/v1/minio"
	"github.com/chemsource/sourcing/v1/qdrant"
	"github.com/chemsource/sourcing/v1/redis"
	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/chemsource/sourcing/v1/tracer"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable. Nested keys are joined with
// a double underscore: SOURCING_QDRANT__ENDPOINT sets qdrant.endpoint.
const EnvPrefix = "SOURCING"

const keyDelimiter = "__"

// Store backends.
const (
	StoreQdrant = "qdrant"
	StoreMemory = "memory"
)

// Config aggregates the configuration of every package.
type Config struct {
	// Store selects the vector store backend: "qdrant" or "memory".
	Store string `yaml:"store" mapstructure:"store"`

	Logger    logger.Config   `yaml:"logger" mapstructure:"logger"`
	Sourcing  sourcing.Config `yaml:"sourcing" mapstructure:"sourcing"`
	Qdrant    qdrant.Config   `yaml:"qdrant" mapstructure:"qdrant"`
	HTTP      httpapi.Config  `yaml:"http" mapstructure:"http"`
	Metrics   metrics.Config  `yaml:"metrics" mapstructure:"metrics"`
	Tracer    tracer.Config   `yaml:"tracer" mapstructure:"tracer"`
	Redis     redis.Config    `yaml:"redis" mapstructure:"redis"`
	Minio     minio.Config    `yaml:"minio" mapstructure:"minio"`
	Migration Migration       `yaml:"migration" mapstructure:"migration"`
}

// Migration configures the buy-list migration job.
type Migration struct {
	// Lock takes the Redis lock before writing.
	Lock    bool          `yaml:"lock" mapstructure:"lock"`
	LockKey string        `yaml:"lock_key" mapstructure:"lock_key"`
	LockTTL time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`

	// Backup writes a MinIO snapshot before writing.
	Backup bool `yaml:"backup" mapstructure:"backup"`

	// Deadline bounds a run. Zero means no deadline.
	Deadline time.Duration `yaml:"deadline" mapstructure:"deadline"`
}

// Default returns the configuration assembled from each package's defaults.
func Default() Config {
	return Config{
		Store:    StoreQdrant,
		Logger:   logger.DefaultConfig(),
		Sourcing: sourcing.DefaultConfig(),
		Qdrant:   *qdrant.DefaultConfig(),
		HTTP:     httpapi.DefaultConfig(),
		Metrics:  metrics.DefaultConfig(),
		Tracer:   tracer.DefaultConfig(),
		Redis:    redis.DefaultConfig(),
		Minio:    minio.DefaultConfig(),
		Migration: Migration{
			LockKey: buylist.DefaultLockKey,
			LockTTL: buylist.DefaultLockTTL,
		},
	}
}

// Options locate the configuration sources.
type Options struct {
	// File is an optional YAML file.
	File string

	// EnvFile is an optional dotenv file loaded into the environment before
	// variables are read. A missing file is ignored.
	EnvFile string
}

// Load builds a Config from defaults, then the YAML file, then the
// environment, each overriding the previous.
func Load(opts Options) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", keyDelimiter))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	bindEnvs(v, reflect.TypeOf(Config{}))

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Store {
	case StoreQdrant, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q, want %q or %q", c.Store, StoreQdrant, StoreMemory)
	}
	if c.Sourcing.ProfilesNamespace == "" || c.Sourcing.SellProductsNamespace == "" || c.Sourcing.BuyListsNamespace == "" {
		return errors.New("sourcing namespaces must not be empty")
	}
	return nil
}

// bindEnvs registers every leaf key so AutomaticEnv applies during Unmarshal
// even when the key is absent from the file.
func bindEnvs(v *viper.Viper, t reflect.Type, path ...string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("mapstructure")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = field.Name
		}
		next := append(append([]string(nil), path...), tag)
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			bindEnvs(v, field.Type, next...)
			continue
		}
		_ = v.BindEnv(strings.Join(next, keyDelimiter))
	}
}
