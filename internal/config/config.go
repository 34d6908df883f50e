package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tuannm99/novacore/internal/storage"
)

// EnvPrefix prefixes environment overrides, e.g. NOVACORE_STORAGE_PAGE_SIZE.
const EnvPrefix = "NOVACORE"

type Config struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Workdir  string `mapstructure:"workdir"`
		PageSize int    `mapstructure:"page_size"`
		Schema   string `mapstructure:"schema"`
	} `mapstructure:"storage"`

	BufferPool struct {
		Capacity int `mapstructure:"capacity"`
	} `mapstructure:"bufferpool"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_name", "novacore")
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("storage.page_size", storage.PageSize)
	v.SetDefault("storage.schema", "")
	v.SetDefault("bufferpool.capacity", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in defaults with environment overrides.
func Default() (*Config, error) {
	return decode(newViper())
}

// LoadConfig reads the YAML file at path over the defaults. A .env file in
// the working directory, when present, is loaded into the environment
// first. An empty path means defaults only.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("config: loaded", "path", path)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalidConfig = errors.New("config: invalid")

func (c *Config) Validate() error {
	if c.Storage.PageSize <= 0 {
		return fmt.Errorf("%w: storage.page_size %d", ErrInvalidConfig, c.Storage.PageSize)
	}
	if c.BufferPool.Capacity <= 0 {
		return fmt.Errorf("%w: bufferpool.capacity %d", ErrInvalidConfig, c.BufferPool.Capacity)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
