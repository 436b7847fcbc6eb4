// Package config loads voltc settings from a voltc.env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hassan/volt/internal/compiler"
	"github.com/hassan/volt/internal/store"
)

// Artifact store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config stores all configuration of voltc.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment       string        `mapstructure:"ENVIRONMENT"`
	CompiledPath      string        `mapstructure:"COMPILED_PATH"`
	CompiledSeparator string        `mapstructure:"COMPILED_SEPARATOR"`
	CompiledExtension string        `mapstructure:"COMPILED_EXTENSION"`
	CompilePrefix     string        `mapstructure:"COMPILE_PREFIX"`
	CompileAlways     bool          `mapstructure:"COMPILE_ALWAYS"`
	Stat              bool          `mapstructure:"STAT"`
	Autoescape        bool          `mapstructure:"AUTOESCAPE"`
	Optimize          bool          `mapstructure:"OPTIMIZE"`
	ViewsDir          string        `mapstructure:"VIEWS_DIR"`
	Store             string        `mapstructure:"STORE"`
	RedisAddress      string        `mapstructure:"REDIS_ADDRESS"`
	RedisPrefix       string        `mapstructure:"REDIS_PREFIX"`
	RedisTTL          time.Duration `mapstructure:"REDIS_TTL"`
	Concurrency       int           `mapstructure:"CONCURRENCY"`
	WatchDebounce     time.Duration `mapstructure:"WATCH_DEBOUNCE"`
}

var defaults = map[string]any{
	"ENVIRONMENT":        "development",
	"COMPILED_PATH":      "",
	"COMPILED_SEPARATOR": "%%",
	"COMPILED_EXTENSION": ".php",
	"COMPILE_PREFIX":     "",
	"COMPILE_ALWAYS":     false,
	"STAT":               true,
	"AUTOESCAPE":         false,
	"OPTIMIZE":           false,
	"VIEWS_DIR":          "",
	"STORE":              StoreFile,
	"REDIS_ADDRESS":      "localhost:6379",
	"REDIS_PREFIX":       store.DefaultRedisPrefix,
	"REDIS_TTL":          "0s",
	"CONCURRENCY":        4,
	"WATCH_DEBOUNCE":     "100ms",
}

// LoadConfig reads voltc.env from path, if there is one, and lets
// environment variables override it.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("voltc")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("cannot decode config: %w", err)
	}
	err = config.Validate()
	return
}

// Validate checks values viper cannot check by type.
func (config *Config) Validate() error {
	switch config.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE %q, want %q or %q", config.Store, StoreFile, StoreRedis)
	}
	if config.Concurrency < 1 {
		return fmt.Errorf("CONCURRENCY must be positive, got %d", config.Concurrency)
	}
	return nil
}

// IsDevelopment reports whether logs should be human readable.
func (config *Config) IsDevelopment() bool {
	return config.Environment == "development"
}

// CompilerOptions returns the compiler options the config describes.
func (config *Config) CompilerOptions() map[string]any {
	options := map[string]any{
		compiler.OptAlways:     config.CompileAlways,
		compiler.OptStat:       config.Stat,
		compiler.OptAutoescape: config.Autoescape,
		compiler.OptOptimize:   config.Optimize,
		compiler.OptSeparator:  config.CompiledSeparator,
		compiler.OptExtension:  config.CompiledExtension,
	}
	if config.CompiledPath != "" {
		options[compiler.OptPath] = config.CompiledPath
	}
	if config.CompilePrefix != "" {
		options[compiler.OptPrefix] = config.CompilePrefix
	}
	return options
}

// ArtifactStore returns the store compiled templates are written to.
func (config *Config) ArtifactStore() store.Store {
	if config.Store == StoreRedis {
		return store.NewRedisStore(store.RedisOptions{
			Address: config.RedisAddress,
			Prefix:  config.RedisPrefix,
			TTL:     config.RedisTTL,
		})
	}
	return store.NewFileStore()
}
