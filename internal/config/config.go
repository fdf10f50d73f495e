// Package config loads astrowheel settings from a config file, the
// environment and command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/astrostats/astrowheel/pkg/cache"
	"github.com/astrostats/astrowheel/pkg/pipeline"
)

// EnvPrefix is prepended to every environment variable, so cache.backend is
// read from ASTROWHEEL_CACHE_BACKEND.
const EnvPrefix = "ASTROWHEEL"

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// LayoutConfig holds the engine parameters.
type LayoutConfig struct {
	Gap         float64 `mapstructure:"gap"`
	MinDistance float64 `mapstructure:"min_distance"`
}

// WheelConfig holds drawing parameters.
type WheelConfig struct {
	Size    float64 `mapstructure:"size"`
	Leaders bool    `mapstructure:"leaders"`
}

// Config holds all runtime configuration.
// Values are populated from .astrowheel.yaml, ASTROWHEEL_* env vars, and CLI flags.
type Config struct {
	Verbose bool              `mapstructure:"verbose"`
	Cache   CacheConfig       `mapstructure:"cache"`
	Redis   cache.RedisConfig `mapstructure:"redis"`
	Mongo   cache.MongoConfig `mapstructure:"mongo"`
	Server  ServerConfig      `mapstructure:"server"`
	Layout  LayoutConfig      `mapstructure:"layout"`
	Wheel   WheelConfig       `mapstructure:"wheel"`
}

// Init points v at the config file and environment. An explicit file wins;
// otherwise .astrowheel.yaml is looked up in the working directory and then
// $HOME. A missing file is not an error.
func Init(v *viper.Viper, file string, home string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".astrowheel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return err
	}
	return nil
}

// SetDefaults registers the built-in default for every key. Keys must have a
// default for AutomaticEnv to reach them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("cache.backend", string(cache.BackendFile))
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "astrowheel:")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "astrowheel")
	v.SetDefault("mongo.collection", "cache")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", int64(1<<20))
	v.SetDefault("layout.gap", pipeline.DefaultGap)
	v.SetDefault("layout.min_distance", pipeline.DefaultMinDistance)
	v.SetDefault("wheel.size", pipeline.DefaultSize)
	v.SetDefault("wheel.leaders", false)
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CacheOptions converts the cache settings for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: cache.Backend(c.Cache.Backend),
		Dir:     c.Cache.Dir,
		Redis:   c.Redis,
		Mongo:   c.Mongo,
	}
}

// PipelineOptions returns pipeline options seeded from the configuration.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Gap:         c.Layout.Gap,
		MinDistance: c.Layout.MinDistance,
		Size:        c.Wheel.Size,
		Leaders:     c.Wheel.Leaders,
	}
}
