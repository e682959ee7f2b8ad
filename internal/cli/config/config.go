package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/entitymeta/internal/cache"
	"github.com/conduit-lang/entitymeta/internal/logging"
	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
)

// FileName is the config file searched in the working directory
const FileName = "entitymeta"

// EnvPrefix prefixes every environment override, e.g. ENTITYMETA_CACHE_BACKEND
const EnvPrefix = "ENTITYMETA"

// Config represents the entitymeta configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Entities []EntityConfig `mapstructure:"entities"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig represents the metadata cache configuration
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig represents the Redis connection used by the redis cache backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ServerConfig represents the API server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// EntityConfig overrides settings of one registered entity
type EntityConfig struct {
	// Name is a short or qualified class name
	Name          string               `mapstructure:"name"`
	Discriminator *DiscriminatorConfig `mapstructure:"discriminator"`
}

// DiscriminatorConfig is the file form of introspect.DiscriminatorMap.
// Map values are class names, or true to use the type tag as class name.
type DiscriminatorConfig struct {
	Map               map[string]any `mapstructure:"map"`
	SubclassNamespace string         `mapstructure:"subclass_namespace"`
	SubclassSuffix    string         `mapstructure:"subclass_suffix"`
}

// Load reads the configuration. An empty path searches the working
// directory for entitymeta.yaml; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := cache.DefaultConfig()
	v.SetDefault("database.url", "")
	v.SetDefault("cache.backend", defaults.Backend)
	v.SetDefault("cache.ttl", defaults.TTL)
	v.SetDefault("cache.prefix", defaults.Prefix)
	v.SetDefault("cache.redis.addr", defaults.Redis.Addr)
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DatabaseURL returns the database URL. DATABASE_URL wins over the file.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.Database.URL
}

// Addr returns the API listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// CacheOptions converts the cache section for cache.New
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		TTL:     c.Cache.TTL,
		Prefix:  c.Cache.Prefix,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
	}
}

// LogOptions converts the log section for logging.New
func (c *Config) LogOptions(verbose bool) logging.Options {
	return logging.Options{
		Level:       c.Log.Level,
		Development: c.Log.Development,
		Verbose:     verbose,
	}
}

// ApplyDiscriminators installs the configured discriminator overrides
func (c *Config) ApplyDiscriminators(registry *introspect.Registry) error {
	for _, entity := range c.Entities {
		if entity.Discriminator == nil {
			continue
		}
		if err := registry.SetDiscriminator(entity.Name, entity.Discriminator.DiscriminatorMap()); err != nil {
			return fmt.Errorf("entities.%s.discriminator: %w", entity.Name, err)
		}
	}
	return nil
}

// DiscriminatorMap converts the file form. A true value means "use the
// type tag"; other scalars are used as class names.
func (d *DiscriminatorConfig) DiscriminatorMap() introspect.DiscriminatorMap {
	out := introspect.DiscriminatorMap{
		SubclassNamespace: d.SubclassNamespace,
		SubclassSuffix:    d.SubclassSuffix,
	}
	if len(d.Map) == 0 {
		return out
	}

	out.Map = make(map[string]string, len(d.Map))
	for tag, value := range d.Map {
		switch v := value.(type) {
		case bool:
			if v {
				out.Map[tag] = introspect.TypeAsClassName
			}
		case string:
			out.Map[tag] = v
		default:
			out.Map[tag] = fmt.Sprint(v)
		}
	}
	return out
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none, got: %s", cfg.Cache.Backend)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}

	seen := make(map[string]bool, len(cfg.Entities))
	for i, entity := range cfg.Entities {
		if entity.Name == "" {
			return fmt.Errorf("entities[%d].name is required", i)
		}
		if seen[entity.Name] {
			return fmt.Errorf("entities[%d]: %s is configured twice", i, entity.Name)
		}
		seen[entity.Name] = true
	}

	return nil
}
