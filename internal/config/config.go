package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Backfill BackfillConfig `mapstructure:"backfill"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig configures the primary datastore. Driver selects postgres
// (production) or sqlite (development and tests).
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	Path            string `mapstructure:"path"` // sqlite file path
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// RedisConfig configures the Redis instance shared by the resolver cache and
// the task queue.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// AuthConfig configures admin authentication.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"`
	Issuer             string `mapstructure:"issuer"`
	AccessExpiryMinutes int   `mapstructure:"access_expiry_minutes"`
}

// AdminConfig tunes the admin list endpoints.
type AdminConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MinPageSize     int `mapstructure:"min_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// BackfillConfig tunes the tenant backfill worker.
type BackfillConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	ScopeCacheTTLSeconds int `mapstructure:"scope_cache_ttl_seconds"`
}

var globalConfig *Config

// Load reads the configuration for the given environment (dev, prod, test).
// An explicit configPath overrides the conventional ./config/<env>.yaml
// lookup. Environment variables prefixed with APP_ take precedence over the
// file, with dots mapped to underscores (APP_DATABASE_HOST).
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		v.SetConfigName(env)
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stdout")
	v.SetDefault("auth.access_expiry_minutes", 120)
	v.SetDefault("admin.default_page_size", 10)
	v.SetDefault("admin.min_page_size", 25)
	v.SetDefault("admin.max_page_size", 100)
	v.SetDefault("backfill.concurrency", 4)
	v.SetDefault("backfill.scope_cache_ttl_seconds", 60)
}

// Get returns the global configuration and panics if Load has not been called.
func Get() *Config {
	if globalConfig == nil {
		panic("config: not loaded, call Load() first")
	}
	return globalConfig
}

// GetDSN builds the postgres connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
