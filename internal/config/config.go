package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// UpstreamConfig points at the two collaborator APIs: the reference
// catalogue (read/write) and the grid status endpoint (read-only stats).
type UpstreamConfig struct {
	ReferenceURL   string `mapstructure:"reference_url"`
	GridURL        string `mapstructure:"grid_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AuthConfig carries the static admin bearer keys. Keys issued at runtime
// live in the database instead.
type AuthConfig struct {
	AdminKeys []string `mapstructure:"admin_keys"`
}

// RefreshConfig controls the periodic catalogue/grid snapshot cycle.
type RefreshConfig struct {
	IntervalSeconds int  `mapstructure:"interval_seconds"`
	ParseNames      bool `mapstructure:"parse_names"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	// An explicit CONFIG_FILE wins over the search path; the benchmark
	// harness uses this to run against a throwaway config.
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./internal/config")
	}

	// Default Values. Keys meant to come from the environment still need
	// a registered default, or viper's Unmarshal never sees them.
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("upstream.reference_url", "")
	v.SetDefault("upstream.grid_url", "")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "registry.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("refresh.interval_seconds", 300)
	v.SetDefault("refresh.parse_names", true)
	v.SetDefault("tracing.enabled", false)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Resolve secrets declared as "ENV:VAR_NAME"
	cfg.Upstream.APIKey = resolveSecret(v, cfg.Upstream.APIKey)
	cfg.Redis.Password = resolveSecret(v, cfg.Redis.Password)
	for i, key := range cfg.Auth.AdminKeys {
		cfg.Auth.AdminKeys[i] = resolveSecret(v, key)
	}

	return &cfg, nil
}

func resolveSecret(v *viper.Viper, value string) string {
	if !strings.HasPrefix(value, "ENV:") {
		return value
	}
	envVar := strings.TrimPrefix(value, "ENV:")
	// Check process environment first (explicit override)
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	// Then check viper (which might have it from other sources)
	return v.GetString(envVar)
}
