package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

type DatabaseConfig struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite file path
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	Username     string
	PasswordHash string
	TokenTTL     time.Duration
}

type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	Burst          int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from an optional config.toml in the working
// directory, overridable by environment variables (dotted keys become
// underscored, e.g. server.port -> SERVER_PORT).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "cards.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "kanban")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "default_secret_change_in_production")
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_min", 100)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("cors.allowed_origins", []string{})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
			Environment:  v.GetString("server.environment"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("database.driver"),
			Path:     v.GetString("database.path"),
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.ssl_mode"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("auth.jwt_secret"),
			Username:     v.GetString("auth.username"),
			PasswordHash: v.GetString("auth.password_hash"),
			TokenTTL:     v.GetDuration("auth.token_ttl"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        v.GetBool("rate_limit.enabled"),
			RequestsPerMin: v.GetInt("rate_limit.requests_per_min"),
			Burst:          v.GetInt("rate_limit.burst"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
	}

	if config.IsProduction() {
		if config.Auth.JWTSecret == "default_secret_change_in_production" {
			return nil, fmt.Errorf("auth.jwt_secret must be set in production")
		}
		if config.Database.Driver == "postgres" && config.Database.Password == "" {
			return nil, fmt.Errorf("database.password is required in production")
		}
	}

	return config, nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
