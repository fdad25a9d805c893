package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session backends selectable through SESSION_BACKEND.
const (
	SessionBackendFile     = "file"
	SessionBackendS3       = "s3"
	SessionBackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Remote   RemoteConfig
	Session  SessionConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Language string
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// RemoteConfig points at the remote JSON record store.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration // zero disables the client-side timeout
}

// SessionConfig selects where the signed-in user is persisted.
type SessionConfig struct {
	Backend string
	File    string
}

// DatabaseConfig holds database-related configuration. Only used by the
// postgres session backend.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey           string // optional; empty leaves the front API unguarded
	RecoveryCooldown time.Duration
}

// S3Config holds AWS S3 configuration for the session backend.
type S3Config struct {
	Bucket string
	Region string
	Prefix string // Path prefix within bucket (e.g., "sessions/")
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:3000"),
			Timeout: getEnvAsDuration("REMOTE_TIMEOUT", 0),
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", SessionBackendFile),
			File:    getEnv("SESSION_FILE", "session.json"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "restoledger"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 4),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 1),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey:           getEnv("API_KEY", ""),
			RecoveryCooldown: getEnvAsDuration("RECOVERY_COOLDOWN", 60*time.Second),
		},
		S3: S3Config{
			Bucket: getEnv("S3_BUCKET", ""),
			Region: getEnv("S3_REGION", "us-east-1"),
			Prefix: getEnv("S3_PREFIX", "sessions/"),
		},
		Language: getEnv("LANGUAGE", "es"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid remote base URL: %q", c.Remote.BaseURL)
	}

	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote timeout cannot be negative")
	}

	if c.Auth.RecoveryCooldown <= 0 {
		return fmt.Errorf("recovery cooldown must be positive")
	}

	if c.Language != "es" && c.Language != "en" {
		return fmt.Errorf("invalid language: %s (must be es or en)", c.Language)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Session.File == "" {
		return fmt.Errorf("session file is required")
	}

	switch c.Session.Backend {
	case SessionBackendFile:
	case SessionBackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required for the s3 session backend")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required for the s3 session backend")
		}
	case SessionBackendPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be file, s3, or postgres)", c.Session.Backend)
	}

	return nil
}

// Validate checks the settings needed to open a connection pool.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
