package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/nutriwise/backend/internal/oracle"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string
	ServerHost string
	// Empty means the local frontend origins.
	AllowedOrigins []string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Oracle-backed endpoints allow RateLimitRequests per RateLimitWindow.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Raw model output that fails extraction is archived here when set.
	ArchiveBucket string
	AWSRegion     string

	LogLevel string

	Oracle oracle.Config
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Env: env}

	var src source
	switch env {
	case CI:
		src = ciSource
	case Development, Test:
		src = devSource
	case Production:
		src = prodSource
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	if err := load(cfg, src); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	oracleCfg, err := oracle.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Oracle = oracleCfg
	if key := src("gemini_api_key", ""); key != "" {
		cfg.Oracle.APIKey = key
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// source resolves a setting by its secret name, falling back to def.
type source func(name, def string) string

// ciSource reads ONLY environment variables. Sensitive values come from the
// TEST_ prefixed variables provided by the CI runner.
func ciSource(name, def string) string {
	key := strings.ToUpper(name)
	switch name {
	case "db_password", "jwt_secret", "redis_password", "redis_url":
		key = "TEST_" + key
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// devSource prefers environment variables and falls back to Docker secrets.
func devSource(name, def string) string {
	if v := os.Getenv(strings.ToUpper(name)); v != "" {
		return v
	}
	if v := readSecret(name); v != "" {
		return v
	}
	return def
}

// prodSource prefers Docker secrets over environment variables.
func prodSource(name, def string) string {
	if v := readSecret(name); v != "" {
		return v
	}
	if v := os.Getenv(strings.ToUpper(name)); v != "" {
		return v
	}
	return def
}

func load(cfg *Config, get source) error {
	cfg.ServerPort = get("server_port", "8080")
	cfg.ServerHost = get("server_host", "0.0.0.0")
	for _, o := range strings.Split(get("cors_allowed_origins", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	cfg.DBDriver = strings.ToLower(get("db_driver", "postgres"))
	cfg.DBPath = get("db_path", "nutriwise.db")
	cfg.DBHost = get("db_host", "localhost")
	cfg.DBPort = get("db_port", "5432")
	cfg.DBUser = get("db_user", "")
	cfg.DBPassword = get("db_password", "")
	cfg.DBName = get("db_name", "nutriwise")
	cfg.DBSSLMode = get("db_ssl_mode", "disable")

	cfg.RedisHost = get("redis_host", "")
	cfg.RedisPort = get("redis_port", "6379")
	cfg.RedisPassword = get("redis_password", "")
	cfg.RedisURL = get("redis_url", "")
	redisDB, err := strconv.Atoi(get("redis_db", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	cfg.JWTSecret = get("jwt_secret", "")

	cfg.RateLimitRequests, err = strconv.Atoi(get("rate_limit_requests", "20"))
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}
	cfg.RateLimitWindow, err = time.ParseDuration(get("rate_limit_window", "1h"))
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	cfg.ArchiveBucket = get("archive_s3_bucket", "")
	cfg.AWSRegion = get("aws_region", "us-east-1")
	cfg.LogLevel = get("log_level", "info")
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether a Redis server has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
