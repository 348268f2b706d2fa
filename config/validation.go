package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequiredFields []string
	// RequiredPostgres applies only when DB_DRIVER is postgres.
	RequiredPostgres []string
	MinJWTSecretLen  int
}

var requirements = map[Environment]ConfigRequirements{
	Development: {
		RequiredFields:   []string{"jwt_secret"},
		RequiredPostgres: []string{"db_host", "db_port", "db_user", "db_name"},
	},
	Test: {
		RequiredFields: []string{"jwt_secret"},
	},
	CI: {
		RequiredFields:   []string{"jwt_secret"},
		RequiredPostgres: []string{"db_host", "db_port", "db_user", "db_password", "db_name"},
	},
	Production: {
		RequiredFields:   []string{"jwt_secret", "server_port"},
		RequiredPostgres: []string{"db_host", "db_port", "db_user", "db_password", "db_name", "db_ssl_mode"},
		MinJWTSecretLen:  32,
	},
}

func (c *Config) field(name string) string {
	switch name {
	case "server_port":
		return c.ServerPort
	case "jwt_secret":
		return c.JWTSecret
	case "db_host":
		return c.DBHost
	case "db_port":
		return c.DBPort
	case "db_user":
		return c.DBUser
	case "db_password":
		return c.DBPassword
	case "db_name":
		return c.DBName
	case "db_ssl_mode":
		return c.DBSSLMode
	}
	return ""
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Env]
	var errs []ValidationError

	for _, name := range reqs.RequiredFields {
		if cfg.field(name) == "" {
			errs = append(errs, ValidationError{Field: name, Message: "is required"})
		}
	}

	switch cfg.DBDriver {
	case "postgres":
		for _, name := range reqs.RequiredPostgres {
			if cfg.field(name) == "" {
				errs = append(errs, ValidationError{Field: name, Message: "is required for the postgres driver"})
			}
		}
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "db_path", Message: "is required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{Field: "db_driver", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if reqs.MinJWTSecretLen > 0 && cfg.JWTSecret != "" && len(cfg.JWTSecret) < reqs.MinJWTSecretLen {
		errs = append(errs, ValidationError{Field: "jwt_secret", Message: fmt.Sprintf("must be at least %d characters", reqs.MinJWTSecretLen)})
	}
	if cfg.RateLimitRequests < 0 {
		errs = append(errs, ValidationError{Field: "rate_limit_requests", Message: "must not be negative"})
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{Field: "rate_limit_window", Message: "must be positive"})
	}
	if err := cfg.Oracle.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "oracle", Message: err.Error()})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
