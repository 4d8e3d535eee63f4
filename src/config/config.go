package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RegistrationOpen   = "open"
	RegistrationInvite = "invite"
)

type Config struct {
	// HTTP server
	Port           string
	RequestTimeout time.Duration
	AllowedOrigins []string
	DemoMode       bool

	// Database
	DatabaseURL    string
	DBMaxConns     int
	MigrateOnStart bool

	// Auth
	JWTSecret        string
	TokenTTL         time.Duration
	RegistrationMode string

	// Logging
	LogLevel  string
	LogFormat string

	// Plaid, optional
	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	// parse problems found by Load, reported by Validate
	problems []string
}

// Load reads the configuration from the environment, after loading a .env
// file if one is present.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{}
	c.Port = getEnv("PORT", "8080")
	c.RequestTimeout = c.getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	c.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"))
	c.DemoMode = c.getEnvBool("DEMO_MODE", false)

	c.DatabaseURL = getEnv("DATABASE_URL", "")
	c.DBMaxConns = c.getEnvInt("DB_MAX_CONNS", 10)
	c.MigrateOnStart = c.getEnvBool("MIGRATE_ON_START", true)

	c.JWTSecret = getEnv("JWT_SECRET", "")
	c.TokenTTL = c.getEnvDuration("TOKEN_TTL", 168*time.Hour)
	c.RegistrationMode = strings.ToLower(getEnv("REGISTRATION_MODE", RegistrationInvite))

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))

	c.PlaidClientID = getEnv("PLAID_CLIENT_ID", "")
	c.PlaidSecret = getEnv("PLAID_SECRET", "")
	c.PlaidEnv = strings.ToLower(getEnv("PLAID_ENV", "sandbox"))
	return c
}

// PlaidEnabled reports whether bank import is configured.
func (c *Config) PlaidEnabled() bool {
	return c.PlaidClientID != "" && c.PlaidSecret != ""
}

func (c *Config) InviteOnly() bool {
	return c.RegistrationMode == RegistrationInvite
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	errors := append([]string(nil), c.problems...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required")
	} else if u, err := url.Parse(c.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		errors = append(errors, "DATABASE_URL must be a postgres:// or postgresql:// URL")
	}
	if c.DBMaxConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid DB_MAX_CONNS %d: must be at least 1", c.DBMaxConns))
	}

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid TOKEN_TTL %v: must be at least 1 minute", c.TokenTTL))
	}
	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid REQUEST_TIMEOUT %v: must be at least 1 second", c.RequestTimeout))
	}
	if c.RegistrationMode != RegistrationOpen && c.RegistrationMode != RegistrationInvite {
		errors = append(errors, fmt.Sprintf("invalid REGISTRATION_MODE '%s': must be open or invite", c.RegistrationMode))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid LOG_FORMAT '%s': must be text or json", c.LogFormat))
	}

	if (c.PlaidClientID == "") != (c.PlaidSecret == "") {
		errors = append(errors, "PLAID_CLIENT_ID and PLAID_SECRET must be set together")
	}
	if c.PlaidEnv != "sandbox" && c.PlaidEnv != "production" {
		errors = append(errors, fmt.Sprintf("invalid PLAID_ENV '%s': must be sandbox or production", c.PlaidEnv))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func (c *Config) getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': must be a number", key, value))
		return fallback
	}
	return i
}

func (c *Config) getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': must be a duration like 30s", key, value))
		return fallback
	}
	return d
}

func (c *Config) getEnvBool(key string, fallback bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': must be true or false", key, value))
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
