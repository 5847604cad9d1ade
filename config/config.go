package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Session       SessionConfig
	Audit         AuditConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// SessionConfig holds session provider configuration
type SessionConfig struct {
	TTL                time.Duration
	SweepInterval      time.Duration
	AllowedEmailDomain string // empty allows every domain
	CookieName         string
	// RoleAssignments seeds the role of known e-mail addresses. Everyone
	// else logs in with auth.DefaultRole.
	RoleAssignments map[string]auth.Role
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	BufferSize  int
	WorkerCount int
	Capacity    int // entries kept in memory before the oldest are dropped
}

// RateLimitConfig holds limits for unauthenticated endpoints
type RateLimitConfig struct {
	LoginPerMinute int
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	assignments, err := getEnvAsRoleMap("SESSION_ROLE_ASSIGNMENTS")
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Session: SessionConfig{
			TTL:                getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			SweepInterval:      getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
			AllowedEmailDomain: strings.ToLower(getEnv("SESSION_ALLOWED_EMAIL_DOMAIN", "drimsoft.com")),
			CookieName:         getEnv("SESSION_COOKIE_NAME", "session"),
			RoleAssignments:    assignments,
		},
		Audit: AuditConfig{
			BufferSize:  getEnvAsInt("AUDIT_BUFFER_SIZE", 1000),
			WorkerCount: getEnvAsInt("AUDIT_WORKER_COUNT", 2),
			Capacity:    getEnvAsInt("AUDIT_CAPACITY", 10000),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getEnvAsInt("RATE_LIMIT_LOGIN_PER_MINUTE", 10),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	// An open login in production would accept any mailbox
	if c.IsProduction() && c.Session.AllowedEmailDomain == "" {
		return fmt.Errorf("allowed email domain is required in production")
	}

	if c.Audit.BufferSize <= 0 || c.Audit.WorkerCount <= 0 || c.Audit.Capacity <= 0 {
		return fmt.Errorf("audit buffer size, worker count and capacity must be positive")
	}

	if c.RateLimit.LoginPerMinute <= 0 {
		return fmt.Errorf("login rate limit must be positive")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsRoleMap parses "email=role" pairs separated by commas. E-mail
// addresses are lower-cased; an unknown role or a malformed pair is an error.
func getEnvAsRoleMap(key string) (map[string]auth.Role, error) {
	out := make(map[string]auth.Role)
	for _, pair := range getEnvAsList(key, nil) {
		email, name, ok := strings.Cut(pair, "=")
		email = strings.ToLower(strings.TrimSpace(email))
		if !ok || email == "" {
			return nil, fmt.Errorf("%s: malformed assignment %q", key, pair)
		}
		role, err := auth.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[email] = role
	}
	return out, nil
}
