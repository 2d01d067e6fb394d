package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MailBackendSMTP = "smtp"
	MailBackendLog  = "log"
)

type Config struct {
	Environment string
	ServerPort  string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string

	JWTSecret           string
	JWTExpiry           time.Duration
	ConfirmationCodeTTL time.Duration

	Mail MailConfig

	PageSize    int
	MaxPageSize int

	// Rate limiting
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
	RateLimitBlockTime   time.Duration

	CORSOrigins []string
}

type MailConfig struct {
	Backend  string
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func Load() *Config {
	// A missing .env is fine: containers pass plain environment variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", ":8080"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),

		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTExpiry:           getEnvAsDuration("JWT_EXPIRY", "24h"),
		ConfirmationCodeTTL: getEnvAsDuration("CONFIRMATION_CODE_TTL", "72h"),

		Mail: MailConfig{
			Backend:  getEnv("MAIL_BACKEND", MailBackendLog),
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "noreply@yamdb.local"),
		},

		PageSize:    getEnvAsInt("PAGE_SIZE", 10),
		MaxPageSize: getEnvAsInt("MAX_PAGE_SIZE", 100),

		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 20),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		RateLimitBlockTime:   getEnvAsDuration("RATE_LIMIT_BLOCK_TIME", "5m"),

		CORSOrigins: getEnvAsList("CORS_ORIGINS"),
	}
}

// Validate reports the first configuration problem that would prevent the
// server from starting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.Mail.Backend {
	case MailBackendLog:
	case MailBackendSMTP:
		if c.Mail.Host == "" {
			return errors.New("SMTP_HOST is required when MAIL_BACKEND=smtp")
		}
	default:
		return fmt.Errorf("unsupported MAIL_BACKEND %q", c.Mail.Backend)
	}
	if c.PageSize <= 0 || c.MaxPageSize < c.PageSize {
		return fmt.Errorf("invalid pagination: PAGE_SIZE=%d MAX_PAGE_SIZE=%d", c.PageSize, c.MaxPageSize)
	}
	if c.JWTExpiry <= 0 || c.ConfirmationCodeTTL <= 0 {
		return errors.New("JWT_EXPIRY and CONFIRMATION_CODE_TTL must be positive")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsInt retrieves environment variable as int with default value
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %d", key, defaultVal)
		return defaultVal
	}
	return val
}

// getEnvAsDuration retrieves environment variable as duration with default value
func getEnvAsDuration(key string, defaultVal string) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	duration, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %s", key, defaultVal)
		duration, _ = time.ParseDuration(defaultVal)
	}
	return duration
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
