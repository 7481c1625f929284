package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env           string
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Payments      PaymentsConfig
	Notifications NotificationsConfig
	Scheduler     SchedulerConfig
	CORS          CORSConfig
	OTEL          OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies
	// allowed to report the client address in forwarding headers
	TrustedProxies []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	MigrateOnBoot bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds token issuing configuration
type AuthConfig struct {
	JWTSecret   string
	Issuer      string
	TokenTTL    time.Duration
	AdminEmails []string
}

// PaymentsConfig holds payment gateway configuration
type PaymentsConfig struct {
	Provider    string
	PublicKey   string
	SecretKey   string
	BaseURL     string
	Currency    string
	CallbackURL string
}

// NotificationsConfig holds lead notification configuration
type NotificationsConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SalesInbox     string
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled       bool
	FollowUpCron  string
	FollowUpAfter time.Duration
}

// CORSConfig holds allowed origins
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			TrustedProxies: getEnvAsList("SERVER_TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnvAsInt("DB_PORT", 5432),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			Database:      getEnv("DB_NAME", "agencysite"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrateOnBoot: getEnvAsBool("DB_MIGRATE_ON_BOOT", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			Issuer:      getEnv("JWT_ISSUER", "agencysite"),
			TokenTTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
			AdminEmails: getEnvAsList("ADMIN_EMAILS", nil),
		},
		Payments: PaymentsConfig{
			Provider:    getEnv("PAYMENT_PROVIDER", "mock"),
			PublicKey:   getEnv("PAYMENT_PUBLIC_KEY", ""),
			SecretKey:   getEnv("PAYMENT_SECRET_KEY", ""),
			BaseURL:     getEnv("PAYMENT_BASE_URL", "https://api.paystack.co"),
			Currency:    getEnv("PAYMENT_CURRENCY", "USD"),
			CallbackURL: getEnv("PAYMENT_CALLBACK_URL", ""),
		},
		Notifications: NotificationsConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("NOTIFY_FROM_EMAIL", "hello@codequill.agency"),
			FromName:       getEnv("NOTIFY_FROM_NAME", "CodeQuill"),
			SalesInbox:     getEnv("NOTIFY_SALES_INBOX", "sales@codequill.agency"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       getEnvAsBool("SCHEDULER_ENABLED", true),
			FollowUpCron:  getEnv("FOLLOW_UP_CRON", "0 9 * * *"),
			FollowUpAfter: getEnvAsDuration("FOLLOW_UP_AFTER", 72*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "agencysite-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot fall back to a default
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set outside development")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}
	switch c.Payments.Provider {
	case "mock":
	case "paystack":
		if c.Payments.PublicKey == "" || c.Payments.SecretKey == "" {
			return fmt.Errorf("PAYMENT_PUBLIC_KEY and PAYMENT_SECRET_KEY must be set for provider %q", c.Payments.Provider)
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.Payments.Provider)
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a single
// host range.
func (c *ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid SERVER_TRUSTED_PROXIES entry %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsAdminEmail reports whether email is configured as an administrator
func (c *AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if strings.ToLower(admin) == email {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
