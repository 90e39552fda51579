package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SecurityHeadersConfig controls the security header middleware.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
}

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	AccessTokenTTL time.Duration

	// Two-factor
	TwoFactorEnabled bool
	TwoFactorCodeTTL time.Duration

	// Account lockout
	AccountLockEnabled     bool
	AccountLockMaxAttempts int
	AccountLockDuration    time.Duration
	InfiniteAttempts       bool

	// Captcha gate
	CaptchaEnabled bool

	// SMTP (optional)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Redis (optional, for the captcha challenge store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// HTTP hardening
	SecurityHeaders    SecurityHeadersConfig
	MaxRequestBodySize int64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "secure_login"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults: access token expiration is configured in
		// milliseconds, default 86400000 (24h)
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: time.Duration(getEnvInt("JWT_EXPIRATION_MS", 86400000)) * time.Millisecond,

		// Two-factor defaults
		TwoFactorEnabled: getEnvBool("TWO_FACTOR_ENABLED", true),
		TwoFactorCodeTTL: time.Duration(getEnvInt("TWO_FACTOR_CODE_EXPIRY_MINUTES", 10)) * time.Minute,

		// Lockout defaults
		AccountLockEnabled:     getEnvBool("ACCOUNT_LOCK_ENABLED", true),
		AccountLockMaxAttempts: getEnvInt("ACCOUNT_LOCK_MAX_ATTEMPTS", 3),
		AccountLockDuration:    time.Duration(getEnvInt("ACCOUNT_LOCK_DURATION_MINUTES", 30)) * time.Minute,
		InfiniteAttempts:       getEnvBool("INFINITE_ATTEMPTS_ENABLED", false),

		CaptchaEnabled: getEnvBool("ACTIVE_CAPTCHA", false),

		// SMTP (optional)
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),

		// Redis (optional)
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// HasSMTP returns true if the SMTP channel is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// HasRedis returns true if Redis is configured.
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
