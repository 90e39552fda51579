package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required JWT_SECRET
	os.Setenv("JWT_SECRET", "test-secret-key")
	defer os.Unsetenv("JWT_SECRET")

	// Clear any other env vars that might interfere
	envVars := []string{
		"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "JWT_EXPIRATION_MS", "TWO_FACTOR_ENABLED",
		"TWO_FACTOR_CODE_EXPIRY_MINUTES", "ACCOUNT_LOCK_ENABLED", "ACCOUNT_LOCK_MAX_ATTEMPTS",
		"ACCOUNT_LOCK_DURATION_MINUTES", "INFINITE_ATTEMPTS_ENABLED", "ACTIVE_CAPTCHA",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 24*time.Hour)
	}
	if !cfg.TwoFactorEnabled {
		t.Error("TwoFactorEnabled should default to true")
	}
	if cfg.TwoFactorCodeTTL != 10*time.Minute {
		t.Errorf("TwoFactorCodeTTL = %v, want %v", cfg.TwoFactorCodeTTL, 10*time.Minute)
	}
	if !cfg.AccountLockEnabled {
		t.Error("AccountLockEnabled should default to true")
	}
	if cfg.AccountLockMaxAttempts != 3 {
		t.Errorf("AccountLockMaxAttempts = %d, want %d", cfg.AccountLockMaxAttempts, 3)
	}
	if cfg.AccountLockDuration != 30*time.Minute {
		t.Errorf("AccountLockDuration = %v, want %v", cfg.AccountLockDuration, 30*time.Minute)
	}
	if cfg.InfiniteAttempts {
		t.Error("InfiniteAttempts should default to false")
	}
	if cfg.CaptchaEnabled {
		t.Error("CaptchaEnabled should default to false")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "custom-secret")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("JWT_EXPIRATION_MS", "3600000")
	os.Setenv("ACCOUNT_LOCK_MAX_ATTEMPTS", "5")
	os.Setenv("INFINITE_ATTEMPTS_ENABLED", "true")
	os.Setenv("ACTIVE_CAPTCHA", "true")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("JWT_EXPIRATION_MS")
		os.Unsetenv("ACCOUNT_LOCK_MAX_ATTEMPTS")
		os.Unsetenv("INFINITE_ATTEMPTS_ENABLED")
		os.Unsetenv("ACTIVE_CAPTCHA")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, time.Hour)
	}
	if cfg.AccountLockMaxAttempts != 5 {
		t.Errorf("AccountLockMaxAttempts = %d, want %d", cfg.AccountLockMaxAttempts, 5)
	}
	if !cfg.InfiniteAttempts {
		t.Error("InfiniteAttempts should be enabled")
	}
	if !cfg.CaptchaEnabled {
		t.Error("CaptchaEnabled should be enabled")
	}
}

func TestHasSMTP(t *testing.T) {
	cfg := &Config{}
	if cfg.HasSMTP() {
		t.Error("HasSMTP should be false without host and from")
	}
	cfg.SMTPHost = "smtp.example.com"
	if cfg.HasSMTP() {
		t.Error("HasSMTP should be false without from address")
	}
	cfg.SMTPFrom = "noreply@example.com"
	if !cfg.HasSMTP() {
		t.Error("HasSMTP should be true with host and from")
	}
}

func TestHasRedis(t *testing.T) {
	cfg := &Config{}
	if cfg.HasRedis() {
		t.Error("HasRedis should be false without addr")
	}
	cfg.RedisAddr = "localhost:6379"
	if !cfg.HasRedis() {
		t.Error("HasRedis should be true with addr")
	}
}
