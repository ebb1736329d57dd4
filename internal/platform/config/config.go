package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	JWTSecret            string
	DataEncryptionKey    string
	Environment          string
	AppBaseURL           string
	UploadDir            string
	ReportDir            string
	DefaultOfficeRadius  float64
	SeedOrgName          string
	SeedAdminEmail       string
	SeedAdminPassword    string
	EmailFrom            string
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
	RunMigrations        bool
	RunSeed              bool
	MaxBodyBytes         int64
	MaxSelfieBytes       int64
	RateLimitPerMinute   int
	OTPTTL               time.Duration
	SetupTokenTTL        time.Duration
	TempCleanupInterval  time.Duration
}

func Load() Config {
	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		DataEncryptionKey:   getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:         getEnv("APP_ENV", "development"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:8080"),
		UploadDir:           getEnv("UPLOAD_DIR", "storage/uploads"),
		ReportDir:           getEnv("REPORT_DIR", "storage/reports"),
		DefaultOfficeRadius: getEnvFloat("DEFAULT_OFFICE_RADIUS_METERS", 100),
		SeedOrgName:         getEnv("SEED_ORG_NAME", "Demo Organization"),
		SeedAdminEmail:      getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:        getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:          getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", false),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 10485760)),
		MaxSelfieBytes:      int64(getEnvInt("MAX_SELFIE_BYTES", 5242880)),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		OTPTTL:              getEnvDuration("OTP_TTL", 15*time.Minute),
		SetupTokenTTL:       getEnvDuration("SETUP_TOKEN_TTL", 72*time.Hour),
		TempCleanupInterval: getEnvDuration("TEMP_CLEANUP_INTERVAL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	// The global body limit wraps every POST body, selfie uploads included.
	if c.MaxSelfieBytes > c.MaxBodyBytes {
		return fmt.Errorf("MAX_BODY_BYTES (%d) must be at least MAX_SELFIE_BYTES (%d) or selfie uploads cannot fit", c.MaxBodyBytes, c.MaxSelfieBytes)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.DefaultOfficeRadius < 0 {
		return fmt.Errorf("DEFAULT_OFFICE_RADIUS_METERS must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
