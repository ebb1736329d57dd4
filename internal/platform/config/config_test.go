package config

import "testing"

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/hrms",
		MaxBodyBytes:       10485760,
		MaxSelfieBytes:     5242880,
		RateLimitPerMinute: 60,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hrms")
	t.Setenv("MAX_BODY_BYTES", "")
	t.Setenv("MAX_SELFIE_BYTES", "")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate on defaults: %v", err)
	}
	if cfg.MaxBodyBytes < cfg.MaxSelfieBytes {
		t.Fatalf("default body limit %d is below selfie limit %d", cfg.MaxBodyBytes, cfg.MaxSelfieBytes)
	}
}

func TestValidateRejectsBodyLimitBelowSelfieLimit(t *testing.T) {
	cfg := validConfig()
	cfg.MaxBodyBytes = 1048576
	cfg.MaxSelfieBytes = 5242880

	if err := cfg.Validate(); err == nil {
		t.Fatal("body limit below selfie limit accepted")
	}
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = " "

	if err := cfg.Validate(); err == nil {
		t.Fatal("empty DATABASE_URL accepted")
	}
}

func TestValidateRejectsTinyBodyLimit(t *testing.T) {
	cfg := validConfig()
	cfg.MaxBodyBytes = 512
	cfg.MaxSelfieBytes = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("body limit under 1024 accepted")
	}
}
