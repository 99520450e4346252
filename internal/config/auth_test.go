package config

import (
	"net/http"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadAuth_MissingSecretsFail(t *testing.T) {
	_, err := LoadAuth(envMap(map[string]string{
		"REFRESH_TOKEN_SECRET": "r",
	}))
	if err == nil {
		t.Fatal("expected error when ACCESS_TOKEN_SECRET is missing")
	}

	_, err = LoadAuth(envMap(map[string]string{
		"ACCESS_TOKEN_SECRET": "a",
	}))
	if err == nil {
		t.Fatal("expected error when REFRESH_TOKEN_SECRET is missing")
	}
}

func TestLoadAuth_Defaults(t *testing.T) {
	cfg, err := LoadAuth(envMap(map[string]string{
		"ACCESS_TOKEN_SECRET":  "a",
		"REFRESH_TOKEN_SECRET": "r",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected default access TTL 15m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 30*24*time.Hour {
		t.Errorf("expected default refresh TTL 30d, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.CookieSecure {
		t.Error("expected insecure cookies outside production")
	}
	if cfg.CookieSameSite != http.SameSiteLaxMode {
		t.Error("expected SameSite=Lax outside production")
	}
}

func TestLoadAuth_ExplicitTTLs(t *testing.T) {
	cfg, err := LoadAuth(envMap(map[string]string{
		"ACCESS_TOKEN_SECRET":         "a",
		"REFRESH_TOKEN_SECRET":        "r",
		"ACCESS_TOKEN_EXPIRY_MINUTES": "5",
		"REFRESH_TOKEN_EXPIRY_DAYS":   "7",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("expected 7d, got %v", cfg.RefreshTokenTTL)
	}
}

func TestLoadAuth_InvalidTTLFallsBack(t *testing.T) {
	cfg, err := LoadAuth(envMap(map[string]string{
		"ACCESS_TOKEN_SECRET":         "a",
		"REFRESH_TOKEN_SECRET":        "r",
		"ACCESS_TOKEN_EXPIRY_MINUTES": "nope",
		"REFRESH_TOKEN_EXPIRY_DAYS":   "-3",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected fallback access TTL, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 30*24*time.Hour {
		t.Errorf("expected fallback refresh TTL, got %v", cfg.RefreshTokenTTL)
	}
}

func TestLoadAuth_Production(t *testing.T) {
	cfg, err := LoadAuth(envMap(map[string]string{
		"ACCESS_TOKEN_SECRET":  "a",
		"REFRESH_TOKEN_SECRET": "r",
		"APP_ENV":              "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.CookieSecure {
		t.Error("expected secure cookies in production")
	}
	if cfg.CookieSameSite != http.SameSiteStrictMode {
		t.Error("expected SameSite=Strict in production")
	}
}
