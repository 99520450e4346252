package config

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"finfolio-backend/internal/apperrors"
)

const (
	defaultAccessTokenExpiryMinutes = 15
	defaultRefreshTokenExpiryDays   = 30
)

// Auth holds every auth-related setting, materialized once at boot. Missing
// signing secrets abort startup; everything else has a dev-friendly default.
type Auth struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CookieSecure       bool
	CookieSameSite     http.SameSite
}

func LoadAuth(getEnv func(string) string) (*Auth, error) {
	accessSecret := strings.TrimSpace(getEnv("ACCESS_TOKEN_SECRET"))
	refreshSecret := strings.TrimSpace(getEnv("REFRESH_TOKEN_SECRET"))
	if accessSecret == "" {
		return nil, apperrors.Configuration("ACCESS_TOKEN_SECRET is not set")
	}
	if refreshSecret == "" {
		return nil, apperrors.Configuration("REFRESH_TOKEN_SECRET is not set")
	}

	accessMinutes := envInt(getEnv, "ACCESS_TOKEN_EXPIRY_MINUTES", defaultAccessTokenExpiryMinutes)
	refreshDays := envInt(getEnv, "REFRESH_TOKEN_EXPIRY_DAYS", defaultRefreshTokenExpiryDays)

	cfg := &Auth{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenTTL:     time.Duration(accessMinutes) * time.Minute,
		RefreshTokenTTL:    time.Duration(refreshDays) * 24 * time.Hour,
		CookieSecure:       false,
		CookieSameSite:     http.SameSiteLaxMode,
	}
	if getEnv("APP_ENV") == "production" {
		cfg.CookieSecure = true
		cfg.CookieSameSite = http.SameSiteStrictMode
	}
	return cfg, nil
}

func envInt(getEnv func(string) string, key string, fallback int) int {
	v := strings.TrimSpace(getEnv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
