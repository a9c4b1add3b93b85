package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. The VITE_* pair is what the dashboard build
// already exports, so it is accepted as a fallback for the backend values.
const (
	EnvBackendURL       = "NEWSINSIGHT_BACKEND_URL"
	EnvBackendKey       = "NEWSINSIGHT_BACKEND_KEY"
	EnvViteBackendURL   = "VITE_SUPABASE_URL"
	EnvViteBackendKey   = "VITE_SUPABASE_ANON_KEY"
	EnvDatabaseDSN      = "NEWSINSIGHT_DATABASE_DSN"
	EnvNATSURL          = "NEWSINSIGHT_NATS_URL"
	EnvEndpointAddrHTTP = "NEWSINSIGHT_HTTP_ADDR"
	EnvSecretKey        = "NEWSINSIGHT_SECRET_KEY"
	EnvTokenValidity    = "NEWSINSIGHT_ACCESS_TOKEN_TTL"
	EnvAuthEventDelay   = "NEWSINSIGHT_AUTH_EVENT_DELAY"
	EnvPreferencesPath  = "NEWSINSIGHT_PREFERENCES_PATH"
	EnvS3RootUser       = "NEWSINSIGHT_S3_ROOT_USER"
	EnvS3RootPassword   = "NEWSINSIGHT_S3_ROOT_PASSWORD"
	EnvS3Bucket         = "NEWSINSIGHT_S3_BUCKET"
	EnvS3Region         = "NEWSINSIGHT_S3_REGION"
	EnvS3BaseEndpoint   = "NEWSINSIGHT_S3_BASE_ENDPOINT"
	EnvCORSOrigin       = "CORS_ORIGIN"
	EnvLogBackend       = "NEWSINSIGHT_LOG_BACKEND"
)

// loadDotenv is a seam for tests.
var loadDotenv = func() { _ = godotenv.Load() }

// parseEnv overlays values from a .env file (if present) and the process
// environment. Unset or empty variables leave the current value alone;
// malformed durations are ignored.
func parseEnv(c *Config) {
	loadDotenv()

	setString(&c.BackendURL, EnvViteBackendURL)
	setString(&c.BackendURL, EnvBackendURL)
	setString(&c.BackendKey, EnvViteBackendKey)
	setString(&c.BackendKey, EnvBackendKey)
	setString(&c.DatabaseDSN, EnvDatabaseDSN)
	setString(&c.NATSURL, EnvNATSURL)
	setString(&c.EndpointAddrHTTP, EnvEndpointAddrHTTP)
	setString(&c.SecretKey, EnvSecretKey)
	setDuration(&c.AccessTokenValidityDuration, EnvTokenValidity)
	setDuration(&c.AuthEventDelay, EnvAuthEventDelay)
	setString(&c.PreferencesPath, EnvPreferencesPath)
	setString(&c.S3RootUser, EnvS3RootUser)
	setString(&c.S3RootPassword, EnvS3RootPassword)
	setString(&c.S3Bucket, EnvS3Bucket)
	setString(&c.S3Region, EnvS3Region)
	setString(&c.S3BaseEndpoint, EnvS3BaseEndpoint)
	setString(&c.CORSOrigin, EnvCORSOrigin)
	setString(&c.LogBackend, EnvLogBackend)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts "100ms"-style strings or a bare number of milliseconds.
func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
	}
}
