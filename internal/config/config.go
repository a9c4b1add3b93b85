package config

import (
	"strings"
	"time"
)

// Placeholder credentials shipped in sample env files. Either one present
// means "no real backend configured".
const (
	PlaceholderBackendURL = "https://your-project.supabase.co"
	PlaceholderBackendKey = "your-anon-key-here"
)

// Backend strategies returned by (*Config).Strategy.
const (
	StrategyMock     = "mock"
	StrategyPostgres = "postgres"
	StrategyRemote   = "remote"
)

// Config holds runtime settings.
//
// Fields:
//   - BackendURL / BackendKey: hosted backend base URL and access key.
//   - DatabaseDSN: PostgreSQL DSN (pgx) for the self-hosted backend.
//   - NATSURL: realtime hub; empty keeps change events in-process.
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - SecretKey: HMAC secret for API access tokens (HS256).
//   - AccessTokenValidityDuration: lifetime of API access tokens.
//   - AuthEventDelay: delay between a sign-in/out and listener notification.
//   - PreferencesPath: SQLite file holding the theme preference.
//   - S3*: object storage for verification media; empty bucket disables it.
//   - CORSOrigin: comma-separated list of allowed dashboard origins.
//   - LogBackend: "slog" or "zap".
type Config struct {
	BackendURL                  string
	BackendKey                  string
	DatabaseDSN                 string
	NATSURL                     string
	EndpointAddrHTTP            string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	AuthEventDelay              time.Duration
	PreferencesPath             string
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	CORSOrigin                  string
	LogBackend                  string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.BackendURL = PlaceholderBackendURL
	c.BackendKey = PlaceholderBackendKey
	c.EndpointAddrHTTP = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.AuthEventDelay = 100 * time.Millisecond
	c.PreferencesPath = "newsinsight.db"
	c.S3Region = "us-east-1"
	c.CORSOrigin = "http://localhost:5173"
	c.LogBackend = "slog"
}

// LoadConfig builds a Config by applying defaults, then the environment,
// an optional config file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}

// HasRemoteCredentials reports whether both backend values are present and
// neither is a placeholder.
func (c *Config) HasRemoteCredentials() bool {
	if c.BackendURL == "" || c.BackendKey == "" {
		return false
	}
	return c.BackendURL != PlaceholderBackendURL && c.BackendKey != PlaceholderBackendKey
}

// UsesMock reports whether the in-memory backend will be selected.
func (c *Config) UsesMock() bool {
	return c.Strategy() == StrategyMock
}

// Strategy names the backend chosen for this configuration.
func (c *Config) Strategy() string {
	switch {
	case c.HasRemoteCredentials():
		return StrategyRemote
	case c.DatabaseDSN != "":
		return StrategyPostgres
	default:
		return StrategyMock
	}
}

// MediaEnabled reports whether object storage is configured.
func (c *Config) MediaEnabled() bool {
	return c.S3Bucket != ""
}

// CORSOrigins splits CORSOrigin on commas, trimming blanks and trailing
// slashes.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, p := range strings.Split(c.CORSOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
