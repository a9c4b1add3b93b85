package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func noDotenv(t *testing.T) {
	t.Helper()
	orig := loadDotenv
	loadDotenv = func() {}
	t.Cleanup(func() { loadDotenv = orig })
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, PlaceholderBackendURL, c.BackendURL)
	assert.Equal(t, PlaceholderBackendKey, c.BackendKey)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 100*time.Millisecond, c.AuthEventDelay)
	assert.Equal(t, "newsinsight.db", c.PreferencesPath)
	assert.Equal(t, "slog", c.LogBackend)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.NATSURL)
	assert.False(t, c.MediaEnabled())
}

func TestLoadConfig_DefaultsSelectMock(t *testing.T) {
	noDotenv(t)
	withArgs(t)
	for _, k := range []string{EnvBackendURL, EnvBackendKey, EnvViteBackendURL, EnvViteBackendKey, EnvDatabaseDSN} {
		t.Setenv(k, "")
	}

	c := LoadConfig()
	require.NotNil(t, c)
	assert.True(t, c.UsesMock())
	assert.Equal(t, StrategyMock, c.Strategy())
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"nothing configured", Config{}, StrategyMock},
		{"placeholders", Config{BackendURL: PlaceholderBackendURL, BackendKey: PlaceholderBackendKey}, StrategyMock},
		{"real url placeholder key", Config{BackendURL: "https://abc.example", BackendKey: PlaceholderBackendKey}, StrategyMock},
		{"placeholder url real key", Config{BackendURL: PlaceholderBackendURL, BackendKey: "k"}, StrategyMock},
		{"missing key", Config{BackendURL: "https://abc.example"}, StrategyMock},
		{"real credentials", Config{BackendURL: "https://abc.example", BackendKey: "k"}, StrategyRemote},
		{"real credentials win over dsn", Config{BackendURL: "https://abc.example", BackendKey: "k", DatabaseDSN: "postgres://x"}, StrategyRemote},
		{"dsn only", Config{DatabaseDSN: "postgres://x"}, StrategyPostgres},
		{"dsn with placeholders", Config{BackendURL: PlaceholderBackendURL, BackendKey: PlaceholderBackendKey, DatabaseDSN: "postgres://x"}, StrategyPostgres},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Strategy())
			assert.Equal(t, tt.want == StrategyMock, tt.cfg.UsesMock())
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	c := Config{CORSOrigin: " http://localhost:5173/ ,, https://news.example "}
	assert.Equal(t, []string{"http://localhost:5173", "https://news.example"}, c.CORSOrigins())
	assert.Nil(t, (&Config{}).CORSOrigins())
}
