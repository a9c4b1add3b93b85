package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	withArgs(t,
		"news", "--limit", "5",
		"-a", "127.0.0.1:9090", "-u", "https://abc.example", "-k", "anon",
		"-d", "dsn", "-n", "nats://n", "-s", "secret", "-t", "3", "-w", "40",
		"-p", "prefs.db", "-b", "bucket", "-e", "http://minio:9000", "-l", "zap",
	)

	c := &Config{}
	require.NotPanics(t, func() { parseFlags(c) })

	want := &Config{
		EndpointAddrHTTP:            "127.0.0.1:9090",
		BackendURL:                  "https://abc.example",
		BackendKey:                  "anon",
		DatabaseDSN:                 "dsn",
		NATSURL:                     "nats://n",
		SecretKey:                   "secret",
		AccessTokenValidityDuration: 3 * time.Minute,
		AuthEventDelay:              40 * time.Millisecond,
		PreferencesPath:             "prefs.db",
		S3Bucket:                    "bucket",
		S3BaseEndpoint:              "http://minio:9000",
		LogBackend:                  "zap",
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestParseFlags_KeepsCurrentValues(t *testing.T) {
	withArgs(t)

	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 100*time.Millisecond, c.AuthEventDelay)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}

func TestParseFlags_BadValuePanics(t *testing.T) {
	withArgs(t, "-t", "soon")
	require.Panics(t, func() { parseFlags(&Config{}) })
}
