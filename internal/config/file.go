package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/newsinsight/internal/flagx"
	"github.com/dmitrijs2005/newsinsight/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so both "100ms" and integer nanoseconds are accepted.
// Empty fields do not override earlier sources.
type FileConfig struct {
	BackendURL                  string         `json:"backend_url" yaml:"backend_url"`
	BackendKey                  string         `json:"backend_key" yaml:"backend_key"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	NATSURL                     string         `json:"nats_url" yaml:"nats_url"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	AuthEventDelay              timex.Duration `json:"auth_event_delay" yaml:"auth_event_delay"`
	PreferencesPath             string         `json:"preferences_path" yaml:"preferences_path"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	CORSOrigin                  string         `json:"cors_origin" yaml:"cors_origin"`
	LogBackend                  string         `json:"log_backend" yaml:"log_backend"`
}

// parseFile loads the file named by -c/-config into c. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON. A missing or
// malformed file panics: the operator asked for it explicitly.
func parseFile(c *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(c)
}

func (fc *FileConfig) apply(c *Config) {
	overlay(&c.BackendURL, fc.BackendURL)
	overlay(&c.BackendKey, fc.BackendKey)
	overlay(&c.DatabaseDSN, fc.DatabaseDSN)
	overlay(&c.NATSURL, fc.NATSURL)
	overlay(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	overlay(&c.SecretKey, fc.SecretKey)
	overlay(&c.PreferencesPath, fc.PreferencesPath)
	overlay(&c.S3RootUser, fc.S3RootUser)
	overlay(&c.S3RootPassword, fc.S3RootPassword)
	overlay(&c.S3Bucket, fc.S3Bucket)
	overlay(&c.S3Region, fc.S3Region)
	overlay(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	overlay(&c.CORSOrigin, fc.CORSOrigin)
	overlay(&c.LogBackend, fc.LogBackend)

	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.AuthEventDelay.Duration > 0 {
		c.AuthEventDelay = fc.AuthEventDelay.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
