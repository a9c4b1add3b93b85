// Package config loads runtime configuration shared by the NewsInsight server
// and CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then process environment
//     (see parseEnv).
//  3. Optional JSON or YAML file selected via -c or -config (see parseFile).
//  4. Command-line flags (see parseFlags).
//
// Later sources override earlier ones.
//
// # Backend selection
//
// BackendURL and BackendKey select the remote backend when both are present
// and are not the documented placeholders. Otherwise DatabaseDSN selects the
// Postgres backend, and with neither the in-memory mock is used. See
// (*Config).Strategy.
package config
