package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/flagx"
)

// FlagNames lists the command-line flags parsed by parseFlags.
var FlagNames = []string{"-a", "-u", "-k", "-d", "-n", "-s", "-t", "-w", "-p", "-b", "-e", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-u string   backend base URL
//	-k string   backend access key
//	-d string   PostgreSQL DSN
//	-n string   NATS URL for realtime events
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-w int      auth event delay, milliseconds
//	-p string   preferences SQLite file
//	-b string   S3 bucket for verification media
//	-e string   S3 base endpoint
//	-l string   log backend (slog|zap)
//
// os.Args is filtered with flagx.FilterArgs first, so subcommands and their
// own flags (see internal/cli) pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], FlagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.BackendURL, "u", config.BackendURL, "backend base URL")
	fs.StringVar(&config.BackendKey, "k", config.BackendKey, "backend access key")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.NATSURL, "n", config.NATSURL, "NATS URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	eventDelay := fs.Int("w", int(config.AuthEventDelay.Milliseconds()), "auth event delay (in milliseconds)")

	fs.StringVar(&config.PreferencesPath, "p", config.PreferencesPath, "preferences database file")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.AuthEventDelay = time.Duration(*eventDelay) * time.Millisecond
}
