package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/flagx"
)

// parseFlags applies command-line overrides.
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-d string   PostgreSQL DSN
//	-s string   session/token secret key
//	-k string   static API key
//	-t int      sliding session TTL, minutes
//	-r string   Redis URL for the session store
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket for receipt archive
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-l string   log backend: slog or zap
//
// Arguments are filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c) do not trip this FlagSet.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-t", "-r", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "static API key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session idle timeout (in minutes)")

	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "Redis URL for sessions")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 receipt bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
}
