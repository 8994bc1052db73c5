package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/guestgallery/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string   S3 public base URL
//	-l string   log format: json, text or console
//
// The site password is deliberately not accepted as a flag so it never shows
// up in process listings.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"a", "g", "m", "d", "s", "u", "p", "b", "r", "e", "w", "l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run gRPC health server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to expose metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicURL, "w", config.S3PublicURL, "public base URL for stored photos")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (json, text, console)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
