package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/stargram/internal/flagx"
)

// flagNames lists every flag parseFlags owns; anything else in args is
// dropped by flagx.FilterArgs before parsing.
var flagNames = []string{
	"-a", "-d", "-s", "-b",
	"-db-max-open-conns", "-db-max-idle-conns", "-db-conn-max-lifetime",
	"-log-level", "-log-format",
	"-request-timeout", "-shutdown-timeout",
	"-max-upload-bytes", "-max-image-bytes", "-max-caption-bytes", "-max-images",
	"-upload-rate", "-upload-burst",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g. ":8000")
//	-d string              PostgreSQL DSN
//	-s duration            session lifetime, 0 disables expiry
//	-b string              blob backend, "database" or "s3"
//	-db-max-open-conns int
//	-db-max-idle-conns int
//	-db-conn-max-lifetime duration
//	-log-level string      debug | info | warn | error
//	-log-format string     json | text
//	-request-timeout duration
//	-shutdown-timeout duration
//	-max-upload-bytes int  whole request body limit
//	-max-image-bytes int   single image limit
//	-max-caption-bytes int
//	-max-images int        images per feed, at most 255
//	-upload-rate float     feed uploads per second per client, 0 disables
//	-upload-burst int
//	-s3-user, -s3-password, -s3-bucket, -s3-region, -s3-endpoint string
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, flagNames)

	fs := flag.NewFlagSet("stargram", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.SessionLifetime, "s", config.SessionLifetime, "session lifetime (0 = until next login)")
	fs.StringVar(&config.BlobBackend, "b", config.BlobBackend, "blob backend (database|s3)")

	fs.IntVar(&config.DBMaxOpenConns, "db-max-open-conns", config.DBMaxOpenConns, "max open database connections")
	fs.IntVar(&config.DBMaxIdleConns, "db-max-idle-conns", config.DBMaxIdleConns, "max idle database connections")
	fs.DurationVar(&config.DBConnMaxLifetime, "db-conn-max-lifetime", config.DBConnMaxLifetime, "max database connection lifetime")

	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format (json|text)")

	fs.DurationVar(&config.RequestTimeout, "request-timeout", config.RequestTimeout, "request timeout")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "graceful shutdown timeout")

	fs.Int64Var(&config.MaxUploadBytes, "max-upload-bytes", config.MaxUploadBytes, "max upload request size")
	fs.Int64Var(&config.MaxImageBytes, "max-image-bytes", config.MaxImageBytes, "max single image size")
	fs.Int64Var(&config.MaxCaptionBytes, "max-caption-bytes", config.MaxCaptionBytes, "max caption size")
	fs.IntVar(&config.MaxImagesPerFeed, "max-images", config.MaxImagesPerFeed, "max images per feed")

	fs.Float64Var(&config.UploadRatePerSecond, "upload-rate", config.UploadRatePerSecond, "uploads per second per client")
	fs.IntVar(&config.UploadRateBurst, "upload-burst", config.UploadRateBurst, "upload burst per client")

	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(args)
}
