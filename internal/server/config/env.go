package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/stargram/internal/flagx"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// defaultEnvFile is loaded when present and no -env flag is given.
const defaultEnvFile = ".env"

// envConfig mirrors Config for environment decoding. Unset string variables
// leave the current setting; numeric ones are applied whenever the variable
// is set, so an explicit 0 can switch a limit off.
type envConfig struct {
	EndpointAddrHTTP    string        `env:"STARGRAM_ADDR"`
	DatabaseDSN         string        `env:"STARGRAM_DATABASE_DSN"`
	DBMaxOpenConns      int           `env:"STARGRAM_DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns      int           `env:"STARGRAM_DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime   time.Duration `env:"STARGRAM_DB_CONN_MAX_LIFETIME"`
	LogFormat           string        `env:"STARGRAM_LOG_FORMAT"`
	LogLevel            string        `env:"STARGRAM_LOG_LEVEL"`
	SessionLifetime     time.Duration `env:"STARGRAM_SESSION_LIFETIME"`
	RequestTimeout      time.Duration `env:"STARGRAM_REQUEST_TIMEOUT"`
	ReadHeaderTimeout   time.Duration `env:"STARGRAM_READ_HEADER_TIMEOUT"`
	ReadTimeout         time.Duration `env:"STARGRAM_READ_TIMEOUT"`
	WriteTimeout        time.Duration `env:"STARGRAM_WRITE_TIMEOUT"`
	IdleTimeout         time.Duration `env:"STARGRAM_IDLE_TIMEOUT"`
	ShutdownTimeout     time.Duration `env:"STARGRAM_SHUTDOWN_TIMEOUT"`
	MaxUploadBytes      int64         `env:"STARGRAM_MAX_UPLOAD_BYTES"`
	MaxImageBytes       int64         `env:"STARGRAM_MAX_IMAGE_BYTES"`
	MaxCaptionBytes     int64         `env:"STARGRAM_MAX_CAPTION_BYTES"`
	MaxImagesPerFeed    int           `env:"STARGRAM_MAX_IMAGES_PER_FEED"`
	UploadRatePerSecond float64       `env:"STARGRAM_UPLOAD_RATE"`
	UploadRateBurst     int           `env:"STARGRAM_UPLOAD_BURST"`
	BlobBackend         string        `env:"STARGRAM_BLOB_BACKEND"`
	S3RootUser          string        `env:"STARGRAM_S3_USER"`
	S3RootPassword      string        `env:"STARGRAM_S3_PASSWORD"`
	S3Bucket            string        `env:"STARGRAM_S3_BUCKET"`
	S3Region            string        `env:"STARGRAM_S3_REGION"`
	S3BaseEndpoint      string        `env:"STARGRAM_S3_ENDPOINT"`
}

// parseEnv seeds the process environment from a dotenv file (the -env flag,
// or ./.env when it exists) and overlays every STARGRAM_* variable that is
// set onto config. godotenv never overrides variables that already exist.
func parseEnv(config *Config, args []string) error {
	if path := flagx.EnvFile(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return err
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	e := &envConfig{}
	if err := envdecode.Decode(e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return err
	}

	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setIfEnv(&config.DBMaxOpenConns, e.DBMaxOpenConns, "STARGRAM_DB_MAX_OPEN_CONNS")
	setIfEnv(&config.DBMaxIdleConns, e.DBMaxIdleConns, "STARGRAM_DB_MAX_IDLE_CONNS")
	setIfEnv(&config.DBConnMaxLifetime, e.DBConnMaxLifetime, "STARGRAM_DB_CONN_MAX_LIFETIME")
	setString(&config.LogFormat, e.LogFormat)
	setString(&config.LogLevel, e.LogLevel)
	setIfEnv(&config.SessionLifetime, e.SessionLifetime, "STARGRAM_SESSION_LIFETIME")
	setIfEnv(&config.RequestTimeout, e.RequestTimeout, "STARGRAM_REQUEST_TIMEOUT")
	setIfEnv(&config.ReadHeaderTimeout, e.ReadHeaderTimeout, "STARGRAM_READ_HEADER_TIMEOUT")
	setIfEnv(&config.ReadTimeout, e.ReadTimeout, "STARGRAM_READ_TIMEOUT")
	setIfEnv(&config.WriteTimeout, e.WriteTimeout, "STARGRAM_WRITE_TIMEOUT")
	setIfEnv(&config.IdleTimeout, e.IdleTimeout, "STARGRAM_IDLE_TIMEOUT")
	setIfEnv(&config.ShutdownTimeout, e.ShutdownTimeout, "STARGRAM_SHUTDOWN_TIMEOUT")
	setIfEnv(&config.MaxUploadBytes, e.MaxUploadBytes, "STARGRAM_MAX_UPLOAD_BYTES")
	setIfEnv(&config.MaxImageBytes, e.MaxImageBytes, "STARGRAM_MAX_IMAGE_BYTES")
	setIfEnv(&config.MaxCaptionBytes, e.MaxCaptionBytes, "STARGRAM_MAX_CAPTION_BYTES")
	setIfEnv(&config.MaxImagesPerFeed, e.MaxImagesPerFeed, "STARGRAM_MAX_IMAGES_PER_FEED")
	setIfEnv(&config.UploadRatePerSecond, e.UploadRatePerSecond, "STARGRAM_UPLOAD_RATE")
	setIfEnv(&config.UploadRateBurst, e.UploadRateBurst, "STARGRAM_UPLOAD_BURST")
	setString(&config.BlobBackend, e.BlobBackend)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// setIfEnv applies v when the variable key is set to a non-empty value,
// including an explicit zero.
func setIfEnv[T any](dst *T, v T, key string) {
	if os.Getenv(key) != "" {
		*dst = v
	}
}
