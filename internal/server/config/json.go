package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/stargram/internal/flagx"
	"github.com/dmitrijs2005/stargram/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations use
// timex.Duration so both "15s" and integer nanoseconds are accepted.
// Fields left out of the file keep the value from earlier layers; numeric
// fields are pointers so an explicit 0 is still applied.
type JsonConfig struct {
	EndpointAddrHTTP    string          `json:"endpoint_addr_http"`
	DatabaseDSN         string          `json:"database_dsn"`
	DBMaxOpenConns      *int            `json:"db_max_open_conns"`
	DBMaxIdleConns      *int            `json:"db_max_idle_conns"`
	DBConnMaxLifetime   *timex.Duration `json:"db_conn_max_lifetime"`
	LogFormat           string          `json:"log_format"`
	LogLevel            string          `json:"log_level"`
	SessionLifetime     *timex.Duration `json:"session_lifetime"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	ReadHeaderTimeout   *timex.Duration `json:"read_header_timeout"`
	ReadTimeout         *timex.Duration `json:"read_timeout"`
	WriteTimeout        *timex.Duration `json:"write_timeout"`
	IdleTimeout         *timex.Duration `json:"idle_timeout"`
	ShutdownTimeout     *timex.Duration `json:"shutdown_timeout"`
	MaxUploadBytes      *int64          `json:"max_upload_bytes"`
	MaxImageBytes       *int64          `json:"max_image_bytes"`
	MaxCaptionBytes     *int64          `json:"max_caption_bytes"`
	MaxImagesPerFeed    *int            `json:"max_images_per_feed"`
	UploadRatePerSecond *float64        `json:"upload_rate_per_second"`
	UploadRateBurst     *int            `json:"upload_rate_burst"`
	BlobBackend         string          `json:"blob_backend"`
	S3RootUser          string          `json:"s3_root_user"`
	S3RootPassword      string          `json:"s3_root_password"`
	S3Bucket            string          `json:"s3_bucket"`
	S3Region            string          `json:"s3_region"`
	S3BaseEndpoint      string          `json:"s3_base_endpoint"`
}

// parseJson overlays the JSON file named by -c or -config onto config.
// Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setPtr(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setPtr(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setDuration(&config.DBConnMaxLifetime, c.DBConnMaxLifetime)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setDuration(&config.SessionLifetime, c.SessionLifetime)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.ReadHeaderTimeout, c.ReadHeaderTimeout)
	setDuration(&config.ReadTimeout, c.ReadTimeout)
	setDuration(&config.WriteTimeout, c.WriteTimeout)
	setDuration(&config.IdleTimeout, c.IdleTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setPtr(&config.MaxUploadBytes, c.MaxUploadBytes)
	setPtr(&config.MaxImageBytes, c.MaxImageBytes)
	setPtr(&config.MaxCaptionBytes, c.MaxCaptionBytes)
	setPtr(&config.MaxImagesPerFeed, c.MaxImagesPerFeed)
	setPtr(&config.UploadRatePerSecond, c.UploadRatePerSecond)
	setPtr(&config.UploadRateBurst, c.UploadRateBurst)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
