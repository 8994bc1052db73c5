package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/flagx"
	"github.com/dmitrijs2005/guestgallery/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish "absent" from zero values so a partial file only overrides
// what it names. Durations accept "10s" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr            *string         `json:"http_addr"`
	GRPCAddr            *string         `json:"grpc_addr"`
	MetricsAddr         *string         `json:"metrics_addr"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SessionSecret       *string         `json:"session_secret"`
	SitePassword        *string         `json:"site_password"`
	SitePasswordHash    *string         `json:"site_password_hash"`
	SecureCookies       *bool           `json:"secure_cookies"`
	S3RootUser          *string         `json:"s3_root_user"`
	S3RootPassword      *string         `json:"s3_root_password"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	S3PublicURL         *string         `json:"s3_public_url"`
	StorageTimeout      *timex.Duration `json:"storage_timeout"`
	DatabaseTimeout     *timex.Duration `json:"database_timeout"`
	UploadRatePerMinute *int            `json:"upload_rate_per_minute"`
	UploadBurst         *int            `json:"upload_burst"`
	GuestCacheSize      *int            `json:"guest_cache_size"`
	GuestCacheTTL       *timex.Duration `json:"guest_cache_ttl"`
	StaticDir           *string         `json:"static_dir"`
	OTLPEndpoint        *string         `json:"otlp_endpoint"`
	LogFormat           *string         `json:"log_format"`
	CORSOrigins         []string        `json:"cors_origins"`
}

// parseJson overlays values from the file named by -c/-config. Without the
// flag nothing is loaded. An unreadable or invalid file panics, as the
// server cannot start with a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.SitePassword, c.SitePassword)
	setString(&config.SitePasswordHash, c.SitePasswordHash)
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setDuration(&config.StorageTimeout, c.StorageTimeout)
	setDuration(&config.DatabaseTimeout, c.DatabaseTimeout)
	setInt(&config.UploadRatePerMinute, c.UploadRatePerMinute)
	setInt(&config.UploadBurst, c.UploadBurst)
	setInt(&config.GuestCacheSize, c.GuestCacheSize)
	setDuration(&config.GuestCacheTTL, c.GuestCacheTTL)
	setString(&config.StaticDir, c.StaticDir)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
	setString(&config.LogFormat, c.LogFormat)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
