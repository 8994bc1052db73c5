package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests. godotenv never overrides variables that are
// already set, so the real environment wins over .env.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays values from environment variables. A .env file in the
// working directory is loaded first when present. SITE_PASSWORD and
// OTEL_EXPORTER_OTLP_ENDPOINT keep their conventional names; everything else
// uses the GALLERY_ prefix. Malformed numbers, booleans or durations panic.
func parseEnv(config *Config) {
	_ = loadDotEnv()

	envString("GALLERY_HTTP_ADDR", &config.HTTPAddr)
	envString("GALLERY_GRPC_ADDR", &config.GRPCAddr)
	envString("GALLERY_METRICS_ADDR", &config.MetricsAddr)
	envString("GALLERY_DATABASE_DSN", &config.DatabaseDSN)
	envString("GALLERY_SESSION_SECRET", &config.SessionSecret)
	envString("SITE_PASSWORD", &config.SitePassword)
	envString("SITE_PASSWORD_HASH", &config.SitePasswordHash)
	envBool("GALLERY_SECURE_COOKIES", &config.SecureCookies)
	envString("GALLERY_S3_ROOT_USER", &config.S3RootUser)
	envString("GALLERY_S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("GALLERY_S3_BUCKET", &config.S3Bucket)
	envString("GALLERY_S3_REGION", &config.S3Region)
	envString("GALLERY_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("GALLERY_S3_PUBLIC_URL", &config.S3PublicURL)
	envDuration("GALLERY_STORAGE_TIMEOUT", &config.StorageTimeout)
	envDuration("GALLERY_DATABASE_TIMEOUT", &config.DatabaseTimeout)
	envInt("GALLERY_UPLOAD_RATE_PER_MINUTE", &config.UploadRatePerMinute)
	envInt("GALLERY_UPLOAD_BURST", &config.UploadBurst)
	envInt("GALLERY_GUEST_CACHE_SIZE", &config.GuestCacheSize)
	envDuration("GALLERY_GUEST_CACHE_TTL", &config.GuestCacheTTL)
	envString("GALLERY_STATIC_DIR", &config.StaticDir)
	envString("OTEL_EXPORTER_OTLP_ENDPOINT", &config.OTLPEndpoint)
	envString("GALLERY_LOG_FORMAT", &config.LogFormat)

	if v, ok := os.LookupEnv("GALLERY_CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = b
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
