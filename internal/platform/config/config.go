package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	JWTSecret  string
	SessionTTL time.Duration

	// MasterKey is the base64 AES-256 key sealing response payloads.
	// Empty leaves payload encryption unavailable.
	MasterKey string

	DefaultSMTPURL    string
	TemplatesDir      string
	DefaultLocale     string
	TransportCacheTTL time.Duration

	UploadsDir string

	ContentSecurityPolicy string
	TrustedOrigins        []string
	CORSOrigins           []string

	PurgeBatchSize     int
	WorkerPollInterval time.Duration
}

func Load() (Config, error) {
	// Missing .env files are fine; deployed environments set vars directly.
	_ = godotenv.Load()

	return Config{
		ServiceName: envString("SERVICE_NAME", "forms"),
		HTTPPort:    envString("HTTP_PORT", "8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: envDuration("SESSION_TTL", 24*time.Hour),

		MasterKey: os.Getenv("MASTER_KEY"),

		DefaultSMTPURL:    os.Getenv("DEFAULT_SMTP_URL"),
		TemplatesDir:      envString("TEMPLATES_DIR", "templates"),
		DefaultLocale:     envString("DEFAULT_LOCALE", "en"),
		TransportCacheTTL: envDuration("TRANSPORT_CACHE_TTL", 15*time.Minute),

		UploadsDir: envString("UPLOADS_DIR", "uploads"),

		ContentSecurityPolicy: envString("CONTENT_SECURITY_POLICY",
			"default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'self'"),
		TrustedOrigins: envList("TRUSTED_ORIGINS"),
		CORSOrigins:    envList("CORS_ORIGINS"),

		PurgeBatchSize:     envInt("PURGE_BATCH_SIZE", 100),
		WorkerPollInterval: envDuration("WORKER_POLL_INTERVAL", time.Minute),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envList(name string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}
