// Package config loads service configuration from environment variables with
// typed defaults. Invalid values fall back to their defaults rather than
// failing startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Transcription TranscriptionConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds process identity and listener settings.
type ServiceConfig struct {
	Principal      string
	HTTPPort       string
	MetricsPort    string
	MaxUploadBytes int64
}

// TranscriptionConfig holds the external transcription provider settings.
type TranscriptionConfig struct {
	Provider      string // "assemblyai" or "mock"
	APIKey        string
	BaseURL       string
	PollInterval  time.Duration
	PollTimeout   time.Duration // zero disables the polling deadline
	PrimaryModel  string
	FallbackModel string
}

// KafkaConfig holds report event publishing settings.
type KafkaConfig struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	Principal string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string
}

// Load reads configuration from the environment.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-dicere")

	return &Configuration{
		Service: ServiceConfig{
			Principal:      principal,
			HTTPPort:       envOrDefault("HTTP_PORT", "8000"),
			MetricsPort:    envOrDefault("METRICS_PORT", "9090"),
			MaxUploadBytes: envOrDefaultInt64("MAX_UPLOAD_BYTES", 25*1024*1024),
		},
		Transcription: TranscriptionConfig{
			Provider:      envOrDefault("TRANSCRIPTION_PROVIDER", "assemblyai"),
			APIKey:        os.Getenv("ASSEMBLYAI_API_KEY"),
			BaseURL:       envOrDefault("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com/v2"),
			PollInterval:  envOrDefaultDuration("TRANSCRIPTION_POLL_INTERVAL", 500*time.Millisecond),
			PollTimeout:   envOrDefaultDuration("TRANSCRIPTION_POLL_TIMEOUT", 0),
			PrimaryModel:  envOrDefault("TRANSCRIPTION_PRIMARY_MODEL", "universal-3-pro"),
			FallbackModel: envOrDefault("TRANSCRIPTION_FALLBACK_MODEL", "universal-2"),
		},
		Kafka: KafkaConfig{
			Enabled:   envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:   envOrDefaultList("KAFKA_BROKERS", nil),
			Topic:     envOrDefault("KAFKA_TOPIC_REPORTS", "dicere.reports"),
			Principal: envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel: envOrDefault("LOG_LEVEL", "info"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return parsed
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
