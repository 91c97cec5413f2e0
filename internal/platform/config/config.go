package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server reads from the environment so main
// stays lean. Amount fields are integers in the smallest currency unit.
type Config struct {
	Addr string

	// PostgresURL selects the SQL stores; when empty the server runs on
	// in-memory stores (dev and tests only).
	PostgresURL string

	// RedisURL backs the payment-intent token store; empty disables Redis
	// and falls back to the in-memory token store.
	RedisURL string

	// KafkaBrokers and AuditTopic configure the audit outbox relay. Empty
	// brokers disable the relay (outbox rows accumulate until one runs).
	KafkaBrokers []string
	AuditTopic   string

	JWTSigningKey string

	// WebhookSecretHash is the bcrypt hash of the shared secret the payment
	// gateway sends with every notification.
	WebhookSecretHash string

	MinDonationAmount   int64
	MinWithdrawalAmount int64

	// IntentTTL bounds how long a payment-initiation token stays redeemable.
	IntentTTL time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:                envOr("GALANG_ADDR", ":8080"),
		PostgresURL:         os.Getenv("GALANG_POSTGRES_URL"),
		RedisURL:            os.Getenv("GALANG_REDIS_URL"),
		AuditTopic:          envOr("GALANG_AUDIT_TOPIC", "galang.audit"),
		JWTSigningKey:       envOr("GALANG_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		WebhookSecretHash:   os.Getenv("GALANG_WEBHOOK_SECRET_HASH"),
		MinDonationAmount:   envInt64("GALANG_MIN_DONATION", 10_000),
		MinWithdrawalAmount: envInt64("GALANG_MIN_WITHDRAWAL", 1_000),
		IntentTTL:           envDuration("GALANG_INTENT_TTL", 24*time.Hour),
	}
	if brokers := os.Getenv("GALANG_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
