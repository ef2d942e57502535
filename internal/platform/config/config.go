package config

import (
	"os"
	"strings"

	id "meterai/pkg/domain"
)

// Server captures process-level configuration. Optional backends default to
// in-memory implementations when their setting is empty.
type Server struct {
	Addr          string
	Authority     id.Identity
	JWTSigningKey string

	// DatabaseURL switches the token registry and audit outbox to Postgres.
	DatabaseURL string
	// RedisURL switches the access lists to Redis.
	RedisURL string
	// KafkaBrokers switches the audit stream to Kafka/Redpanda.
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("METERAI_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authority := os.Getenv("METERAI_AUTHORITY")
	if authority == "" {
		authority = "authority"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "meterai.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	return Server{
		Addr:          addr,
		Authority:     id.Identity(authority),
		JWTSigningKey: jwtSigningKey,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    auditTopic,
	}
}
