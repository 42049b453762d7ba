package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8084"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"file://db/migrations"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	NatsURL        string        `env:"NATS_URL"`
	KafkaBrokers   string        `env:"KAFKA_BROKERS"`
	KafkaTopic     string        `env:"KAFKA_TOPIC" envDefault:"claims.events"`
	EvidenceBucket string        `env:"EVIDENCE_BUCKET"`
	AWSRegion      string        `env:"AWS_REGION" envDefault:"ap-southeast-1"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	OTLPEndpoint   string        `env:"OTLP_ENDPOINT"`
}

func Load() (*Config, error) {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
