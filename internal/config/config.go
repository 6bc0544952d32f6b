package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is processed from the environment once at startup; main loads a
// .env file first when one is present.
type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"communitynest"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// StoreTimeout bounds every persistence call; a call that exceeds it
	// fails the originating operation with a retryable error instead of
	// blocking the handling task.
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	// MaxMessageLength is the byte cap applied to message content before it
	// is persisted; longer content is truncated, not rejected.
	MaxMessageLength int `envconfig:"MAX_MESSAGE_LENGTH" default:"4000"`

	PingInterval time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
	PongTimeout  time.Duration `envconfig:"WS_PONG_TIMEOUT" default:"90s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
