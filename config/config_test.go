package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URI", "mongodb://localhost:27017/users")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := LoadConfig()

	require.Equal(t, DefaultServerPort, cfg.ServerPort)
	require.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "bcrypt", cfg.Auth.HashAlgorithm)
	require.Equal(t, DefaultBcryptCost, cfg.Auth.BcryptCost)
	require.Equal(t, "none", cfg.MQ.Backend)
	require.Equal(t, DefaultEventChannel, cfg.MQ.EventChannel)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MongoURIFallback(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017/app")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := LoadConfig()
	require.Equal(t, "mongodb://db:27017/app", cfg.Database.URI)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://u:p@localhost:5432/app")
	t.Setenv("JWT_SECRET", "  padded  ")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("HASH_ALGORITHM", "Argon2id")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("MQ_BACKEND", "RabbitMQ")
	t.Setenv("RABBITMQ_QUEUE_DURABLE", "false")

	cfg := LoadConfig()

	require.Equal(t, 9000, cfg.ServerPort)
	require.Equal(t, "padded", cfg.Auth.JWTSecret)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	require.Equal(t, "argon2id", cfg.Auth.HashAlgorithm)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, "rabbitmq", cfg.MQ.Backend)
	require.False(t, cfg.MQ.RabbitMQ.QueueDurable)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("TOKEN_TTL", "forever")

	cfg := LoadConfig()
	require.Equal(t, DefaultServerPort, cfg.ServerPort)
	require.Equal(t, DefaultTokenTTL, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{URI: "mongodb://localhost"},
		Auth:     AuthConfig{JWTSecret: "k", TokenTTL: time.Hour, HashAlgorithm: "bcrypt"},
		MQ:       MQConfig{Backend: "none"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing uri", func(c *Config) { c.Database.URI = "" }, "DATABASE_URI is required"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "TOKEN_TTL must be positive"},
		{"unknown hasher", func(c *Config) { c.Auth.HashAlgorithm = "md5" }, "unsupported HASH_ALGORITHM"},
		{"unknown mq", func(c *Config) { c.MQ.Backend = "kafka" }, "unsupported MQ_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
