package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerPort   = 3100
	DefaultTokenTTL     = time.Hour
	DefaultBcryptCost   = 10
	DefaultDatabaseName = "userauth"
	DefaultEventChannel = "user.registered"
)

type Config struct {
	Env                 string
	ServerPort          int
	ShutdownGracePeriod time.Duration
	Database            DatabaseConfig
	Auth                AuthConfig
	Log                 LogConfig
	MQ                  MQConfig
}

type DatabaseConfig struct {
	// URI selects the backend by scheme: mongodb://, mongodb+srv://,
	// postgres:// or postgresql://.
	URI string
	// Name is the Mongo database used when URI carries none.
	Name string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	HashAlgorithm string
	BcryptCost    int
}

type LogConfig struct {
	Level  string
	Format string
}

type MQConfig struct {
	Backend      string
	EventChannel string
	RabbitMQ     RabbitMQConfig
	PubSub       PubSubConfig
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	uri := getEnv("DATABASE_URI", "")
	if uri == "" {
		uri = getEnv("MONGO_URI", "")
	}

	return Config{
		Env:                 getEnv("ENV", "prod"),
		ServerPort:          getEnvInt("SERVER_PORT", DefaultServerPort),
		ShutdownGracePeriod: getEnvDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		Database: DatabaseConfig{
			URI:  strings.TrimSpace(uri),
			Name: getEnv("DATABASE_NAME", DefaultDatabaseName),
		},
		Auth: AuthConfig{
			JWTSecret:     strings.TrimSpace(getEnv("JWT_SECRET", "")),
			TokenTTL:      getEnvDuration("TOKEN_TTL", DefaultTokenTTL),
			HashAlgorithm: strings.ToLower(getEnv("HASH_ALGORITHM", "bcrypt")),
			BcryptCost:    getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		MQ: MQConfig{
			Backend:      strings.ToLower(getEnv("MQ_BACKEND", "none")),
			EventChannel: getEnv("USER_EVENTS_CHANNEL", DefaultEventChannel),
			RabbitMQ: RabbitMQConfig{
				URL:          getEnv("RABBITMQ_URL", ""),
				QueueDurable: getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			},
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			},
		},
	}
}

// Validate reports settings the process cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Database.URI == "" {
		errs = append(errs, errors.New("DATABASE_URI is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	switch c.Auth.HashAlgorithm {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("unsupported HASH_ALGORITHM %q", c.Auth.HashAlgorithm))
	}
	switch c.MQ.Backend {
	case "", "none", "rabbitmq", "pubsub":
	default:
		errs = append(errs, fmt.Errorf("unsupported MQ_BACKEND %q", c.MQ.Backend))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}
