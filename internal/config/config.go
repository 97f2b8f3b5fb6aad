package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" default:"0.0.0.0:8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	StorageDriver  string        `envconfig:"STORAGE_DRIVER" default:"postgres"`
	StorageTimeout time.Duration `envconfig:"STORAGE_TIMEOUT" default:"5s"`
	SQLitePath     string        `envconfig:"SQLITE_PATH" default:".ballot/ballot.sqlite"`
	AutoMigrate    bool          `envconfig:"AUTO_MIGRATE" default:"false"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	JWTSecret     string `envconfig:"JWT_SECRET"`
	VoterTokenKey string `envconfig:"VOTER_TOKEN_KEY"`

	OneVotePerVoter bool `envconfig:"ONE_VOTE_PER_VOTER" default:"false"`
	AuditBufferSize int  `envconfig:"AUDIT_BUFFER_SIZE" default:"256"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if len(c.VoterTokenKey) > 64 {
		return errors.New("VOTER_TOKEN_KEY must be at most 64 bytes")
	}
	if c.AuditBufferSize <= 0 {
		return errors.New("AUDIT_BUFFER_SIZE must be positive")
	}
	return nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSLMode)
}
