// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config collects every environment setting used by the server and the historian.
type Config struct {
	Port         string
	WSPort       string // empty disables the WebSocket gateway
	Workers      int
	AcceptQueue  int
	// MaxConns caps open connections. Each connection waiting for its query may
	// hold a 1 MiB receive buffer for up to ReadTimeout, so memory for
	// waiting readers is bounded by MaxConns MiB.
	MaxConns     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     logrus.Level

	RedisAddr  string // empty disables round publishing
	RedisDB    int
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration

	Postgres PostgresConfig
}

// PostgresConfig locates the historian database.
type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// ConnString renders the config as a postgres:// URL.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// Load reads the environment. Unset or unparsable values fall back to defaults;
// only an unknown LOG_LEVEL is an error.
func Load() (Config, error) {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return Config{
		Port:         getEnv("BACCARAT_PORT", "12345"),
		WSPort:       os.Getenv("BACCARAT_WS_PORT"),
		Workers:      getEnvInt("BACCARAT_WORKERS", 1),
		AcceptQueue:  getEnvInt("BACCARAT_ACCEPT_QUEUE", 64),
		MaxConns:     getEnvInt("BACCARAT_MAX_CONNS", 256),
		ReadTimeout:  time.Duration(getEnvInt("BACCARAT_READ_TIMEOUT_MS", 5000)) * time.Millisecond,
		WriteTimeout: time.Duration(getEnvInt("BACCARAT_WRITE_TIMEOUT_MS", 5000)) * time.Millisecond,
		LogLevel:     level,

		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		QueueName:  getEnv("HISTORIAN_QUEUE_NAME", "baccarat_rounds"),
		BatchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,

		Postgres: PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Database: os.Getenv("PG_DATABASE"),
		},
	}, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
