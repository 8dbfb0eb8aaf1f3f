// Package config collects every environment setting the server reads, so
// secrets are injected explicitly instead of being pulled from the
// environment at call sites.
package config

import (
	"errors"
	"fmt"
	"os"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// AuthSecret signs session tokens and salts password digests.
	// Startup fails when it is missing; there is no built-in default.
	AuthSecret string

	NATSURL string

	ModelAPIURL string
	ModelAPIKey string
}

var ErrMissingAuthSecret = errors.New("AUTH_SECRET is not set")

// Load reads configuration from the environment. Call godotenv.Load first
// if an env file should be merged in.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort:     getenv("APP_PORT", "8001"),
		AppEnv:      getenv("APP_ENV", "development"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBName:      os.Getenv("DB_NAME"),
		AuthSecret:  os.Getenv("AUTH_SECRET"),
		NATSURL:     getenv("NATS_URL", "nats://localhost:4222"),
		ModelAPIURL: os.Getenv("MODEL_API_URL"),
		ModelAPIKey: os.Getenv("MODEL_API_KEY"),
	}

	if cfg.AuthSecret == "" {
		return nil, ErrMissingAuthSecret
	}

	return cfg, nil
}

// DatabaseURL renders the pgx connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Production reports whether cookies should be marked Secure.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
