package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by every bot service.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// Env is the runtime environment, "production" or "development".
	Env string `env:"NODE_ENV" envDefault:"production"`

	// DevServerID receives the global commands in development.
	DevServerID string `env:"DEV_SERVER_ID"`

	WebhookURL  string `env:"DISCORD_WEBHOOK_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sleepymaid.db"`
	RedisURL    string `env:"REDIS_URL"`

	LogFile  string `env:"LOG_FILE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StatusAddr enables the status server when set, e.g. ":8080".
	StatusAddr string `env:"STATUS_ADDR"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := loadDotenv(files...); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Parse fills a service-specific config struct from the environment.
func Parse[T any]() (*T, error) {
	cfg := new(T)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the services run in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
