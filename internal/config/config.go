// Package config reads daystreak settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/utils"
)

type Config struct {
	// Store target: PostgreSQL URL, *.json path or SQLite path. Empty defers to --config.
	DB       string `env:"DAYSTREAK_DB"`
	Owner    string `env:"DAYSTREAK_OWNER"`
	Timezone string `env:"DAYSTREAK_TIMEZONE" envDefault:"Local"`
	Debug    bool   `env:"DAYSTREAK_DEBUG" envDefault:"false"`

	// Redis enables cross-process habit locks when RedisAddr is set.
	RedisAddr     string        `env:"DAYSTREAK_REDIS_ADDR"`
	RedisPassword string        `env:"DAYSTREAK_REDIS_PASSWORD"`
	RedisDB       int           `env:"DAYSTREAK_REDIS_DB" envDefault:"0"`
	LockTTL       time.Duration `env:"DAYSTREAK_LOCK_TTL" envDefault:"5s"`

	BackupOnDelete bool `env:"DAYSTREAK_BACKUP_ON_DELETE" envDefault:"true"`
}

// Load reads the given .env files (default: ./.env) without overriding variables
// already set, then parses the environment. Missing files are skipped.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{constants.EnvFileName}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid DAYSTREAK_TIMEZONE %q", c.Timezone)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("DAYSTREAK_LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("DAYSTREAK_REDIS_DB must not be negative, got %d", c.RedisDB)
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

func (c Config) UseRedis() bool {
	return c.RedisAddr != ""
}
