package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Database
	DBPath    string
	BackupDir string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the given .env files (".env" when none are given) and then the
// environment. Missing .env files are not an error; variables already set in
// the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "finance_manager.db"),
		BackupDir: getEnv("BACKUP_DIR", "backups"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	return cfg, nil
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.DBPath) == "" {
		result = multierror.Append(result, errors.New("database path cannot be empty"))
	}
	if strings.TrimSpace(c.BackupDir) == "" {
		result = multierror.Append(result, errors.New("backup directory cannot be empty"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("invalid log format '%s': must be one of [text json]", c.LogFormat))
	}

	return result.ErrorOrNil()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
