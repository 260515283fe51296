// Package config provides application configuration loading: the
// repository and developer lists from a YAML file, credentials from the
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/domain"
)

// Config holds the file-supplied report configuration.
type Config struct {
	Repositories []string `yaml:"repositories"`
	Developers   []string `yaml:"developers"`
	StaleDays    int      `yaml:"stale_days"`
}

// Load reads the YAML configuration at path. A missing or unparseable
// file is not fatal: the lists come back empty with a logged warning and
// the job proceeds, most likely to an empty report.
func Load(path string, logger *zap.Logger) Config {
	empty := Config{StaleDays: domain.DefaultStaleDays}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("configuration file not readable, using empty configuration",
			zap.String("path", path), zap.Error(err))
		return empty
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Warn("configuration file not parseable, using empty configuration",
			zap.String("path", path), zap.Error(err))
		return empty
	}
	if cfg.StaleDays <= 0 {
		cfg.StaleDays = domain.DefaultStaleDays
	}
	if len(cfg.Repositories) == 0 {
		logger.Warn("no repositories found in configuration", zap.String("path", path))
	}
	if len(cfg.Developers) == 0 {
		logger.Warn("no developers found in configuration", zap.String("path", path))
	}
	return cfg
}

// Token returns the GitHub bearer credential. Its absence is fatal for
// every job that talks to the API.
func Token() (string, error) {
	return requiredEnv("GITHUB_TOKEN")
}

// WebhookURL returns the Slack incoming-webhook URL the notify job posts to.
func WebhookURL() (string, error) {
	return requiredEnv("SLACK_WEBHOOK_URL")
}

// requiredEnv reads a required environment variable, loading a local
// .env file first if one exists.
func requiredEnv(key string) (string, error) {
	_ = godotenv.Load()
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}
