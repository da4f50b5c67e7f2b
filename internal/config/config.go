// Package config loads portal settings from an optional YAML file with
// environment-variable overrides. Env always wins over file values so
// deployment secrets never need to live on disk.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultAuthURL  = "https://www.patreon.com/oauth2/authorize"
	defaultTokenURL = "https://www.patreon.com/api/oauth2/token"
	defaultAPIBase  = "https://www.patreon.com/api/oauth2/v2"
)

// Config holds everything the portal needs at runtime.
type Config struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	AppOrigin string `yaml:"app_origin"` // public origin of the web app, used for fallback redirects
	DBPath    string `yaml:"db_path"`

	PatreonClientID      string `yaml:"patreon_client_id"`
	PatreonClientSecret  string `yaml:"patreon_client_secret"`
	PatreonWebhookSecret string `yaml:"patreon_webhook_secret"`

	// Patreon endpoints. Overridable for staging and tests.
	PatreonAuthURL  string `yaml:"patreon_auth_url"`
	PatreonTokenURL string `yaml:"patreon_token_url"`
	PatreonAPIBase  string `yaml:"patreon_api_base"`
}

// Load reads the config file at path (missing file is fine) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Host:            "127.0.0.1",
		Port:            "8080",
		AppOrigin:       "http://localhost:8080",
		DBPath:          "portal.db",
		PatreonAuthURL:  defaultAuthURL,
		PatreonTokenURL: defaultTokenURL,
		PatreonAPIBase:  defaultAPIBase,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Host, "HOST")
	setFromEnv(&cfg.Port, "PORT")
	setFromEnv(&cfg.AppOrigin, "APP_ORIGIN")
	setFromEnv(&cfg.DBPath, "PORTAL_DB")
	setFromEnv(&cfg.PatreonClientID, "PATREON_CLIENT_ID")
	setFromEnv(&cfg.PatreonClientSecret, "PATREON_CLIENT_SECRET")
	setFromEnv(&cfg.PatreonWebhookSecret, "PATREON_WEBHOOK_SECRET")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
