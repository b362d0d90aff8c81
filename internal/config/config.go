// Package config loads server configuration from an optional YAML file with
// environment variable overrides. Environment always wins so Cloud Run can
// reconfigure a deployed image without a rebuild.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Auth      AuthConfig      `yaml:"auth"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"` // "local" or "production"
}

// FirestoreConfig selects the storage backend. An empty project ID means the
// in-memory store.
type FirestoreConfig struct {
	ProjectID string `yaml:"project_id"`
}

// AuthConfig controls authentication.
type AuthConfig struct {
	// SkipAuth replaces Firebase verification with a local dev identity.
	SkipAuth        bool   `yaml:"skip_auth"`
	SchedulerSecret string `yaml:"scheduler_secret"`
}

// AnalyticsConfig tunes the anomaly detector and forecaster.
type AnalyticsConfig struct {
	SpikeSigma             float64 `yaml:"spike_sigma"`
	SimilarityTolerance    float64 `yaml:"similarity_tolerance"`
	DuplicateWindowMinutes int     `yaml:"duplicate_window_minutes"`
	ForecastHorizonMonths  int     `yaml:"forecast_horizon_months"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "production",
		},
		Analytics: AnalyticsConfig{
			SpikeSigma:             2.0,
			SimilarityTolerance:    0.20,
			DuplicateWindowMinutes: 60,
			ForecastHorizonMonths:  3,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.Firestore.ProjectID = v
	}
	if v := os.Getenv("SKIP_AUTH"); v != "" {
		c.Auth.SkipAuth = v == "true"
	}
	if v := os.Getenv("SCHEDULER_SECRET"); v != "" {
		c.Auth.SchedulerSecret = v
	}
	if v := os.Getenv("ANOMALY_SPIKE_SIGMA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Analytics.SpikeSigma = f
		}
	}
	if v := os.Getenv("FORECAST_HORIZON_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Analytics.ForecastHorizonMonths = n
		}
	}
}

// IsLocal reports whether the server runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Server.Environment == "local"
}
