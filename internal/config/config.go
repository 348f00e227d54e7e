package config

import (
	"fmt"
	"os"
	"time"

	"spam-detector/internal/apperr"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration shared by the server and the batch jobs.
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Dataset Dataset `yaml:"dataset"`

	Split Split `yaml:"split"`

	// Training parameters are handed to the external trainer through the split manifest.
	Training struct {
		ModelName string `yaml:"model_name"`
		BatchSize int    `yaml:"batch_size"`
		Epochs    int    `yaml:"epochs"`
	} `yaml:"training"`

	Model Model `yaml:"model"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" or "postgres"
		DSN    string `yaml:"dsn"`    // empty disables the ingest run registry
	} `yaml:"database"`
}

// Dataset configures the preprocessing job.
type Dataset struct {
	RawDir             string `yaml:"raw_dir"`
	OutputPath         string `yaml:"output_path"`
	DecodePolicy       string `yaml:"decode_policy"` // "ignore", "replace" or "strict"
	RequireEverySource bool   `yaml:"require_every_source"`
}

// Split configures the train/validation partition.
type Split struct {
	ValidationFraction float64 `yaml:"validation_fraction"`
	Seed               int64   `yaml:"seed"`
	TrainPath          string  `yaml:"train_path"`
	ValidationPath     string  `yaml:"validation_path"`
	ManifestPath       string  `yaml:"manifest_path"`
}

// Model selects and configures the classifier backend.
type Model struct {
	Backend            string        `yaml:"backend"` // "linear" or "remote"
	Path               string        `yaml:"path"`
	RemoteURL          string        `yaml:"remote_url"`
	RemoteTimeout      time.Duration `yaml:"remote_timeout"`
	ExclusiveInference bool          `yaml:"exclusive_inference"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := &Config{}
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	config.expandEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Dataset.RawDir == "" {
		c.Dataset.RawDir = "./inputs/data/raw"
	}
	if c.Dataset.OutputPath == "" {
		c.Dataset.OutputPath = "./outputs/data/ready/data.csv"
	}
	if c.Dataset.DecodePolicy == "" {
		c.Dataset.DecodePolicy = "ignore"
	}

	if c.Split.ValidationFraction == 0 {
		c.Split.ValidationFraction = 0.2
	}
	if c.Split.Seed == 0 {
		c.Split.Seed = 42
	}
	if c.Split.TrainPath == "" {
		c.Split.TrainPath = "./outputs/data/ready/train.csv"
	}
	if c.Split.ValidationPath == "" {
		c.Split.ValidationPath = "./outputs/data/ready/validation.csv"
	}
	if c.Split.ManifestPath == "" {
		c.Split.ManifestPath = "./outputs/data/ready/manifest.yml"
	}

	if c.Training.ModelName == "" {
		c.Training.ModelName = "distilbert-base-uncased"
	}
	if c.Training.BatchSize == 0 {
		c.Training.BatchSize = 16
	}
	if c.Training.Epochs == 0 {
		c.Training.Epochs = 5
	}

	if c.Model.Backend == "" {
		c.Model.Backend = "linear"
	}
	if c.Model.Path == "" {
		c.Model.Path = "./outputs/models/linear"
	}
	if c.Model.RemoteTimeout == 0 {
		c.Model.RemoteTimeout = 30 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
}

// expandEnv resolves ${VAR} references in path-like settings.
func (c *Config) expandEnv() {
	c.Dataset.RawDir = os.ExpandEnv(c.Dataset.RawDir)
	c.Dataset.OutputPath = os.ExpandEnv(c.Dataset.OutputPath)
	c.Split.TrainPath = os.ExpandEnv(c.Split.TrainPath)
	c.Split.ValidationPath = os.ExpandEnv(c.Split.ValidationPath)
	c.Split.ManifestPath = os.ExpandEnv(c.Split.ManifestPath)
	c.Model.Path = os.ExpandEnv(c.Model.Path)
	c.Model.RemoteURL = os.ExpandEnv(c.Model.RemoteURL)
	c.Database.DSN = os.ExpandEnv(c.Database.DSN)
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Dataset.DecodePolicy {
	case "ignore", "replace", "strict":
	default:
		return fmt.Errorf("%w: dataset.decode_policy %q", apperr.ErrInvalidConfig, c.Dataset.DecodePolicy)
	}

	if c.Split.ValidationFraction <= 0 || c.Split.ValidationFraction >= 1 {
		return fmt.Errorf("%w: split.validation_fraction must be in (0, 1), got %v",
			apperr.ErrInvalidConfig, c.Split.ValidationFraction)
	}

	if c.Training.BatchSize < 0 || c.Training.Epochs < 0 {
		return fmt.Errorf("%w: training.batch_size and training.epochs must be positive", apperr.ErrInvalidConfig)
	}

	switch c.Model.Backend {
	case "linear":
	case "remote":
		if c.Model.RemoteURL == "" {
			return fmt.Errorf("%w: model.remote_url is required for the remote backend", apperr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: model.backend %q", apperr.ErrInvalidConfig, c.Model.Backend)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: database.driver %q", apperr.ErrInvalidConfig, c.Database.Driver)
	}

	return nil
}
