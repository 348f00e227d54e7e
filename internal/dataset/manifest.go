package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spam-detector/internal/models"

	"gopkg.in/yaml.v3"
)

// Manifest describes a split for the external trainer.
type Manifest struct {
	CreatedAt          time.Time    `yaml:"created_at"`
	Source             string       `yaml:"source"`
	ValidationFraction float64      `yaml:"validation_fraction"`
	Seed               int64        `yaml:"seed"`
	Train              SplitSummary `yaml:"train"`
	Validation         SplitSummary `yaml:"validation"`
	Training           TrainingArgs `yaml:"training"`
}

// SplitSummary gives the location and label counts of one half.
type SplitSummary struct {
	Path  string `yaml:"path"`
	Total int    `yaml:"total"`
	Spam  int    `yaml:"spam"`
	Ham   int    `yaml:"ham"`
}

// TrainingArgs are passed through to the trainer untouched.
type TrainingArgs struct {
	ModelName      string `yaml:"model_name"`
	Epochs         int    `yaml:"epochs"`
	TrainBatchSize int    `yaml:"per_device_train_batch_size"`
	EvalBatchSize  int    `yaml:"per_device_eval_batch_size"`
	Seed           int64  `yaml:"seed"`
}

// Summarize counts labels for one half of a split.
func Summarize(path string, corpus Corpus) SplitSummary {
	counts := corpus.Counts()
	return SplitSummary{
		Path:  path,
		Total: len(corpus),
		Spam:  counts[models.Spam],
		Ham:   counts[models.Ham],
	}
}

// WriteManifest writes the manifest as YAML, replacing any previous one.
func WriteManifest(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}
