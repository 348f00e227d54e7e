package service

import (
	"fmt"
	"time"

	"spam-detector/internal/config"
	"spam-detector/internal/dataset"

	"go.uber.org/zap"
)

// SplitCorpus partitions the canonical corpus into training and validation
// files and writes the manifest the external trainer reads.
func SplitCorpus(cfg *config.Config, logger *zap.Logger) (*dataset.Manifest, error) {
	logger.Info("Loading email data", zap.String("path", cfg.Dataset.OutputPath))

	corpus, err := dataset.LoadCorpus(cfg.Dataset.OutputPath)
	if err != nil {
		return nil, err
	}

	split, err := dataset.StratifiedSplit(corpus, cfg.Split.ValidationFraction, cfg.Split.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split corpus: %w", err)
	}

	if err := dataset.WriteCorpus(cfg.Split.TrainPath, split.Train); err != nil {
		return nil, err
	}
	if err := dataset.WriteCorpus(cfg.Split.ValidationPath, split.Validation); err != nil {
		return nil, err
	}

	manifest := &dataset.Manifest{
		CreatedAt:          time.Now().UTC(),
		Source:             cfg.Dataset.OutputPath,
		ValidationFraction: cfg.Split.ValidationFraction,
		Seed:               cfg.Split.Seed,
		Train:              dataset.Summarize(cfg.Split.TrainPath, split.Train),
		Validation:         dataset.Summarize(cfg.Split.ValidationPath, split.Validation),
		Training: dataset.TrainingArgs{
			ModelName:      cfg.Training.ModelName,
			Epochs:         cfg.Training.Epochs,
			TrainBatchSize: cfg.Training.BatchSize,
			EvalBatchSize:  cfg.Training.BatchSize * 2,
			Seed:           cfg.Split.Seed,
		},
	}
	if err := dataset.WriteManifest(cfg.Split.ManifestPath, manifest); err != nil {
		return nil, err
	}

	logger.Info("Corpus split",
		zap.Int("train", manifest.Train.Total),
		zap.Int("validation", manifest.Validation.Total),
		zap.Float64("validation_fraction", manifest.ValidationFraction),
		zap.Int64("seed", manifest.Seed),
		zap.String("manifest", cfg.Split.ManifestPath))

	return manifest, nil
}
