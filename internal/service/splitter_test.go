package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spam-detector/internal/apperr"
	"spam-detector/internal/config"
	"spam-detector/internal/dataset"
	"spam-detector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func splitConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Dataset.OutputPath = filepath.Join(dir, "data.csv")
	cfg.Split.TrainPath = filepath.Join(dir, "split", "train.csv")
	cfg.Split.ValidationPath = filepath.Join(dir, "split", "validation.csv")
	cfg.Split.ManifestPath = filepath.Join(dir, "split", "manifest.yml")
	return cfg
}

func TestSplitCorpus(t *testing.T) {
	cfg := splitConfig(t)
	var corpus dataset.Corpus
	for i := 0; i < 40; i++ {
		label := models.Ham
		if i%4 == 0 {
			label = models.Spam
		}
		corpus = append(corpus, models.RawRecord{Text: fmt.Sprintf("email %d", i), Label: label})
	}
	require.NoError(t, dataset.WriteCorpus(cfg.Dataset.OutputPath, corpus))

	manifest, err := SplitCorpus(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, dataset.SplitSummary{Path: cfg.Split.TrainPath, Total: 32, Spam: 8, Ham: 24}, manifest.Train)
	assert.Equal(t, dataset.SplitSummary{Path: cfg.Split.ValidationPath, Total: 8, Spam: 2, Ham: 6}, manifest.Validation)
	assert.Equal(t, 32, manifest.Training.EvalBatchSize)
	assert.Equal(t, "distilbert-base-uncased", manifest.Training.ModelName)

	stored, err := dataset.ReadManifest(cfg.Split.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, manifest.Train, stored.Train)
	assert.Equal(t, int64(42), stored.Seed)

	train, err := dataset.LoadCorpus(cfg.Split.TrainPath)
	require.NoError(t, err)
	validation, err := dataset.LoadCorpus(cfg.Split.ValidationPath)
	require.NoError(t, err)
	assert.Len(t, train, 32)
	assert.Len(t, validation, 8)

	firstTrain, err := os.ReadFile(cfg.Split.TrainPath)
	require.NoError(t, err)
	_, err = SplitCorpus(cfg, zap.NewNop())
	require.NoError(t, err)
	secondTrain, err := os.ReadFile(cfg.Split.TrainPath)
	require.NoError(t, err)
	assert.Equal(t, firstTrain, secondTrain)
	assert.True(t, strings.HasPrefix(string(firstTrain), "text,label\n"))
}

func TestSplitCorpusErrors(t *testing.T) {
	cfg := splitConfig(t)

	_, err := SplitCorpus(cfg, zap.NewNop())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, os.WriteFile(cfg.Dataset.OutputPath, []byte("text,label\n"), 0o644))
	_, err = SplitCorpus(cfg, zap.NewNop())
	assert.ErrorIs(t, err, apperr.ErrEmptyCorpus)

	_, statErr := os.Stat(cfg.Split.ManifestPath)
	assert.True(t, os.IsNotExist(statErr))
}
