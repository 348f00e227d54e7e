package dataset

import (
	"errors"
	"fmt"

	"spam-detector/internal/apperr"

	"go.uber.org/zap"
)

// SkippedFile is a tabular file left out of the corpus.
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report summarizes a merge.
type Report struct {
	Datasets     int
	Records      int
	SkippedFiles []SkippedFile
	SkippedRows  int
	EmptySources []string
}

// Merger concatenates the records of every dataset source.
type Merger struct {
	Text TextLoader
	// RequireEverySource turns a dataset directory that yields no records
	// into a fatal error instead of a warning.
	RequireEverySource bool

	logger *zap.Logger
}

// NewMerger creates a merger with the given text decoding policy.
func NewMerger(policy DecodePolicy, requireEverySource bool, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{
		Text:               TextLoader{Policy: policy},
		RequireEverySource: requireEverySource,
		logger:             logger,
	}
}

// Merge loads sources in order: dataset order, then tabular files before
// class folders, then file order. Duplicates are kept.
func (m *Merger) Merge(sources []Source) (Corpus, *Report, error) {
	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	report := &Report{Datasets: len(sources)}
	var corpus Corpus

	for _, src := range sources {
		m.logger.Info("Processing dataset", zap.String("dataset", src.Name))
		before := len(corpus)

		for _, path := range src.TabularFiles {
			res, err := LoadTabular(path, m.Text.Policy)
			if errors.Is(err, apperr.ErrSchema) {
				m.logger.Warn("Skipping tabular file", zap.String("path", path), zap.Error(err))
				report.SkippedFiles = append(report.SkippedFiles, SkippedFile{Path: path, Reason: err.Error()})
				continue
			}
			if err != nil {
				return nil, report, err
			}

			for _, issue := range res.Issues {
				m.logger.Warn("Rejected row",
					zap.String("path", path),
					zap.Int("line", issue.Line),
					zap.String("reason", issue.Reason))
			}
			report.SkippedRows += len(res.Issues)
			corpus = append(corpus, res.Records...)
		}

		for _, dir := range src.ClassFolders {
			records, err := m.Text.LoadClassFolder(dir)
			if err != nil {
				return nil, report, err
			}
			corpus = append(corpus, records...)
		}

		if len(corpus) == before {
			if m.RequireEverySource {
				return nil, report, fmt.Errorf("dataset %q: %w", src.Name, apperr.ErrEmptyDataset)
			}
			m.logger.Warn("Dataset contributed no records", zap.String("dataset", src.Name))
			report.EmptySources = append(report.EmptySources, src.Name)
		}
	}

	if len(corpus) == 0 {
		return nil, report, apperr.ErrEmptyCorpus
	}

	report.Records = len(corpus)
	return corpus, report, nil
}
