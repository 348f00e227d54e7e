package service

import (
	"context"
	"time"
	"unicode/utf8"

	"spam-detector/internal/config"
	"spam-detector/internal/dataset"
	"spam-detector/internal/models"
	"spam-detector/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sampleSize is how many merged records are logged for a quick look, and
// sampleRunes how much of each text is shown.
const (
	sampleSize  = 5
	sampleRunes = 80
)

// Preprocessor merges raw datasets into the canonical corpus artifact.
type Preprocessor struct {
	cfg    config.Dataset
	merger *dataset.Merger
	runs   repository.IngestRunRepository
	logger *zap.Logger
}

// NewPreprocessor creates a preprocessor. runs may be nil, in which case
// run history is only logged.
func NewPreprocessor(cfg config.Dataset, runs repository.IngestRunRepository, logger *zap.Logger) (*Preprocessor, error) {
	policy, err := dataset.ParseDecodePolicy(cfg.DecodePolicy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preprocessor{
		cfg:    cfg,
		merger: dataset.NewMerger(policy, cfg.RequireEverySource, logger),
		runs:   runs,
		logger: logger,
	}, nil
}

// Run scans, merges and writes the corpus. The artifact is written only after
// the whole corpus is in memory; any error leaves the previous artifact alone.
func (p *Preprocessor) Run(ctx context.Context) (*models.IngestRun, error) {
	run := &models.IngestRun{
		ID:         uuid.New().String(),
		Status:     models.RunStatusRunning,
		RootDir:    p.cfg.RawDir,
		OutputPath: p.cfg.OutputPath,
		StartedAt:  time.Now().UTC(),
	}
	p.record(ctx, run, true)

	p.logger.Info("Gathering training data",
		zap.String("run_id", run.ID),
		zap.String("root", p.cfg.RawDir))

	corpus, report, err := p.merge()
	if report != nil {
		run.SkippedFiles = len(report.SkippedFiles)
		run.SkippedRows = report.SkippedRows
	}
	if err == nil {
		err = dataset.WriteCorpus(p.cfg.OutputPath, corpus)
	}
	if err != nil {
		msg := err.Error()
		run.Status = models.RunStatusFailed
		run.ErrorMessage = &msg
		p.finish(ctx, run)
		return run, err
	}

	counts := corpus.Counts()
	run.Status = models.RunStatusCompleted
	run.TotalRecords = len(corpus)
	run.SpamCount = counts[models.Spam]
	run.HamCount = counts[models.Ham]
	p.finish(ctx, run)

	p.logSample(corpus)
	p.logger.Info("Merged dataset saved",
		zap.String("run_id", run.ID),
		zap.String("path", p.cfg.OutputPath),
		zap.Int("records", run.TotalRecords),
		zap.Int("spam", run.SpamCount),
		zap.Int("ham", run.HamCount),
		zap.Int("skipped_files", run.SkippedFiles),
		zap.Int("skipped_rows", run.SkippedRows))

	return run, nil
}

func (p *Preprocessor) merge() (dataset.Corpus, *dataset.Report, error) {
	sources, err := dataset.Scan(p.cfg.RawDir)
	if err != nil {
		return nil, nil, err
	}
	return p.merger.Merge(sources)
}

func (p *Preprocessor) finish(ctx context.Context, run *models.IngestRun) {
	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt
	p.record(ctx, run, false)
}

// record persists run state. Registry failures are logged and never fail the job.
func (p *Preprocessor) record(ctx context.Context, run *models.IngestRun, create bool) {
	if p.runs == nil {
		return
	}
	var err error
	if create {
		err = p.runs.CreateRun(ctx, run)
	} else {
		err = p.runs.UpdateRun(ctx, run)
	}
	if err != nil {
		p.logger.Warn("Failed to record ingest run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (p *Preprocessor) logSample(corpus dataset.Corpus) {
	n := sampleSize
	if len(corpus) < n {
		n = len(corpus)
	}
	for i, r := range corpus[:n] {
		p.logger.Debug("Sample record",
			zap.Int("index", i),
			zap.Int("label", int(r.Label)),
			zap.String("text", truncate(r.Text, sampleRunes)))
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
