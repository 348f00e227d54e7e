package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"spam-detector/internal/apperr"
	"spam-detector/internal/classifier"
	"spam-detector/internal/config"
	"spam-detector/internal/models"

	"go.uber.org/zap"
)

// NumClasses is the size of the probability vector the service returns.
const NumClasses = 2

// InferenceService scores texts against one classifier loaded at startup.
// The classifier is never replaced or exposed; when it cannot run in
// parallel, or exclusive mode is configured, one inference runs at a time.
type InferenceService struct {
	clf       classifier.Classifier
	exclusive bool
	mu        sync.Mutex
	logger    *zap.Logger
}

// Load builds the configured classifier backend and returns a ready service.
// Any failure wraps apperr.ErrModelLoad and is meant to abort startup.
func Load(ctx context.Context, cfg config.Model, logger *zap.Logger) (*InferenceService, error) {
	var (
		clf classifier.Classifier
		err error
	)

	switch cfg.Backend {
	case "linear":
		clf, err = classifier.LoadLinear(cfg.Path)
	case "remote":
		clf, err = classifier.LoadRemote(ctx, cfg.RemoteURL, cfg.RemoteTimeout)
	default:
		err = fmt.Errorf("%w: unknown backend %q", apperr.ErrModelLoad, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	svc, err := NewInferenceService(clf, cfg.ExclusiveInference, logger)
	if err != nil {
		clf.Close()
		return nil, err
	}
	return svc, nil
}

// NewInferenceService wraps an already loaded classifier.
func NewInferenceService(clf classifier.Classifier, exclusive bool, logger *zap.Logger) (*InferenceService, error) {
	if clf == nil {
		return nil, fmt.Errorf("%w: no classifier", apperr.ErrModelLoad)
	}
	if n := clf.NumClasses(); n != NumClasses {
		return nil, fmt.Errorf("%w: classifier has %d classes, want %d", apperr.ErrModelLoad, n, NumClasses)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &InferenceService{
		clf:       clf,
		exclusive: exclusive || !clf.ConcurrentSafe(),
		logger:    logger,
	}, nil
}

// Classify scores text. Empty text is valid input. Errors wrap
// apperr.ErrInference and concern this call only.
func (s *InferenceService) Classify(ctx context.Context, text string) (*models.ClassificationResult, error) {
	logits, err := s.forward(ctx, text)
	if err != nil {
		return nil, err
	}

	probs, err := Softmax(logits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInference, err)
	}

	predicted := Argmax(probs)
	return &models.ClassificationResult{
		PredictedClass: predicted,
		Label:          models.Label(predicted).String(),
		Probabilities:  probs,
		Confidence:     probs[predicted],
	}, nil
}

func (s *InferenceService) forward(ctx context.Context, text string) (logits []float64, err error) {
	if s.exclusive {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Classifier panicked", zap.Any("panic", r))
			logits, err = nil, fmt.Errorf("%w: classifier panic: %v", apperr.ErrInference, r)
		}
	}()

	enc, err := s.clf.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", apperr.ErrInference, err)
	}

	logits, err = s.clf.Forward(ctx, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: forward: %v", apperr.ErrInference, err)
	}
	if len(logits) != NumClasses {
		return nil, fmt.Errorf("%w: got %d logits, want %d", apperr.ErrInference, len(logits), NumClasses)
	}
	return logits, nil
}

// GetModelInfo describes the loaded classifier.
func (s *InferenceService) GetModelInfo() map[string]interface{} {
	info := s.clf.GetModelInfo()
	info["exclusive_inference"] = s.exclusive
	return info
}

// Close releases the classifier.
func (s *InferenceService) Close() error {
	return s.clf.Close()
}

// Softmax normalizes logits into probabilities. The maximum is subtracted
// before exponentiation to avoid overflow.
func Softmax(logits []float64) ([]float64, error) {
	if len(logits) == 0 {
		return nil, fmt.Errorf("empty logits")
	}

	peak := math.Inf(-1)
	for _, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite logit %v", v)
		}
		if v > peak {
			peak = v
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(v - peak)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// Argmax returns the index of the largest value; ties go to the lowest index.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
