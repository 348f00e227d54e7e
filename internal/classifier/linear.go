package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"spam-detector/internal/apperr"
)

// ArtifactFile is the file name looked up when the model path is a directory.
const ArtifactFile = "model.json"

// LinearArtifact is the on-disk form of a bag-of-words linear classifier.
type LinearArtifact struct {
	ModelType string      `json:"model_type"`
	Labels    []string    `json:"labels"`
	MaxLength int         `json:"max_length"`
	Lowercase bool        `json:"lowercase"`
	UnkToken  string      `json:"unk_token,omitempty"`
	Vocab     []string    `json:"vocab"`
	Weights   [][]float64 `json:"weights"`
	Bias      []float64   `json:"bias"`
}

// Linear is an immutable bag-of-words linear classifier. All state is
// read-only after loading, so it is safe for concurrent use.
type Linear struct {
	path      string
	labels    []string
	maxLength int
	lowercase bool
	unkID     int
	vocab     map[string]int
	weights   [][]float64
	bias      []float64
}

// LoadLinear reads a linear artifact from path, which is either the JSON
// file itself or a directory holding model.json.
func LoadLinear(path string) (*Linear, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: artifact %q does not exist", apperr.ErrModelLoad, path)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrModelLoad, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, ArtifactFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrModelLoad, err)
	}

	var art LinearArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: malformed artifact %q: %v", apperr.ErrModelLoad, path, err)
	}

	m, err := NewLinear(&art)
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// NewLinear validates an artifact and builds the classifier from it.
func NewLinear(art *LinearArtifact) (*Linear, error) {
	n := len(art.Labels)
	if n < 2 {
		return nil, fmt.Errorf("%w: artifact needs at least two labels, has %d", apperr.ErrModelLoad, n)
	}
	if len(art.Weights) != n || len(art.Bias) != n {
		return nil, fmt.Errorf("%w: expected %d weight rows and biases, got %d and %d",
			apperr.ErrModelLoad, n, len(art.Weights), len(art.Bias))
	}
	if art.MaxLength < 0 {
		return nil, fmt.Errorf("%w: negative max_length", apperr.ErrModelLoad)
	}

	vocab := make(map[string]int, len(art.Vocab))
	for i, tok := range art.Vocab {
		if _, dup := vocab[tok]; dup {
			return nil, fmt.Errorf("%w: duplicate vocabulary entry %q", apperr.ErrModelLoad, tok)
		}
		vocab[tok] = i
	}

	for c, row := range art.Weights {
		if len(row) != len(art.Vocab) {
			return nil, fmt.Errorf("%w: weight row %d has %d entries, vocabulary has %d",
				apperr.ErrModelLoad, c, len(row), len(art.Vocab))
		}
		for _, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: non-finite weight in row %d", apperr.ErrModelLoad, c)
			}
		}
		if math.IsNaN(art.Bias[c]) || math.IsInf(art.Bias[c], 0) {
			return nil, fmt.Errorf("%w: non-finite bias %d", apperr.ErrModelLoad, c)
		}
	}

	unkID := -1
	if art.UnkToken != "" {
		id, ok := vocab[art.UnkToken]
		if !ok {
			return nil, fmt.Errorf("%w: unk_token %q not in vocabulary", apperr.ErrModelLoad, art.UnkToken)
		}
		unkID = id
	}

	return &Linear{
		labels:    append([]string(nil), art.Labels...),
		maxLength: art.MaxLength,
		lowercase: art.Lowercase,
		unkID:     unkID,
		vocab:     vocab,
		weights:   art.Weights,
		bias:      art.Bias,
	}, nil
}

// Tokenize splits text on anything that is not a letter or digit.
func (m *Linear) Tokenize(text string) []string {
	if m.lowercase {
		text = strings.ToLower(text)
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Encode maps tokens to vocabulary ids, truncated to max_length.
// Unknown tokens map to unk_token when the artifact defines one and are
// dropped otherwise.
func (m *Linear) Encode(text string) (Encoding, error) {
	tokens := m.Tokenize(text)
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if m.maxLength > 0 && len(ids) == m.maxLength {
			break
		}
		id, ok := m.vocab[tok]
		if !ok {
			if m.unkID < 0 {
				continue
			}
			id = m.unkID
		}
		ids = append(ids, id)
	}
	return Encoding{Text: text, InputIDs: ids}, nil
}

// Forward sums the weights of every input id onto the bias.
func (m *Linear) Forward(_ context.Context, enc Encoding) ([]float64, error) {
	logits := append([]float64(nil), m.bias...)
	for _, id := range enc.InputIDs {
		if id < 0 || id >= len(m.vocab) {
			return nil, fmt.Errorf("input id %d out of range", id)
		}
		for c := range logits {
			logits[c] += m.weights[c][id]
		}
	}
	return logits, nil
}

func (m *Linear) NumClasses() int { return len(m.labels) }

func (m *Linear) ConcurrentSafe() bool { return true }

func (m *Linear) Close() error { return nil }

func (m *Linear) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":   "linear",
		"model":      m.path,
		"labels":     m.labels,
		"vocab_size": len(m.vocab),
		"max_length": m.maxLength,
	}
}
