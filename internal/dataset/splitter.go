package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"
)

// Split is a disjoint, exhaustive partition of a corpus.
type Split struct {
	Train      Corpus
	Validation Corpus
}

// LoadCorpus reads a canonical corpus artifact. Unlike LoadTabular, a missing
// column or a malformed label is fatal: the artifact is expected to be ours.
func LoadCorpus(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("corpus %q: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("corpus %q is empty: %w", path, apperr.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus header: %w", err)
	}

	textIdx, labelIdx, err := locateColumns(header)
	if err != nil {
		return nil, fmt.Errorf("corpus %q: %w", path, err)
	}

	var corpus Corpus
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if textIdx >= len(row) || labelIdx >= len(row) {
			return nil, fmt.Errorf("corpus line %d: missing fields: %w", line, apperr.ErrSchema)
		}
		label, err := ParseLabel(row[labelIdx])
		if err != nil {
			return nil, fmt.Errorf("corpus line %d: %v: %w", line, err, apperr.ErrSchema)
		}
		corpus = append(corpus, models.RawRecord{Text: row[textIdx], Label: label})
	}
	return corpus, nil
}

// StratifiedSplit holds out fraction p of every label for validation.
// Indices of each label are shuffled with a generator seeded by seed, so the
// same corpus, fraction and seed always yield the same partition. Both halves
// keep the corpus order.
func StratifiedSplit(corpus Corpus, p float64, seed int64) (*Split, error) {
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("%w: validation fraction must be in (0, 1), got %v", apperr.ErrInvalidConfig, p)
	}
	if len(corpus) == 0 {
		return nil, apperr.ErrEmptyCorpus
	}

	byLabel := make(map[models.Label][]int, 2)
	for i, r := range corpus {
		if !r.Label.Valid() {
			return nil, fmt.Errorf("record %d has label %d: %w", i, r.Label, apperr.ErrSchema)
		}
		byLabel[r.Label] = append(byLabel[r.Label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	held := make([]bool, len(corpus))
	for _, label := range []models.Label{models.Ham, models.Spam} {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for _, i := range idx[:holdOut(len(idx), p)] {
			held[i] = true
		}
	}

	split := &Split{}
	for i, r := range corpus {
		if held[i] {
			split.Validation = append(split.Validation, r)
		} else {
			split.Train = append(split.Train, r)
		}
	}
	return split, nil
}

// holdOut returns how many of n records go to validation. A class with at
// least two records keeps at least one on each side.
func holdOut(n int, p float64) int {
	if n < 2 {
		return 0
	}
	k := int(math.Round(float64(n) * p))
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	return k
}
