package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"
)

// Canonical column names.
const (
	TextColumn  = "text"
	LabelColumn = "label"
)

// RowIssue describes a tabular row rejected at the load boundary.
type RowIssue struct {
	Line   int
	Reason string
}

// TabularResult is the outcome of loading one tabular file.
type TabularResult struct {
	Records Corpus
	Issues  []RowIssue
}

// LoadTabular reads a CSV/TSV file that exposes "text" and "label" columns.
// A file missing either column fails with apperr.ErrSchema. Text fields are
// decoded with policy, so under DecodeStrict invalid UTF-8 fails the file
// with apperr.ErrDecode. Rows with an empty text or a label other than 0/1
// are rejected and reported as issues.
func LoadTabular(path string, policy DecodePolicy) (*TabularResult, error) {
	delim, ok := tabularExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%q is not a tabular file: %w", path, apperr.ErrSchema)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("tabular file %q: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open tabular file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%q has no header row: %w", path, apperr.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %q: %w", path, err)
	}

	textIdx, labelIdx, err := locateColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	result := &TabularResult{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", path, err)
		}
		line, _ := reader.FieldPos(0)

		if textIdx >= len(row) || labelIdx >= len(row) {
			result.Issues = append(result.Issues, RowIssue{Line: line, Reason: "missing fields"})
			continue
		}

		text, err := policy.Decode([]byte(row[textIdx]))
		if err != nil {
			return nil, fmt.Errorf("%q line %d: %w", path, line, err)
		}
		if text == "" {
			result.Issues = append(result.Issues, RowIssue{Line: line, Reason: "empty text"})
			continue
		}

		label, err := ParseLabel(row[labelIdx])
		if err != nil {
			result.Issues = append(result.Issues, RowIssue{Line: line, Reason: err.Error()})
			continue
		}

		result.Records = append(result.Records, models.RawRecord{Text: text, Label: label})
	}

	return result, nil
}

// locateColumns finds the text and label columns by name.
func locateColumns(header []string) (int, int, error) {
	textIdx, labelIdx := -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch name {
		case TextColumn:
			if textIdx < 0 {
				textIdx = i
			}
		case LabelColumn:
			if labelIdx < 0 {
				labelIdx = i
			}
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return -1, -1, fmt.Errorf("columns %q and %q are required: %w", TextColumn, LabelColumn, apperr.ErrSchema)
	}
	return textIdx, labelIdx, nil
}

// ParseLabel accepts numeric values equal to 0 or 1 ("1", "1.0", " 0 ").
func ParseLabel(raw string) (models.Label, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("label %q is not numeric", raw)
	}
	switch v {
	case 0:
		return models.Ham, nil
	case 1:
		return models.Spam, nil
	}
	return 0, fmt.Errorf("label %q is outside {0,1}", raw)
}
