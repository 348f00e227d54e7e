package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"

	"golang.org/x/text/encoding/unicode"
)

// Per-class filename suffixes.
const (
	SpamSuffix = ".spam.txt"
	HamSuffix  = ".ham.txt"
)

// DecodePolicy controls how invalid UTF-8 in text files is handled.
type DecodePolicy string

const (
	// DecodeIgnore drops invalid byte sequences.
	DecodeIgnore DecodePolicy = "ignore"
	// DecodeReplace substitutes U+FFFD for invalid byte sequences.
	DecodeReplace DecodePolicy = "replace"
	// DecodeStrict fails on the first invalid byte sequence.
	DecodeStrict DecodePolicy = "strict"
)

// ParseDecodePolicy validates a configured policy name.
func ParseDecodePolicy(name string) (DecodePolicy, error) {
	switch p := DecodePolicy(name); p {
	case DecodeIgnore, DecodeReplace, DecodeStrict:
		return p, nil
	case "":
		return DecodeIgnore, nil
	}
	return "", fmt.Errorf("%w: unknown decode policy %q", apperr.ErrInvalidConfig, name)
}

// Decode converts raw file bytes to text according to the policy.
func (p DecodePolicy) Decode(data []byte) (string, error) {
	switch p {
	case DecodeReplace:
		out, err := unicode.UTF8.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperr.ErrDecode, err)
		}
		return string(out), nil
	case DecodeStrict:
		if !utf8.Valid(data) {
			return "", apperr.ErrDecode
		}
		return string(data), nil
	default:
		return string(bytes.ToValidUTF8(data, nil)), nil
	}
}

// LabelFromFilename maps the per-class suffix convention to a label.
func LabelFromFilename(name string) (models.Label, bool) {
	switch {
	case strings.HasSuffix(name, SpamSuffix):
		return models.Spam, true
	case strings.HasSuffix(name, HamSuffix):
		return models.Ham, true
	}
	return 0, false
}

// TextLoader reads class folders of one-email-per-file text sources.
type TextLoader struct {
	Policy DecodePolicy
}

// LoadClassFolder returns one record per *.spam.txt / *.ham.txt file in dir,
// in filename order. Other files and nested directories are ignored.
func (l TextLoader) LoadClassFolder(dir string) (Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("class folder %q: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read class folder: %w", err)
	}

	var records Corpus
	for _, entry := range entries {
		_, isRegular, err := resolve(dir, entry)
		if err != nil {
			return nil, err
		}
		if !isRegular {
			continue
		}
		label, ok := LabelFromFilename(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", path, err)
		}

		text, err := l.Policy.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}

		records = append(records, models.RawRecord{Text: text, Label: label})
	}
	return records, nil
}
