package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"
)

// Corpus is an ordered sequence of validated records.
type Corpus []models.RawRecord

// Counts returns the number of records per label.
func (c Corpus) Counts() map[models.Label]int {
	counts := make(map[models.Label]int, 2)
	for _, r := range c {
		counts[r.Label]++
	}
	return counts
}

// Source describes one dataset directory under the raw root.
type Source struct {
	Name         string
	Dir          string
	TabularFiles []string
	ClassFolders []string
}

var tabularExtensions = map[string]rune{
	".csv": ',',
	".tsv": '\t',
}

// IsTabular reports whether name carries a recognized tabular extension.
func IsTabular(name string) bool {
	_, ok := tabularExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan enumerates dataset directories under root. Only two levels are
// inspected: dataset directories and their immediate class folders.
func Scan(root string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dataset path %q: %w", root, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat dataset path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %q is not a directory: %w", root, apperr.ErrNotFound)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset path: %w", err)
	}

	var sources []Source
	for _, entry := range entries {
		isDir, _, err := resolve(root, entry)
		if err != nil {
			return nil, err
		}
		if !isDir {
			continue
		}
		src, err := scanDataset(entry.Name(), filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func scanDataset(name, dir string) (Source, error) {
	src := Source{Name: name, Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return src, fmt.Errorf("failed to read dataset %q: %w", name, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir, isRegular, err := resolve(dir, entry)
		if err != nil {
			return src, err
		}
		switch {
		case isRegular && IsTabular(entry.Name()):
			src.TabularFiles = append(src.TabularFiles, path)
		case isDir:
			ok, err := hasLabeledFiles(path)
			if err != nil {
				return src, err
			}
			if ok {
				src.ClassFolders = append(src.ClassFolders, path)
			}
		}
	}
	return src, nil
}

// resolve reports what entry is, following symbolic links. A dangling link
// is neither a directory nor a regular file.
func resolve(dir string, entry os.DirEntry) (isDir, isRegular bool, err error) {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir(), entry.Type().IsRegular(), nil
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if errors.Is(err, os.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to resolve %q: %w", entry.Name(), err)
	}
	return info.IsDir(), info.Mode().IsRegular(), nil
}

func hasLabeledFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read class folder %q: %w", dir, err)
	}
	for _, entry := range entries {
		_, isRegular, err := resolve(dir, entry)
		if err != nil {
			return false, err
		}
		if !isRegular {
			continue
		}
		if _, ok := LabelFromFilename(entry.Name()); ok {
			return true, nil
		}
	}
	return false, nil
}
