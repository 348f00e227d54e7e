package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestScanRootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeFile(t, path, "text,label\n")

	_, err := Scan(path)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestScanLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stray.csv"), "text,label\nx,1\n")
	writeFile(t, filepath.Join(root, "b_enron", "a.csv"), "text,label\n")
	writeFile(t, filepath.Join(root, "b_enron", "notes.md"), "readme")
	writeFile(t, filepath.Join(root, "b_enron", "emails", "1.spam.txt"), "buy")
	writeFile(t, filepath.Join(root, "b_enron", "emails", "x.txt"), "ignored")
	writeFile(t, filepath.Join(root, "b_enron", "emails", "deep", "2.spam.txt"), "too deep")
	writeFile(t, filepath.Join(root, "b_enron", "other", "README"), "nothing labeled")
	writeFile(t, filepath.Join(root, "b_enron", "nested", "deeper", "3.ham.txt"), "too deep")
	writeFile(t, filepath.Join(root, "a_sms", "data.TSV"), "text\tlabel\n")

	sources, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "a_sms", sources[0].Name)
	assert.Equal(t, []string{filepath.Join(root, "a_sms", "data.TSV")}, sources[0].TabularFiles)
	assert.Empty(t, sources[0].ClassFolders)

	assert.Equal(t, "b_enron", sources[1].Name)
	assert.Equal(t, []string{filepath.Join(root, "b_enron", "a.csv")}, sources[1].TabularFiles)
	assert.Equal(t, []string{filepath.Join(root, "b_enron", "emails")}, sources[1].ClassFolders)
}

func TestScanEmptyRoot(t *testing.T) {
	sources, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestScanFollowsSymlinks(t *testing.T) {
	store := t.TempDir()
	writeFile(t, filepath.Join(store, "enron", "mail", "1.ham.txt"), "hello")
	writeFile(t, filepath.Join(store, "shared.csv"), "text,label\nwin,1\n")
	writeFile(t, filepath.Join(store, "loose", "2.spam.txt"), "buy")

	root := t.TempDir()
	symlink(t, filepath.Join(store, "enron"), filepath.Join(root, "enron"))
	writeFile(t, filepath.Join(root, "sms", "local.csv"), "text,label\nlunch,0\n")
	symlink(t, filepath.Join(store, "shared.csv"), filepath.Join(root, "sms", "shared.csv"))
	symlink(t, filepath.Join(store, "loose"), filepath.Join(root, "sms", "linked"))
	symlink(t, filepath.Join(store, "gone.csv"), filepath.Join(root, "sms", "dangling.csv"))
	symlink(t, filepath.Join(store, "gone"), filepath.Join(root, "dangling"))

	sources, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "enron", sources[0].Name)
	assert.Equal(t, []string{filepath.Join(root, "enron", "mail")}, sources[0].ClassFolders)

	assert.Equal(t, "sms", sources[1].Name)
	assert.Equal(t, []string{
		filepath.Join(root, "sms", "local.csv"),
		filepath.Join(root, "sms", "shared.csv"),
	}, sources[1].TabularFiles)
	assert.Equal(t, []string{filepath.Join(root, "sms", "linked")}, sources[1].ClassFolders)

	corpus, _, err := NewMerger(DecodeIgnore, false, nil).Merge(sources)
	require.NoError(t, err)
	assert.Equal(t, Corpus{
		{Text: "hello", Label: models.Ham},
		{Text: "lunch", Label: models.Ham},
		{Text: "win", Label: models.Spam},
		{Text: "buy", Label: models.Spam},
	}, corpus)
}

func TestLoadClassFolderFollowsFileSymlinks(t *testing.T) {
	store := t.TempDir()
	writeFile(t, filepath.Join(store, "body.txt"), "linked body")

	dir := t.TempDir()
	symlink(t, filepath.Join(store, "body.txt"), filepath.Join(dir, "a.spam.txt"))
	symlink(t, filepath.Join(store, "missing.txt"), filepath.Join(dir, "b.ham.txt"))

	records, err := TextLoader{Policy: DecodeIgnore}.LoadClassFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, Corpus{{Text: "linked body", Label: models.Spam}}, records)
}
