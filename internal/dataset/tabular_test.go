package dataset

import (
	"path/filepath"
	"testing"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTabularPreservesRowOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.csv")
	writeFile(t, path, "id,label,text\n7,0,hello\n8,1,\"multi\nline, with comma\"\n9,0,  padded  \n")

	res, err := LoadTabular(path, DecodeIgnore)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, Corpus{
		{Text: "hello", Label: models.Ham},
		{Text: "multi\nline, with comma", Label: models.Spam},
		{Text: "  padded  ", Label: models.Ham},
	}, res.Records)
}

func TestLoadTabularMissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no-label", "text,category\nhi,spam\n"},
		{"no-text", "body,label\nhi,1\n"},
		{"empty-file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "x.csv")
			writeFile(t, path, tt.content)

			_, err := LoadTabular(path, DecodeIgnore)
			assert.ErrorIs(t, err, apperr.ErrSchema)
		})
	}
}

func TestLoadTabularRejectsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirty.csv")
	writeFile(t, path, "text,label\n,1\nok,2\nfine,abc\ngood,1.0\nnan,NaN\nshort\nlast,0\n")

	res, err := LoadTabular(path, DecodeIgnore)
	require.NoError(t, err)
	assert.Equal(t, Corpus{
		{Text: "good", Label: models.Spam},
		{Text: "last", Label: models.Ham},
	}, res.Records)

	require.Len(t, res.Issues, 5)
	lines := make([]int, len(res.Issues))
	for i, issue := range res.Issues {
		lines[i] = issue.Line
	}
	assert.Equal(t, []int{2, 3, 4, 6, 7}, lines)
	assert.Equal(t, "empty text", res.Issues[0].Reason)
	assert.Equal(t, "missing fields", res.Issues[4].Reason)
}

func TestLoadTabularByteOrderMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excel.csv")
	writeFile(t, path, "\ufefftext,label\nhi,0\n")

	res, err := LoadTabular(path, DecodeIgnore)
	require.NoError(t, err)
	assert.Equal(t, Corpus{{Text: "hi", Label: models.Ham}}, res.Records)
}

func TestLoadTabularTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sms.tsv")
	writeFile(t, path, "label\ttext\n1\tWIN a prize, now\n")

	res, err := LoadTabular(path, DecodeIgnore)
	require.NoError(t, err)
	assert.Equal(t, Corpus{{Text: "WIN a prize, now", Label: models.Spam}}, res.Records)
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		raw     string
		want    models.Label
		wantErr bool
	}{
		{"0", models.Ham, false},
		{"1", models.Spam, false},
		{" 1 ", models.Spam, false},
		{"0.0", models.Ham, false},
		{"2", 0, true},
		{"-1", 0, true},
		{"spam", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLabel(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "ParseLabel(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "ParseLabel(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "ParseLabel(%q)", tt.raw)
	}
}

func TestLoadTabularDecodePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.csv")
	writeFile(t, path, "text,label\n\"bad \xff byte\",1\n\xfe,0\nclean,0\n")

	res, err := LoadTabular(path, DecodeIgnore)
	require.NoError(t, err)
	assert.Equal(t, Corpus{
		{Text: "bad  byte", Label: models.Spam},
		{Text: "clean", Label: models.Ham},
	}, res.Records)
	require.Len(t, res.Issues, 1, "a field that decodes to nothing is an empty text")
	assert.Equal(t, "empty text", res.Issues[0].Reason)

	res, err = LoadTabular(path, DecodeReplace)
	require.NoError(t, err)
	assert.Equal(t, "bad \uFFFD byte", res.Records[0].Text)
	assert.Equal(t, "\uFFFD", res.Records[1].Text)

	_, err = LoadTabular(path, DecodeStrict)
	assert.ErrorIs(t, err, apperr.ErrDecode)
}
