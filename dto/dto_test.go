package dto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIDDeterministic(t *testing.T) {
	id1 := DocumentID("docs/handbook.md")
	id2 := DocumentID("docs/handbook.md")
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 40)

	other := DocumentID("docs/other.md")
	assert.NotEqual(t, id1, other)
}

func TestChunkIDVariesWithInputs(t *testing.T) {
	docID := DocumentID("docs/handbook.md")

	base := ChunkID(docID, 0, "hello world")
	assert.Len(t, base, 40)

	tests := []struct {
		name  string
		docID string
		index int
		text  string
	}{
		{"different index", docID, 1, "hello world"},
		{"different text", docID, 0, "hello there"},
		{"different document", DocumentID("docs/other.md"), 0, "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, ChunkID(tt.docID, tt.index, tt.text))
		})
	}

	assert.Equal(t, base, ChunkID(docID, 0, "hello world"))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	h1, err := HashFile(path)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = HashFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestClampQuote(t *testing.T) {
	tests := []struct {
		name  string
		quote string
		want  string
	}{
		{"short quote unchanged", "a verbatim quote", "a verbatim quote"},
		{"whitespace collapsed", "a   verbatim\n\tquote", "a verbatim quote"},
		{"empty", "", ""},
		{
			"long quote clamped to 25 words",
			strings.Repeat("word ", 30),
			strings.TrimSpace(strings.Repeat("word ", 25)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampQuote(tt.quote))
		})
	}
}

func TestCleanSnippet(t *testing.T) {
	short := CleanSnippet("some  text\nwith   gaps")
	assert.Equal(t, "some text with gaps", short)

	long := CleanSnippet(strings.Repeat("x", 500))
	assert.Equal(t, 241, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestNewTimestampIsUTC(t *testing.T) {
	ts := NewTimestamp()
	assert.True(t, strings.HasSuffix(ts, "Z"), "timestamp should be UTC with Z suffix: %s", ts)
}
