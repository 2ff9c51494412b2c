package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitechat/internal/chunker"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestExtractGlobInPathOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "Second file first sentence. Second file second sentence.")
	writeFile(t, dir, "a.md", "# Title\n\nFirst file body.")
	writeFile(t, dir, "skip.csv", "ignored,content")

	src := NewSource(chunker.NewSentenceChunker(2, 0), nil)
	segments, err := src.Extract(context.Background(), filepath.Join(dir, "*"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"# Title",
		"First file body.",
		"Second file first sentence. Second file second sentence.",
	}, segments)
}

func TestExtractCommaSeparatedTargets(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "Alpha document.")
	b := writeFile(t, dir, "b.txt", "Beta document.")

	src := NewSource(chunker.NewSentenceChunker(3, 0), nil)
	segments, err := src.Extract(context.Background(), b+", "+a+","+a)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha document.", "Beta document."}, segments)
}

func TestExtractNoDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.json", "{}")

	src := NewSource(chunker.NewSentenceChunker(3, 0), nil)
	_, err := src.Extract(context.Background(), filepath.Join(dir, "*"))
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = src.Extract(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestAccepts(t *testing.T) {
	src := NewSource(chunker.NewSentenceChunker(3, 0), nil)
	assert.True(t, src.Accepts("notes/*.txt"))
	assert.False(t, src.Accepts("https://example.com"))
}

func TestExtractCanceled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "Alpha document.")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(chunker.NewSentenceChunker(3, 0), nil).Extract(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
