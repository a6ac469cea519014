package rag_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/medassist-ai/medassist/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunker(t *testing.T, chunkSize, overlap int) *rag.Chunker {
	t.Helper()
	c, err := rag.NewChunker(rag.DefaultEncoding, chunkSize, overlap)
	if err != nil {
		// the tokenizer downloads its vocabulary on first use
		t.Skipf("tokenizer is not available: %v", err)
	}
	return c
}

func Test_Chunker_Split(t *testing.T) {
	c := newChunker(t, 10, 2)

	assert.Empty(t, c.Split(""))

	short := "High blood pressure."
	chunks := c.Split(short)
	require.Len(t, chunks, 1)
	assert.Equal(t, short, chunks[0])

	long := strings.Repeat("Adults with hypertension should monitor their blood pressure at home. ", 20)
	chunks = c.Split(long)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, c.CountTokens(chunk), 10)
	}
	// nothing is lost at chunk boundaries
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk)
	}
	assert.Contains(t, rebuilt.String(), "monitor their blood pressure")
}

func Test_Chunker_OverlapExceedsChunkSize(t *testing.T) {
	long := strings.Repeat("Check blood pressure twice daily and record the readings. ", 30)

	// an overlap at or above the chunk size must not stall or panic
	for _, overlap := range []int{30, 40} {
		c := newChunker(t, 30, overlap)
		chunks := c.Split(long)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, c.CountTokens(chunk), 30)
		}
	}
}

func Test_Chunker_Defaults(t *testing.T) {
	c := newChunker(t, 0, -1)
	text := strings.Repeat("word ", 100)
	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

type fakeIndexer struct {
	collection string
	docs       []rag.Document
}

func (f *fakeIndexer) Index(_ context.Context, collection string, docs []rag.Document) error {
	f.collection = collection
	f.docs = append(f.docs, docs...)
	return nil
}

func Test_CorpusLoader(t *testing.T) {
	c := newChunker(t, 50, 5)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hypertension.md"),
		[]byte("# Hypertension Management\n\nAdults with stage 1 hypertension should start lifestyle modification."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("Plain text guidance."), 0o644))
	// unsupported extensions are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"),
		[]byte(`{"ignored":true}`), 0o644))

	indexer := &fakeIndexer{}
	loader := rag.NewCorpusLoader(indexer, c)

	n, err := loader.LoadDir(context.Background(), "guidelines", dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "guidelines", indexer.collection)
	require.Len(t, indexer.docs, 2)

	bySource := map[string]rag.Document{}
	for _, doc := range indexer.docs {
		bySource[doc.Metadata["source"]] = doc
	}
	// the markdown heading becomes the title
	assert.Equal(t, "Hypertension Management", bySource["hypertension.md"].Metadata["title"])
	// files without a heading fall back to the file name
	assert.Equal(t, "notes.txt", bySource["notes.txt"].Metadata["title"])
	assert.Equal(t, "hypertension.md#0", bySource["hypertension.md"].ID)
}

func Test_CorpusLoader_EmptyDir(t *testing.T) {
	c := newChunker(t, 50, 5)

	indexer := &fakeIndexer{}
	loader := rag.NewCorpusLoader(indexer, c)

	n, err := loader.LoadDir(context.Background(), "guidelines", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, indexer.docs)
}
