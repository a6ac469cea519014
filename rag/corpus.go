package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// CorpusLoader reads guideline files from a directory tree,
// splits them into chunks and indexes them.
type CorpusLoader struct {
	indexer Indexer
	chunker *Chunker
}

func NewCorpusLoader(indexer Indexer, chunker *Chunker) *CorpusLoader {
	return &CorpusLoader{
		indexer: indexer,
		chunker: chunker,
	}
}

// LoadDir indexes all markdown and text files under dir into the collection.
// It returns the number of indexed chunks.
func (l *CorpusLoader) LoadDir(ctx context.Context, collection, dir string) (int, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		chunks, err := l.loadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, chunks...)
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to walk corpus directory %s", dir)
	}

	if len(docs) == 0 {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "empty_corpus",
			"dir", dir)
		return 0, nil
	}

	if err := l.indexer.Index(ctx, collection, docs); err != nil {
		return 0, err
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "corpus_indexed",
		"collection", collection,
		"chunks", len(docs))
	return len(docs), nil
}

func (l *CorpusLoader) loadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	text := string(data)
	source := filepath.Base(path)
	title := documentTitle(text, source)

	chunks := l.chunker.Split(text)
	docs := make([]Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = Document{
			ID:   fmt.Sprintf("%s#%d", source, i),
			Text: chunk,
			Metadata: map[string]string{
				"source": source,
				"title":  title,
			},
		}
	}
	return docs, nil
}

// documentTitle returns the first markdown heading, or the file name.
func documentTitle(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return fallback
}
