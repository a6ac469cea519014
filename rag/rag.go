package rag

import (
	"context"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "rag")

// Document is a unit of indexed content, typically a chunk of a clinical
// guideline.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is a retrieved document with its similarity score.
type Result struct {
	Document
	Score float32 `json:"score"`
}

// Retriever finds the documents most similar to the query.
type Retriever interface {
	Query(ctx context.Context, collection, query string, topK int) ([]Result, error)
}

// Indexer adds documents to a collection.
type Indexer interface {
	Index(ctx context.Context, collection string, docs []Document) error
}
