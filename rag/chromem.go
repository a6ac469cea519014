package rag

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/metricskey"
	"github.com/philippgille/chromem-go"
)

// Store is an embedded vector store backed by chromem-go,
// with optional gob file persistence.
// The embeddings are computed externally via the llms.Embedder.
type Store struct {
	db          *chromem.DB
	embedder    llms.Embedder
	persistPath string
	compress    bool

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

var (
	_ Retriever = (*Store)(nil)
	_ Indexer   = (*Store)(nil)
)

// StoreConfig configures the vector store.
type StoreConfig struct {
	// PersistPath for file persistence.
	// If empty, vectors are stored in memory only.
	PersistPath string `json:"persist_path,omitempty" yaml:"persist_path,omitempty"`
	// Compress enables gzip compression for persistence.
	Compress bool `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// NewStore creates a vector store.
// When cfg.PersistPath is set, an existing database is loaded from it.
func NewStore(embedder llms.Embedder, cfg *StoreConfig) (*Store, error) {
	if cfg == nil {
		cfg = &StoreConfig{}
	}

	db := chromem.NewDB()
	if cfg.PersistPath != "" {
		if err := os.MkdirAll(cfg.PersistPath, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create persist directory")
		}
		dbPath := dbFilePath(cfg.PersistPath, cfg.Compress)
		if _, err := os.Stat(dbPath); err == nil {
			if err := db.Import(dbPath, ""); err != nil {
				logger.KV(xlog.WARNING,
					"status", "failed_to_load_vector_db",
					"path", dbPath,
					"err", err.Error())
			}
		}
	}

	return &Store{
		db:          db,
		embedder:    embedder,
		persistPath: cfg.PersistPath,
		compress:    cfg.Compress,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func dbFilePath(dir string, compress bool) string {
	name := "vectors.gob"
	if compress {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}

// embeddingFunc is the identity function: the vectors are pre-computed
// by the embedder and passed with the documents.
func (s *Store) embeddingFunc(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embedding must be pre-computed")
}

func (s *Store) getCollection(name string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		return col, nil
	}
	col, err := s.db.GetOrCreateCollection(name, nil, s.embeddingFunc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get or create collection %s", name)
	}
	s.collections[name] = col
	return col, nil
}

// Index embeds and adds the documents to the collection.
func (s *Store) Index(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	col, err := s.getCollection(collection)
	if err != nil {
		return err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	vectors, err := s.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return errors.Wrap(err, "failed to create embeddings")
	}
	if len(vectors) != len(docs) {
		return errors.Newf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Text,
			Metadata:  doc.Metadata,
			Embedding: vectors[i],
		}
	}

	if err := col.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return errors.Wrap(err, "failed to add documents")
	}

	metricskey.StatsDocumentsIndexed.IncrCounter(float64(len(docs)), collection)

	if err := s.persist(); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "failed_to_persist_vector_db",
			"err", err.Error())
	}
	return nil
}

// Query embeds the query and returns the topK most similar documents.
func (s *Store) Query(ctx context.Context, collection, query string, topK int) ([]Result, error) {
	started := time.Now()
	defer metricskey.PerfRetrievalQuery.MeasureSince(started, collection)

	col, err := s.getCollection(collection)
	if err != nil {
		return nil, err
	}

	metricskey.StatsRetrievalQueries.IncrCounter(1, collection)

	count := col.Count()
	if count == 0 {
		metricskey.StatsRetrievalEmptyResults.IncrCounter(1, collection)
		return nil, nil
	}
	if topK <= 0 || topK > count {
		topK = count
	}

	vectors, err := s.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed query")
	}
	if len(vectors) != 1 {
		return nil, errors.Newf("embedder returned %d vectors for a single query", len(vectors))
	}

	found, err := col.QueryEmbedding(ctx, vectors[0], topK, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query collection")
	}
	if len(found) == 0 {
		metricskey.StatsRetrievalEmptyResults.IncrCounter(1, collection)
		return nil, nil
	}

	results := make([]Result, len(found))
	for i, r := range found {
		results[i] = Result{
			Document: Document{
				ID:       r.ID,
				Text:     r.Content,
				Metadata: r.Metadata,
			},
			Score: r.Similarity,
		}
	}
	return results, nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(collection string) int {
	col, err := s.getCollection(collection)
	if err != nil {
		return 0
	}
	return col.Count()
}

// Close persists the database when persistence is enabled.
func (s *Store) Close() error {
	return s.persist()
}

func (s *Store) persist() error {
	if s.persistPath == "" {
		return nil
	}
	if err := s.db.Export(dbFilePath(s.persistPath, s.compress), s.compress, ""); err != nil {
		return errors.Wrap(err, "failed to export vector database")
	}
	return nil
}
