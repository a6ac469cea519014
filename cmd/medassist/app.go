package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/assistants"
	"github.com/medassist-ai/medassist/callbacks"
	"github.com/medassist-ai/medassist/internal/adapters/storage/memory"
	"github.com/medassist-ai/medassist/internal/adapters/storage/postgres"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/medassist-ai/medassist/pkg/llmfactory"
	"github.com/medassist-ai/medassist/rag"
	"github.com/medassist-ai/medassist/store"
	"github.com/medassist-ai/medassist/tools"
	"github.com/medassist-ai/medassist/tools/guidelines"
	"github.com/medassist-ai/medassist/tools/history"
	"github.com/medassist-ai/medassist/tools/interactions"
	"github.com/medassist-ai/medassist/tools/medsearch"
	"github.com/medassist-ai/medassist/triage"
	"github.com/redis/go-redis/v9"
)

// app holds the wired service components.
type app struct {
	cfg     *Config
	factory llmfactory.Factory

	msgStore store.MessageStore
	storeMgr store.MessageStoreManager
	ragStore *rag.Store
	records  *patients.Service
	toolset  []tools.ITool
	router   *triage.Router

	closers []func() error
}

// newApp wires the components from the configuration.
func newApp(ctx context.Context, cfg *Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		factory: llmfactory.New(&cfg.LLM),
	}

	if err := a.setupStore(); err != nil {
		return nil, err
	}
	if err := a.setupRecords(ctx); err != nil {
		return nil, err
	}
	if err := a.setupRAG(); err != nil {
		return nil, err
	}
	if err := a.setupTools(); err != nil {
		return nil, err
	}
	if err := a.setupTriage(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			logger.KV(xlog.WARNING, "status", "close_failed", "err", err.Error())
		}
	}
}

func (a *app) setupStore() error {
	if a.cfg.Redis.Addr == "" {
		a.msgStore = store.NewMemoryStore()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)

	a.storeMgr = store.NewRedisStoreManager(client, a.cfg.Redis.Prefix)
	a.msgStore = a.storeMgr
	logger.KV(xlog.INFO, "status", "chat_store", "backend", "redis", "addr", a.cfg.Redis.Addr)
	return nil
}

func (a *app) setupRecords(ctx context.Context) error {
	if a.cfg.Postgres.DSN != "" {
		db, err := postgres.Open(a.cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.records = patients.NewService(postgres.NewPatientsRepo(db))
		logger.KV(xlog.INFO, "status", "patient_records", "backend", "postgres")
		return nil
	}

	repo := memory.NewPatientsRepo()
	if a.cfg.Seed.Enabled {
		tenant := values.StringsCoalesce(a.cfg.HTTP.DefaultTenant, "default")
		if err := memory.Seed(ctx, repo, tenant, a.cfg.Seed.Count); err != nil {
			return errors.WithMessage(err, "failed to seed patient records")
		}
		logger.KV(xlog.INFO, "status", "seeded_patient_records", "tenant", tenant, "count", a.cfg.Seed.Count)
	}
	a.records = patients.NewService(repo)
	return nil
}

func (a *app) setupRAG() error {
	embedder, err := a.factory.Embedder()
	if err != nil {
		return errors.WithMessage(err, "failed to create embedder")
	}

	ragStore, err := rag.NewStore(embedder, &rag.StoreConfig{
		PersistPath: a.cfg.RAG.PersistDir,
		Compress:    a.cfg.RAG.Compress,
	})
	if err != nil {
		return errors.WithMessage(err, "failed to create vector store")
	}
	a.ragStore = ragStore
	a.closers = append(a.closers, ragStore.Close)
	return nil
}

func (a *app) setupTools() error {
	guidelinesTool, err := guidelines.New(a.ragStore, a.cfg.RAG.Collection)
	if err != nil {
		return err
	}
	historyTool, err := history.New(a.records)
	if err != nil {
		return err
	}
	interactionsTool, err := interactions.New()
	if err != nil {
		return err
	}
	a.toolset = []tools.ITool{guidelinesTool, historyTool, interactionsTool}

	if a.cfg.WebSearch {
		searchTool, err := medsearch.New()
		if err != nil {
			logger.KV(xlog.WARNING, "status", "web_search_disabled", "err", err.Error())
		} else {
			a.toolset = append(a.toolset, searchTool)
		}
	}
	return nil
}

func (a *app) setupTriage() error {
	llmModel, err := a.factory.DefaultModel()
	if err != nil {
		return errors.WithMessage(err, "failed to create LLM")
	}

	scripted := triage.NewScriptedResponder(llmModel)
	agentic := triage.NewAgenticResponder(llmModel, a.toolset,
		assistants.WithStore(a.msgStore),
		assistants.WithCallback(callbacks.NewPackageLogger(logger)),
	)

	mode, err := triage.ParseMode(a.cfg.Triage.DefaultMode)
	if err != nil {
		return err
	}
	a.router = triage.NewRouter(scripted, agentic, mode)
	return nil
}

// corpusLoader builds the guideline indexing pipeline.
func (a *app) corpusLoader() (*rag.CorpusLoader, error) {
	chunker, err := rag.NewChunker(rag.DefaultEncoding,
		values.NumbersCoalesce(a.cfg.RAG.ChunkSize, rag.DefaultChunkSize),
		values.NumbersCoalesce(a.cfg.RAG.ChunkOverlap, rag.DefaultChunkOverlap),
	)
	if err != nil {
		return nil, err
	}
	return rag.NewCorpusLoader(a.ragStore, chunker), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
