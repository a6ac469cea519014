package main

import (
	"github.com/effective-security/x/configloader"
	"github.com/medassist-ai/medassist/httpserver"
	"github.com/medassist-ai/medassist/mcpserver"
	"github.com/medassist-ai/medassist/pkg/llmfactory"
)

// Config is the service configuration, loaded from a YAML file with
// environment expansion.
type Config struct {
	// LLM is the provider and model configuration.
	LLM llmfactory.Config `json:"llm" yaml:"llm"`

	// Redis enables the persistent chat store when Addr is set,
	// otherwise chats are kept in memory.
	Redis RedisConfig `json:"redis" yaml:"redis"`

	// Postgres enables the patient records database when DSN is set,
	// otherwise a seeded in-memory repository is used.
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`

	// RAG configures the guideline corpus and the vector store.
	RAG RAGConfig `json:"rag" yaml:"rag"`

	// Triage configures the routing between scripted and agentic modes.
	Triage TriageConfig `json:"triage" yaml:"triage"`

	// HTTP is the REST server configuration.
	HTTP httpserver.Config `json:"http" yaml:"http"`

	// MCP is the MCP server configuration, enabled when Addr is set
	// or the serve command runs with --mcp-stdio.
	MCP mcpserver.Config `json:"mcp" yaml:"mcp"`

	// Seed populates the in-memory patient repository with fake records.
	Seed SeedConfig `json:"seed" yaml:"seed"`

	// WebSearch enables the medical web search tool,
	// requires TAVILY_API_KEY.
	WebSearch bool `json:"web_search" yaml:"web_search"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

type RAGConfig struct {
	// CorpusDir holds the guideline documents (.md, .txt).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`
	// PersistDir stores the vector index, empty keeps it in memory.
	PersistDir string `json:"persist_dir" yaml:"persist_dir"`
	Compress   bool   `json:"compress" yaml:"compress"`
	// Collection name, default "guidelines".
	Collection   string `json:"collection" yaml:"collection"`
	ChunkSize    int    `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap" yaml:"chunk_overlap"`
}

type TriageConfig struct {
	// DefaultMode is scripted, agentic or auto.
	DefaultMode string `json:"default_mode" yaml:"default_mode"`
}

type SeedConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Count   int  `json:"count" yaml:"count"`
}

// LoadConfig reads the configuration file and expands environment
// variables. An empty file name returns the defaults.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.RAG.Collection == "" {
		cfg.RAG.Collection = "guidelines"
	}
	if cfg.Seed.Count == 0 {
		cfg.Seed.Count = 10
	}
	return cfg, nil
}
