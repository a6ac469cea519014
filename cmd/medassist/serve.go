package main

import (
	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/httpserver"
	"github.com/medassist-ai/medassist/mcpserver"
)

// ServeCmd starts the HTTP server, with optional MCP transports.
type ServeCmd struct {
	Addr     string `help:"HTTP listen address, overrides the config."`
	MCPStdio bool   `name:"mcp-stdio" help:"Serve MCP over stdin/stdout instead of HTTP."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := LoadConfig(cli.Cfg)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.HTTP.Addr = c.Addr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// index the corpus on start when configured and the store is empty
	if cfg.RAG.CorpusDir != "" && fileExists(cfg.RAG.CorpusDir) && a.ragStore.Count(cfg.RAG.Collection) == 0 {
		loader, err := a.corpusLoader()
		if err != nil {
			return err
		}
		n, err := loader.LoadDir(ctx, cfg.RAG.Collection, cfg.RAG.CorpusDir)
		if err != nil {
			return err
		}
		logger.KV(xlog.INFO, "status", "indexed_corpus", "chunks", n, "dir", cfg.RAG.CorpusDir)
	}

	mcpSrv, err := mcpserver.New(cfg.MCP, a.router, a.toolset...)
	if err != nil {
		return err
	}

	if c.MCPStdio {
		// stdio transport owns the process I/O, no HTTP alongside
		return mcpSrv.ServeStdio(ctx)
	}

	mcpErrCh := make(chan error, 1)
	if cfg.MCP.Addr != "" {
		go func() {
			err := mcpSrv.ServeHTTP(ctx)
			if err != nil {
				logger.KV(xlog.ERROR, "status", "mcp_server_failed", "err", err.Error())
				cancel()
			}
			mcpErrCh <- err
		}()
	} else {
		mcpErrCh <- nil
	}

	srv := httpserver.New(cfg.HTTP, a.router, a.storeMgr, a.records)
	if err := srv.ListenAndServe(ctx); err != nil {
		cancel()
		<-mcpErrCh
		return err
	}
	return <-mcpErrCh
}
