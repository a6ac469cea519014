package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// IndexCmd builds the guideline vector index from the corpus directory.
type IndexCmd struct {
	Dir string `arg:"" optional:"" help:"Corpus directory, overrides the config." type:"path"`
}

func (c *IndexCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := LoadConfig(cli.Cfg)
	if err != nil {
		return err
	}
	if c.Dir != "" {
		cfg.RAG.CorpusDir = c.Dir
	}
	if cfg.RAG.CorpusDir == "" {
		return errors.New("corpus directory is not configured")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	loader, err := a.corpusLoader()
	if err != nil {
		return err
	}

	n, err := loader.LoadDir(ctx, cfg.RAG.Collection, cfg.RAG.CorpusDir)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d chunks into collection %q\n", n, cfg.RAG.Collection)
	return nil
}
