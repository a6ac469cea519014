// Command medassist runs the clinical decision-support service:
// a REST chat API, an optional MCP surface, a guideline indexer and a
// terminal chat client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "medassist")

// CLI defines the command-line interface.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP server, with optional MCP."`
	Chat    ChatCmd    `cmd:"" help:"Chat with the assistant from the terminal."`
	Index   IndexCmd   `cmd:"" help:"Index the guideline corpus into the vector store."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	Cfg   string `short:"c" help:"Path to the YAML configuration file." type:"path"`
	Debug bool   `short:"D" help:"Enable debug logging."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(_ *CLI) error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	fmt.Printf("medassist %s\n", version)
	return nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.KV(xlog.INFO, "status", "shutting_down")
		cancel()
	}()
	return ctx, cancel
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("medassist"),
		kong.Description("Clinical decision-support agent service."),
		kong.UsageOnError(),
	)

	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	if cli.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.INFO)
	}

	err := kctx.Run(&cli)
	kctx.FatalIfErrorf(err)
}
