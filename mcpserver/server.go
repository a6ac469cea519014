// Package mcpserver exposes the clinical tools and the triage assistant
// over the Model Context Protocol, on stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
	"github.com/medassist-ai/medassist/tools"
	"github.com/medassist-ai/medassist/triage"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "mcpserver")

// ChatToolName is the MCP tool running the triage assistant.
const ChatToolName = "clinical-triage"

// Config is the MCP server configuration.
type Config struct {
	// Name of the MCP server in the handshake.
	Name string `json:"name" yaml:"name"`
	// Version of the MCP server in the handshake.
	Version string `json:"version" yaml:"version"`
	// Addr is the listen address for the streamable HTTP transport.
	Addr string `json:"addr" yaml:"addr"`
	// Tenant scopes the sessions created for MCP calls.
	Tenant string `json:"tenant" yaml:"tenant"`
}

// Server hosts the MCP surface.
type Server struct {
	cfg    Config
	triage *triage.Router
	mcp    *server.MCPServer
}

// New creates the MCP server and registers the tools. The triage router
// may be nil when only the raw tools are exposed.
func New(cfg Config, triageRouter *triage.Router, toolList ...tools.ITool) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = "medassist"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Tenant == "" {
		cfg.Tenant = "mcp"
	}

	s := &Server{
		cfg:    cfg,
		triage: triageRouter,
		mcp: server.NewMCPServer(cfg.Name, cfg.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	for _, t := range toolList {
		if err := s.registerTool(t); err != nil {
			return nil, err
		}
	}
	if triageRouter != nil {
		if err := s.registerChatTool(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// registerTool exposes a tool with its function-parameter schema.
func (s *Server) registerTool(t tools.ITool) error {
	raw, err := json.Marshal(t.Parameters())
	if err != nil {
		return errors.Wrapf(err, "failed to marshal schema for tool %s", t.Name())
	}

	mcpTool := mcp.NewToolWithRawSchema(t.Name(), t.Description(), raw)
	s.mcp.AddTool(mcpTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// tools that read the session from the context get a fresh one
		chatCtx := chatmodel.NewChatContext(s.cfg.Tenant, "", "", nil)
		ctx = chatmodel.WithChatContext(ctx, chatCtx)

		res, err := t.Call(ctx, string(input))
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"tool", t.Name(),
				"status", "tool_call_failed",
				"err", err.Error(),
			)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(res), nil
	})

	logger.KV(xlog.DEBUG, "status", "registered_tool", "tool", t.Name())
	return nil
}

// registerChatTool exposes the triage assistant as a single MCP tool.
// The input carries the chat ID so that callers can keep a session.
func (s *Server) registerChatTool() error {
	sc, err := schema.New(reflect.TypeOf(chatmodel.MCPInputRequest{}))
	if err != nil {
		return errors.Wrap(err, "failed to create chat tool schema")
	}
	raw, err := json.Marshal(sc.Parameters)
	if err != nil {
		return errors.Wrap(err, "failed to marshal chat tool schema")
	}

	mcpTool := mcp.NewToolWithRawSchema(ChatToolName,
		"Answers a clinical question using guidelines, patient history and drug interaction checks. Pass the same chatID to continue a conversation.",
		raw)

	s.mcp.AddTool(mcpTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var chatReq chatmodel.MCPInputRequest
		if err := chatReq.ParseInput(string(input)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if chatReq.Input == "" {
			return mcp.NewToolResultError("invalid request: empty input"), nil
		}

		chatCtx := chatmodel.NewChatContext(s.cfg.Tenant, chatReq.ChatID, chatReq.PatientID, nil)
		ctx = chatmodel.WithChatContext(ctx, chatCtx)

		res, err := s.triage.Respond(ctx, triage.ModeAgentic, chatReq.Input)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(llmutils.ToJSON(res)), nil
	})
	return nil
}

// MCP returns the underlying MCP server, for in-process transports.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	err := server.ServeStdio(s.mcp, server.WithStdioContextFunc(func(context.Context) context.Context {
		return ctx
	}))
	return errors.Wrap(err, "MCP stdio server failed")
}

// ServeHTTP blocks serving MCP over streamable HTTP until the context is
// canceled.
func (s *Server) ServeHTTP(ctx context.Context) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)

	errCh := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO, "status", "listening", "transport", "streamable-http", "addr", s.cfg.Addr)
		errCh <- httpServer.Start(s.cfg.Addr)
	}()

	select {
	case <-ctx.Done():
		return errors.Wrap(httpServer.Shutdown(context.Background()), "failed to shut down MCP server")
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "MCP HTTP server failed")
	}
}
