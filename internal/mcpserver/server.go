// Package mcpserver exposes the tool registry over the Model Context
// Protocol, on stdio for a single client or over SSE for many.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matheus3301/wppmcp/internal/tools"
	"go.uber.org/zap"
)

// Name is the server name announced during the MCP handshake.
const Name = "whatsapp"

// Server adapts a tools.Registry to mcp-go.
type Server struct {
	mcp      *server.MCPServer
	registry *tools.Registry
	logger   *zap.Logger
}

// New registers every tool of registry on a fresh MCP server.
func New(registry *tools.Registry, version string, logger *zap.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		registry: registry,
		logger:   logger,
	}
	for _, t := range registry.Tools() {
		s.mcp.AddTool(Definition(t), s.handle(t.Name))
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio speaks MCP on in/out until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))
	s.logger.Info("serving MCP on stdio", zap.Int("tools", len(s.registry.Tools())))
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// SSE builds the SSE transport. baseURL is the externally reachable origin
// used in the endpoint event sent to clients.
func (s *Server) SSE(baseURL string) *server.SSEServer {
	return server.NewSSEServer(s.mcp,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
	)
}

func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.registry.Call(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return render(res)
	}
}

// render encodes text results verbatim and everything else as indented
// JSON. Objects are also attached as structured content.
func render(res tools.Result) (*mcp.CallToolResult, error) {
	if res.IsText() {
		return mcp.NewToolResultText(res.Text), nil
	}
	raw, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error()), nil
	}
	out := mcp.NewToolResultText(string(raw))
	if len(raw) > 0 && raw[0] == '{' {
		out.StructuredContent = json.RawMessage(raw)
	}
	return out, nil
}

// Definition converts a registry tool to its MCP schema.
func Definition(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, p := range t.Params {
		opts = append(opts, property(p))
	}
	return mcp.NewTool(t.Name, opts...)
}

func property(p tools.Param) mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Description)}
	if p.Required {
		props = append(props, mcp.Required())
	}
	if len(p.Enum) > 0 {
		props = append(props, mcp.Enum(p.Enum...))
	}

	switch p.Type {
	case tools.Number:
		if v, ok := p.Default.(float64); ok {
			props = append(props, mcp.DefaultNumber(v))
		}
		return mcp.WithNumber(p.Name, props...)
	case tools.Boolean:
		if v, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(v))
		}
		return mcp.WithBoolean(p.Name, props...)
	case tools.Array:
		props = append(props, mcp.WithStringItems())
		return mcp.WithArray(p.Name, props...)
	default:
		if v, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(v))
		}
		return mcp.WithString(p.Name, props...)
	}
}
