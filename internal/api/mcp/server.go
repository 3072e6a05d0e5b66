package mcp

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/domain/service"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Server hosts the meta-tools for an MCP client
type Server struct {
	engine *service.Engine
	mcp    *server.MCPServer
	logger *logging.Logger
}

// NewServer registers one MCP tool per meta-operation
func NewServer(engine *service.Engine, version string, logger *logging.Logger) *Server {
	s := &Server{
		engine: engine,
		mcp:    server.NewMCPServer("catalogd", version, server.WithToolCapabilities(false)),
		logger: logger.Component("mcp"),
	}
	for _, tool := range engine.Definition().Tools {
		s.mcp.AddTool(newTool(tool), s.handler(tool.ID))
	}
	return s
}

// ToolName maps a meta-tool ID to its MCP name ("catalogue.search" -> "search")
func ToolName(id string) string {
	return strings.TrimPrefix(id, service.ServiceID+".")
}

func newTool(def types.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	for _, p := range def.Parameters {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		case "array":
			popts = append(popts, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(p.Name, popts...))
		case "object":
			opts = append(opts, mcp.WithObject(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(ToolName(def.ID), opts...)
}

func (s *Server) handler(toolID string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.engine.Execute(ctx, toolID, req.GetArguments())
		if err != nil {
			s.logger.Debug("Tool call rejected", zap.String("tool", toolID), zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := sonic.Marshal(result)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("encoding result", err), nil
		}
		if !result.Success {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(string(data))},
				IsError: true,
			}, nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// ServeStdio blocks serving JSON-RPC on stdin/stdout
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve blocks serving line-delimited JSON-RPC until ctx is done or in closes
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Serving MCP", zap.Int("tools", len(s.engine.Definition().Tools)))
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}
