// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only document tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mudkip/internal/document"
	"github.com/starford/mudkip/internal/history"
)

// Server wraps the MCP server with document tools. The tool set is strictly
// read-only; the viewer never edits documents and neither do its tools.
type Server struct {
	mcp     *server.MCPServer
	history history.Store
}

// New creates an MCP server with all tools registered. store may be nil when
// history is disabled; the recent_documents tool then answers an empty list.
func New(store history.Store) *Server {
	s := &Server{history: store}

	s.mcp = server.NewMCPServer(
		"Mudkip",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a markdown document as the viewer renders it: content plus name and base URL."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the markdown file")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("read_folder",
		mcp.WithDescription("List the markdown files directly inside a folder, in viewer order."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the folder")),
	), s.readFolder)

	s.mcp.AddTool(mcp.NewTool("recent_documents",
		mcp.WithDescription("List recently opened documents and folders, most recent first."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 20)")),
	), s.recentDocuments)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := document.BuildFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := document.BuildFolder(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot list %s: %v", path, err)), nil
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) recentDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	entries := []history.Entry{}
	if s.history != nil {
		var err error
		entries, err = s.history.Recent(limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
