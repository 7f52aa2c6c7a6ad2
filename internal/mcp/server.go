// Package mcp exposes the tool registry as a Model Context Protocol
// server. The MCP runtime (discovery, JSON-RPC framing, stdio
// transport) comes from mark3labs/mcp-go; this package only bridges
// tool descriptors and invocations onto the dispatcher.
package mcp

import (
	"context"
	"encoding/json"
	"os"

	mcpt "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nugget/odoo-mcp/internal/buildinfo"
	"github.com/nugget/odoo-mcp/internal/tools"
)

// ServerName is the MCP server identity advertised to hosts.
const ServerName = "odoo-mcp"

// NewServer builds an MCP server with every registry tool attached.
// Each invocation routes through the dispatcher, which always returns
// a text payload — tool failures are ordinary results, never
// protocol-level errors.
func NewServer(reg *tools.Registry) *server.MCPServer {
	srv := server.NewMCPServer(
		ServerName,
		buildinfo.Version,
		server.WithToolCapabilities(true),
	)

	for _, def := range reg.Definitions() {
		name := def.Name
		srv.AddTool(newTool(def), func(ctx context.Context, req mcpt.CallToolRequest) (*mcpt.CallToolResult, error) {
			return mcpt.NewToolResultText(reg.Dispatch(ctx, name, req.GetArguments())), nil
		})
	}

	return srv
}

// newTool converts a registry definition into an MCP tool declaration.
// The input schemas carry nested array shapes and a oneOf credential
// constraint, so they are attached as raw JSON Schema rather than
// rebuilt through the typed option helpers.
func newTool(def tools.Definition) mcpt.Tool {
	schema, err := json.Marshal(def.InputSchema)
	if err != nil {
		// Schemas are static map literals; a marshal failure is a
		// programming error.
		panic(err)
	}
	return mcpt.NewToolWithRawSchema(def.Name, def.Description, schema)
}

// ServeStdio runs the server over stdin/stdout until ctx is cancelled
// or the host closes the stream.
func ServeStdio(ctx context.Context, srv *server.MCPServer) error {
	return server.NewStdioServer(srv).Listen(ctx, os.Stdin, os.Stdout)
}
