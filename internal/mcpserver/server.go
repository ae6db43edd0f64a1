// Package mcpserver exposes the pipeline as a Model Context Protocol server
// with three tools and a schema resource.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
)

// Version reported during MCP initialization.
const Version = "4.0.0"

const serverInstructions = "A Text-to-SQL agent for a relational sales database. " +
	"It converts natural language questions about the data into SQL queries, executes " +
	"them read-only, and returns natural language answers. Use get_database_schema " +
	"to see what data is available."

// New builds the MCP server with all tools and resources registered. The
// caller chooses the transport (streamable HTTP or stdio).
func New(pipeline text2sql.Pipeline, log logrus.FieldLogger) *server.MCPServer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := server.NewMCPServer(
		"Text2SQL Database Assistant",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(serverInstructions),
	)

	h := &toolHandlers{pipeline: pipeline, log: log}
	h.register(s)
	return s
}
