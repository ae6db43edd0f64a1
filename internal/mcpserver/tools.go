package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
	"github.com/ibranibeny/text2sql/internal/logging"
	"github.com/ibranibeny/text2sql/internal/synth"
)

// toolRowLimit caps rows rendered into tool results.
const toolRowLimit = 50

type toolHandlers struct {
	pipeline text2sql.Pipeline
	log      logrus.FieldLogger
}

// AskArgs are the arguments of the ask_database tool.
type AskArgs struct {
	Question string `json:"question"`
}

// RunSQLArgs are the arguments of the run_sql_query tool.
type RunSQLArgs struct {
	SQLQuery string `json:"sql_query"`
}

func (h *toolHandlers) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("ask_database",
		mcp.WithDescription("Ask a natural language question about the database. "+
			"Generates a SQL query from the question, executes it read-only, and returns "+
			"a natural language answer with the supporting SQL and data."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("A natural language question about the data, e.g. \"How many products are there?\""),
		),
	), h.handleAsk)

	s.AddTool(mcp.NewTool("get_database_schema",
		mcp.WithDescription("Get the complete database schema: all tables, columns, data types, "+
			"primary keys, foreign keys, and row counts. Use this to understand what data is "+
			"available before asking questions."),
	), h.handleSchema)

	s.AddTool(mcp.NewTool("run_sql_query",
		mcp.WithDescription("Execute a SQL SELECT query directly against the database. "+
			"Only read-only SELECT statements are accepted."),
		mcp.WithString("sql_query",
			mcp.Required(),
			mcp.Description("A SQL SELECT query, e.g. \"SELECT * FROM products LIMIT 10\""),
		),
	), h.handleRunSQL)

	s.AddResource(mcp.NewResource(
		"schema://database",
		"Database schema",
		mcp.WithResourceDescription("Complete database schema with tables, columns, and relationships."),
		mcp.WithMIMEType("text/plain"),
	), h.handleSchemaResource)
}

func (h *toolHandlers) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args AskArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	h.log.WithField("question", args.Question).Info("ask_database")

	result, err := h.pipeline.ProcessQuestion(ctx, text2sql.QuestionRequest{Question: args.Question})
	if err != nil {
		return mcp.NewToolResultError(logging.Mask(err.Error())), nil
	}
	if result.Failed() {
		return mcp.NewToolResultError(result.Error), nil
	}

	var b strings.Builder
	b.WriteString(result.Answer)
	if result.SQL != "" {
		b.WriteString("\n\nSQL Query:\n" + result.SQL)
	}
	if result.Result.RowCount() > 0 {
		fmt.Fprintf(&b, "\n\nData (%d rows):\n%s",
			result.Result.RowCount(), synth.RenderResult(result.Result, toolRowLimit))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *toolHandlers) handleSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.log.Info("get_database_schema")
	snap, err := h.pipeline.DescribeSchema(ctx)
	if err != nil {
		return mcp.NewToolResultError(logging.Mask(err.Error())), nil
	}
	return mcp.NewToolResultText(snap.Describe()), nil
}

func (h *toolHandlers) handleRunSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args RunSQLArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	h.log.WithField("sql", args.SQLQuery).Info("run_sql_query")

	result, err := h.pipeline.ExecuteRaw(ctx, args.SQLQuery)
	if err != nil {
		return mcp.NewToolResultError("SQL Error: " + logging.Mask(err.Error())), nil
	}
	if len(result.Columns) == 0 {
		return mcp.NewToolResultText("Query executed successfully but returned no results."), nil
	}
	text := fmt.Sprintf("Results (%d rows):\n%s",
		result.RowCount(), synth.RenderResult(result, toolRowLimit))
	return mcp.NewToolResultText(text), nil
}

func (h *toolHandlers) handleSchemaResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := h.pipeline.DescribeSchema(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     snap.Describe(),
		},
	}, nil
}
