// Package sqlgen turns natural-language questions into single read-only SQL
// statements via the language-model boundary.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
)

// Generation runs at temperature 0: the lowest-variance sampling the model
// offers. Not bit-identical across calls, but close.
const (
	generateTemperature = 0.0
	generateMaxTokens   = 500
)

const systemPromptTemplate = `You are an expert SQL query generator for PostgreSQL.
Given a natural language question, generate ONLY the SQL query - no explanations, no markdown.

Rules:
1. Use only the tables and columns defined in the schema below.
2. Use standard PostgreSQL syntax (LIMIT instead of TOP).
3. Always qualify column names with table aliases when joining.
4. Use explicit JOINs - prefer INNER JOIN unless LEFT JOIN is needed.
5. For aggregations, include GROUP BY for all non-aggregated columns.
6. Generate exactly one read-only SELECT statement. Never modify data or schema.
7. Return ONLY the SQL query. No commentary, no code fences.
8. If the question cannot be answered from the schema, reply with exactly the single word UNSUPPORTED.

Schema:
%s`

// Generator implements text2sql.SQLGenerator on top of a CompletionModel.
type Generator struct {
	model text2sql.CompletionModel
	log   logrus.FieldLogger
}

// New creates a Generator.
func New(model text2sql.CompletionModel, log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{model: model, log: log}
}

// Generate builds the generation request from the schema and the verbatim
// question, then applies a strict parse step to the raw completion: strip
// code fences, check the unsupported sentinel, and only then construct a
// GeneratedQuery. The read-only constraint itself is enforced downstream by
// the executor.
func (g *Generator) Generate(ctx context.Context, question string, schema *text2sql.SchemaSnapshot) (text2sql.Generation, error) {
	req := text2sql.CompletionRequest{
		System:      fmt.Sprintf(systemPromptTemplate, schema.Describe()),
		Prompt:      question,
		Temperature: generateTemperature,
		MaxTokens:   generateMaxTokens,
	}

	raw, err := g.model.Complete(ctx, req)
	if err != nil {
		return text2sql.Generation{}, text2sql.NewGenerationError(err)
	}

	sql := strings.TrimSpace(stripCodeFences(raw))
	if sql == "" {
		return text2sql.Generation{}, text2sql.NewGenerationError(errors.New("model returned empty completion"))
	}
	if sql == text2sql.UnsupportedSentinel {
		return text2sql.Generation{Unsupported: true}, nil
	}

	g.log.WithField("sql", sql).Debug("generated SQL")
	return text2sql.Generation{
		Query: &text2sql.GeneratedQuery{Question: question, SQL: sql},
	}, nil
}

// stripCodeFences removes surrounding markdown fence lines the model
// sometimes emits despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
