// Package synth turns structured query results back into natural-language
// answers via the language-model boundary.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
)

// Synthesis is prose generation, so it runs warmer than SQL generation and
// gets a larger output budget.
const (
	synthesizeTemperature = 0.3
	synthesizeMaxTokens   = 800
)

// renderRowLimit caps how many rows are serialized into the synthesis prompt.
const renderRowLimit = 50

const systemPrompt = `You are a helpful data analyst assistant.
Given a user question, the SQL query that was executed, and the query results,
provide a clear, concise, natural language answer.

Rules:
1. Summarise the data - do not just dump raw rows.
2. If no results were returned, say so clearly and suggest possible reasons.
3. Be conversational but professional.
4. If there are many rows, highlight key findings rather than listing all.`

// Synthesizer implements text2sql.Synthesizer on top of a CompletionModel.
type Synthesizer struct {
	model text2sql.CompletionModel
	log   logrus.FieldLogger
}

// New creates a Synthesizer.
func New(model text2sql.CompletionModel, log logrus.FieldLogger) *Synthesizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Synthesizer{model: model, log: log}
}

// Synthesize serializes the result compactly, sends it with the question and
// the SQL text, and returns the model's prose answer. The QueryResult is
// never mutated.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, query *text2sql.GeneratedQuery, result *text2sql.QueryResult) (string, error) {
	prompt := fmt.Sprintf("User question: %s\n\nSQL query executed:\n%s\n\nResults (%d rows):\n%s",
		question, query.SQL, result.RowCount(), RenderResult(result, renderRowLimit))

	answer, err := s.model.Complete(ctx, text2sql.CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: synthesizeTemperature,
		MaxTokens:   synthesizeMaxTokens,
	})
	if err != nil {
		return "", text2sql.NewSynthesisError(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", text2sql.NewSynthesisError(fmt.Errorf("model returned empty completion"))
	}
	return answer, nil
}

// RenderResult serializes a result as a pipe-separated table, capped at
// maxRows rendered rows. It is shared with the adapters for text rendering.
func RenderResult(result *text2sql.QueryResult, maxRows int) string {
	if result.RowCount() == 0 {
		return "(No results returned)"
	}

	var b strings.Builder
	header := strings.Join(result.Columns, " | ")
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("-", len(header)) + "\n")

	for i, row := range result.Rows {
		if i >= maxRows {
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, " | ") + "\n")
	}
	if extra := result.RowCount() - maxRows; extra > 0 {
		fmt.Fprintf(&b, "\n... and %d more rows.", extra)
	}
	return b.String()
}
