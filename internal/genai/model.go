// Package genai implements the language-model boundary on top of Genkit.
package genai

import (
	"context"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/ibranibeny/text2sql"
)

// Model adapts a Genkit instance to the text2sql.CompletionModel interface.
// The temperature and token budget of each call come from the caller; the
// generator and synthesizer deliberately use different values.
type Model struct {
	g    *genkit.Genkit
	name string
}

// New creates a Model that generates with the named Genkit model (for
// example "googleai/gemini-2.0-flash").
func New(g *genkit.Genkit, name string) *Model {
	return &Model{g: g, name: name}
}

// Complete implements text2sql.CompletionModel.
func (m *Model) Complete(ctx context.Context, req text2sql.CompletionRequest) (string, error) {
	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.name),
		ai.WithSystem(req.System),
		ai.WithPrompt(req.Prompt),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
