package text2sql

import "context"

// SchemaCatalog provides cached structural metadata for the target database.
type SchemaCatalog interface {
	// Snapshot returns the cached schema, performing live introspection only
	// on the first call (or after a Refresh).
	Snapshot(ctx context.Context) (*SchemaSnapshot, error)

	// Refresh discards any cached schema and re-introspects the database.
	Refresh(ctx context.Context) (*SchemaSnapshot, error)
}

// SQLGenerator turns a natural-language question plus the schema into a
// single read-only SQL statement, or the unsupported marker.
type SQLGenerator interface {
	Generate(ctx context.Context, question string, schema *SchemaSnapshot) (Generation, error)
}

// QueryExecutor validates and executes a generated statement, enforcing the
// read-only policy before any database call is made.
type QueryExecutor interface {
	Execute(ctx context.Context, query *GeneratedQuery) (*QueryResult, error)
}

// Synthesizer turns a structured query result back into a natural-language
// answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, query *GeneratedQuery, result *QueryResult) (string, error)
}

// CompletionRequest is one call to the language-model boundary. The two call
// sites use different temperatures: near-zero for SQL generation, moderate
// for synthesis. That distinction is a contract, not an implementation detail.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// CompletionModel is the language-model boundary consumed by the generator
// and the synthesizer.
type CompletionModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Pipeline is the narrow surface the protocol adapters consume. The Agent is
// the canonical implementation; tests substitute fakes.
type Pipeline interface {
	// ProcessQuestion runs the full question -> SQL -> execute -> synthesize
	// pipeline. SQL-level failures are folded into AnswerResult.Error;
	// schema, generation, and synthesis failures are returned as errors for
	// the adapter to map into its protocol envelope.
	ProcessQuestion(ctx context.Context, req QuestionRequest) (*AnswerResult, error)

	// ExecuteRaw routes a caller-supplied SQL string directly to the query
	// executor, bypassing generation and synthesis. The same read-only
	// validation applies.
	ExecuteRaw(ctx context.Context, sql string) (*QueryResult, error)

	// DescribeSchema returns the current schema snapshot.
	DescribeSchema(ctx context.Context) (*SchemaSnapshot, error)
}
