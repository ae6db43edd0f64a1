package text2sql

// UnsupportedSentinel is the literal string the generation model is instructed
// to emit when a question cannot be answered from the schema.
const UnsupportedSentinel = "UNSUPPORTED"

// RefusalMessage is the fixed user-facing answer returned for questions the
// generator marks as unsupported. It is an answer, not an error.
const RefusalMessage = "I can only answer questions about the data in this database. " +
	"Try asking about the tables listed in the schema, for example order totals, " +
	"customers, or product categories."

// QuestionRequest is a single inbound natural-language question.
type QuestionRequest struct {
	// Question is the verbatim user question.
	Question string `json:"question"`
	// ConversationID optionally correlates the question with a session.
	ConversationID string `json:"conversation_id,omitempty"`
}

// GeneratedQuery is a SQL statement produced by the generation model, tagged
// with the question it was generated for. It is not trusted until it has
// passed the executor's read-only validation.
type GeneratedQuery struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// Generation is the outcome of one generation call: either a query or the
// unsupported marker, never both.
type Generation struct {
	Query       *GeneratedQuery
	Unsupported bool
}

// QueryResult holds the fully materialized result of one query: ordered column
// names and rows of already JSON-safe scalar values, row-aligned with Columns.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// RowCount returns the number of materialized rows.
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// AnswerResult is the terminal output of the pipeline for one question.
// Exactly one of Answer/Error is set on the success and failure paths, except
// for a refused question, which sets Answer to RefusalMessage and leaves
// Error empty.
type AnswerResult struct {
	Question string       `json:"question"`
	SQL      string       `json:"sql,omitempty"`
	Result   *QueryResult `json:"result,omitempty"`
	Answer   string       `json:"answer,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Failed reports whether the pipeline produced an error outcome.
func (r *AnswerResult) Failed() bool {
	return r.Error != ""
}
