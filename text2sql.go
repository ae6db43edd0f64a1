// Package text2sql provides the core natural-language-to-SQL pipeline:
// schema discovery, constrained SQL generation, read-only query execution,
// and result synthesis, composed behind a single ProcessQuestion operation.
package text2sql

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql/internal/metrics"
)

// Agent composes the four pipeline components. It is the canonical Pipeline
// implementation consumed by the protocol adapters. All state is injected;
// multiple independent agents can coexist in one process.
type Agent struct {
	catalog     SchemaCatalog
	generator   SQLGenerator
	executor    QueryExecutor
	synthesizer Synthesizer

	log     logrus.FieldLogger
	metrics *metrics.Recorder
}

// Option configures an Agent.
type Option func(*Agent)

// WithCatalog sets the schema catalog component.
func WithCatalog(c SchemaCatalog) Option {
	return func(a *Agent) { a.catalog = c }
}

// WithGenerator sets the SQL generator component.
func WithGenerator(g SQLGenerator) Option {
	return func(a *Agent) { a.generator = g }
}

// WithExecutor sets the query executor component.
func WithExecutor(e QueryExecutor) Option {
	return func(a *Agent) { a.executor = e }
}

// WithSynthesizer sets the response synthesizer component.
func WithSynthesizer(s Synthesizer) Option {
	return func(a *Agent) { a.synthesizer = s }
}

// WithLogger sets the logger. Defaults to the standard logrus logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Agent) { a.log = log }
}

// WithMetrics sets the metrics recorder. Metrics are disabled when unset.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *Agent) { a.metrics = rec }
}

// New creates an Agent from the given options. The catalog, generator,
// executor, and synthesizer are required.
func New(opts ...Option) (*Agent, error) {
	a := &Agent{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(a)
	}
	switch {
	case a.catalog == nil:
		return nil, NewConfigurationError("schema catalog is required", nil)
	case a.generator == nil:
		return nil, NewConfigurationError("SQL generator is required", nil)
	case a.executor == nil:
		return nil, NewConfigurationError("query executor is required", nil)
	case a.synthesizer == nil:
		return nil, NewConfigurationError("synthesizer is required", nil)
	}
	return a, nil
}

// ProcessQuestion runs the pipeline end-to-end for one question. The flow is
// strictly sequential with two terminal short-circuits: an unsupported
// question returns the fixed refusal answer, and a validation or execution
// failure is folded into AnswerResult.Error without reaching synthesis.
// Schema, generation, and synthesis failures are returned as errors.
func (a *Agent) ProcessQuestion(ctx context.Context, req QuestionRequest) (*AnswerResult, error) {
	start := time.Now()
	log := a.log.WithField("conversation_id", req.ConversationID)
	log.WithField("question", req.Question).Info("processing question")

	res := &AnswerResult{Question: req.Question}

	schema, err := a.catalog.Snapshot(ctx)
	if err != nil {
		a.metrics.ObserveQuestion(metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	gen, err := a.generator.Generate(ctx, req.Question, schema)
	if err != nil {
		a.metrics.ObserveQuestion(metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	if gen.Unsupported {
		log.Info("question refused as unsupported")
		res.Answer = RefusalMessage
		a.metrics.ObserveQuestion(metrics.OutcomeRefused, time.Since(start))
		return res, nil
	}
	res.SQL = gen.Query.SQL

	result, err := a.executor.Execute(ctx, gen.Query)
	if err != nil {
		if HasCode(err, ErrCodeUnsafeQuery) || HasCode(err, ErrCodeQueryExecution) {
			log.WithField("sql", gen.Query.SQL).WithError(err).Warn("query failed")
			res.Error = err.Error()
			a.metrics.ObserveQuestion(metrics.OutcomeFailed, time.Since(start))
			return res, nil
		}
		a.metrics.ObserveQuestion(metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	res.Result = result

	answer, err := a.synthesizer.Synthesize(ctx, req.Question, gen.Query, result)
	if err != nil {
		a.metrics.ObserveQuestion(metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	res.Answer = answer

	log.WithFields(logrus.Fields{
		"rows":    result.RowCount(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("question answered")
	a.metrics.ObserveQuestion(metrics.OutcomeAnswered, time.Since(start))
	return res, nil
}

// ExecuteRaw routes a caller-supplied SQL string directly to the executor.
// The executor's read-only validation still applies.
func (a *Agent) ExecuteRaw(ctx context.Context, sql string) (*QueryResult, error) {
	return a.executor.Execute(ctx, &GeneratedQuery{SQL: sql})
}

// DescribeSchema returns the current (cached) schema snapshot.
func (a *Agent) DescribeSchema(ctx context.Context) (*SchemaSnapshot, error) {
	return a.catalog.Snapshot(ctx)
}

// RefreshSchema forces re-introspection of the target database.
func (a *Agent) RefreshSchema(ctx context.Context) (*SchemaSnapshot, error) {
	return a.catalog.Refresh(ctx)
}
