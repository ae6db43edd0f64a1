// Package sqlexec validates and executes generated SQL against the target
// database, enforcing the pipeline's read-only policy.
package sqlexec

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
)

// Executor implements text2sql.QueryExecutor over a pgx connection pool. Each
// Execute call acquires its own connection and releases it on every exit
// path. Rows are materialized eagerly; the workshop datasets are small and
// results are bounded for rendering at the adapter layer.
type Executor struct {
	pool *pgxpool.Pool
	log  logrus.FieldLogger
}

// New creates an Executor.
func New(pool *pgxpool.Pool, log logrus.FieldLogger) *Executor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{pool: pool, log: log}
}

// Execute validates the statement and runs it, returning column names and all
// rows. Validation failures surface as UnsafeQueryError before any database
// call; driver failures are wrapped in QueryExecutionError.
func (e *Executor) Execute(ctx context.Context, query *text2sql.GeneratedQuery) (*text2sql.QueryResult, error) {
	if err := ValidateReadOnly(query.SQL); err != nil {
		return nil, err
	}

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, text2sql.NewQueryExecutionError(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query.SQL)
	if err != nil {
		return nil, text2sql.NewQueryExecutionError(err)
	}
	defer rows.Close()

	result := &text2sql.QueryResult{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, text2sql.NewQueryExecutionError(err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, text2sql.NewQueryExecutionError(err)
	}

	e.log.WithFields(logrus.Fields{
		"columns": len(result.Columns),
		"rows":    result.RowCount(),
	}).Debug("query executed")
	return result, nil
}
