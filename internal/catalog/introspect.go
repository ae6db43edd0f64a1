package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibranibeny/text2sql"
)

// SampleColumn names a (table, column) pair whose distinct values are sampled
// during discovery. A handful of sampled values for low-cardinality columns
// (order status, product category) noticeably improves generated SQL.
type SampleColumn struct {
	Table  string `mapstructure:"table" yaml:"table"`
	Column string `mapstructure:"column" yaml:"column"`
}

const sampleValueLimit = 20

// PgIntrospector reads table, column, key, and row-count metadata from
// PostgreSQL's information_schema and statistics views.
type PgIntrospector struct {
	pool     *pgxpool.Pool
	database string
	schema   string
	samples  []SampleColumn
}

// NewPgIntrospector creates an introspector for the given schema (usually
// "public") of the connected database.
func NewPgIntrospector(pool *pgxpool.Pool, database, schema string, samples []SampleColumn) *PgIntrospector {
	if schema == "" {
		schema = "public"
	}
	return &PgIntrospector{pool: pool, database: database, schema: schema, samples: samples}
}

// Introspect implements Introspector. Tables and columns are ordered by the
// database's own catalog ordering (table name, ordinal position) so repeated
// discoveries of an unchanged database produce identical snapshots.
func (in *PgIntrospector) Introspect(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	conn, err := in.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tables, order, err := in.loadColumns(ctx, conn)
	if err != nil {
		return nil, err
	}
	if err := in.loadPrimaryKeys(ctx, conn, tables); err != nil {
		return nil, err
	}
	if err := in.loadForeignKeys(ctx, conn, tables); err != nil {
		return nil, err
	}
	if err := in.loadRowCounts(ctx, conn, tables); err != nil {
		return nil, err
	}
	in.loadSampleValues(ctx, conn, tables)

	snap := &text2sql.SchemaSnapshot{
		Database:   in.database,
		CapturedAt: time.Now().UTC(),
	}
	for _, name := range order {
		snap.Tables = append(snap.Tables, *tables[name])
	}
	return snap, nil
}

func (in *PgIntrospector) loadColumns(ctx context.Context, conn *pgxpool.Conn) (map[string]*text2sql.Table, []string, error) {
	const q = `
		SELECT c.table_name, c.column_name, c.data_type,
		       c.character_maximum_length, c.numeric_precision, c.numeric_scale,
		       c.is_nullable, c.column_default
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON c.table_schema = t.table_schema AND c.table_name = t.table_name
		WHERE t.table_type = 'BASE TABLE' AND t.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position`

	rows, err := conn.Query(ctx, q, in.schema)
	if err != nil {
		return nil, nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]*text2sql.Table)
	var order []string
	for rows.Next() {
		var (
			tableName, columnName, dataType, isNullable string
			charLen, numPrec, numScale                  *int
			columnDefault                               *string
		)
		if err := rows.Scan(&tableName, &columnName, &dataType, &charLen, &numPrec, &numScale, &isNullable, &columnDefault); err != nil {
			return nil, nil, fmt.Errorf("scan column row: %w", err)
		}

		tbl, ok := tables[tableName]
		if !ok {
			tbl = &text2sql.Table{Name: tableName}
			tables[tableName] = tbl
			order = append(order, tableName)
		}
		col := text2sql.Column{
			Name:     columnName,
			DataType: formatDataType(dataType, charLen, numPrec, numScale),
			Nullable: isNullable == "YES",
		}
		if columnDefault != nil {
			col.Default = *columnDefault
		}
		tbl.Columns = append(tbl.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}
	return tables, order, nil
}

func (in *PgIntrospector) loadPrimaryKeys(ctx context.Context, conn *pgxpool.Conn, tables map[string]*text2sql.Table) error {
	const q = `
		SELECT kcu.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = $1`

	rows, err := conn.Query(ctx, q, in.schema)
	if err != nil {
		return fmt.Errorf("query primary keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return fmt.Errorf("scan primary key row: %w", err)
		}
		markColumn(tables, tableName, columnName, func(c *text2sql.Column) {
			c.PrimaryKey = true
		})
	}
	return rows.Err()
}

func (in *PgIntrospector) loadForeignKeys(ctx context.Context, conn *pgxpool.Conn, tables map[string]*text2sql.Table) error {
	const q = `
		SELECT fk.table_name, fk.column_name, pk.table_name, pk.column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage fk
		  ON rc.constraint_name = fk.constraint_name
		 AND rc.constraint_schema = fk.constraint_schema
		JOIN information_schema.key_column_usage pk
		  ON rc.unique_constraint_name = pk.constraint_name
		 AND rc.unique_constraint_schema = pk.constraint_schema
		 AND fk.ordinal_position = pk.ordinal_position
		WHERE rc.constraint_schema = $1`

	rows, err := conn.Query(ctx, q, in.schema)
	if err != nil {
		return fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fkTable, fkColumn, pkTable, pkColumn string
		if err := rows.Scan(&fkTable, &fkColumn, &pkTable, &pkColumn); err != nil {
			return fmt.Errorf("scan foreign key row: %w", err)
		}
		markColumn(tables, fkTable, fkColumn, func(c *text2sql.Column) {
			c.References = &text2sql.ColumnRef{Table: pkTable, Column: pkColumn}
		})
	}
	return rows.Err()
}

func (in *PgIntrospector) loadRowCounts(ctx context.Context, conn *pgxpool.Conn, tables map[string]*text2sql.Table) error {
	const q = `SELECT relname, n_live_tup FROM pg_stat_user_tables WHERE schemaname = $1`

	rows, err := conn.Query(ctx, q, in.schema)
	if err != nil {
		return fmt.Errorf("query row counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName string
		var count int64
		if err := rows.Scan(&tableName, &count); err != nil {
			return fmt.Errorf("scan row count: %w", err)
		}
		if tbl, ok := tables[tableName]; ok {
			tbl.RowCount = count
		}
	}
	return rows.Err()
}

// loadSampleValues is best-effort: a failed sample query never fails the
// discovery pass.
func (in *PgIntrospector) loadSampleValues(ctx context.Context, conn *pgxpool.Conn, tables map[string]*text2sql.Table) {
	for _, sc := range in.samples {
		if _, ok := tables[sc.Table]; !ok {
			continue
		}
		q := fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY 1 LIMIT %d",
			pgx.Identifier{sc.Column}.Sanitize(),
			pgx.Identifier{in.schema, sc.Table}.Sanitize(),
			sampleValueLimit)
		rows, err := conn.Query(ctx, q)
		if err != nil {
			continue
		}
		var values []string
		for rows.Next() {
			var v any
			if err := rows.Scan(&v); err != nil {
				break
			}
			if v != nil {
				values = append(values, fmt.Sprint(v))
			}
		}
		rows.Close()
		if rows.Err() != nil || len(values) == 0 {
			continue
		}
		markColumn(tables, sc.Table, sc.Column, func(c *text2sql.Column) {
			c.SampleValues = values
		})
	}
}

func markColumn(tables map[string]*text2sql.Table, table, column string, update func(*text2sql.Column)) {
	tbl, ok := tables[table]
	if !ok {
		return
	}
	for i := range tbl.Columns {
		if tbl.Columns[i].Name == column {
			update(&tbl.Columns[i])
			return
		}
	}
}

// formatDataType renders a declared type the way a DDL author would write it:
// VARCHAR(100), NUMERIC(10,2), INTEGER.
func formatDataType(dataType string, charLen, numPrec, numScale *int) string {
	upper := strings.ToUpper(dataType)
	switch {
	case charLen != nil && *charLen > 0:
		return fmt.Sprintf("%s(%d)", upper, *charLen)
	case numPrec != nil && numScale != nil && *numScale > 0:
		return fmt.Sprintf("%s(%d,%d)", upper, *numPrec, *numScale)
	default:
		return upper
	}
}
