package text2sql

import (
	"fmt"
	"strings"
	"time"
)

// ColumnRef names a (table, column) pair, used for foreign key targets.
type ColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Column describes one column of a discovered table.
type Column struct {
	Name         string     `json:"name"`
	DataType     string     `json:"data_type"`
	Nullable     bool       `json:"nullable"`
	PrimaryKey   bool       `json:"primary_key"`
	Default      string     `json:"default,omitempty"`
	References   *ColumnRef `json:"references,omitempty"`
	SampleValues []string   `json:"sample_values,omitempty"`
}

// Table describes one discovered table, columns in catalog order.
type Table struct {
	Name     string   `json:"name"`
	RowCount int64    `json:"row_count"`
	Columns  []Column `json:"columns"`
}

// SchemaSnapshot is an immutable-once-built description of the target
// database, produced by the schema catalog and cached until an explicit
// refresh. Consumers must treat it as read-only.
type SchemaSnapshot struct {
	Database   string    `json:"database"`
	Tables     []Table   `json:"tables"`
	CapturedAt time.Time `json:"captured_at"`
}

// TableCount returns the number of discovered tables.
func (s *SchemaSnapshot) TableCount() int {
	if s == nil {
		return 0
	}
	return len(s.Tables)
}

// Describe renders the snapshot as the plain-text schema document used both
// in generation prompts and as the schema-discovery response. The rendering
// is deterministic for an unchanged snapshot.
func (s *SchemaSnapshot) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s\n\n", s.Database)

	var relationships []string
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "Table: %s  (%d rows)\n", t.Name, t.RowCount)
		for _, c := range t.Columns {
			var annotations []string
			if c.PrimaryKey {
				annotations = append(annotations, "PK")
			}
			if !c.Nullable && !c.PrimaryKey {
				annotations = append(annotations, "NOT NULL")
			}
			if c.Default != "" {
				annotations = append(annotations, "default: "+c.Default)
			}
			if len(c.SampleValues) > 0 {
				annotations = append(annotations, "values: "+strings.Join(c.SampleValues, ", "))
			}
			if len(annotations) > 0 {
				fmt.Fprintf(&b, "  - %s  %s  (%s)\n", c.Name, c.DataType, strings.Join(annotations, ", "))
			} else {
				fmt.Fprintf(&b, "  - %s  %s\n", c.Name, c.DataType)
			}
			if c.References != nil {
				relationships = append(relationships,
					fmt.Sprintf("  %s.%s -> %s.%s", t.Name, c.Name, c.References.Table, c.References.Column))
			}
		}
		b.WriteString("\n")
	}

	if len(relationships) > 0 {
		b.WriteString("Relationships:\n")
		for _, rel := range relationships {
			b.WriteString(rel + "\n")
		}
	}
	return b.String()
}
