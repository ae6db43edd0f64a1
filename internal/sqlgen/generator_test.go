package sqlgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibranibeny/text2sql"
)

type fakeModel struct {
	completion string
	err        error
	gotReq     text2sql.CompletionRequest
}

func (f *fakeModel) Complete(ctx context.Context, req text2sql.CompletionRequest) (string, error) {
	f.gotReq = req
	return f.completion, f.err
}

func testSchema() *text2sql.SchemaSnapshot {
	return &text2sql.SchemaSnapshot{
		Database: "SalesDB",
		Tables: []text2sql.Table{
			{Name: "orders", Columns: []text2sql.Column{
				{Name: "order_id", DataType: "INTEGER", PrimaryKey: true},
				{Name: "total", DataType: "NUMERIC(10,2)"},
			}},
		},
	}
}

func TestGenerateReturnsQuery(t *testing.T) {
	model := &fakeModel{completion: "SELECT SUM(total) FROM orders"}
	g := New(model, nil)

	gen, err := g.Generate(context.Background(), "total order value?", testSchema())
	require.NoError(t, err)
	require.NotNil(t, gen.Query)
	assert.False(t, gen.Unsupported)
	assert.Equal(t, "SELECT SUM(total) FROM orders", gen.Query.SQL)
	assert.Equal(t, "total order value?", gen.Query.Question)

	assert.Equal(t, "total order value?", model.gotReq.Prompt)
	assert.Contains(t, model.gotReq.System, "Table: orders")
	assert.Contains(t, model.gotReq.System, "UNSUPPORTED")
	assert.Zero(t, model.gotReq.Temperature)
	assert.Equal(t, 500, model.gotReq.MaxTokens)
}

func TestGenerateStripsCodeFences(t *testing.T) {
	model := &fakeModel{completion: "```sql\nSELECT 1\n```"}
	g := New(model, nil)

	gen, err := g.Generate(context.Background(), "q", testSchema())
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", gen.Query.SQL)
}

func TestGenerateUnsupportedSentinel(t *testing.T) {
	model := &fakeModel{completion: "  UNSUPPORTED\n"}
	g := New(model, nil)

	gen, err := g.Generate(context.Background(), "tell me a joke", testSchema())
	require.NoError(t, err)
	assert.True(t, gen.Unsupported)
	assert.Nil(t, gen.Query)
}

func TestGenerateModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("rpc deadline exceeded")}
	g := New(model, nil)

	_, err := g.Generate(context.Background(), "q", testSchema())
	assert.True(t, text2sql.HasCode(err, text2sql.ErrCodeGeneration))
}

func TestGenerateEmptyCompletion(t *testing.T) {
	model := &fakeModel{completion: "```sql\n```"}
	g := New(model, nil)

	_, err := g.Generate(context.Background(), "q", testSchema())
	assert.True(t, text2sql.HasCode(err, text2sql.ErrCodeGeneration))
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"```\nSELECT 1\nFROM orders\n```", "SELECT 1\nFROM orders"},
		{"  ```sql\nSELECT 1\n```  ", "SELECT 1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripCodeFences(tc.in))
	}
}
