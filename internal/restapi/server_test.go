package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibranibeny/text2sql"
)

type fakePipeline struct {
	result *text2sql.AnswerResult
	err    error
	schema *text2sql.SchemaSnapshot
}

func (f *fakePipeline) ProcessQuestion(ctx context.Context, req text2sql.QuestionRequest) (*text2sql.AnswerResult, error) {
	return f.result, f.err
}

func (f *fakePipeline) ExecuteRaw(ctx context.Context, sql string) (*text2sql.QueryResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePipeline) DescribeSchema(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	if f.schema == nil {
		return nil, text2sql.NewSchemaDiscoveryError(errors.New("no schema"))
	}
	return f.schema, nil
}

func doAsk(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAskHappyPath(t *testing.T) {
	pipe := &fakePipeline{result: &text2sql.AnswerResult{
		Question: "how many orders?",
		SQL:      "SELECT COUNT(*) FROM orders",
		Result:   &text2sql.QueryResult{Columns: []string{"count"}, Rows: [][]any{{float64(42)}}},
		Answer:   "There are 42 orders.",
	}}
	h := New(pipe, "", nil).Handler()

	rec := doAsk(t, h, `{"question":"how many orders?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "There are 42 orders.", resp.Answer)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", resp.SQL)
	assert.Equal(t, []string{"count"}, resp.Columns)
	assert.Equal(t, 1, resp.RowCount)
	assert.Empty(t, resp.Error)
}

func TestAskRowsCapped(t *testing.T) {
	result := &text2sql.QueryResult{Columns: []string{"n"}}
	for i := 0; i < 80; i++ {
		result.Rows = append(result.Rows, []any{i})
	}
	pipe := &fakePipeline{result: &text2sql.AnswerResult{Question: "q", Result: result, Answer: "a"}}
	h := New(pipe, "", nil).Handler()

	rec := doAsk(t, h, `{"question":"list everything"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Rows, 50)
	assert.Equal(t, 80, resp.RowCount)
}

func TestAskFoldedFailure(t *testing.T) {
	pipe := &fakePipeline{result: &text2sql.AnswerResult{
		Question: "drop the table",
		SQL:      "DROP TABLE orders",
		Error:    "only read-only SELECT statements are allowed, got 'DROP'",
	}}
	h := New(pipe, "", nil).Handler()

	rec := doAsk(t, h, `{"question":"drop the table"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "read-only")
	assert.Empty(t, resp.Answer)
}

func TestAskPipelineErrorIsBadGateway(t *testing.T) {
	pipe := &fakePipeline{err: text2sql.NewGenerationError(errors.New("model unavailable"))}
	h := New(pipe, "", nil).Handler()

	rec := doAsk(t, h, `{"question":"anything"}`, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAskValidation(t *testing.T) {
	h := New(&fakePipeline{}, "", nil).Handler()

	rec := doAsk(t, h, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doAsk(t, h, `{"question":"hi"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAskRequiresAPIKey(t *testing.T) {
	pipe := &fakePipeline{result: &text2sql.AnswerResult{Question: "q", Answer: "a"}}
	h := New(pipe, "secret", nil).Handler()

	rec := doAsk(t, h, `{"question":"valid question"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doAsk(t, h, `{"question":"valid question"}`, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSchemaEndpoint(t *testing.T) {
	pipe := &fakePipeline{schema: &text2sql.SchemaSnapshot{
		Database: "SalesDB",
		Tables:   []text2sql.Table{{Name: "orders"}},
	}}
	h := New(pipe, "", nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp schemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TableCount)
	assert.Contains(t, resp.SchemaText, "Table: orders")
}

func TestHealthAndManifest(t *testing.T) {
	h := New(&fakePipeline{}, "secret", nil).Handler()

	// both endpoints skip authentication
	for _, path := range []string{"/api/health", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), Version)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := New(&fakePipeline{}, "", nil).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
