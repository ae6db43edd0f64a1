package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibranibeny/text2sql"
)

type fakePipeline struct {
	result *text2sql.AnswerResult
	err    error
	gotReq text2sql.QuestionRequest
}

func (f *fakePipeline) ProcessQuestion(ctx context.Context, req text2sql.QuestionRequest) (*text2sql.AnswerResult, error) {
	f.gotReq = req
	return f.result, f.err
}

func (f *fakePipeline) ExecuteRaw(ctx context.Context, sql string) (*text2sql.QueryResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePipeline) DescribeSchema(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	return nil, errors.New("not implemented")
}

// slowPipeline widens the window between the working and completed states.
type slowPipeline struct {
	result *text2sql.AnswerResult
}

func (s *slowPipeline) ProcessQuestion(ctx context.Context, req text2sql.QuestionRequest) (*text2sql.AnswerResult, error) {
	time.Sleep(time.Millisecond)
	return s.result, nil
}

func (s *slowPipeline) ExecuteRaw(ctx context.Context, sql string) (*text2sql.QueryResult, error) {
	return nil, errors.New("not implemented")
}

func (s *slowPipeline) DescribeSchema(ctx context.Context) (*text2sql.SchemaSnapshot, error) {
	return nil, errors.New("not implemented")
}

func answeredResult() *text2sql.AnswerResult {
	return &text2sql.AnswerResult{
		Question: "top customers?",
		SQL:      "SELECT name FROM customers ORDER BY total DESC LIMIT 5",
		Result: &text2sql.QueryResult{
			Columns: []string{"name"},
			Rows:    [][]any{{"Acme"}, {"Globex"}},
		},
		Answer: "Acme and Globex lead.",
	}
}

func sendParams(id, question string) SendParams {
	return SendParams{
		ID:      id,
		Message: Message{Role: "user", Parts: []Part{TextPart(question)}},
	}
}

func TestSendCompletesTask(t *testing.T) {
	pipe := &fakePipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	task, err := h.Send(context.Background(), sendParams("task-1", "top customers?"))
	require.NoError(t, err)

	assert.Equal(t, "task-1", task.ID)
	assert.NotEmpty(t, task.SessionID)
	assert.Equal(t, TaskStateCompleted, task.Status.State)
	assert.Equal(t, task.SessionID, pipe.gotReq.ConversationID)
	assert.Equal(t, "top customers?", pipe.gotReq.Question)

	require.Len(t, task.Artifacts, 2)
	assert.Equal(t, "answer", task.Artifacts[0].Name)
	assert.Equal(t, 0, task.Artifacts[0].Index)
	assert.Equal(t, "Acme and Globex lead.", task.Artifacts[0].Parts[0].Text)

	assert.Equal(t, "query_result", task.Artifacts[1].Name)
	data := task.Artifacts[1].Parts[0].Data
	assert.Equal(t, "SELECT name FROM customers ORDER BY total DESC LIMIT 5", data["sql"])
	assert.Equal(t, 2, data["row_count"])

	// transcript: user question then agent answer
	require.Len(t, task.Messages, 2)
	assert.Equal(t, "user", task.Messages[0].Role)
	assert.Equal(t, "agent", task.Messages[1].Role)

	// submitted and working states archived in history
	require.Len(t, task.History, 2)
	assert.Equal(t, TaskStateSubmitted, task.History[0].State)
	assert.Equal(t, TaskStateWorking, task.History[1].State)
}

func TestSendGeneratesTaskID(t *testing.T) {
	pipe := &fakePipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	task, err := h.Send(context.Background(), sendParams("", "top customers?"))
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
}

func TestSendEmptyQuestionFails(t *testing.T) {
	pipe := &fakePipeline{}
	h := NewHandler(pipe, NewStore(), nil)

	task, err := h.Send(context.Background(), SendParams{
		ID:      "task-2",
		Message: Message{Role: "user", Parts: []Part{DataPart(map[string]any{"x": 1})}},
	})
	require.NoError(t, err)
	assert.Equal(t, TaskStateFailed, task.Status.State)
	assert.Empty(t, pipe.gotReq.Question, "pipeline must not run without a question")
}

func TestSendPipelineErrorFailsTask(t *testing.T) {
	pipe := &fakePipeline{err: text2sql.NewGenerationError(errors.New("model down"))}
	h := NewHandler(pipe, NewStore(), nil)

	task, err := h.Send(context.Background(), sendParams("task-3", "anything"))
	require.NoError(t, err)
	assert.Equal(t, TaskStateFailed, task.Status.State)
	require.NotNil(t, task.Status.Message)
	assert.Contains(t, task.Status.Message.Parts[0].Text, "Error processing query")
}

func TestSendFoldedFailureFailsTask(t *testing.T) {
	pipe := &fakePipeline{result: &text2sql.AnswerResult{
		Question: "drop it",
		SQL:      "DROP TABLE customers",
		Error:    "only read-only SELECT statements are allowed",
	}}
	h := NewHandler(pipe, NewStore(), nil)

	task, err := h.Send(context.Background(), sendParams("task-4", "drop it"))
	require.NoError(t, err)
	assert.Equal(t, TaskStateFailed, task.Status.State)
	assert.Contains(t, task.Status.Message.Parts[0].Text, "read-only")
}

func TestGetReturnsStoredTask(t *testing.T) {
	pipe := &fakePipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	sent, err := h.Send(context.Background(), sendParams("task-5", "top customers?"))
	require.NoError(t, err)

	got, err := h.Get(GetParams{ID: "task-5"})
	require.NoError(t, err)
	assert.Equal(t, sent.Status.State, got.Status.State)
	assert.Equal(t, sent.Artifacts, got.Artifacts)
}

func TestGetTruncatesHistory(t *testing.T) {
	pipe := &fakePipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	_, err := h.Send(context.Background(), sendParams("task-6", "top customers?"))
	require.NoError(t, err)

	one := 1
	got, err := h.Get(GetParams{ID: "task-6", HistoryLength: &one})
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, TaskStateWorking, got.History[0].State)

	// Truncation must not mutate the stored task.
	full, err := h.Get(GetParams{ID: "task-6"})
	require.NoError(t, err)
	assert.Len(t, full.History, 2)
}

func TestGetHistoryLengthZeroReturnsFullHistory(t *testing.T) {
	pipe := &fakePipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	_, err := h.Send(context.Background(), sendParams("task-hl", "top customers?"))
	require.NoError(t, err)

	zero := 0
	got, err := h.Get(GetParams{ID: "task-hl", HistoryLength: &zero})
	require.NoError(t, err)
	assert.Len(t, got.History, 2)
}

func TestConcurrentSendAndGet(t *testing.T) {
	pipe := &slowPipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := h.Send(context.Background(), sendParams("shared", "top customers?"))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			task, err := h.Get(GetParams{ID: "shared"})
			if err != nil {
				return // not created yet
			}
			_, err = json.Marshal(task)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestGetUnknownTask(t *testing.T) {
	h := NewHandler(&fakePipeline{}, NewStore(), nil)
	_, err := h.Get(GetParams{ID: "nope"})
	assert.True(t, text2sql.HasCode(err, text2sql.ErrCodeTaskNotFound))
}

func TestCancelSubmittedTask(t *testing.T) {
	store := NewStore()
	h := NewHandler(&fakePipeline{}, store, nil)
	store.Put(&Task{ID: "task-7", Status: NewTaskStatus(TaskStateSubmitted, nil)})

	task, err := h.Cancel(CancelParams{ID: "task-7"})
	require.NoError(t, err)
	assert.Equal(t, TaskStateCanceled, task.Status.State)
}

func TestCancelCompletedTaskFails(t *testing.T) {
	pipe := &fakePipeline{result: answeredResult()}
	h := NewHandler(pipe, NewStore(), nil)

	_, err := h.Send(context.Background(), sendParams("task-8", "top customers?"))
	require.NoError(t, err)

	_, err = h.Cancel(CancelParams{ID: "task-8"})
	assert.True(t, text2sql.HasCode(err, text2sql.ErrCodeTaskNotCancelable))

	// Terminal state is untouched by the failed cancel.
	got, err := h.Get(GetParams{ID: "task-8"})
	require.NoError(t, err)
	assert.Equal(t, TaskStateCompleted, got.Status.State)
}

func TestCancelUnknownTask(t *testing.T) {
	h := NewHandler(&fakePipeline{}, NewStore(), nil)
	_, err := h.Cancel(CancelParams{ID: "nope"})
	assert.True(t, text2sql.HasCode(err, text2sql.ErrCodeTaskNotFound))
}

func TestExtractQuestionJoinsTextParts(t *testing.T) {
	msg := Message{Role: "user", Parts: []Part{
		TextPart("show me"),
		DataPart(map[string]any{"ignored": true}),
		TextPart("the revenue"),
	}}
	assert.Equal(t, "show me the revenue", extractQuestion(msg))
}
